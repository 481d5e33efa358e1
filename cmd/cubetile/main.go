package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/panokit/cubetile/pkg"
)

const version = "0.1.0"

var rootCmd *cobra.Command

func buildTimestamp() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.time" {
				if t, err := time.Parse(time.RFC3339, setting.Value); err == nil {
					return t.UTC().Format(time.RFC3339)
				}
			}
		}
	}
	if exePath, err := os.Executable(); err == nil {
		if stat, err := os.Stat(exePath); err == nil {
			return stat.ModTime().UTC().Format(time.RFC3339)
		}
	}
	return time.Now().UTC().Format(time.RFC3339)
}

func init() {
	rootCmd = &cobra.Command{
		Use:   "cubetile <tiles-dir> <output-dir>",
		Short: "Convert equirectangular source tiles into a cube tile pyramid",
		Long: `Convert a directory of tile_<x>_<y>_<zoom> source tiles into a
multi-resolution cube tile pyramid with a viewer config.json.

Settings come from CUBETILE_* environment variables or cubetile.yaml.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          convert,
	}
}

func main() {
	// --version is handled before cobra so the command itself stays flag-free
	if len(os.Args) == 2 && (os.Args[1] == "--version" || os.Args[1] == "-V") {
		fmt.Printf("cubetile %s\n", version)
		fmt.Printf("Built: %s\n", buildTimestamp())
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func convert(cmd *cobra.Command, args []string) error {
	_, err := pkg.Convert(cmd.Context(), args[0], args[1])
	return err
}
