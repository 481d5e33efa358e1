// Package config loads pipeline settings from the environment (CUBETILE_*)
// and an optional cubetile.yaml.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/panokit/cubetile/pkg/imaging"
	"github.com/panokit/cubetile/pkg/panorama"
)

const EnvPrefix = "CUBETILE"

const (
	LogLevelKey         = "log_level"
	JSONLogKey          = "json_log"
	LogPathKey          = "log_path"
	NonaKey             = "nona"
	TileFormatKey       = "tile_format"
	TileQualityKey      = "tile_quality"
	ResamplerKey        = "resampler"
	WorkersKey          = "workers"
	SourceZoomKey       = "source_zoom"
	KeepIntermediateKey = "keep_intermediate"
)

// DefaultNona runs nona with its debug output enabled.
const DefaultNona = "nona -d"

// Config holds every tunable of a conversion run.
type Config struct {
	LogLevel         string `mapstructure:"log_level"`
	JSONLog          bool   `mapstructure:"json_log"`
	LogPath          string `mapstructure:"log_path"`
	Nona             string `mapstructure:"nona"`
	TileFormat       string `mapstructure:"tile_format"`
	TileQuality      int    `mapstructure:"tile_quality"`
	Resampler        string `mapstructure:"resampler"`
	Workers          int    `mapstructure:"workers"`
	SourceZoom       int    `mapstructure:"source_zoom"`
	KeepIntermediate bool   `mapstructure:"keep_intermediate"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:    "info",
		Nona:        DefaultNona,
		TileFormat:  string(imaging.FormatJPEG),
		TileQuality: imaging.DefaultQuality,
		Resampler:   imaging.Lanczos{}.Name(),
		Workers:     1,
		SourceZoom:  panorama.FinestZoom,
	}
}

// New returns a viper instance bound to the CUBETILE environment and the
// standard config file locations, with defaults applied.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigName("cubetile")
	v.SetConfigType("yaml")
	for _, path := range []string{".", "$HOME/.cubetile", "/etc/cubetile"} {
		v.AddConfigPath(path)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	d := DefaultConfig()
	v.SetDefault(LogLevelKey, d.LogLevel)
	v.SetDefault(JSONLogKey, d.JSONLog)
	v.SetDefault(LogPathKey, d.LogPath)
	v.SetDefault(NonaKey, d.Nona)
	v.SetDefault(TileFormatKey, d.TileFormat)
	v.SetDefault(TileQualityKey, d.TileQuality)
	v.SetDefault(ResamplerKey, d.Resampler)
	v.SetDefault(WorkersKey, d.Workers)
	v.SetDefault(SourceZoomKey, d.SourceZoom)
	v.SetDefault(KeepIntermediateKey, d.KeepIntermediate)
	return v
}

// Load reads the optional config file and the environment into a Config.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	if _, err := imaging.ParseFormat(c.TileFormat); err != nil {
		return err
	}
	if _, err := imaging.ParseResampler(c.Resampler); err != nil {
		return err
	}
	if c.TileQuality < 1 || c.TileQuality > 100 {
		return fmt.Errorf("tile quality %d out of range 1-100", c.TileQuality)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if _, _, ok := panorama.ZoomGrid(c.SourceZoom); !ok {
		return fmt.Errorf("unknown source zoom %d", c.SourceZoom)
	}
	if strings.TrimSpace(c.Nona) == "" {
		return errors.New("reprojection command must not be empty")
	}
	return nil
}

// Encoder returns the tile encoder described by the config.
func (c *Config) Encoder() imaging.Encoder {
	format, err := imaging.ParseFormat(c.TileFormat)
	if err != nil {
		format = imaging.FormatJPEG
	}
	return imaging.Encoder{Format: format, Quality: c.TileQuality}
}

// ResamplerImpl returns the configured resampler, falling back to Lanczos.
func (c *Config) ResamplerImpl() imaging.Resampler {
	r, err := imaging.ParseResampler(c.Resampler)
	if err != nil {
		return imaging.Lanczos{}
	}
	return r
}
