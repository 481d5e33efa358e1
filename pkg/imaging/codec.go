// Package imaging holds the raster plumbing shared by the pipeline stages:
// decoding, lossless and tile encoding, resampling and alpha flattening.
package imaging

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"strings"

	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Format is a tile encoding.
type Format string

const (
	FormatJPEG Format = "jpg"
	FormatPNG  Format = "png"
)

// DefaultQuality is the JPEG quality used for tiles.
const DefaultQuality = 80

// ParseFormat maps a configured format name to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("unsupported tile format %q", name)
	}
}

// Encoder writes pyramid tiles.
type Encoder struct {
	Format  Format
	Quality int
}

// Extension returns the file extension for encoded tiles, without the dot.
func (e Encoder) Extension() string {
	return string(e.Format)
}

// Encode writes img to w in the encoder's format.
func (e Encoder) Encode(w io.Writer, img image.Image) error {
	switch e.Format {
	case FormatJPEG:
		quality := e.Quality
		if quality <= 0 || quality > 100 {
			quality = DefaultQuality
		}
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	case FormatPNG:
		return png.Encode(w, img)
	default:
		return fmt.Errorf("unsupported tile format %q", e.Format)
	}
}

// WriteFile encodes img to path and returns the number of bytes written.
func (e Encoder) WriteFile(path string, img image.Image) (int64, error) {
	var buf bytes.Buffer
	if err := e.Encode(&buf, img); err != nil {
		return 0, fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return 0, fmt.Errorf("writing %s: %w", path, err)
	}
	return int64(buf.Len()), nil
}

// Load decodes an image file. JPEG, PNG, TIFF and WebP are recognized.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

// SavePNG writes img losslessly as PNG. Opaque images are stored without an
// alpha channel.
func SavePNG(path string, img image.Image) error {
	return saveWith(path, func(w io.Writer) error {
		enc := png.Encoder{CompressionLevel: png.BestSpeed}
		return enc.Encode(w, img)
	})
}

// SaveTIFF writes img losslessly as deflate-compressed TIFF.
func SaveTIFF(path string, img image.Image) error {
	return saveWith(path, func(w io.Writer) error {
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	})
}

func saveWith(path string, encode func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(f)
	if err := encode(bw); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
