package imaging

import (
	"fmt"
	"image"
	"image/draw"
	"strings"

	"github.com/nfnt/resize"
	xdraw "golang.org/x/image/draw"
)

// Resampler scales an image to an exact size. Implementations always return
// a newly allocated image; the source is never modified.
type Resampler interface {
	Name() string
	Resize(src image.Image, width, height int) *image.RGBA
}

// Lanczos resamples with a Lanczos3 kernel.
type Lanczos struct{}

func (Lanczos) Name() string { return "lanczos" }

func (Lanczos) Resize(src image.Image, width, height int) *image.RGBA {
	out := resize.Resize(uint(width), uint(height), src, resize.Lanczos3)
	if rgba, ok := out.(*image.RGBA); ok && rgba != src {
		return rgba
	}
	return copyRGBA(out)
}

// CatmullRom resamples with a Catmull-Rom cubic kernel.
type CatmullRom struct{}

func (CatmullRom) Name() string { return "catmullrom" }

func (CatmullRom) Resize(src image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// ParseResampler maps a configured resampler name to an implementation.
func ParseResampler(name string) (Resampler, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "lanczos", "lanczos3":
		return Lanczos{}, nil
	case "catmullrom", "catmull-rom", "bicubic":
		return CatmullRom{}, nil
	default:
		return nil, fmt.Errorf("unsupported resampler %q", name)
	}
}

// ToRGBA returns img as an *image.RGBA anchored at the origin, converting
// when necessary.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	return copyRGBA(img)
}

func copyRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
