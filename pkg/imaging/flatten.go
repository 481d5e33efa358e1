package imaging

import (
	"image"
	"image/color"
)

// HasAlpha reports whether img carries an alpha channel that must be dropped
// before tiling: any non-premultiplied RGBA image, or any image that is not
// fully opaque.
func HasAlpha(img image.Image) bool {
	switch img.(type) {
	case *image.NRGBA, *image.NRGBA64:
		return true
	}
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	return false
}

// Flatten drops the alpha channel of img, keeping the stored color values and
// forcing every pixel opaque.
func Flatten(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	if src, ok := img.(*image.NRGBA); ok {
		for y := 0; y < b.Dy(); y++ {
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			s := src.Pix[off : off+b.Dx()*4]
			d := dst.Pix[y*dst.Stride : y*dst.Stride+b.Dx()*4]
			copy(d, s)
			for i := 3; i < len(d); i += 4 {
				d[i] = 0xff
			}
		}
		return dst
	}

	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			dst.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff})
		}
	}
	return dst
}
