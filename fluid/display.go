package fluid

import (
	"image"
	"image/color"
	"math"
)

// Display maps a dye field to a compositable image. Alpha grows with dye
// brightness so empty regions are fully transparent.
type Display struct {
	AlphaScale float32

	nrgba *image.NRGBA
	rgba  *image.RGBA
	px    []color.RGBA
}

// NewDisplay creates a display adapter. alphaScale multiplies |rgb| to get alpha.
func NewDisplay(alphaScale float32) *Display {
	return &Display{AlphaScale: alphaScale}
}

// shade converts one dye cell to straight-alpha 8-bit RGBA.
func (d *Display) shade(r, g, b float32) (uint8, uint8, uint8, uint8) {
	a := d.AlphaScale * float32(math.Sqrt(float64(r*r+g*g+b*b)))
	return to8(r), to8(g), to8(b), to8(a)
}

// Render writes dye into an NRGBA image the size of the grid and returns it.
// Image row 0 is the top of the domain. The image is reused between calls.
func (d *Display) Render(dye *Field) *image.NRGBA {
	dye.mustLive()
	if d.nrgba == nil || d.nrgba.Rect.Dx() != dye.Width || d.nrgba.Rect.Dy() != dye.Height {
		d.nrgba = image.NewNRGBA(image.Rect(0, 0, dye.Width, dye.Height))
	}
	img := d.nrgba
	for y := 0; y < dye.Height; y++ {
		row := img.Pix[(dye.Height-1-y)*img.Stride:]
		for x := 0; x < dye.Width; x++ {
			i := dye.Index(x, y)
			r, g, b, a := d.shade(dye.Data[i], dye.Data[i+1], dye.Data[i+2])
			o := x * 4
			row[o], row[o+1], row[o+2], row[o+3] = r, g, b, a
		}
	}
	return img
}

// RenderPremultiplied is Render for hosts that expect premultiplied alpha.
func (d *Display) RenderPremultiplied(dye *Field) *image.RGBA {
	src := d.Render(dye)
	if d.rgba == nil || d.rgba.Rect != src.Rect {
		d.rgba = image.NewRGBA(src.Rect)
	}
	for i := 0; i < len(src.Pix); i += 4 {
		a := uint16(src.Pix[i+3])
		d.rgba.Pix[i] = uint8(uint16(src.Pix[i]) * a / 255)
		d.rgba.Pix[i+1] = uint8(uint16(src.Pix[i+1]) * a / 255)
		d.rgba.Pix[i+2] = uint8(uint16(src.Pix[i+2]) * a / 255)
		d.rgba.Pix[i+3] = uint8(a)
	}
	return d.rgba
}

// Pixels returns straight-alpha colours in image order, for texture uploads.
func (d *Display) Pixels(dye *Field) []color.RGBA {
	src := d.Render(dye)
	n := dye.Width * dye.Height
	if cap(d.px) < n {
		d.px = make([]color.RGBA, n)
	}
	d.px = d.px[:n]
	for i := range d.px {
		o := i * 4
		d.px[i] = color.RGBA{R: src.Pix[o], G: src.Pix[o+1], B: src.Pix[o+2], A: src.Pix[o+3]}
	}
	return d.px
}

func to8(v float32) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
