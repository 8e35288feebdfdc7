package blit

import (
	"image"
	"image/color"
)

// RGB is an opaque in-memory image with 3 bytes per pixel, the layout the
// tile buffers are captured in.
type RGB struct {
	Pix    []uint8
	Stride int
	Rect   image.Rectangle
}

func NewRGB(r image.Rectangle) *RGB {
	w, h := r.Dx(), r.Dy()
	if w < 0 || h < 0 {
		w, h = 0, 0
	}
	return &RGB{Pix: make([]uint8, w*h*3), Stride: w * 3, Rect: r}
}

func (p *RGB) ColorModel() color.Model { return color.RGBAModel }

func (p *RGB) Bounds() image.Rectangle { return p.Rect }

func (p *RGB) Opaque() bool { return true }

func (p *RGB) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*3
}

func (p *RGB) At(x, y int) color.Color { return p.RGBAAt(x, y) }

func (p *RGB) RGBAAt(x, y int) color.RGBA {
	if !(image.Point{x, y}.In(p.Rect)) {
		return color.RGBA{}
	}
	i := p.PixOffset(x, y)
	s := p.Pix[i : i+3 : i+3]
	return color.RGBA{s[0], s[1], s[2], 0xff}
}

func (p *RGB) Set(x, y int, c color.Color) {
	if !(image.Point{x, y}.In(p.Rect)) {
		return
	}
	c1 := color.RGBAModel.Convert(c).(color.RGBA)
	i := p.PixOffset(x, y)
	s := p.Pix[i : i+3 : i+3]
	s[0], s[1], s[2] = c1.R, c1.G, c1.B
}

// SetRegion copies packed RGB rows from src into r, clipped to the image.
// stride is the byte length of one src row.
func (p *RGB) SetRegion(r image.Rectangle, src []byte, stride int) {
	clipped := r.Intersect(p.Rect)
	if clipped.Empty() {
		return
	}
	dx := (clipped.Min.X - r.Min.X) * 3
	n := clipped.Dx() * 3
	for y := clipped.Min.Y; y < clipped.Max.Y; y++ {
		so := (y-r.Min.Y)*stride + dx
		if so+n > len(src) {
			return
		}
		do := p.PixOffset(clipped.Min.X, y)
		copy(p.Pix[do:do+n], src[so:so+n])
	}
}
