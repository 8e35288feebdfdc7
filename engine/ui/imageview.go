package ui

import (
	"image"
	"image/draw"
	"sync"

	xdraw "golang.org/x/image/draw"
)

// ImageView shows an image scaled to a fit size in logical units. The
// image's aspect ratio is preserved inside the fit box.
type ImageView struct {
	Common[*ImageView]
	mu     sync.Mutex
	img    image.Image
	fit    [2]float64
	scaler xdraw.Scaler
}

func NewImageView() *ImageView {
	v := &ImageView{scaler: xdraw.ApproxBiLinear}
	v.bind(v)
	return v
}

// Smooth switches to a higher quality (slower) scaler.
func (v *ImageView) Smooth() *ImageView {
	v.scaler = xdraw.CatmullRom
	return v
}

// SetImage binds img and its display size. It implements blit.View.
func (v *ImageView) SetImage(img image.Image, displayW, displayH float64) {
	v.mu.Lock()
	v.img = img
	v.fit = [2]float64{displayW, displayH}
	v.mu.Unlock()
}

func (v *ImageView) Image() image.Image {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.img
}

func (v *ImageView) Layout(avail [2]float64) {
	w, h := v.fitted()
	v.base.SetSize(w, h)
}

// fitted is the displayed size with the image aspect ratio preserved.
func (v *ImageView) fitted() (w, h float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.img == nil {
		return 0, 0
	}
	b := v.img.Bounds()
	if b.Empty() {
		return 0, 0
	}
	w, h = v.fit[0], v.fit[1]
	ratio := float64(b.Dx()) / float64(b.Dy())
	if w <= 0 || h <= 0 {
		return float64(b.Dx()), float64(b.Dy())
	}
	if w/h > ratio {
		w = h * ratio
	} else {
		h = w / ratio
	}
	return w, h
}

// Draw scales the image into the view bounds, cropped by the parent.
func (v *ImageView) Draw(dst draw.Image, scale float64) {
	img := v.Image()
	if img == nil {
		return
	}
	r := v.base.rect(scale)
	clip := dst.Bounds()
	if p := v.base.parent; p != nil {
		clip = clip.Intersect(p.Node().rect(scale))
	}
	if r.Empty() || !r.Overlaps(clip) {
		return
	}
	out := clipTo(dst, clip)
	if r.Size() == img.Bounds().Size() {
		draw.Draw(out, r, img, img.Bounds().Min, draw.Src)
		return
	}
	v.scaler.Scale(out, r, img, img.Bounds(), draw.Src, nil)
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

func clipTo(dst draw.Image, r image.Rectangle) draw.Image {
	if s, ok := dst.(subImager); ok {
		if d, ok := s.SubImage(r).(draw.Image); ok {
			return d
		}
	}
	return dst
}
