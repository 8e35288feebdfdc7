// Package ui is a small retained-mode scene graph rendered in software. A
// Toolkit owns the UI thread: it ticks every shown Window, runs frame
// handlers, lays out each tree and composites it into the window's frame.
package ui

import (
	"image"
	"image/draw"
	"sync"
	"time"

	"github.com/hubastard/glfx/engine/colors"
)

// Element is a node of the scene graph.
type Element interface {
	Node() *Base
	// Layout sizes the element to fit within avail, in logical units.
	Layout(avail [2]float64)
	// Draw paints the element into dst, a frame in physical pixels.
	Draw(dst draw.Image, scale float64)
}

// Base holds the state shared by every element. Position and size are
// written on the UI thread and may be read from any goroutine.
type Base struct {
	mu       sync.Mutex
	parent   Element
	children []Element
	position [2]float64
	size     [2]float64
	color    colors.Color
	window   *Window
	frames   []func(time.Time)
}

func (b *Base) Parent() Element     { return b.parent }
func (b *Base) Children() []Element { return b.children }

func (b *Base) Pos() (x, y float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.position[0], b.position[1]
}

func (b *Base) Size() (w, h float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size[0], b.size[1]
}

func (b *Base) SetPos(x, y float64) {
	b.mu.Lock()
	b.position = [2]float64{x, y}
	b.mu.Unlock()
}

func (b *Base) SetSize(w, h float64) {
	b.mu.Lock()
	b.size = [2]float64{w, h}
	b.mu.Unlock()
}

func (b *Base) SetColor(c colors.Color) { b.color = c }

// OnFrame registers fn to run on the UI thread on every tick while the
// element is in a shown window.
func (b *Base) OnFrame(fn func(time.Time)) {
	b.mu.Lock()
	b.frames = append(b.frames, fn)
	b.mu.Unlock()
}

func (b *Base) frameHandlers() []func(time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]func(time.Time){}, b.frames...)
}

// rect is the element bounds in physical pixels.
func (b *Base) rect(scale float64) image.Rectangle {
	x, y := b.Pos()
	w, h := b.Size()
	return image.Rect(int(x*scale), int(y*scale), int((x+w)*scale), int((y+h)*scale))
}

func (b *Base) fill(dst draw.Image, scale float64) {
	if b.color[3] <= 0 {
		return
	}
	src := image.NewUniform(b.color.NRGBA())
	draw.Draw(dst, b.rect(scale).Intersect(dst.Bounds()), src, image.Point{}, draw.Over)
}

// ------ Helper ------

// Common provides the fluent setters of an element of type T.
type Common[T any] struct {
	owner T
	base  Base
}

func (c *Common[T]) bind(owner T) { c.owner = owner }

func (c *Common[T]) Node() *Base               { return &c.base }
func (c *Common[T]) Position(x, y float64) T   { c.base.SetPos(x, y); return c.owner }
func (c *Common[T]) Dimensions(w, h float64) T { c.base.SetSize(w, h); return c.owner }
func (c *Common[T]) Color(col colors.Color) T  { c.base.SetColor(col); return c.owner }

func (c *Common[T]) Children(kids ...Element) T {
	c.base.children = append(c.base.children, kids...)
	for _, k := range kids {
		k.Node().parent = any(c.owner).(Element)
	}
	return c.owner
}

// walk visits e and its descendants depth first.
func walk(e Element, fn func(Element)) {
	fn(e)
	for _, c := range e.Node().children {
		walk(c, fn)
	}
}
