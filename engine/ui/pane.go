package ui

import (
	"image/draw"
	"sync"
	"time"

	"github.com/hubastard/glfx/engine/core"
)

// Pane is a container that fills the space it is given and stacks its
// children at its origin. It implements core.Host.
type Pane struct {
	Common[*Pane]
	once     sync.Once
	attached chan struct{}
}

func NewPane(children ...Element) *Pane {
	p := &Pane{attached: make(chan struct{})}
	p.bind(p)
	p.Children(children...)
	return p
}

// Add appends children after construction. UI thread only once shown.
func (p *Pane) Add(kids ...Element) *Pane { return p.Children(kids...) }

func (p *Pane) LogicalSize() (w, h float64) { return p.base.Size() }

func (p *Pane) Attached() <-chan struct{} { return p.attached }

func (p *Pane) Window() core.Window {
	p.base.mu.Lock()
	defer p.base.mu.Unlock()
	if p.base.window == nil {
		return nil
	}
	return p.base.window
}

func (p *Pane) OnFrame(fn func(time.Time)) { p.base.OnFrame(fn) }

// attach fires the attachment signal; the window is already set.
func (p *Pane) attach() {
	p.once.Do(func() { close(p.attached) })
}

func (p *Pane) Layout(avail [2]float64) {
	x, y := p.base.Pos()
	p.base.SetSize(avail[0], avail[1])
	for _, c := range p.base.children {
		c.Node().SetPos(x, y)
		c.Layout(avail)
	}
}

func (p *Pane) Draw(dst draw.Image, scale float64) {
	p.base.fill(dst, scale)
	for _, c := range p.base.children {
		c.Draw(dst, scale)
	}
}
