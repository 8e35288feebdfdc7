package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/hubastard/glfx/engine/assets"
	"github.com/hubastard/glfx/engine/canvas"
	"github.com/hubastard/glfx/engine/config"
	"github.com/hubastard/glfx/engine/core"
	glbackend "github.com/hubastard/glfx/engine/gfx/gl"
	"github.com/hubastard/glfx/engine/platform"
	"github.com/hubastard/glfx/engine/profiler"
	"github.com/hubastard/glfx/engine/ui"
)

func init() {
	// GLFW requires the main OS thread.
	runtime.LockOSThread()
}

var (
	configDir = flag.String("config", ".", "Directory containing glfx.yaml")
	fps       = flag.Int("fps", -1, "Redraw rate (0 disables the redraw driver, -1 keeps the config value)")
	frames    = flag.Int("frames", 0, "Frames to blit before writing the snapshot")
	snapshot  = flag.String("snapshot", "", "Snapshot PNG path")
	scaleTo   = flag.Float64("rescale", 2, "Output scale the window moves to halfway through")
	verbose   = flag.Bool("v", false, "Debug logging")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadOptional(*configDir)
	if err != nil {
		log.Fatal(err)
	}
	if *fps >= 0 {
		cfg.Canvas.FPS = fps
	}
	if *frames > 0 {
		cfg.Output.Frames = *frames
	}
	if *snapshot != "" {
		cfg.Output.Snapshot = *snapshot
	}
	core.SetLogger(newLogger(*verbose))
	profiler.Init(1 << 16)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var surface *platform.Surface
	surface, err = platform.NewSurface(core.Config{
		Title:  cfg.Window.Title + " (native)",
		Width:  cfg.Canvas.FallbackWidth,
		Height: cfg.Canvas.FallbackHeight,
	}, func(ev core.Event) {
		switch ev := ev.(type) {
		case core.EventCloseRequested:
			cancel()
		case core.EventRedraw:
			surface.RequestRedraw()
		case core.EventResize:
			core.Logger().Debug("native framebuffer resized", "w", ev.W, "h", ev.H)
		}
	})
	if err != nil {
		log.Fatal(err)
	}

	g, gctx := errgroup.WithContext(ctx)
	tk := ui.NewToolkit(ui.DefaultPulse)
	g.Go(func() error { return tk.Run(gctx) })
	g.Go(func() error {
		defer cancel()
		if err := runScene(gctx, cfg, surface, tk); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	// The native surface loop owns the main thread until it is destroyed.
	if err := surface.Run(ctx); err != nil {
		log.Fatal(err)
	}
	cancel()
	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}
	if cfg.Output.Profile != "" {
		if err := profiler.Dump(cfg.Output.Profile); err != nil {
			log.Printf("profile dump: %v", err)
		}
	}
	log.Println("sandbox exit")
}

// runScene embeds a spinning triangle in a UI window, moves the window to a
// denser display halfway through and snapshots the composited frame.
func runScene(ctx context.Context, cfg *config.Config, surface *platform.Surface, tk *ui.Toolkit) error {
	opts := cfg.CanvasOptions()
	opts.Screens = surface

	view := ui.NewImageView()
	if cfg.Window.Smooth {
		view.Smooth()
	}
	pane := ui.NewPane(view)
	win := ui.NewWindow(cfg.Window.Title, cfg.Window.Width, cfg.Window.Height, cfg.Window.Scale).
		Background(cfg.Window.ClearColor)
	spinner := glbackend.NewSpinner(cfg.Window.ClearColor, 1.5)

	c := canvas.New(surface, pane, view, spinner, opts)
	defer c.Dispose()

	tk.RunLater(func() {
		win.SetRoot(pane)
		tk.Show(win)
	})
	if err := c.Start(ctx); err != nil {
		return fmt.Errorf("start canvas: %w", err)
	}
	if err := spinner.Err(); err != nil {
		return err
	}

	target := uint64(max(cfg.Output.Frames, 2))
	if err := waitBlitted(ctx, c, target/2); err != nil {
		return err
	}
	win.SetOutputScale(*scaleTo)
	if err := waitBlitted(ctx, c, target); err != nil {
		return err
	}

	if path := cfg.Output.Snapshot; path != "" {
		saved := make(chan error, 1)
		tk.RunLater(func() { saved <- assets.SavePNG(path, win.Frame()) })
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-saved:
			if err != nil {
				return err
			}
		}
		core.Logger().Info("snapshot written", "window", win.Title(), "path", path)
	}

	win.Close()
	if err := c.Wait(); err != nil {
		return err
	}
	st := c.Stats()
	core.Logger().Info("done", "captured", st.Captured, "dropped", st.Dropped, "blitted", st.Blitted)
	return nil
}

func waitBlitted(ctx context.Context, c *canvas.Canvas, n uint64) error {
	t := time.NewTicker(10 * time.Millisecond)
	defer t.Stop()
	for c.Stats().Blitted < n {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	return nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
