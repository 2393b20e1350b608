// Command inkweb runs ink on ebiten, which also builds for WebAssembly:
//
//	GOOS=js GOARCH=wasm go build -o ink.wasm ./cmd/inkweb
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/pthm-cable/ink/config"
	"github.com/pthm-cable/ink/emitter"
	"github.com/pthm-cable/ink/fluid"
	"github.com/pthm-cable/ink/input"
)

// host adapts the fluid driver to ebiten's Update/Draw/Layout loop.
type host struct {
	cfg      *config.Config
	driver   *fluid.Driver
	tracker  *input.Tracker
	emitters *emitter.System
	display  *fluid.Display

	frame        *ebiten.Image
	viewW, viewH int
	paused       bool
	showStats    bool
}

func newHost(cfg *config.Config, seed int64) (*host, error) {
	w, h := cfg.Screen.Width, cfg.Screen.Height
	driver, err := fluid.NewDriver(w, h, cfg.Fluid)
	if err != nil {
		return nil, err
	}
	return &host{
		cfg:      cfg,
		driver:   driver,
		tracker:  input.NewTracker(cfg.Input, w, h),
		emitters: emitter.NewSystem(cfg.Emitters, cfg.Input, seed),
		display:  fluid.NewDisplay(float32(cfg.Fluid.AlphaScale)),
		viewW:    w,
		viewH:    h,
	}, nil
}

// pointer returns the active pointer position: the first touch if any,
// otherwise the mouse.
func pointer() (x, y int, pressed bool) {
	if ids := ebiten.AppendTouchIDs(nil); len(ids) > 0 {
		x, y = ebiten.TouchPosition(ids[0])
		return x, y, len(inpututil.AppendJustPressedTouchIDs(nil)) > 0
	}
	x, y = ebiten.CursorPosition()
	return x, y, inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
}

func (h *host) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		h.paused = !h.paused
		h.tracker.Leave()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		h.driver.Reset()
		h.emitters.Clear()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		h.showStats = !h.showStats
	}
	if h.paused {
		return nil
	}

	x, y, pressed := pointer()
	if x < 0 || y < 0 || x >= h.viewW || y >= h.viewH {
		h.tracker.Leave()
	} else {
		if sp, ok := h.tracker.Move(float64(x), float64(y)); ok {
			h.driver.AddSplat(sp)
		}
		if pressed {
			nx, ny := h.tracker.Normalize(float64(x), float64(y))
			h.tracker.Touch()
			h.emitters.Burst(nx, ny, h.tracker.Hue())
		}
	}

	dt := h.cfg.Derived.DT32
	h.tracker.Advance(float64(dt))
	h.emitters.Update(float64(dt), h.tracker.Idle(), h.tracker.Hue(), h.driver)
	h.driver.Step(dt)
	return nil
}

func (h *host) Draw(screen *ebiten.Image) {
	img := h.display.RenderPremultiplied(h.driver.Dye())
	gw, gh := img.Rect.Dx(), img.Rect.Dy()
	if h.frame == nil || h.frame.Bounds().Dx() != gw || h.frame.Bounds().Dy() != gh {
		if h.frame != nil {
			h.frame.Deallocate()
		}
		h.frame = ebiten.NewImage(gw, gh)
	}
	h.frame.WritePixels(img.Pix)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(h.viewW)/float64(gw), float64(h.viewH)/float64(gh))
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(h.frame, op)

	if h.showStats {
		last := h.driver.LastStep()
		bursts, wanderers := h.emitters.Counts()
		ebitenutil.DebugPrint(screen, fmt.Sprintf(
			"TPS %.0f  FPS %.0f\ngrid %dx%d  step %d\nsplats %d  emitters %d+%d\ndiv %.4f",
			ebiten.ActualTPS(), ebiten.ActualFPS(), gw, gh, last.Step,
			last.Splats, bursts, wanderers, last.DivergenceBefore,
		))
	}
}

// Layout follows the window size and resizes the grid to match.
func (h *host) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != h.viewW || outsideHeight != h.viewH {
		if err := h.driver.Resize(outsideWidth, outsideHeight); err != nil {
			slog.Error("fluid resize failed", "view_w", outsideWidth, "view_h", outsideHeight, "error", err)
			return h.viewW, h.viewH
		}
		h.viewW, h.viewH = outsideWidth, outsideHeight
		h.tracker.Resize(outsideWidth, outsideHeight)
	}
	return h.viewW, h.viewH
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	h, err := newHost(cfg, *seed)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer h.driver.Dispose()

	ebiten.SetWindowSize(cfg.Screen.Width, cfg.Screen.Height)
	ebiten.SetWindowTitle("Ink")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.Screen.TargetFPS)

	if err := ebiten.RunGame(h); err != nil {
		slog.Error("ebiten exited", "error", err)
		os.Exit(1)
	}
}
