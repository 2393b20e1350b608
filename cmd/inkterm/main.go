// Command inkterm runs ink in a terminal. Each character cell shows two grid
// rows with an upper half block: the foreground colours the top row, the
// background the bottom one.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/ink/config"
	"github.com/pthm-cable/ink/emitter"
	"github.com/pthm-cable/ink/fluid"
	"github.com/pthm-cable/ink/input"
)

type term struct {
	screen   tcell.Screen
	cfg      *config.Config
	driver   *fluid.Driver
	tracker  *input.Tracker
	emitters *emitter.System
	display  *fluid.Display

	cols, rows int
	paused     bool
	buttonDown bool
}

// viewSize is the pixel viewport for a cols×rows terminal.
func viewSize(cols, rows int) (int, int) {
	return max(cols, 1), max(rows*2, 1)
}

func newTerm(screen tcell.Screen, cfg *config.Config, seed int64) (*term, error) {
	cols, rows := screen.Size()
	w, h := viewSize(cols, rows)
	driver, err := fluid.NewDriver(w, h, cfg.Fluid)
	if err != nil {
		return nil, err
	}
	return &term{
		screen:   screen,
		cfg:      cfg,
		driver:   driver,
		tracker:  input.NewTracker(cfg.Input, w, h),
		emitters: emitter.NewSystem(cfg.Emitters, cfg.Input, seed),
		display:  fluid.NewDisplay(float32(cfg.Fluid.AlphaScale)),
		cols:     cols,
		rows:     rows,
	}, nil
}

// handleEvent applies one terminal event. It returns false to quit.
func (t *term) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
			return false
		case ev.Key() != tcell.KeyRune:
		case ev.Rune() == 'q':
			return false
		case ev.Rune() == ' ':
			t.paused = !t.paused
			t.tracker.Leave()
		case ev.Rune() == 'r':
			t.driver.Reset()
			t.emitters.Clear()
		}

	case *tcell.EventMouse:
		cx, cy := ev.Position()
		x, y := float64(cx)+0.5, float64(cy)*2+1
		if sp, ok := t.tracker.Move(x, y); ok && !t.paused {
			t.driver.AddSplat(sp)
		}
		down := ev.Buttons()&tcell.Button1 != 0
		if down && !t.buttonDown && !t.paused {
			nx, ny := t.tracker.Normalize(x, y)
			t.tracker.Touch()
			t.emitters.Burst(nx, ny, t.tracker.Hue())
		}
		t.buttonDown = down

	case *tcell.EventResize:
		t.screen.Sync()
		cols, rows := t.screen.Size()
		w, h := viewSize(cols, rows)
		if err := t.driver.Resize(w, h); err != nil {
			slog.Error("fluid resize failed", "view_w", w, "view_h", h, "error", err)
			break
		}
		t.cols, t.rows = cols, rows
		t.tracker.Resize(w, h)
	}
	return true
}

func (t *term) step() {
	if t.paused {
		return
	}
	dt := t.cfg.Derived.DT32
	t.tracker.Advance(float64(dt))
	t.emitters.Update(float64(dt), t.tracker.Idle(), t.tracker.Hue(), t.driver)
	t.driver.Step(dt)
}

// draw samples the premultiplied image, which is dye composited over black.
func (t *term) draw() {
	img := t.display.RenderPremultiplied(t.driver.Dye())
	gw, gh := img.Rect.Dx(), img.Rect.Dy()
	vw, vh := viewSize(t.cols, t.rows)

	at := func(px, py int) tcell.Color {
		gx := min(px*gw/vw, gw-1)
		gy := min(py*gh/vh, gh-1)
		o := img.PixOffset(gx, gy)
		return tcell.NewRGBColor(int32(img.Pix[o]), int32(img.Pix[o+1]), int32(img.Pix[o+2]))
	}

	for cy := 0; cy < t.rows; cy++ {
		for cx := 0; cx < t.cols; cx++ {
			style := tcell.StyleDefault.Foreground(at(cx, cy*2)).Background(at(cx, cy*2+1))
			t.screen.SetContent(cx, cy, '▀', nil, style)
		}
	}

	last := t.driver.LastStep()
	status := fmt.Sprintf(" step %d  grid %dx%d  div %.4f  [space] pause [r] reset [q] quit ",
		last.Step, gw, gh, last.DivergenceBefore)
	for i, r := range status {
		if i >= t.cols {
			break
		}
		t.screen.SetContent(i, 0, r, nil, tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack))
	}
	t.screen.Show()
}

func (t *term) run() {
	ticker := time.NewTicker(time.Duration(t.cfg.Fluid.DT * float64(time.Second)))
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	for {
		select {
		case ev := <-eventChan:
			if !t.handleEvent(ev) {
				return
			}
		case <-ticker.C:
			t.step()
			t.draw()
		}
	}
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	logPath := flag.String("log", "", "Log file (the terminal is busy)")
	flag.Parse()

	logOut, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if *logPath != "" {
		logOut, err = os.Create(*logPath)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "opening log:", err)
		os.Exit(1)
	}
	defer logOut.Close()
	slog.SetDefault(slog.New(slog.NewJSONHandler(logOut, nil)))

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "loading config:", err)
		os.Exit(1)
	}
	// Terminal cells are coarse already
	cfg.Fluid.ResolutionScale = 1
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintln(os.Stderr, "creating screen:", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintln(os.Stderr, "initializing screen:", err)
		os.Exit(1)
	}
	screen.EnableMouse()
	screen.HideCursor()

	t, err := newTerm(screen, cfg, *seed)
	if err != nil {
		screen.Fini()
		fmt.Fprintln(os.Stderr, "starting fluid:", err)
		os.Exit(1)
	}

	slog.Info("inkterm started", "cols", t.cols, "rows", t.rows, "seed", *seed)
	t.run()

	screen.Fini()
	t.driver.Dispose()
}
