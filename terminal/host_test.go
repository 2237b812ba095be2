package terminal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/backdrop/config"
	"github.com/pthm-cable/backdrop/field"
)

type testHost struct {
	*Host
	screen tcell.SimulationScreen
	now    time.Duration
}

func newTestHost(t *testing.T, cols, rows int, reduced bool) *testHost {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}

	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen.Init: %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(cols, rows)

	th := &testHost{screen: screen}
	th.Host = New(screen, cfg, Options{
		Seed:          11,
		ReducedMotion: reduced,
		Clock:         func() time.Duration { return th.now },
	})
	return th
}

func (th *testHost) litCells() int {
	cols, rows := th.Surface().Grid()
	n := 0
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			if r, _ := th.Surface().Cell(col, row); r != ' ' {
				n++
			}
		}
	}
	return n
}

func TestViewportFromGrid(t *testing.T) {
	th := newTestHost(t, 40, 10, false)

	w, h := th.Viewport()
	if w != 320 || h != 160 {
		t.Errorf("viewport = %vx%v, want 320x160", w, h)
	}
	if th.DevicePixelRatio() != 1 {
		t.Errorf("dpr = %v, want 1", th.DevicePixelRatio())
	}
}

func TestStartAndTick(t *testing.T) {
	th := newTestHost(t, 40, 10, false)

	if err := th.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := th.Field().Count(); got != 16 {
		t.Errorf("particles = %d, want 16", got)
	}
	if cols, rows := th.Surface().Grid(); cols != 40 || rows != 10 {
		t.Errorf("grid = %dx%d, want 40x10", cols, rows)
	}

	th.Tick()
	if th.litCells() == 0 {
		t.Error("expected braille dots after the first frame")
	}
}

func TestResizeEvent(t *testing.T) {
	th := newTestHost(t, 40, 10, false)
	if err := th.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	th.screen.SetSize(80, 20)
	if !th.HandleEvent(tcell.NewEventResize(80, 20)) {
		t.Fatal("resize should not quit")
	}

	if got := th.Field().Count(); got != 32 {
		t.Errorf("particles = %d, want 32", got)
	}
	if cols, rows := th.Surface().Grid(); cols != 80 || rows != 20 {
		t.Errorf("grid = %dx%d, want 80x20", cols, rows)
	}
	for _, p := range th.Field().Particles() {
		if p.Pos.X < 0 || p.Pos.X > 640 || p.Pos.Y < 0 || p.Pos.Y > 320 {
			t.Fatalf("particle outside bounds: %+v", p.Pos)
		}
	}
}

func TestReducedMotionBlank(t *testing.T) {
	th := newTestHost(t, 40, 10, true)
	if err := th.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	for i := 0; i < 5; i++ {
		th.Tick()
		th.now += 20 * time.Millisecond
	}
	if th.Field().Count() != 0 || th.litCells() != 0 {
		t.Error("reduced motion should leave the terminal blank")
	}
	if th.Pending() != 0 {
		t.Error("no frame should be scheduled")
	}

	th.screen.SetSize(60, 10)
	th.HandleEvent(tcell.NewEventResize(60, 10))
	if th.Field().Count() != 0 {
		t.Error("resize under reduced motion should keep zero particles")
	}
}

func TestRunStopsOnContext(t *testing.T) {
	th := newTestHost(t, 40, 10, false)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := th.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if th.Field().Running() || th.Pending() != 0 {
		t.Error("Run should tear the field down")
	}
	if err := th.Field().Teardown(); !errors.Is(err, field.ErrTornDown) {
		t.Errorf("Teardown after Run = %v, want ErrTornDown", err)
	}
}
