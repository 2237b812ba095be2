// Field snapshot tool - renders the particle field to a PNG file.
//
// Usage: go run ./cmd/fieldshot -out field.png -frames 120 -dpr 2
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/backdrop/config"
	"github.com/pthm-cable/backdrop/field"
	"github.com/pthm-cable/backdrop/renderer"
)

// shotHost is a hidden-window host driven by a virtual clock.
type shotHost struct {
	field.FrameQueue
	field.ResizeListeners

	w, h    float64
	dpr     float64
	surface *renderer.Surface
}

func (s *shotHost) Viewport() (w, h float64)   { return s.w, s.h }
func (s *shotHost) DevicePixelRatio() float64  { return s.dpr }
func (s *shotHost) PrefersReducedMotion() bool { return false }

func (s *shotHost) AttachSurface(w, h int, scale float64) (field.Surface, error) {
	surface, err := renderer.NewSurface(w, h, scale)
	if err != nil {
		return nil, err
	}
	s.surface = surface
	return surface, nil
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outPath := flag.String("out", "field.png", "Output PNG path")
	width := flag.Int("width", 1280, "Viewport width in logical pixels")
	height := flag.Int("height", 800, "Viewport height in logical pixels")
	dpr := flag.Float64("dpr", 1, "Device pixel ratio")
	frames := flag.Int("frames", 60, "Display frames to run before capturing")
	seed := flag.Int64("seed", 1, "RNG seed")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize raylib with hidden window
	rl.SetConfigFlags(rl.FlagWindowHidden)
	rl.InitWindow(int32(*width), int32(*height), "Field Snapshot")
	defer rl.CloseWindow()

	host := &shotHost{w: float64(*width), h: float64(*height), dpr: *dpr}
	f := field.New(host, config.Cfg().FieldParams(), field.WithRand(rand.New(rand.NewSource(*seed))))
	if err := f.Setup(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start field: %v\n", err)
		os.Exit(1)
	}
	defer f.Teardown()

	// Step one frame interval per display frame so every callback executes
	period := f.Params().FrameInterval
	if period <= 0 {
		period = time.Second / 60
	}
	var clock time.Duration
	for i := 0; i < *frames; i++ {
		host.RunFrame(clock)
		clock += period
	}

	if err := host.surface.Export(*outPath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to export image: %v\n", err)
		os.Exit(1)
	}

	bw, bh, _ := host.surface.Size()
	fmt.Printf("Field rendered to: %s (%dx%d, %d particles)\n", *outPath, bw, bh, f.Count())
}
