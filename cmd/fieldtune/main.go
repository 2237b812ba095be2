// Field tuning tool - live particle field preview with sliders.
//
// Usage: go run ./cmd/fieldtune [-config config.yaml] [-out tuned.yaml]
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/backdrop/config"
	"github.com/pthm-cable/backdrop/field"
	"github.com/pthm-cable/backdrop/renderer"
	"github.com/pthm-cable/backdrop/ui"
)

const (
	windowWidth   = 1100
	windowHeight  = 720
	previewWidth  = 640
	previewHeight = 480
	panelWidth    = windowWidth - previewWidth - 30
)

// previewHost runs the field inside a fixed rectangle of the tool window.
type previewHost struct {
	field.FrameQueue
	field.ResizeListeners

	surface *renderer.Surface
}

func (p *previewHost) Viewport() (w, h float64)   { return previewWidth, previewHeight }
func (p *previewHost) DevicePixelRatio() float64  { return 1 }
func (p *previewHost) PrefersReducedMotion() bool { return false }

func (p *previewHost) AttachSurface(w, h int, scale float64) (field.Surface, error) {
	s, err := renderer.NewSurface(w, h, scale)
	if err != nil {
		return nil, err
	}
	p.surface = s
	return s, nil
}

// slider describes one tunable value.
type slider struct {
	label    string
	min, max float32
	format   string
	get      func(p *field.Params) float32
	set      func(p *field.Params, v float32)
}

var sliders = []slider{
	{"Cap (max particles)", 10, 400, "%.0f",
		func(p *field.Params) float32 { return float32(p.Cap) },
		func(p *field.Params, v float32) { p.Cap = int(v) }},
	{"Divisor (px of width per particle)", 5, 100, "%.0f",
		func(p *field.Params) float32 { return float32(p.Divisor) },
		func(p *field.Params, v float32) { p.Divisor = float64(v) }},
	{"Connect distance (logical px)", 20, 400, "%.0f",
		func(p *field.Params) float32 { return float32(p.ConnectDistance) },
		func(p *field.Params, v float32) { p.ConnectDistance = float64(v) }},
	{"Size min", 0.1, 4, "%.2f",
		func(p *field.Params) float32 { return float32(p.SizeMin) },
		func(p *field.Params, v float32) { p.SizeMin = float64(v) }},
	{"Size max", 0.2, 8, "%.2f",
		func(p *field.Params) float32 { return float32(p.SizeMax) },
		func(p *field.Params, v float32) { p.SizeMax = float64(v) }},
	{"Speed (max velocity component)", 0, 2, "%.3f",
		func(p *field.Params) float32 { return float32(p.Speed) },
		func(p *field.Params, v float32) { p.Speed = float64(v) }},
	{"Fill alpha", 0, 1, "%.2f",
		func(p *field.Params) float32 { return float32(p.Fill.A) / 255 },
		func(p *field.Params, v float32) { p.Fill.A = uint8(v*255 + 0.5) }},
	{"Line alpha", 0.05, 1, "%.2f",
		func(p *field.Params) float32 { return float32(p.LineAlpha) },
		func(p *field.Params, v float32) { p.LineAlpha = float64(v) }},
	{"Line width", 0.25, 4, "%.2f",
		func(p *field.Params) float32 { return float32(p.LineWidth) },
		func(p *field.Params, v float32) { p.LineWidth = float64(v) }},
	{"Frame interval (ms)", 0, 100, "%.2f",
		func(p *field.Params) float32 { return float32(p.FrameInterval) / float32(time.Millisecond) },
		func(p *field.Params, v float32) {
			p.FrameInterval = time.Duration(float64(v) * float64(time.Millisecond))
		}},
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outPath := flag.String("out", "", "Write the tuned config here on exit (empty = don't write)")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	defaults := cfg.FieldParams()

	rl.InitWindow(windowWidth, windowHeight, "Field Tuning")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	host := &previewHost{}
	f := field.New(host, defaults, field.WithRand(rand.New(rand.NewSource(time.Now().UnixNano()))))
	if err := f.Setup(); err != nil {
		slog.Error("failed to start field", "error", err)
		os.Exit(1)
	}
	defer f.Teardown()

	params := defaults
	background := ui.ToColor(cfg.Derived.Background)

	for !rl.WindowShouldClose() {
		host.RunFrame(time.Duration(rl.GetTime() * float64(time.Second)))

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		// Preview
		preview := rl.Rectangle{X: 10, Y: 10, Width: previewWidth, Height: previewHeight}
		rl.DrawRectangleRec(preview, background)
		host.surface.Draw(preview)
		rl.DrawRectangleLinesEx(preview, 1, rl.DarkGray)

		statsY := int32(previewHeight + 25)
		rl.DrawText(fmt.Sprintf("Particles: %d  Target: %d", f.Count(), params.ParticleCount(previewWidth)), 15, statsY, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("FPS: %d", rl.GetFPS()), 15, statsY+20, 16, rl.DarkGray)
		if err := params.Validate(); err != nil {
			rl.DrawText(strings.ReplaceAll(err.Error(), "\n", "; "), 15, statsY+40, 14, rl.Red)
		}

		// Control panel
		panelX := float32(previewWidth + 20)
		panelY := float32(10)

		rl.DrawText("Field Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		changed := false
		for _, s := range sliders {
			rl.DrawText(s.label, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 18
			cur := s.get(&params)
			next := gui.SliderBar(
				rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
				"", "",
				cur, s.min, s.max,
			)
			rl.DrawText(fmt.Sprintf(s.format, cur), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
			if next != cur {
				s.set(&params, next)
				changed = true
			}
			panelY += 32
		}

		if changed && params.Validate() == nil {
			f.SetParams(params)
		}

		panelY += 10
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Reseed") {
			f.Reseed()
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			params = defaults
			f.SetParams(params)
			f.Reseed()
		}
		panelY += 45

		// Output YAML
		lines := yamlLines(params)
		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 22
		for _, line := range lines {
			rl.DrawText(line, int32(panelX), int32(panelY), 12, rl.Gray)
			panelY += 14
		}

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-24), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(strings.Join(lines, "\n"))
		}

		rl.EndDrawing()
	}

	if *outPath != "" {
		cfg.SetFieldParams(f.Params())
		if err := cfg.WriteYAML(*outPath); err != nil {
			slog.Error("failed to write config", "error", err)
			return
		}
		slog.Info("tuned config written", "path", *outPath)
	}
}

func yamlLines(p field.Params) []string {
	return []string{
		"field:",
		fmt.Sprintf("  cap: %d", p.Cap),
		fmt.Sprintf("  divisor: %.0f", p.Divisor),
		fmt.Sprintf("  connect_distance: %.0f", p.ConnectDistance),
		fmt.Sprintf("  size_min: %.2f", p.SizeMin),
		fmt.Sprintf("  size_max: %.2f", p.SizeMax),
		fmt.Sprintf("  speed: %.3f", p.Speed),
		fmt.Sprintf("  fill: \"%s\"", config.HexColor(p.Fill)),
		fmt.Sprintf("  fill_alpha: %.2f", float64(p.Fill.A)/255),
		fmt.Sprintf("  line: \"%s\"", config.HexColor(p.Line)),
		fmt.Sprintf("  line_alpha: %.2f", p.LineAlpha),
		fmt.Sprintf("  line_width: %.2f", p.LineWidth),
		fmt.Sprintf("  frame_interval_ms: %.2f", float64(p.FrameInterval)/float64(time.Millisecond)),
	}
}
