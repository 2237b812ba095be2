// Ebiten viewer - runs the particle field in an ebiten window.
//
// Usage: go run ./cmd/ebitenview [-config config.yaml] [-reduced-motion]
package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/pthm-cable/backdrop/config"
	"github.com/pthm-cable/backdrop/ebitenview"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	logStats := flag.Bool("log-stats", false, "Output frame stats via slog")
	reducedMotion := flag.Bool("reduced-motion", false, "Report a reduced-motion preference to the field")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := config.LoadDotEnv(); err != nil {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	ebiten.SetWindowSize(cfg.Screen.Width, cfg.Screen.Height)
	ebiten.SetWindowTitle(cfg.Screen.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.Screen.TargetFPS)

	v := ebitenview.NewView(cfg, ebitenview.Options{
		Seed:          *seed,
		ReducedMotion: *reducedMotion,
		LogStats:      *logStats,
	})

	err := ebiten.RunGame(v)
	if cerr := v.Close(); cerr != nil {
		slog.Error("failed to close view", "error", cerr)
	}
	if err != nil && !errors.Is(err, ebiten.Termination) {
		slog.Error("ebiten exited", "error", err)
		os.Exit(1)
	}
}
