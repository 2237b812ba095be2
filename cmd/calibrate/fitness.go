package main

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/backdrop/config"
	"github.com/pthm-cable/backdrop/game"
	"github.com/pthm-cable/backdrop/telemetry"
)

// Viewport is one reference device the field should look right on.
type Viewport struct {
	Name string
	W, H int
	DPR  float64
}

// ReferenceViewports spans phone to large desktop.
var ReferenceViewports = []Viewport{
	{Name: "phone", W: 390, H: 844, DPR: 3},
	{Name: "tablet", W: 820, H: 1180, DPR: 2},
	{Name: "laptop", W: 1440, H: 900, DPR: 2},
	{Name: "desktop", W: 1920, H: 1080, DPR: 1},
}

// FitnessEvaluator runs headless fields and scores link density.
type FitnessEvaluator struct {
	params     *ParamVector
	frames     int
	seeds      []int64
	baseConfig *config.Config
	target     float64 // links per particle

	mu          sync.Mutex
	lastDensity []float64 // per viewport, from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, frames int, seeds []int64, baseCfg *config.Config, target float64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		frames:     frames,
		seeds:      seeds,
		baseConfig: baseCfg,
		target:     target,
	}
}

// LastDensity returns links per particle for each reference viewport
// from the most recent evaluation.
func (fe *FitnessEvaluator) LastDensity() []float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return append([]float64(nil), fe.lastDensity...)
}

// Evaluate computes fitness for a parameter vector (lower = better): the
// mean squared distance of every viewport's link density from the target.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	// Every viewport and seed runs in parallel
	density := make([][]float64, len(ReferenceViewports))
	var wg sync.WaitGroup
	for i, vp := range ReferenceViewports {
		density[i] = make([]float64, len(fe.seeds))
		for j, seed := range fe.seeds {
			wg.Add(1)
			go func(i, j int, vp Viewport, seed int64) {
				defer wg.Done()
				d, err := fe.runField(cfg, vp, seed)
				if err != nil {
					// Infeasible parameters score worst
					d = 0
				}
				density[i][j] = d
			}(i, j, vp, seed)
		}
	}
	wg.Wait()

	perViewport := make([]float64, len(density))
	var sum float64
	for i, ds := range density {
		perViewport[i] = stat.Mean(ds, nil)
		diff := perViewport[i] - fe.target
		sum += diff * diff
	}

	fe.mu.Lock()
	fe.lastDensity = perViewport
	fe.mu.Unlock()

	return sum / float64(len(perViewport))
}

// runField runs one headless field and returns its mean links per particle.
func (fe *FitnessEvaluator) runField(cfg *config.Config, vp Viewport, seed int64) (float64, error) {
	g, err := game.NewGame(cfg, game.Options{
		Seed:           seed,
		Headless:       true,
		Width:          vp.W,
		Height:         vp.H,
		DPR:            vp.DPR,
		StatsWindowSec: 1,
		StepsPerUpdate: fe.frames,
	})
	if err != nil {
		return 0, fmt.Errorf("starting %s: %w", vp.Name, err)
	}

	var windows []telemetry.FrameWindow
	g.SetStatsCallback(func(w telemetry.FrameWindow) { windows = append(windows, w) })
	g.UpdateHeadless()
	if err := g.Unload(); err != nil {
		return 0, err
	}

	var linksPerParticle []float64
	for _, w := range windows {
		if w.Particles > 0 {
			linksPerParticle = append(linksPerParticle, w.LinesMean/float64(w.Particles))
		}
	}
	if len(linksPerParticle) == 0 {
		return 0, fmt.Errorf("%s: no executed frames", vp.Name)
	}
	return stat.Mean(linksPerParticle, nil), nil
}

func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}
