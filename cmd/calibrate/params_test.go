package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/backdrop/config"
)

func TestParamVectorRoundTrip(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	pv := NewParamVector(cfg)

	raw := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(back[i]-raw[i]) > 1e-9 {
			t.Errorf("%s: %v -> %v", pv.Specs[i].Name, raw[i], back[i])
		}
	}
}

func TestParamVectorClamp(t *testing.T) {
	cfg, _ := config.Load("")
	pv := NewParamVector(cfg)

	got := pv.Clamp([]float64{-1, 1e6})
	if got[0] != pv.Specs[0].Min || got[1] != pv.Specs[1].Max {
		t.Errorf("Clamp = %v", got)
	}
}

func TestApplyToConfig(t *testing.T) {
	cfg, _ := config.Load("")
	pv := NewParamVector(cfg)

	pv.ApplyToConfig(cfg, []float64{20, 120})

	p := cfg.FieldParams()
	if p.Divisor != 20 || p.ConnectDistance != 120 {
		t.Errorf("params = divisor %v connect %v, want 20 120", p.Divisor, p.ConnectDistance)
	}
	if cfg.Field.Divisor != 20 || cfg.Field.ConnectDistance != 120 {
		t.Error("field section not updated")
	}
}

func TestEvaluateScoresDensity(t *testing.T) {
	cfg, _ := config.Load("")
	pv := NewParamVector(cfg)
	fe := NewFitnessEvaluator(pv, 120, []int64{1}, cfg, 0)

	// Target 0 makes fitness the mean squared density
	fitness := fe.Evaluate(pv.DefaultVector())
	density := fe.LastDensity()
	if len(density) != len(ReferenceViewports) {
		t.Fatalf("density = %v", density)
	}
	var want float64
	for _, d := range density {
		if d <= 0 {
			t.Errorf("expected links on every viewport, got %v", density)
		}
		want += d * d
	}
	want /= float64(len(density))
	if math.Abs(fitness-want) > 1e-9 {
		t.Errorf("fitness = %v, want %v", fitness, want)
	}
}
