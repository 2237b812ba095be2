package viewport

import (
	"math"
	"testing"
)

func TestNew(t *testing.T) {
	v := New(1280, 720, 2)

	w, h := v.Backing()
	if w != 2560 || h != 1440 {
		t.Errorf("expected backing (2560, 1440), got (%d, %d)", w, h)
	}
}

func TestNormalizeScale(t *testing.T) {
	tests := []struct {
		name  string
		scale float64
		want  float64
	}{
		{"zero", 0, 1},
		{"negative", -2, 1},
		{"nan", math.NaN(), 1},
		{"inf", math.Inf(1), 1},
		{"retina", 2, 2},
		{"fractional", 1.25, 1.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeScale(tt.scale); got != tt.want {
				t.Errorf("NormalizeScale(%v) = %v, want %v", tt.scale, got, tt.want)
			}
		})
	}
}

func TestBackingTruncates(t *testing.T) {
	v := New(333, 201, 1.5)

	// 333*1.5 = 499.5, 201*1.5 = 301.5
	w, h := v.Backing()
	if w != 499 || h != 301 {
		t.Errorf("expected backing (499, 301), got (%d, %d)", w, h)
	}
}

func TestTrackerObserve(t *testing.T) {
	var tr Tracker

	if tr.Observe(800, 600, 1) {
		t.Error("first observation should not report a change")
	}
	if tr.Observe(800, 600, 1) {
		t.Error("same size should not report a change")
	}
	if !tr.Observe(1024, 600, 1) {
		t.Error("width change should be reported")
	}
	if !tr.Observe(1024, 600, 2) {
		t.Error("scale change should be reported")
	}
	if got := tr.current; got.W != 1024 || got.Scale != 2 {
		t.Errorf("unexpected current viewport %+v", got)
	}
}
