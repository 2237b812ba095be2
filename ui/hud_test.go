package ui

import (
	"image/color"
	"testing"
)

func TestToColor(t *testing.T) {
	c := ToColor(color.NRGBA{R: 255, G: 128, B: 1, A: 128})
	if c.R != 255 || c.G != 128 || c.B != 1 || c.A != 128 {
		t.Errorf("ToColor = %+v", c)
	}
}

func TestHUDToggle(t *testing.T) {
	h := NewHUD()
	if !h.IsVisible() {
		t.Fatal("HUD should start visible")
	}
	if h.Toggle() {
		t.Error("first toggle should hide the HUD")
	}
	if actions := h.Draw(HUDData{}); actions.Reseed {
		t.Error("hidden HUD should not report actions")
	}
	if !h.Toggle() {
		t.Error("second toggle should show the HUD")
	}
}
