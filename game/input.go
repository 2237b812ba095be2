package game

import rl "github.com/gen2brain/raylib-go/raylib"

// handleInput processes keyboard input.
func (g *Game) handleInput() {
	// Window resize and DPR changes (moving between monitors)
	g.checkResize()

	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeyH) {
		g.hud.Toggle()
	}

	if rl.IsKeyPressed(rl.KeyR) {
		g.field.Reseed()
	}
}
