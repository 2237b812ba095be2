package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/backdrop/ui"
)

const controlsText = "H: HUD | R: Reseed | F11: Fullscreen | Esc: Quit"

// Draw composites the field surface under the HUD.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ui.ToColor(g.cfg.Derived.Background))

	screenW := int32(rl.GetScreenWidth())
	screenH := int32(rl.GetScreenHeight())

	if g.surface != nil {
		g.surface.Draw(rl.Rectangle{X: 0, Y: 0, Width: float32(screenW), Height: float32(screenH)})
	}

	g.drawUI(screenW, screenH)

	rl.EndDrawing()
}

// drawUI renders the HUD and applies its actions.
func (g *Game) drawUI(screenW, screenH int32) {
	params := g.field.Params()
	actions := g.hud.Draw(ui.HUDData{
		Title:         g.cfg.Screen.Title,
		FPS:           rl.GetFPS(),
		Particles:     g.field.Count(),
		Lines:         g.lastLines,
		Executed:      g.executed,
		Skipped:       g.skipped,
		ReducedMotion: g.field.ReducedMotion(),
		DPR:           g.field.Viewport().Scale,
		Fill:          params.Fill,
		Line:          params.Line,
		ScreenWidth:   screenW,
		ScreenHeight:  screenH,
	})
	if actions.Reseed {
		g.field.Reseed()
	}
	g.hud.DrawControls(screenH, controlsText)
}
