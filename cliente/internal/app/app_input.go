package app

import (
	"TomoVision/cliente/internal/camera"
	"TomoVision/shared/util"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// handleInput processa o teclado do HUD e repassa o resto para a câmera.
func (a *App) handleInput(dt float32) {
	a.camera.HandleInput(dt)

	switch {
	case rl.IsKeyPressed(rl.KeyR):
		a.requestMesh()
	case rl.IsKeyPressed(rl.KeyC):
		a.cancelJob()
	case rl.IsKeyPressed(rl.KeyF):
		a.renderer.Wireframe = !a.renderer.Wireframe
	case rl.IsKeyPressed(rl.KeyO):
		if a.camera.Mode == camera.ModePerspective {
			a.camera.SetMode(camera.ModeOrthographic)
		} else {
			a.camera.SetMode(camera.ModePerspective)
		}
	case rl.IsKeyPressed(rl.KeyRight):
		a.mu.Lock()
		a.material = int32(util.Clamp(int(a.material)+1, 1, 255))
		a.mu.Unlock()
	case rl.IsKeyPressed(rl.KeyLeft):
		a.mu.Lock()
		a.material = int32(util.Clamp(int(a.material)-1, 1, 255))
		a.mu.Unlock()
	case rl.IsKeyPressed(rl.KeyUp):
		a.mu.Lock()
		a.target = int32(util.Clamp(int(a.target)*2, 1000, 8_000_000))
		a.mu.Unlock()
	case rl.IsKeyPressed(rl.KeyDown):
		a.mu.Lock()
		a.target = int32(util.Clamp(int(a.target)/2, 1000, 8_000_000))
		a.mu.Unlock()
	}
}
