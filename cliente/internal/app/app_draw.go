package app

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// draw renderiza a cena 3D e o HUD.
func (a *App) draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.NewColor(24, 26, 32, 255))

	rl.BeginMode3D(a.camera.RLCamera)
	a.renderer.Draw()
	rl.DrawGrid(20, 10.0)
	rl.EndMode3D()

	a.drawHUD()
	rl.EndDrawing()
}

func (a *App) drawHUD() {
	a.mu.Lock()
	status := a.status
	material := a.material
	target := a.target
	progress := a.progress
	outcome := a.lastOutcome
	color := a.palette[uint8(material)]
	a.mu.Unlock()

	y := int32(10)

	if status == nil {
		rl.DrawText("Conectando ao servidor...", 10, y, 20, rl.Orange)
		y += 26
	} else {
		rl.DrawText(fmt.Sprintf("Volume %dx%dx%d  voxel %.2g mm",
			status.Width, status.Height, status.Depth, status.VoxelSize), 10, y, 20, rl.RayWhite)
		y += 26
	}

	// Material corrente com amostra da cor da paleta
	rl.DrawRectangle(10, y, 18, 18, rl.NewColor(color.R, color.G, color.B, 255))
	rl.DrawText(fmt.Sprintf("Material %d   Alvo %d tris", material, target), 34, y, 20, rl.RayWhite)
	y += 26

	if a.triCount > 0 {
		rl.DrawText(fmt.Sprintf("Malha: %d triângulos", a.triCount), 10, y, 20, rl.SkyBlue)
		y += 26
	}

	if progress >= 0 {
		// Barra de progresso do job ativo
		rl.DrawRectangle(10, y, 204, 18, rl.DarkGray)
		rl.DrawRectangle(12, y+2, progress*2, 14, rl.Green)
		rl.DrawText(fmt.Sprintf("%d%%", progress), 222, y, 18, rl.Green)
		y += 26
	} else if outcome != "" && outcome != "done" {
		rl.DrawText(fmt.Sprintf("Último job: %s", outcome), 10, y, 20, rl.Orange)
		y += 26
	}

	if a.cfg.ShowDebugInfo {
		rl.DrawFPS(10, y)
		y += 26
	}

	help := "[R] gerar  [C] cancelar  [<-/->] material  [cima/baixo] alvo  [F] wireframe  [O] projeção"
	rl.DrawText(help, 10, int32(rl.GetScreenHeight())-28, 18, rl.Gray)
}
