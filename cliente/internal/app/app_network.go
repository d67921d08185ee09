package app

import (
	"log"

	"TomoVision/shared/geometry"
	"TomoVision/shared/proto/tvnet"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// wireNetwork instala os callbacks da conexão. Todos executam na
// goroutine de leitura da rede; o estado compartilhado fica sob a.mu e
// malhas seguem pelo canal para a thread principal.
func (a *App) wireNetwork() {
	a.net.OnStatus = func(status *tvnet.ServerStatus) {
		a.mu.Lock()
		first := a.status == nil
		a.status = status
		a.mu.Unlock()

		if first {
			// Enquadra o volume na primeira notícia das dimensões
			half := rl.Vector3{
				X: float32(status.Width) * status.VoxelSize / 2,
				Y: float32(status.Height) * status.VoxelSize / 2,
				Z: float32(status.Depth) * status.VoxelSize / 2,
			}
			radius := half.X
			if half.Y > radius {
				radius = half.Y
			}
			if half.Z > radius {
				radius = half.Z
			}
			a.camera.Focus(half, radius)
			a.focusSet = true

			// Primeira malha sem interação do usuário
			if !status.Busy {
				a.requestMesh()
			}
		}
	}

	a.net.OnPalette = func(palette *tvnet.MaterialPalette) {
		a.mu.Lock()
		for _, entry := range palette.Entries {
			if entry.ID >= 0 && entry.ID < int32(len(a.palette)) {
				a.palette[entry.ID].A = uint8(entry.ARGB >> 24)
				a.palette[entry.ID].R = uint8(entry.ARGB >> 16)
				a.palette[entry.ID].G = uint8(entry.ARGB >> 8)
				a.palette[entry.ID].B = uint8(entry.ARGB)
			}
		}
		a.mu.Unlock()
	}

	a.net.OnProgress = func(progress *tvnet.JobProgress) {
		a.mu.Lock()
		if progress.JobID == a.activeJob {
			a.progress = progress.Percent
		}
		a.mu.Unlock()
	}

	a.net.OnResult = func(result *tvnet.MeshResult, mesh *geometry.Mesh) {
		a.mu.Lock()
		mine := result.JobID == a.activeJob
		if mine {
			a.progress = -1
			a.lastOutcome = result.Outcome
		}
		a.mu.Unlock()

		if !mine || mesh == nil {
			return
		}

		// Descarta um resultado antigo ainda não consumido
		select {
		case <-a.meshCh:
		default:
		}
		a.meshCh <- pendingMesh{result: result, mesh: mesh}
	}
}

// requestMesh submete um novo job com os parâmetros correntes.
func (a *App) requestMesh() {
	a.mu.Lock()
	a.nextJobID++
	id := a.nextJobID
	a.activeJob = id
	a.progress = 0
	a.lastOutcome = ""
	material := a.material
	target := a.target
	a.mu.Unlock()

	log.Printf("[App] Pedindo malha: job %d, material %d, alvo %d", id, material, target)
	a.net.RequestMesh(id, material, target, int32(a.cfg.MesherThreads))
}

// cancelJob pede o cancelamento do job ativo, se houver.
func (a *App) cancelJob() {
	a.mu.Lock()
	id := a.activeJob
	busy := a.progress >= 0
	a.mu.Unlock()
	if busy {
		a.net.CancelJob(id)
	}
}
