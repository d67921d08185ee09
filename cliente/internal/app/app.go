package app

import (
	"log"
	"sync"

	"TomoVision/shared/config"
	"TomoVision/shared/geometry"
	"TomoVision/shared/proto/tvnet"
	"TomoVision/shared/volume"

	"TomoVision/cliente/internal/camera"
	"TomoVision/cliente/internal/client"
	"TomoVision/cliente/internal/render"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// pendingMesh é um resultado recebido pela goroutine de rede aguardando
// upload para a GPU na thread principal.
type pendingMesh struct {
	result *tvnet.MeshResult
	mesh   *geometry.Mesh
}

// App é o estado do visualizador: conexão, malha corrente e HUD.
type App struct {
	cfg      *config.Config
	net      *client.NetworkClient
	renderer *render.Renderer
	camera   *camera.Controller

	// Estado compartilhado com a goroutine de rede
	mu          sync.Mutex
	status      *tvnet.ServerStatus
	palette     [volume.MaterialCount]volume.Color
	progress    int32 // -1 = ocioso
	lastOutcome string

	// Estado da thread principal
	material  int32
	target    int32
	activeJob int32
	nextJobID int32
	triCount  int32
	focusSet  bool

	// Canal com capacidade 1: só interessa o resultado mais recente
	meshCh chan pendingMesh
}

func New(cfg *config.Config) *App {
	a := &App{
		cfg:      cfg,
		renderer: render.NewRenderer(),
		camera:   camera.New(cfg.FOV, cfg.CameraSensitivity, cfg.ZoomSpeed),
		material: int32(cfg.DefaultMaterial),
		target:   int32(cfg.DefaultTarget),
		progress: -1,
		meshCh:   make(chan pendingMesh, 1),
	}
	a.renderer.Wireframe = cfg.WireframeMode

	// Paleta provisória até a do servidor chegar
	defaults := volume.NewMaterialStore()
	for i := 0; i < volume.MaterialCount; i++ {
		a.palette[i] = defaults.Color(uint8(i))
	}

	a.net = client.NewNetworkClient(cfg.ServerURL)
	a.wireNetwork()
	return a
}

// Run executa o loop principal até a janela fechar. A janela raylib já
// deve estar inicializada.
func (a *App) Run() {
	go func() {
		if err := a.net.Connect(); err != nil {
			log.Printf("[App] Sem conexão com o servidor: %v", err)
		}
	}()

	for !rl.WindowShouldClose() {
		dt := rl.GetFrameTime()

		a.handleInput(dt)
		a.camera.Update(dt)
		a.drainResults()
		a.draw()
	}

	a.renderer.Unload()
}

// drainResults consome o resultado pendente (se houver) e sobe a malha
// para a GPU. Roda na thread principal, onde o contexto GL vive.
func (a *App) drainResults() {
	select {
	case pending := <-a.meshCh:
		a.mu.Lock()
		color := a.palette[uint8(a.material)]
		a.mu.Unlock()

		if pending.result.VoxelSize > 0 {
			a.renderer.VoxelSize = pending.result.VoxelSize
		}
		a.renderer.UploadMesh(pending.mesh, color)
		a.triCount = pending.result.TriangleCount
	default:
	}
}
