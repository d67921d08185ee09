package main

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"TomoVision/shared/config"
	"TomoVision/shared/meshing"
	"TomoVision/shared/proto/tvnet"
	"TomoVision/shared/util"
	"TomoVision/shared/volume"
)

// JobManager executa um job de geração de malha por vez e transmite
// progresso e resultado para todos os clientes conectados. Pedidos que
// chegam com outro job em andamento entram numa fila única por material:
// um pedido novo para o mesmo material substitui o pendente.
type JobManager struct {
	hub   *Hub
	store *volume.VolumeStore
	cfg   *config.Config

	pending *util.UniqueQueue[int32, *tvnet.MeshJobRequest]

	mu       sync.Mutex
	activeID int32
	cancel   context.CancelFunc
}

func NewJobManager(hub *Hub, store *volume.VolumeStore, cfg *config.Config) *JobManager {
	return &JobManager{
		hub:     hub,
		store:   store,
		cfg:     cfg,
		pending: util.NewUniqueQueue[int32, *tvnet.MeshJobRequest](),
	}
}

// Status monta o ServerStatus corrente (dimensões do volume + ocupação).
func (jm *JobManager) Status() *tvnet.ServerStatus {
	w, h, d := jm.store.Dimensions()
	jm.mu.Lock()
	defer jm.mu.Unlock()
	return &tvnet.ServerStatus{
		Width:     w,
		Height:    h,
		Depth:     d,
		VoxelSize: jm.store.VoxelSize,
		Busy:      jm.cancel != nil,
		ActiveJob: jm.activeID,
	}
}

// Submit aceita (ou rejeita) um pedido de malha. A execução acontece em
// goroutine própria; a resposta sempre chega por broadcast.
func (jm *JobManager) Submit(req *tvnet.MeshJobRequest) {
	jm.mu.Lock()
	if jm.cancel != nil {
		active := jm.activeID
		jm.mu.Unlock()
		jm.pending.Enqueue(req.MaterialID, req)
		log.Printf("[Jobs] Job %d enfileirado (job %d em andamento, fila: %d)",
			req.JobID, active, jm.pending.Len())
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	jm.activeID = req.JobID
	jm.cancel = cancel
	jm.mu.Unlock()

	jm.hub.Broadcast(tvnet.TypeServerStatus, jm.Status())

	go jm.runJob(ctx, req)
}

// Cancel dispara o cancelamento cooperativo do job ativo. O job entrega
// o resultado parcial pelo caminho normal.
func (jm *JobManager) Cancel(jobID int32) {
	jm.mu.Lock()
	defer jm.mu.Unlock()
	if jm.cancel != nil && jm.activeID == jobID {
		log.Printf("[Jobs] Cancelando job %d", jobID)
		jm.cancel()
	}
}

func (jm *JobManager) runJob(ctx context.Context, req *tvnet.MeshJobRequest) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Jobs] Recuperado de pânico no job %d: %v", req.JobID, r)
		}
		jm.mu.Lock()
		if jm.cancel != nil {
			jm.cancel()
		}
		jm.cancel = nil
		jm.activeID = 0
		jm.mu.Unlock()
		jm.hub.Broadcast(tvnet.TypeServerStatus, jm.Status())

		// Próximo da fila, se houver
		if _, next, ok := jm.pending.Dequeue(); ok {
			jm.Submit(next)
		}
	}()

	start := time.Now()
	log.Printf("[Jobs] Job %d: material %d, alvo %d triângulos",
		req.JobID, req.MaterialID, req.TargetFacets)

	snapshot, err := jm.store.Snapshot()
	if err != nil {
		log.Printf("[Jobs] Job %d: erro no snapshot do volume: %v", req.JobID, err)
		jm.hub.Broadcast(tvnet.TypeMeshResult, &tvnet.MeshResult{
			JobID:   req.JobID,
			Outcome: "snapshot-error",
		})
		return
	}

	workers := int(req.Workers)
	if workers <= 0 {
		workers = jm.cfg.MesherThreads
	}

	// Progresso com throttle: um broadcast por ponto percentual. Workers
	// paralelos reportam concorrentemente, então o filtro usa atomic.
	var lastPct atomic.Int32
	lastPct.Store(-1)
	progress := func(pct int32) {
		if prev := lastPct.Swap(pct); prev == pct {
			return
		}
		jm.hub.Broadcast(tvnet.TypeJobProgress, &tvnet.JobProgress{
			JobID:   req.JobID,
			Percent: pct,
		})
	}

	mesh, err := meshing.GenerateMesh(ctx, snapshot, uint8(req.MaterialID), int(req.TargetFacets), workers, progress)

	outcome := "done"
	if err != nil {
		if ctx.Err() != nil {
			outcome = "cancelled"
		} else {
			log.Printf("[Jobs] Job %d: erro na geração: %v", req.JobID, err)
			jm.hub.Broadcast(tvnet.TypeMeshResult, &tvnet.MeshResult{
				JobID:   req.JobID,
				Outcome: "error",
			})
			return
		}
	}

	payload, err := tvnet.EncodeMeshPayload(mesh)
	if err != nil {
		log.Printf("[Jobs] Job %d: erro ao serializar malha: %v", req.JobID, err)
		jm.hub.Broadcast(tvnet.TypeMeshResult, &tvnet.MeshResult{
			JobID:   req.JobID,
			Outcome: "encode-error",
		})
		return
	}

	log.Printf("[Jobs] Job %d: %s, %d vértices / %d triângulos em %v",
		req.JobID, outcome, mesh.VertexCount(), mesh.TriangleCount(), time.Since(start))

	jm.hub.Broadcast(tvnet.TypeMeshResult, &tvnet.MeshResult{
		JobID:         req.JobID,
		Outcome:       outcome,
		VertexCount:   int32(mesh.VertexCount()),
		TriangleCount: int32(mesh.TriangleCount()),
		VoxelSize:     jm.store.VoxelSize,
		Payload:       payload,
	})

	// O snapshot deixa o volume inteiro residente; devolve a memória
	// evitando reter chunks além do entorno do centro.
	w, h, d := jm.store.Dimensions()
	center := volume.GridCoord{X: w / 2, Y: h / 2, Z: d / 2}
	jm.store.Purge(center, float32(maxDim(w, h, d)/2))
}
