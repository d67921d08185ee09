package simplify

import (
	"runtime"

	"TomoVision/shared/geometry"
	"TomoVision/shared/util"
)

// vertexState é a estrutura de trabalho por vértice de uma execução de
// simplificação: posição corrente, quadric acumulada e flag de remoção.
// Existe exatamente um vertexState por vértice original; o array pertence
// exclusivamente ao pipeline e é descartado após a reconstrução final.
type vertexState struct {
	pos     geometry.Vec3
	quadric geometry.SymmetricMatrix
	removed bool
}

// meshData é a malha de trabalho: índices de triângulo em array plano e um
// array paralelo de validade, ambos mutados in-place durante os colapsos.
// A contagem de triângulos é fixa; a validade só transita 1→0. Durante um
// lote os elementos são acessados via sync/atomic (ver applyCollapse);
// entre fases o join do ParallelFor ordena as leituras simples.
type meshData struct {
	tris  []uint32
	valid []uint32
}

func (md *meshData) triangleCount() int {
	return len(md.valid)
}

// countValid conta os triângulos ainda válidos.
func (md *meshData) countValid() int {
	n := 0
	for _, v := range md.valid {
		if v != 0 {
			n++
		}
	}
	return n
}

// runContext agrega todo o estado compartilhado de uma execução, passado
// explicitamente às tarefas paralelas em vez de capturado em closures.
type runContext struct {
	verts   []vertexState
	md      *meshData
	refs    [][]int32 // vértice → índices dos triângulos incidentes
	workers int

	// Protocolo de bloqueio por vértice: locked[i] indica que algum colapso
	// em andamento detém o vértice i. O array é protegido pelo lockGuard
	// apenas durante a aquisição/liberação dupla, que precisa ser atômica;
	// a mutação do colapso em si acontece sem nenhum lock global.
	lockGuard util.SpinLock
	locked    []bool
}

// newRunContext deriva as estruturas de trabalho de uma malha extraída.
// A malha original não é mutada: uma execução cancelada ainda devolve
// um resultado bem-formado reconstruído a partir destas cópias.
func newRunContext(mesh *geometry.Mesh, workers int) *runContext {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	nv := len(mesh.Vertices)
	nt := len(mesh.Triangles)

	rc := &runContext{
		verts:   make([]vertexState, nv),
		workers: workers,
		locked:  make([]bool, nv),
		refs:    make([][]int32, nv),
	}
	for i, p := range mesh.Vertices {
		rc.verts[i].pos = p
	}

	md := &meshData{
		tris:  make([]uint32, nt*3),
		valid: make([]uint32, nt),
	}
	for i, t := range mesh.Triangles {
		md.tris[i*3+0] = t[0]
		md.tris[i*3+1] = t[1]
		md.tris[i*3+2] = t[2]
		md.valid[i] = 1
		rc.refs[t[0]] = append(rc.refs[t[0]], int32(i))
		rc.refs[t[1]] = append(rc.refs[t[1]], int32(i))
		rc.refs[t[2]] = append(rc.refs[t[2]], int32(i))
	}
	rc.md = md
	return rc
}
