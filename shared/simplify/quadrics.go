package simplify

import (
	"TomoVision/shared/geometry"
	"TomoVision/shared/util"
)

// accumulateQuadrics calcula a quadric de erro de cada vértice: a soma das
// quadrics dos planos de todos os triângulos incidentes.
//
// Duas fases: a primeira computa uma quadric por triângulo em paralelo
// (cada worker escreve índices disjuntos, sem corrida); a segunda reduz
// por vértice sequencialmente, varrendo os triângulos uma única vez.
// Triângulos degenerados contribuem com quadric zero.
func accumulateQuadrics(rc *runContext) {
	nt := rc.md.triangleCount()
	triQ := make([]geometry.SymmetricMatrix, nt)

	util.ParallelFor(rc.workers, nt, func(start, end int) {
		for ti := start; ti < end; ti++ {
			if rc.md.valid[ti] == 0 {
				continue
			}
			i0 := rc.md.tris[ti*3+0]
			i1 := rc.md.tris[ti*3+1]
			i2 := rc.md.tris[ti*3+2]
			triQ[ti] = geometry.TriangleQuadric(
				rc.verts[i0].pos,
				rc.verts[i1].pos,
				rc.verts[i2].pos,
			)
		}
	})

	for ti := 0; ti < nt; ti++ {
		if rc.md.valid[ti] == 0 {
			continue
		}
		q := &triQ[ti]
		rc.verts[rc.md.tris[ti*3+0]].quadric.Accumulate(*q)
		rc.verts[rc.md.tris[ti*3+1]].quadric.Accumulate(*q)
		rc.verts[rc.md.tris[ti*3+2]].quadric.Accumulate(*q)
	}
}
