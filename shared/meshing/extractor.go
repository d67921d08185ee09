package meshing

import (
	"context"

	"TomoVision/shared/geometry"
	"TomoVision/shared/util"
	"TomoVision/shared/volume"
)

// Direções de face de um voxel. A ordem define o layout das tabelas abaixo.
const (
	facePosX = iota
	faceNegX
	facePosY
	faceNegY
	facePosZ
	faceNegZ
	faceCount
)

// faceOffsets dá o vizinho testado para cada direção: a face só é emitida
// quando esse vizinho está vazio.
var faceOffsets = [faceCount][3]int32{
	{+1, 0, 0},
	{-1, 0, 0},
	{0, +1, 0},
	{0, -1, 0},
	{0, 0, +1},
	{0, 0, -1},
}

// faceCorners lista os 4 cantos do quad de cada face em ordem anti-horária
// vista de fora do voxel, como offsets a partir do canto mínimo (x,y,z).
// O quad vira dois triângulos: (0,1,2) e (0,2,3).
var faceCorners = [faceCount][4][3]int32{
	facePosX: {{1, 0, 0}, {1, 1, 0}, {1, 1, 1}, {1, 0, 1}},
	faceNegX: {{0, 0, 0}, {0, 0, 1}, {0, 1, 1}, {0, 1, 0}},
	facePosY: {{0, 1, 0}, {0, 1, 1}, {1, 1, 1}, {1, 1, 0}},
	faceNegY: {{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}},
	facePosZ: {{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}},
	faceNegZ: {{0, 0, 0}, {0, 1, 0}, {1, 1, 0}, {1, 0, 0}},
}

// faceRec registra uma face exposta encontrada na varredura paralela,
// emitida depois na fase sequencial de deduplicação.
type faceRec struct {
	x, y, z int32
	dir     uint8
}

// Extract varre a máscara de material e constrói a malha das faces expostas:
// cada voxel ocupado com vizinho vazio contribui um quad (dois triângulos)
// com enrolamento anti-horário visto de fora. Vértices no reticulado inteiro
// são compartilhados entre faces via deduplicação por coordenada.
//
// O grid de ocupação é construído com uma borda de 1 voxel vazio em todos
// os lados, então voxels na fronteira do volume expõem faces sem nenhum
// tratamento especial de limite.
//
// Cancelamento é cooperativo: a função testa ctx entre fatias e devolve a
// malha parcial construída até então junto com ctx.Err().
func Extract(ctx context.Context, mask *volume.MaterialMask, workers int, progress *util.StageReporter) (*geometry.Mesh, error) {
	w, h, d := mask.Dimensions()
	mesh := &geometry.Mesh{}
	if w <= 0 || h <= 0 || d <= 0 {
		progress.Done()
		return mesh, nil
	}

	pw, ph := int(w)+2, int(h)+2
	pidx := func(x, y, z int32) int {
		return ((int(z)+1)*ph+(int(y)+1))*pw + int(x) + 1
	}

	// Fase 1: ocupação com borda. Fatias em z são disjuntas entre workers.
	occ := make([]bool, pw*ph*(int(d)+2))
	util.ParallelFor(workers, int(d), func(start, end int) {
		for z := int32(start); z < int32(end); z++ {
			for y := int32(0); y < h; y++ {
				for x := int32(0); x < w; x++ {
					occ[pidx(x, y, z)] = mask.Occupied(x, y, z)
				}
			}
		}
	})
	if ctx.Err() != nil {
		return mesh, ctx.Err()
	}
	progress.Report(0.2)

	// Fase 2: coleta paralela das faces expostas, um buffer por fatia z.
	slices := make([][]faceRec, d)
	util.ParallelFor(workers, int(d), func(start, end int) {
		for z := int32(start); z < int32(end); z++ {
			if ctx.Err() != nil {
				return
			}
			var recs []faceRec
			for y := int32(0); y < h; y++ {
				for x := int32(0); x < w; x++ {
					if !occ[pidx(x, y, z)] {
						continue
					}
					for dir := uint8(0); dir < faceCount; dir++ {
						o := &faceOffsets[dir]
						if !occ[pidx(x+o[0], y+o[1], z+o[2])] {
							recs = append(recs, faceRec{x: x, y: y, z: z, dir: dir})
						}
					}
				}
			}
			slices[z] = recs
		}
	})
	if ctx.Err() != nil {
		return mesh, ctx.Err()
	}
	progress.Report(0.5)

	// Fase 3: emissão sequencial em ordem de fatia, com deduplicação de
	// vértices por coordenada inteira do reticulado.
	seen := make(map[volume.GridCoord]uint32)
	vertexAt := func(x, y, z int32) uint32 {
		key := volume.GridCoord{X: x, Y: y, Z: z}
		if idx, ok := seen[key]; ok {
			return idx
		}
		idx := uint32(len(mesh.Vertices))
		seen[key] = idx
		mesh.Vertices = append(mesh.Vertices, geometry.Vec3{float32(x), float32(y), float32(z)})
		return idx
	}

	for z := int32(0); z < d; z++ {
		if z%8 == 0 && ctx.Err() != nil {
			return mesh, ctx.Err()
		}
		for _, rec := range slices[z] {
			corners := &faceCorners[rec.dir]
			var q [4]uint32
			for k := 0; k < 4; k++ {
				c := &corners[k]
				q[k] = vertexAt(rec.x+c[0], rec.y+c[1], rec.z+c[2])
			}
			mesh.Triangles = append(mesh.Triangles,
				geometry.Triangle{q[0], q[1], q[2]},
				geometry.Triangle{q[0], q[2], q[3]},
			)
		}
		progress.Report(0.5 + 0.5*float64(z+1)/float64(d))
	}

	progress.Done()
	return mesh, nil
}
