// Package meshing converte volumes rotulados em malhas triangulares:
// extração de superfície por face culling binário seguida de decimação
// QEM até a contagem de triângulos desejada.
package meshing

import (
	"context"
	"fmt"
	"log"
	"time"

	"TomoVision/shared/geometry"
	"TomoVision/shared/simplify"
	"TomoVision/shared/util"
	"TomoVision/shared/volume"
)

// GenerateMesh roda o pipeline completo para um material: extrai a
// superfície dos voxels com o rótulo materialID e decima a malha até
// cerca de targetFacets triângulos. targetFacets <= 0 desativa a
// decimação (a malha extraída sai com normais, sem colapsos).
//
// progress recebe valores monotônicos de 0 a 100 (extração ocupa a
// primeira metade, decimação a segunda); pode ser nil.
//
// O cancelamento via ctx é cooperativo: a chamada devolve a melhor malha
// parcial disponível — sempre estruturalmente válida — junto com ctx.Err().
func GenerateMesh(ctx context.Context, vol volume.VolumeReader, materialID uint8, targetFacets int, workers int, progress util.ProgressFunc) (*geometry.Mesh, error) {
	if vol == nil {
		return nil, fmt.Errorf("meshing: volume nulo")
	}
	w, h, d := vol.Dimensions()
	if w < 0 || h < 0 || d < 0 {
		return nil, fmt.Errorf("meshing: dimensões inválidas %dx%dx%d", w, h, d)
	}

	start := time.Now()
	mask := volume.NewMaterialMask(vol, materialID)

	extractProg := util.NewStageReporter(progress, 0, 50)
	mesh, err := Extract(ctx, mask, workers, extractProg)
	if err != nil {
		return mesh, err
	}

	simplifyProg := util.NewStageReporter(progress, 50, 50)
	if len(mesh.Triangles) == 0 {
		// Material ausente do volume: malha vazia é um resultado válido.
		simplifyProg.Done()
		log.Printf("[Meshing] Material %d sem voxels expostos em %dx%dx%d", materialID, w, h, d)
		return mesh, nil
	}

	if targetFacets <= 0 {
		simplify.ComputeNormals(mesh)
		simplifyProg.Done()
		log.Printf("[Meshing] Material %d: %d triângulos (sem decimação) em %v",
			materialID, len(mesh.Triangles), time.Since(start))
		return mesh, nil
	}

	result, outcome := simplify.Run(ctx, mesh, simplify.Options{
		TargetFacets: targetFacets,
		Workers:      workers,
	}, simplifyProg)

	log.Printf("[Meshing] Material %d: %d -> %d triângulos (%s) em %v",
		materialID, len(mesh.Triangles), len(result.Triangles), outcome, time.Since(start))

	if outcome == simplify.OutcomeCancelled {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		return result, context.Canceled
	}
	return result, nil
}
