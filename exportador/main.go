// Exportador de linha de comando: gera a malha de um material do volume
// (banco SQLite ou phantom sintético) e grava em OBJ, STL ou PLY.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"TomoVision/shared/export"
	"TomoVision/shared/geometry"
	"TomoVision/shared/meshing"
	"TomoVision/shared/volume"
)

func main() {
	log.SetFlags(log.Ltime)

	dbPath := flag.String("db", "", "banco de volume SQLite (vazio = phantom sintético)")
	phantomSize := flag.Int("phantom", 96, "tamanho do phantom sintético quando não há banco")
	materialID := flag.Int("material", 1, "rótulo do material a extrair (1-255)")
	target := flag.Int("target", 100000, "alvo de triângulos (0 desativa a decimação)")
	workers := flag.Int("workers", 0, "goroutines de trabalho (0 = NumCPU)")
	output := flag.String("o", "mesh.obj", "arquivo de saída (.obj, .stl ou .ply)")
	flag.Parse()

	if *materialID < 1 || *materialID > 255 {
		log.Fatalf("Material inválido: %d (esperado 1-255)", *materialID)
	}

	// Ctrl-C cancela cooperativamente; a malha parcial ainda é gravada.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var vol volume.VolumeReader
	materials := volume.NewMaterialStore()

	if *dbPath != "" {
		store := volume.NewVolumeStore(0, 0, 0, 1.0)
		if err := store.OpenInitialize(*dbPath); err != nil {
			log.Fatalf("Erro ao abrir %s: %v", *dbPath, err)
		}
		defer store.Close()
		if err := store.LoadMaterials(materials); err != nil {
			log.Printf("Aviso: paleta não carregada: %v", err)
		}
		snapshot, err := store.Snapshot()
		if err != nil {
			log.Fatalf("Erro no snapshot do volume: %v", err)
		}
		vol = snapshot
	} else {
		log.Printf("Sem banco: usando phantom sintético %d³", *phantomSize)
		vol = volume.SyntheticPhantom(int32(*phantomSize), 1.0)
	}

	w, h, d := vol.Dimensions()
	log.Printf("Volume %dx%dx%d, material %d, alvo %d", w, h, d, *materialID, *target)

	progress := func(pct int32) {
		if pct%10 == 0 {
			log.Printf("  %d%%", pct)
		}
	}

	mesh, err := meshing.GenerateMesh(ctx, vol, uint8(*materialID), *target, *workers, progress)
	if err != nil {
		if ctx.Err() != nil {
			log.Printf("Cancelado: gravando malha parcial (%d triângulos)", len(mesh.Triangles))
		} else {
			log.Fatalf("Erro na geração: %v", err)
		}
	}

	if len(mesh.Triangles) == 0 {
		log.Fatalf("Material %d não possui voxels expostos; nada a exportar", *materialID)
	}

	voxelSize := float32(1.0)
	if lv, ok := vol.(*volume.LabelVolume); ok && lv.VoxelSize > 0 {
		voxelSize = lv.VoxelSize
	}

	if err := writeMesh(*output, mesh, materials.Color(uint8(*materialID)), voxelSize); err != nil {
		log.Fatalf("Erro ao gravar %s: %v", *output, err)
	}
	log.Printf("Gravado %s: %d vértices, %d triângulos", *output, len(mesh.Vertices), len(mesh.Triangles))
}

func writeMesh(path string, mesh *geometry.Mesh, color volume.Color, voxelSize float32) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	opts := export.Options{Scale: voxelSize, Name: name}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return export.WriteOBJ(f, mesh, opts)
	case ".stl":
		return export.WriteSTL(f, mesh, opts)
	case ".ply":
		return export.WritePLY(f, mesh, color, opts)
	default:
		return fmt.Errorf("formato não suportado: %s", filepath.Ext(path))
	}
}
