package render

/*
#include <stdlib.h>
*/
import "C"

import (
	"log"
	"unsafe"

	"TomoVision/shared/geometry"
	"TomoVision/shared/volume"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Renderer mantém o modelo GPU da malha corrente e o estado de desenho.
// Todas as chamadas devem acontecer na thread principal (contexto GL).
type Renderer struct {
	model     rl.Model
	hasModel  bool
	Wireframe bool

	// VoxelSize escala o modelo para unidades físicas no desenho.
	VoxelSize float32
}

func NewRenderer() *Renderer {
	return &Renderer{VoxelSize: 1.0}
}

// UploadMesh substitui o modelo corrente pela malha recebida, pintada com
// a cor do material. A malha anterior é descarregada da GPU.
func (r *Renderer) UploadMesh(m *geometry.Mesh, color volume.Color) {
	r.Unload()
	if m == nil || len(m.Triangles) == 0 {
		return
	}

	mesh := r.meshToRL(m, color)
	rl.UploadMesh(&mesh, false)
	r.freeMeshRAM(&mesh)
	r.model = rl.LoadModelFromMesh(mesh)
	r.hasModel = true
	log.Printf("[Renderer] Malha carregada: %d triângulos", len(m.Triangles))
}

// meshToRL achata a malha indexada para o formato do raylib (soup de
// triângulos, sem índices): posição, normal e cor por canto. Sem índices
// não há o limite de 65k vértices do índice uint16 do raylib.
func (r *Renderer) meshToRL(m *geometry.Mesh, color volume.Color) rl.Mesh {
	nt := len(m.Triangles)
	verts := make([]float32, 0, nt*9)
	normals := make([]float32, 0, nt*9)
	colors := make([]uint8, 0, nt*12)

	hasNormals := len(m.Normals) == len(m.Vertices)
	for _, t := range m.Triangles {
		for k := 0; k < 3; k++ {
			v := m.Vertices[t[k]]
			verts = append(verts, v[0], v[1], v[2])
			if hasNormals {
				n := m.Normals[t[k]]
				normals = append(normals, n[0], n[1], n[2])
			} else {
				normals = append(normals, 0, 1, 0)
			}
			colors = append(colors, color.R, color.G, color.B, 255)
		}
	}

	var mesh rl.Mesh
	mesh.VertexCount = int32(nt * 3)
	mesh.TriangleCount = int32(nt)
	mesh.Vertices = (*float32)(r.copyToC(unsafe.Pointer(&verts[0]), len(verts)*4))
	mesh.Normals = (*float32)(r.copyToC(unsafe.Pointer(&normals[0]), len(normals)*4))
	mesh.Colors = (*uint8)(r.copyToC(unsafe.Pointer(&colors[0]), len(colors)))
	return mesh
}

func (r *Renderer) copyToC(data unsafe.Pointer, size int) unsafe.Pointer {
	if size <= 0 || data == nil {
		return nil
	}
	ptr := C.malloc(C.size_t(size))
	if ptr == nil {
		return nil
	}
	cSlice := unsafe.Slice((*byte)(ptr), size)
	goSlice := unsafe.Slice((*byte)(data), size)
	copy(cSlice, goSlice)
	return ptr
}

// freeMeshRAM libera a memória principal (C) associada a uma malha após o upload para a GPU.
func (r *Renderer) freeMeshRAM(mesh *rl.Mesh) {
	if mesh.Vertices != nil {
		C.free(unsafe.Pointer(mesh.Vertices))
		mesh.Vertices = nil
	}
	if mesh.Normals != nil {
		C.free(unsafe.Pointer(mesh.Normals))
		mesh.Normals = nil
	}
	if mesh.Colors != nil {
		C.free(unsafe.Pointer(mesh.Colors))
		mesh.Colors = nil
	}
}

// Draw desenha o modelo corrente na cena 3D.
func (r *Renderer) Draw() {
	if !r.hasModel {
		return
	}
	scale := r.VoxelSize
	if scale <= 0 {
		scale = 1
	}
	if r.Wireframe {
		rl.DrawModelWires(r.model, rl.Vector3{}, scale, rl.White)
	} else {
		rl.DrawModel(r.model, rl.Vector3{}, scale, rl.White)
	}
}

// Unload descarrega o modelo corrente da GPU.
func (r *Renderer) Unload() {
	if r.hasModel {
		rl.UnloadModel(r.model)
		r.hasModel = false
	}
}
