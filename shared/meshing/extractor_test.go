package meshing

import (
	"context"
	"testing"

	"TomoVision/shared/geometry"
	"TomoVision/shared/volume"
)

func extract(t *testing.T, vol *volume.LabelVolume, material uint8) *geometry.Mesh {
	t.Helper()
	mesh, err := Extract(context.Background(), volume.NewMaterialMask(vol, material), 4, nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if err := mesh.Validate(); err != nil {
		t.Fatalf("malha inválida: %v", err)
	}
	return mesh
}

func TestExtractSingleVoxel(t *testing.T) {
	vol := volume.NewLabelVolume(3, 3, 3, 1.0)
	vol.SetLabel(1, 1, 1, 1)

	mesh := extract(t, vol, 1)

	if got := mesh.TriangleCount(); got != 12 {
		t.Errorf("triângulos = %d, esperado 12", got)
	}
	if got := mesh.VertexCount(); got != 8 {
		t.Errorf("vértices = %d, esperado 8", got)
	}
}

func TestExtractSingleVoxelWinding(t *testing.T) {
	vol := volume.NewLabelVolume(3, 3, 3, 1.0)
	vol.SetLabel(1, 1, 1, 1)

	mesh := extract(t, vol, 1)

	// Toda face de um cubo convexo aponta para longe do centro
	center := geometry.Vec3{1.5, 1.5, 1.5}
	for i, tri := range mesh.Triangles {
		n := mesh.FaceNormal(tri)
		a := mesh.Vertices[tri[0]]
		b := mesh.Vertices[tri[1]]
		c := mesh.Vertices[tri[2]]
		centroid := a.Add(b).Add(c).Mul(1.0 / 3.0)
		if n.Dot(centroid.Sub(center)) <= 0 {
			t.Errorf("triângulo %d com winding invertido (normal %v)", i, n)
		}
	}
}

func TestExtractSolidCube(t *testing.T) {
	vol := volume.NewLabelVolume(12, 12, 12, 1.0)
	vol.FillBox(1, 1, 1, 11, 11, 11, 1)

	mesh := extract(t, vol, 1)

	// Cubo 10³: 6 lados x 100 quads x 2 triângulos
	if got := mesh.TriangleCount(); got != 1200 {
		t.Errorf("triângulos = %d, esperado 1200", got)
	}
	// Pontos de grade na casca: 11³ - 9³
	if got := mesh.VertexCount(); got != 602 {
		t.Errorf("vértices = %d, esperado 602", got)
	}
}

func TestExtractHollowShell(t *testing.T) {
	vol := volume.NewLabelVolume(5, 5, 5, 1.0)
	vol.FillBox(1, 1, 1, 4, 4, 4, 1)
	vol.SetLabel(2, 2, 2, 0) // poro central

	mesh := extract(t, vol, 1)

	// Casca externa 6x9 quads + poro interno 6 quads = 60 quads
	if got := mesh.TriangleCount(); got != 120 {
		t.Errorf("triângulos = %d, esperado 120", got)
	}
}

func TestExtractMaterialBoundary(t *testing.T) {
	// Dois materiais adjacentes: a interface entre eles também é superfície
	vol := volume.NewLabelVolume(4, 3, 3, 1.0)
	vol.SetLabel(1, 1, 1, 1)
	vol.SetLabel(2, 1, 1, 2)

	mesh := extract(t, vol, 1)
	if got := mesh.TriangleCount(); got != 12 {
		t.Errorf("triângulos do material 1 = %d, esperado 12 (interface conta)", got)
	}
}

func TestExtractVolumeEdge(t *testing.T) {
	// Voxel colado na borda do volume: faces externas ainda são emitidas
	vol := volume.NewLabelVolume(1, 1, 1, 1.0)
	vol.SetLabel(0, 0, 0, 1)

	mesh := extract(t, vol, 1)
	if got := mesh.TriangleCount(); got != 12 {
		t.Errorf("triângulos = %d, esperado 12", got)
	}
}

func TestExtractEmpty(t *testing.T) {
	vol := volume.NewLabelVolume(4, 4, 4, 1.0)

	mesh := extract(t, vol, 1)
	if mesh.TriangleCount() != 0 || mesh.VertexCount() != 0 {
		t.Errorf("volume vazio produziu %d vértices / %d triângulos",
			mesh.VertexCount(), mesh.TriangleCount())
	}
}

func TestExtractCancelled(t *testing.T) {
	vol := volume.NewLabelVolume(16, 16, 16, 1.0)
	vol.FillBox(0, 0, 0, 16, 16, 16, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mesh, err := Extract(ctx, volume.NewMaterialMask(vol, 1), 2, nil)
	if err == nil {
		t.Fatal("extração cancelada deveria retornar erro")
	}
	// A malha parcial devolvida ainda precisa ser consistente
	if mesh == nil {
		t.Fatal("malha parcial nil")
	}
	if err := mesh.Validate(); err != nil {
		t.Errorf("malha parcial inválida: %v", err)
	}
}

func TestExtractSharedVertices(t *testing.T) {
	// Dois voxels adjacentes compartilham os 4 vértices da face comum
	vol := volume.NewLabelVolume(4, 3, 3, 1.0)
	vol.SetLabel(1, 1, 1, 1)
	vol.SetLabel(2, 1, 1, 1)

	mesh := extract(t, vol, 1)

	// Paralelepípedo 2x1x1: 10 quads = 20 triângulos, 12 vértices
	if got := mesh.TriangleCount(); got != 20 {
		t.Errorf("triângulos = %d, esperado 20", got)
	}
	if got := mesh.VertexCount(); got != 12 {
		t.Errorf("vértices = %d, esperado 12", got)
	}
}
