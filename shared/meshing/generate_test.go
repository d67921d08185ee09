package meshing

import (
	"context"
	"testing"

	"TomoVision/shared/volume"
)

func TestGenerateMeshNilVolume(t *testing.T) {
	if _, err := GenerateMesh(context.Background(), nil, 1, 100, 2, nil); err == nil {
		t.Fatal("volume nil deveria retornar erro")
	}
}

func TestGenerateMeshEmptyMaterial(t *testing.T) {
	vol := volume.NewLabelVolume(8, 8, 8, 1.0)
	vol.FillBox(2, 2, 2, 6, 6, 6, 1)

	// Material 5 não existe no volume: malha vazia é resultado válido
	mesh, err := GenerateMesh(context.Background(), vol, 5, 100, 2, nil)
	if err != nil {
		t.Fatalf("GenerateMesh: %v", err)
	}
	if mesh.TriangleCount() != 0 {
		t.Errorf("triângulos = %d, esperado 0", mesh.TriangleCount())
	}
}

func TestGenerateMeshNoDecimation(t *testing.T) {
	vol := volume.NewLabelVolume(4, 4, 4, 1.0)
	vol.SetLabel(1, 1, 1, 1)
	vol.SetLabel(2, 2, 2, 1)

	// targetFacets <= 0 desliga a decimação
	mesh, err := GenerateMesh(context.Background(), vol, 1, 0, 2, nil)
	if err != nil {
		t.Fatalf("GenerateMesh: %v", err)
	}
	if got := mesh.TriangleCount(); got != 24 {
		t.Errorf("triângulos = %d, esperado 24 (sem decimação)", got)
	}
	if len(mesh.Normals) != mesh.VertexCount() {
		t.Errorf("normais ausentes: %d para %d vértices", len(mesh.Normals), mesh.VertexCount())
	}
}

func TestGenerateMeshIdempotentWhenUnderTarget(t *testing.T) {
	vol := volume.NewLabelVolume(3, 3, 3, 1.0)
	vol.SetLabel(1, 1, 1, 1)

	// 12 triângulos já estão abaixo do alvo: malha fica intacta
	mesh, err := GenerateMesh(context.Background(), vol, 1, 1000, 2, nil)
	if err != nil {
		t.Fatalf("GenerateMesh: %v", err)
	}
	if got := mesh.TriangleCount(); got != 12 {
		t.Errorf("triângulos = %d, esperado 12", got)
	}
}

func TestGenerateMeshDecimation(t *testing.T) {
	vol := volume.SyntheticPhantom(48, 1.0)
	target := 2000

	mesh, err := GenerateMesh(context.Background(), vol, 1, target, 4, nil)
	if err != nil {
		t.Fatalf("GenerateMesh: %v", err)
	}
	if err := mesh.Validate(); err != nil {
		t.Fatalf("malha decimada inválida: %v", err)
	}

	full, err := GenerateMesh(context.Background(), vol, 1, 0, 4, nil)
	if err != nil {
		t.Fatalf("GenerateMesh sem decimação: %v", err)
	}

	if mesh.TriangleCount() >= full.TriangleCount() {
		t.Errorf("decimação não reduziu: %d >= %d", mesh.TriangleCount(), full.TriangleCount())
	}

	// A malha decimada permanece perto do bounding box original (a posição
	// ótima do colapso pode sair marginalmente da superfície em escada)
	fullMin, fullMax := full.Bounds()
	decMin, decMax := mesh.Bounds()
	const slack = 0.5
	for i := 0; i < 3; i++ {
		if decMin[i] < fullMin[i]-slack || decMax[i] > fullMax[i]+slack {
			t.Errorf("eixo %d: bounds decimados [%g, %g] fora de [%g, %g]",
				i, decMin[i], decMax[i], fullMin[i], fullMax[i])
		}
	}
}

func TestGenerateMeshProgress(t *testing.T) {
	vol := volume.SyntheticPhantom(32, 1.0)

	var reports []int32
	progress := func(pct int32) { reports = append(reports, pct) }

	// workers=1 mantém os reports ordenados para a verificação
	_, err := GenerateMesh(context.Background(), vol, 1, 500, 1, progress)
	if err != nil {
		t.Fatalf("GenerateMesh: %v", err)
	}

	if len(reports) == 0 {
		t.Fatal("nenhum progresso reportado")
	}
	last := int32(-1)
	for _, pct := range reports {
		if pct < last {
			t.Fatalf("progresso regrediu: %d depois de %d", pct, last)
		}
		if pct < 0 || pct > 100 {
			t.Fatalf("progresso fora da faixa: %d", pct)
		}
		last = pct
	}
	if last != 100 {
		t.Errorf("progresso final = %d, esperado 100", last)
	}
}

func TestGenerateMeshCancelled(t *testing.T) {
	vol := volume.SyntheticPhantom(48, 1.0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := GenerateMesh(ctx, vol, 1, 1000, 2, nil); err == nil {
		t.Fatal("pipeline cancelado deveria retornar erro")
	}
}
