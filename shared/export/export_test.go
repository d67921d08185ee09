package export

import (
	"bytes"
	"strings"
	"testing"

	"TomoVision/shared/geometry"
	"TomoVision/shared/volume"
)

func testMesh() *geometry.Mesh {
	return &geometry.Mesh{
		Vertices: []geometry.Vec3{
			{0, 0, 0}, {1, 0, 0}, {0, 1, 0},
		},
		Triangles: []geometry.Triangle{{0, 1, 2}},
		Normals: []geometry.Vec3{
			{0, 0, 1}, {0, 0, 1}, {0, 0, 1},
		},
	}
}

func TestWriteOBJ(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteOBJ(&buf, testMesh(), Options{Scale: 2, Name: "amostra"}); err != nil {
		t.Fatalf("WriteOBJ: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "o amostra\n") {
		t.Error("nome do objeto ausente")
	}
	// Escala aplicada aos vértices, não às normais
	if !strings.Contains(out, "v 2 0 0\n") {
		t.Errorf("vértice escalado ausente:\n%s", out)
	}
	if !strings.Contains(out, "vn 0 0 1\n") {
		t.Error("normal ausente")
	}
	// Índices baseados em 1, formato v//vn
	if !strings.Contains(out, "f 1//1 2//2 3//3\n") {
		t.Errorf("linha de face incorreta:\n%s", out)
	}
}

func TestWriteOBJWithoutNormals(t *testing.T) {
	mesh := testMesh()
	mesh.Normals = nil

	var buf bytes.Buffer
	if err := WriteOBJ(&buf, mesh, Options{}); err != nil {
		t.Fatalf("WriteOBJ: %v", err)
	}
	out := buf.String()

	if strings.Contains(out, "vn ") {
		t.Error("não deveria emitir normais")
	}
	if !strings.Contains(out, "f 1 2 3\n") {
		t.Errorf("linha de face incorreta:\n%s", out)
	}
}

func TestWriteSTL(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSTL(&buf, testMesh(), Options{Name: "peca"}); err != nil {
		t.Fatalf("WriteSTL: %v", err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "solid peca\n") {
		t.Error("header do solid ausente")
	}
	if !strings.Contains(out, "endsolid peca\n") {
		t.Error("endsolid ausente")
	}
	if got := strings.Count(out, "facet normal"); got != 1 {
		t.Errorf("facets = %d, esperado 1", got)
	}
	if got := strings.Count(out, "vertex "); got != 3 {
		t.Errorf("vértices = %d, esperado 3", got)
	}
	// Triângulo CCW no plano XY: normal de face +Z
	if !strings.Contains(out, "facet normal 0 0 1\n") {
		t.Errorf("normal de face incorreta:\n%s", out)
	}
}

func TestWritePLY(t *testing.T) {
	var buf bytes.Buffer
	color := volume.Color{R: 200, G: 100, B: 50, A: 255}
	if err := WritePLY(&buf, testMesh(), color, Options{}); err != nil {
		t.Fatalf("WritePLY: %v", err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "ply\nformat ascii 1.0\n") {
		t.Error("header PLY ausente")
	}
	if !strings.Contains(out, "element vertex 3\n") {
		t.Error("contagem de vértices incorreta")
	}
	if !strings.Contains(out, "element face 1\n") {
		t.Error("contagem de faces incorreta")
	}
	if !strings.Contains(out, "property float nx\n") {
		t.Error("propriedades de normal ausentes")
	}
	if !strings.Contains(out, "0 0 0 0 0 1 200 100 50\n") {
		t.Errorf("linha de vértice incorreta:\n%s", out)
	}
	if !strings.Contains(out, "3 0 1 2\n") {
		t.Error("linha de face ausente")
	}
}

func TestWritePLYWithoutNormals(t *testing.T) {
	mesh := testMesh()
	mesh.Normals = nil

	var buf bytes.Buffer
	if err := WritePLY(&buf, mesh, volume.Color{R: 1, G: 2, B: 3}, Options{}); err != nil {
		t.Fatalf("WritePLY: %v", err)
	}
	out := buf.String()

	if strings.Contains(out, "property float nx") {
		t.Error("não deveria declarar normais")
	}
	if !strings.Contains(out, "0 0 0 1 2 3\n") {
		t.Errorf("linha de vértice incorreta:\n%s", out)
	}
}

func TestOptionsNormalize(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSTL(&buf, &geometry.Mesh{}, Options{}); err != nil {
		t.Fatalf("WriteSTL: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "solid tomovision\n") {
		t.Errorf("nome default ausente: %q", buf.String())
	}
}
