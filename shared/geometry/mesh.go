package geometry

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Vec3 é um alias para mgl32.Vec3 para conveniência.
type Vec3 = mgl32.Vec3

// Triangle guarda os três índices de vértice de uma face, em ordem anti-horária
// (CCW) vista de fora da superfície.
type Triangle [3]uint32

// Mesh representa uma malha triangular indexada com índices baseados em zero.
// Normals é opcional; quando presente, é paralelo a Vertices.
type Mesh struct {
	Vertices  []Vec3
	Triangles []Triangle
	Normals   []Vec3
}

// VertexCount retorna o número de vértices da malha.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount retorna o número de triângulos (facetas) da malha.
func (m *Mesh) TriangleCount() int {
	return len(m.Triangles)
}

// Clone cria uma cópia profunda da malha para evitar corrupção por mutação externa.
func (m *Mesh) Clone() *Mesh {
	clone := &Mesh{}
	if len(m.Vertices) > 0 {
		clone.Vertices = make([]Vec3, len(m.Vertices))
		copy(clone.Vertices, m.Vertices)
	}
	if len(m.Triangles) > 0 {
		clone.Triangles = make([]Triangle, len(m.Triangles))
		copy(clone.Triangles, m.Triangles)
	}
	if len(m.Normals) > 0 {
		clone.Normals = make([]Vec3, len(m.Normals))
		copy(clone.Normals, m.Normals)
	}
	return clone
}

// Validate verifica os invariantes estruturais: todo índice de triângulo
// aponta para um vértice existente.
func (m *Mesh) Validate() error {
	n := uint32(len(m.Vertices))
	for i, t := range m.Triangles {
		for _, idx := range t {
			if idx >= n {
				return fmt.Errorf("triângulo %d referencia o vértice %d (malha tem %d vértices)", i, idx, n)
			}
		}
	}
	if len(m.Normals) > 0 && len(m.Normals) != len(m.Vertices) {
		return fmt.Errorf("malha tem %d normais para %d vértices", len(m.Normals), len(m.Vertices))
	}
	return nil
}

// Bounds retorna a caixa delimitadora alinhada aos eixos da malha.
// Para malha vazia retorna (zero, zero).
func (m *Mesh) Bounds() (min, max Vec3) {
	if len(m.Vertices) == 0 {
		return
	}
	min = m.Vertices[0]
	max = m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		for i := 0; i < 3; i++ {
			if v[i] < min[i] {
				min[i] = v[i]
			}
			if v[i] > max[i] {
				max[i] = v[i]
			}
		}
	}
	return
}

// FaceNormal retorna a normal NÃO normalizada do triângulo t
// (produto vetorial das arestas; o comprimento é 2x a área da face).
func (m *Mesh) FaceNormal(t Triangle) Vec3 {
	p0 := m.Vertices[t[0]]
	e1 := m.Vertices[t[1]].Sub(p0)
	e2 := m.Vertices[t[2]].Sub(p0)
	return e1.Cross(e2)
}
