package simplify

import (
	"TomoVision/shared/geometry"
)

// compact reconstrói uma malha contígua a partir do estado de trabalho:
// só vértices ainda referenciados e triângulos válidos sobrevivem, com os
// índices remapeados e as normais por vértice recalculadas. O resultado é
// sempre bem-formado, inclusive quando a execução foi interrompida.
func (rc *runContext) compact() *geometry.Mesh {
	remap := make([]uint32, len(rc.verts))
	for i := range remap {
		remap[i] = ^uint32(0)
	}

	out := &geometry.Mesh{}
	nt := rc.md.triangleCount()
	out.Triangles = make([]geometry.Triangle, 0, rc.md.countValid())

	for ti := 0; ti < nt; ti++ {
		if rc.md.valid[ti] == 0 {
			continue
		}
		var t geometry.Triangle
		for k := 0; k < 3; k++ {
			old := rc.md.tris[ti*3+k]
			if remap[old] == ^uint32(0) {
				remap[old] = uint32(len(out.Vertices))
				out.Vertices = append(out.Vertices, rc.verts[old].pos)
			}
			t[k] = remap[old]
		}
		out.Triangles = append(out.Triangles, t)
	}

	ComputeNormals(out)
	return out
}

// ComputeNormals recalcula as normais por vértice: soma das normais de face
// (ponderadas pela área, já que o produto vetorial não é normalizado) e
// normalização final. Vértices sem faces incidentes ficam com normal zero.
func ComputeNormals(m *geometry.Mesh) {
	m.Normals = make([]geometry.Vec3, len(m.Vertices))
	for _, t := range m.Triangles {
		n := m.FaceNormal(t)
		m.Normals[t[0]] = m.Normals[t[0]].Add(n)
		m.Normals[t[1]] = m.Normals[t[1]].Add(n)
		m.Normals[t[2]] = m.Normals[t[2]].Add(n)
	}
	for i, n := range m.Normals {
		if l := n.Len(); l > 1e-12 {
			m.Normals[i] = n.Mul(1 / l)
		}
	}
}
