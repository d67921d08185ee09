package export

import (
	"bufio"
	"fmt"
	"io"

	"TomoVision/shared/geometry"
)

// WriteSTL escreve a malha em STL ASCII. O formato não compartilha
// vértices: cada facet carrega os três vértices e a normal de face,
// recalculada aqui (normalizada; faces degeneradas saem com normal zero).
func WriteSTL(w io.Writer, m *geometry.Mesh, opts Options) error {
	opts.normalize()
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "solid %s\n", opts.Name)
	s := opts.Scale
	for _, t := range m.Triangles {
		a, b, c := m.Vertices[t[0]], m.Vertices[t[1]], m.Vertices[t[2]]
		n := m.FaceNormal(t)
		if l := n.Len(); l > 1e-12 {
			n = n.Mul(1 / l)
		} else {
			n = geometry.Vec3{}
		}
		fmt.Fprintf(bw, "  facet normal %g %g %g\n", n[0], n[1], n[2])
		fmt.Fprintf(bw, "    outer loop\n")
		fmt.Fprintf(bw, "      vertex %g %g %g\n", a[0]*s, a[1]*s, a[2]*s)
		fmt.Fprintf(bw, "      vertex %g %g %g\n", b[0]*s, b[1]*s, b[2]*s)
		fmt.Fprintf(bw, "      vertex %g %g %g\n", c[0]*s, c[1]*s, c[2]*s)
		fmt.Fprintf(bw, "    endloop\n")
		fmt.Fprintf(bw, "  endfacet\n")
	}
	fmt.Fprintf(bw, "endsolid %s\n", opts.Name)
	return bw.Flush()
}
