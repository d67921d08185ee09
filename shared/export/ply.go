package export

import (
	"bufio"
	"fmt"
	"io"

	"TomoVision/shared/geometry"
	"TomoVision/shared/volume"
)

// WritePLY escreve a malha em PLY ASCII com cor uniforme por vértice
// (a cor do material na paleta). Normais são incluídas quando presentes.
func WritePLY(w io.Writer, m *geometry.Mesh, color volume.Color, opts Options) error {
	opts.normalize()
	bw := bufio.NewWriter(w)

	hasNormals := len(m.Normals) == len(m.Vertices)

	fmt.Fprintf(bw, "ply\n")
	fmt.Fprintf(bw, "format ascii 1.0\n")
	fmt.Fprintf(bw, "comment TomoVision %s\n", opts.Name)
	fmt.Fprintf(bw, "element vertex %d\n", len(m.Vertices))
	fmt.Fprintf(bw, "property float x\nproperty float y\nproperty float z\n")
	if hasNormals {
		fmt.Fprintf(bw, "property float nx\nproperty float ny\nproperty float nz\n")
	}
	fmt.Fprintf(bw, "property uchar red\nproperty uchar green\nproperty uchar blue\n")
	fmt.Fprintf(bw, "element face %d\n", len(m.Triangles))
	fmt.Fprintf(bw, "property list uchar int vertex_indices\n")
	fmt.Fprintf(bw, "end_header\n")

	s := opts.Scale
	for i, v := range m.Vertices {
		if hasNormals {
			n := m.Normals[i]
			fmt.Fprintf(bw, "%g %g %g %g %g %g %d %d %d\n",
				v[0]*s, v[1]*s, v[2]*s, n[0], n[1], n[2], color.R, color.G, color.B)
		} else {
			fmt.Fprintf(bw, "%g %g %g %d %d %d\n",
				v[0]*s, v[1]*s, v[2]*s, color.R, color.G, color.B)
		}
	}
	for _, t := range m.Triangles {
		fmt.Fprintf(bw, "3 %d %d %d\n", t[0], t[1], t[2])
	}
	return bw.Flush()
}
