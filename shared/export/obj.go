// Package export serializa malhas para os formatos de intercâmbio
// suportados (OBJ, STL ASCII e PLY ASCII). As coordenadas são escaladas
// pelo tamanho físico do voxel no momento da escrita; a malha em si
// permanece no reticulado inteiro do volume.
package export

import (
	"bufio"
	"fmt"
	"io"

	"TomoVision/shared/geometry"
)

// Options parametriza a escrita de uma malha.
type Options struct {
	// Scale converte unidades do reticulado para unidades físicas
	// (tamanho da aresta do voxel). <= 0 assume 1.0.
	Scale float32
	// Name identifica o objeto no arquivo (header do solid/objeto).
	Name string
}

func (o *Options) normalize() {
	if o.Scale <= 0 {
		o.Scale = 1
	}
	if o.Name == "" {
		o.Name = "tomovision"
	}
}

// WriteOBJ escreve a malha em Wavefront OBJ, com normais por vértice
// quando presentes. Índices OBJ começam em 1.
func WriteOBJ(w io.Writer, m *geometry.Mesh, opts Options) error {
	opts.normalize()
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# TomoVision: %d vértices, %d triângulos\n", len(m.Vertices), len(m.Triangles))
	fmt.Fprintf(bw, "o %s\n", opts.Name)

	s := opts.Scale
	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "v %g %g %g\n", v[0]*s, v[1]*s, v[2]*s)
	}

	hasNormals := len(m.Normals) == len(m.Vertices)
	if hasNormals {
		for _, n := range m.Normals {
			fmt.Fprintf(bw, "vn %g %g %g\n", n[0], n[1], n[2])
		}
	}

	for _, t := range m.Triangles {
		if hasNormals {
			fmt.Fprintf(bw, "f %d//%d %d//%d %d//%d\n",
				t[0]+1, t[0]+1, t[1]+1, t[1]+1, t[2]+1, t[2]+1)
		} else {
			fmt.Fprintf(bw, "f %d %d %d\n", t[0]+1, t[1]+1, t[2]+1)
		}
	}
	return bw.Flush()
}
