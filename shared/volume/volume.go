package volume

import "fmt"

// GridCoord representa uma coordenada inteira no espaço do volume rotulado.
type GridCoord struct {
	X, Y, Z int32
}

// Add soma duas coordenadas.
func (c GridCoord) Add(other GridCoord) GridCoord {
	return GridCoord{X: c.X + other.X, Y: c.Y + other.Y, Z: c.Z + other.Z}
}

// String retorna a representação em string da coordenada.
func (c GridCoord) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.X, c.Y, c.Z)
}

// VolumeReader é a capacidade mínima que o mesher exige de um volume rotulado:
// responder qual material ocupa o voxel (x, y, z) em tempo O(1) amortizado.
// Coordenadas fora dos limites declarados retornam 0 (fundo), nunca erro.
type VolumeReader interface {
	Dimensions() (w, h, d int32)
	Label(x, y, z int32) uint8
}

// LabelVolume é um volume rotulado denso em memória (um byte por voxel).
// VoxelSize é o tamanho físico de um voxel em milímetros, usado apenas
// na exportação e visualização (a malha é gerada em coordenadas de grade).
type LabelVolume struct {
	W, H, D   int32
	VoxelSize float32
	data      []uint8
}

// NewLabelVolume aloca um volume denso zerado (todo fundo).
func NewLabelVolume(w, h, d int32, voxelSize float32) *LabelVolume {
	if w < 0 || h < 0 || d < 0 {
		return &LabelVolume{VoxelSize: voxelSize}
	}
	return &LabelVolume{
		W: w, H: h, D: d,
		VoxelSize: voxelSize,
		data:      make([]uint8, int(w)*int(h)*int(d)),
	}
}

// Dimensions retorna as dimensões do volume.
func (v *LabelVolume) Dimensions() (w, h, d int32) {
	return v.W, v.H, v.D
}

// Label retorna o material do voxel, ou 0 fora dos limites.
func (v *LabelVolume) Label(x, y, z int32) uint8 {
	if x < 0 || y < 0 || z < 0 || x >= v.W || y >= v.H || z >= v.D {
		return 0
	}
	return v.data[(int(z)*int(v.H)+int(y))*int(v.W)+int(x)]
}

// SetLabel grava o material do voxel. Fora dos limites é ignorado.
func (v *LabelVolume) SetLabel(x, y, z int32, label uint8) {
	if x < 0 || y < 0 || z < 0 || x >= v.W || y >= v.H || z >= v.D {
		return
	}
	v.data[(int(z)*int(v.H)+int(y))*int(v.W)+int(x)] = label
}

// FillBox preenche a caixa [x0,x1) x [y0,y1) x [z0,z1) com o material dado.
func (v *LabelVolume) FillBox(x0, y0, z0, x1, y1, z1 int32, label uint8) {
	for z := z0; z < z1; z++ {
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				v.SetLabel(x, y, z, label)
			}
		}
	}
}

// MaterialMask é a visão somente-leitura usada pela extração de superfície:
// responde se o voxel pertence ao material alvo. "Não ocupado" inclui tanto
// o fundo quanto qualquer outro material, o que garante que paredes de poros
// internos também sejam superficializadas.
type MaterialMask struct {
	vol      VolumeReader
	material uint8
	w, h, d  int32
}

// NewMaterialMask cria a máscara do material alvo sobre um volume.
func NewMaterialMask(vol VolumeReader, material uint8) *MaterialMask {
	w, h, d := vol.Dimensions()
	return &MaterialMask{vol: vol, material: material, w: w, h: h, d: d}
}

// Dimensions retorna as dimensões da região mascarada.
func (m *MaterialMask) Dimensions() (w, h, d int32) {
	return m.w, m.h, m.d
}

// Occupied responde se o voxel pertence ao material alvo (false fora dos limites).
func (m *MaterialMask) Occupied(x, y, z int32) bool {
	if x < 0 || y < 0 || z < 0 || x >= m.w || y >= m.h || z >= m.d {
		return false
	}
	return m.vol.Label(x, y, z) == m.material
}
