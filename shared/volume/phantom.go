package volume

// SyntheticPhantom gera um volume de calibração cúbico com estruturas
// conhecidas, útil para demonstração e para exercitar o pipeline sem um
// scan real: uma esfera do material 1 com um poro central vazio e uma
// inclusão cúbica do material 2 em um dos quadrantes.
func SyntheticPhantom(size int32, voxelSize float32) *LabelVolume {
	if size < 8 {
		size = 8
	}
	vol := NewLabelVolume(size, size, size, voxelSize)

	c := float32(size) / 2
	outerR := float32(size) * 0.42
	poreR := float32(size) * 0.12

	for z := int32(0); z < size; z++ {
		for y := int32(0); y < size; y++ {
			for x := int32(0); x < size; x++ {
				dx := float32(x) + 0.5 - c
				dy := float32(y) + 0.5 - c
				dz := float32(z) + 0.5 - c
				distSq := dx*dx + dy*dy + dz*dz

				if distSq <= poreR*poreR {
					continue // poro interno: permanece fundo
				}
				if distSq <= outerR*outerR {
					vol.SetLabel(x, y, z, 1)
				}
			}
		}
	}

	// Inclusão cúbica de outro material no quadrante superior
	q := size / 8
	vol.FillBox(size-3*q, size-3*q, size-3*q, size-q, size-q, size-q, 2)

	return vol
}
