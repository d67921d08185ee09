package volume

import (
	"log"
	"sync"
)

// MaterialCount é o número máximo de materiais rotuláveis em um volume (1 byte).
const MaterialCount = 256

// Color é uma cor RGBA de 8 bits por canal.
type Color struct {
	R, G, B, A uint8
}

// MaterialStore guarda a paleta de cores dos materiais segmentados.
// A paleta alimenta os exportadores (PLY com cor por vértice) e o tint
// do visualizador; o material 0 é o fundo e permanece transparente.
type MaterialStore struct {
	mu     sync.RWMutex
	colors [MaterialCount]Color
}

// NewMaterialStore cria a paleta padrão: fundo transparente e uma rampa
// de cinza para os demais materiais.
func NewMaterialStore() *MaterialStore {
	m := &MaterialStore{}
	for i := 1; i < MaterialCount; i++ {
		// Rampa repetida de 64..255 para manter materiais vizinhos distinguíveis
		v := uint8(64 + (i*37)%192)
		m.colors[i] = Color{R: v, G: v, B: v, A: 255}
	}
	return m
}

// Color retorna a cor do material.
func (m *MaterialStore) Color(id uint8) Color {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.colors[id]
}

// SetColor define a cor de um material.
func (m *MaterialStore) SetColor(id uint8, c Color) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.colors[id] = c
}

// SetColorsARGB atualiza a paleta a partir de inteiros ARGB empacotados
// (0xAARRGGBB), na ordem dos IDs de material a partir de 0.
func (m *MaterialStore) SetColorsARGB(colors []int32) {
	count := len(colors)
	if count == 0 {
		return
	}
	if count > MaterialCount {
		log.Printf("[Materials] Paleta com %d cores excede o máximo, truncando para %d", count, MaterialCount)
		count = MaterialCount
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i < count; i++ {
		argb := colors[i]
		m.colors[i] = Color{
			A: uint8((argb >> 24) & 0xFF),
			R: uint8((argb >> 16) & 0xFF),
			G: uint8((argb >> 8) & 0xFF),
			B: uint8(argb & 0xFF),
		}
	}
}
