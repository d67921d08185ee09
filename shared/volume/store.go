package volume

import (
	"log"
	"sync"

	"gorm.io/gorm"
)

// ChunkSize é a aresta de um chunk cúbico de rótulos (32x32x32 voxels).
const ChunkSize = 32

// Chunk representa um bloco 32x32x32 de rótulos de material.
type Chunk struct {
	Origin  GridCoord
	Labels  [ChunkSize * ChunkSize * ChunkSize]uint8
	MTime   int64 // Contador de modificações / versão
	IsDirty bool  // Indica que o chunk foi alterado e precisa salvar
}

// VolumeStore gerencia o armazenamento paginado de um volume rotulado.
// Chunks residem em RAM e são persistidos em SQLite sob demanda (write-back),
// permitindo volumes maiores que a memória disponível durante a segmentação.
// Implementa VolumeReader para que o mesher não dependa do esquema de páginas.
type VolumeStore struct {
	Mu sync.RWMutex

	// dbMu serializa escritas no banco SQLite (impede "database is locked")
	dbMu sync.Mutex

	// Chunks armazena os blocos residentes do volume
	Chunks map[GridCoord]*Chunk

	// Size é a dimensão total declarada do volume em voxels
	Size GridCoord

	// VoxelSize é o tamanho físico do voxel em milímetros
	VoxelSize float32

	// DB é a conexão com o banco SQLite (GORM)
	DB *gorm.DB
}

// NewVolumeStore cria um novo repositório de volume vazio.
func NewVolumeStore(w, h, d int32, voxelSize float32) *VolumeStore {
	return &VolumeStore{
		Chunks:    make(map[GridCoord]*Chunk),
		Size:      GridCoord{X: w, Y: h, Z: d},
		VoxelSize: voxelSize,
	}
}

// chunkOrigin retorna a origem do chunk que contém a coordenada.
func chunkOrigin(x, y, z int32) GridCoord {
	floorDiv := func(v int32) int32 {
		if v < 0 {
			return ((v + 1) / ChunkSize) - 1
		}
		return v / ChunkSize
	}
	return GridCoord{
		X: floorDiv(x) * ChunkSize,
		Y: floorDiv(y) * ChunkSize,
		Z: floorDiv(z) * ChunkSize,
	}
}

func chunkIndex(origin GridCoord, x, y, z int32) int {
	lx := int(x - origin.X)
	ly := int(y - origin.Y)
	lz := int(z - origin.Z)
	return (lz*ChunkSize+ly)*ChunkSize + lx
}

// Dimensions retorna as dimensões declaradas do volume.
func (s *VolumeStore) Dimensions() (w, h, d int32) {
	return s.Size.X, s.Size.Y, s.Size.Z
}

// Label retorna o material do voxel nos chunks residentes.
// Fora dos limites, ou em chunk não carregado, retorna 0 (fundo).
func (s *VolumeStore) Label(x, y, z int32) uint8 {
	if x < 0 || y < 0 || z < 0 || x >= s.Size.X || y >= s.Size.Y || z >= s.Size.Z {
		return 0
	}

	s.Mu.RLock()
	defer s.Mu.RUnlock()

	origin := chunkOrigin(x, y, z)
	chunk, ok := s.Chunks[origin]
	if !ok {
		return 0
	}
	return chunk.Labels[chunkIndex(origin, x, y, z)]
}

// SetLabel grava o material de um voxel, criando (ou carregando do banco)
// o chunk correspondente se necessário.
func (s *VolumeStore) SetLabel(x, y, z int32, label uint8) {
	if x < 0 || y < 0 || z < 0 || x >= s.Size.X || y >= s.Size.Y || z >= s.Size.Z {
		return
	}

	s.Mu.Lock()
	defer s.Mu.Unlock()

	origin := chunkOrigin(x, y, z)
	chunk, ok := s.Chunks[origin]
	if !ok {
		// Tenta carregamento do SQLite (Streaming)
		var err error
		chunk, err = s.LoadChunk(origin)
		if err != nil || chunk == nil {
			// Se não existe no banco, cria novo e marca como sujo (Write-Back)
			chunk = &Chunk{Origin: origin, IsDirty: true}
		}
		s.Chunks[origin] = chunk
	}

	idx := chunkIndex(origin, x, y, z)
	if chunk.Labels[idx] != label {
		chunk.Labels[idx] = label
		chunk.MTime++
		chunk.IsDirty = true
	}
}

// EnsureResident carrega do banco todos os chunks que intersectam o volume
// declarado, deixando o store pronto para a extração de superfície.
func (s *VolumeStore) EnsureResident() error {
	if s.DB == nil {
		return nil
	}

	s.Mu.Lock()
	defer s.Mu.Unlock()

	for z := int32(0); z < s.Size.Z; z += ChunkSize {
		for y := int32(0); y < s.Size.Y; y += ChunkSize {
			for x := int32(0); x < s.Size.X; x += ChunkSize {
				origin := chunkOrigin(x, y, z)
				if _, ok := s.Chunks[origin]; ok {
					continue
				}
				chunk, err := s.LoadChunk(origin)
				if err != nil || chunk == nil {
					continue // chunk nunca gravado: região de fundo
				}
				s.Chunks[origin] = chunk
			}
		}
	}
	return nil
}

// Snapshot materializa o store em um LabelVolume denso, a visão que o mesher
// consome. Volumes grandes demais para uma malha densa em memória são
// responsabilidade do chamador (pré-particionar antes de chamar).
func (s *VolumeStore) Snapshot() (*LabelVolume, error) {
	if err := s.EnsureResident(); err != nil {
		return nil, err
	}

	dense := NewLabelVolume(s.Size.X, s.Size.Y, s.Size.Z, s.VoxelSize)

	s.Mu.RLock()
	defer s.Mu.RUnlock()

	for origin, chunk := range s.Chunks {
		for lz := int32(0); lz < ChunkSize; lz++ {
			for ly := int32(0); ly < ChunkSize; ly++ {
				for lx := int32(0); lx < ChunkSize; lx++ {
					label := chunk.Labels[(int(lz)*ChunkSize+int(ly))*ChunkSize+int(lx)]
					if label != 0 {
						dense.SetLabel(origin.X+lx, origin.Y+ly, origin.Z+lz, label)
					}
				}
			}
		}
	}
	return dense, nil
}

// Purge descarrega da RAM os chunks distantes do centro informado (streaming),
// persistindo antes os que estiverem sujos.
func (s *VolumeStore) Purge(center GridCoord, radius float32) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	radiusSq := radius * radius
	for origin, chunk := range s.Chunks {
		dx := float32(origin.X - center.X)
		dy := float32(origin.Y - center.Y)
		dz := float32(origin.Z - center.Z)
		distSq := dx*dx + dy*dy + dz*dz

		if distSq > radiusSq {
			// WRITE-BACK: Antes de descarregar, salva se estiver sujo de forma assíncrona
			if chunk.IsDirty {
				chunkCopy := chunk
				go func() {
					s.dbMu.Lock()
					s.SaveChunk(chunkCopy)
					s.dbMu.Unlock()
				}()
			}
			delete(s.Chunks, origin)
		}
	}
}

// HasData verifica se o banco já possui algum chunk salvo para este volume.
func (s *VolumeStore) HasData() bool {
	if s.DB == nil {
		return false
	}
	var count int64
	s.DB.Model(&ChunkModel{}).Count(&count)
	return count > 0
}

// Close fecha a conexão com o banco de dados SQLite.
func (s *VolumeStore) Close() {
	if s.DB != nil {
		sqlDB, _ := s.DB.DB()
		if sqlDB != nil {
			log.Println("[Persistence] Fechando banco de dados SQLite...")
			sqlDB.Close()
		}
	}
}
