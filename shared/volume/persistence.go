package volume

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"log"
	"strconv"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ChunkModel representa o esquema do banco de dados para um chunk de rótulos
type ChunkModel struct {
	ID        string    `gorm:"primaryKey"` // Coordenada formatada "X_Y_Z"
	X, Y, Z   int32     `gorm:"index:idx_pos"`
	Data      []byte    // Rótulos do chunk serializados em GOB
	MTime     int64     // Versão
	UpdatedAt time.Time // Para controle interno do GORM
}

// VolumeMetadata armazena informações globais do volume no banco
type VolumeMetadata struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

// MaterialModel armazena a cor de um material específico persistido
type MaterialModel struct {
	ID         uint8 `gorm:"primaryKey;autoIncrement:false"`
	R, G, B, A uint8
}

const CurrentFormatVersion = 1

// OpenInitialize abre (ou cria) o banco SQLite do volume e roda migrações.
// Grava as dimensões e o tamanho de voxel atuais como metadados.
func (s *VolumeStore) OpenInitialize(dbPath string) error {
	// Configuramos o logger para ser silencioso em produção
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("falha ao conectar no SQLite: %w", err)
	}

	// Migração automática das tabelas
	if err := db.AutoMigrate(&ChunkModel{}, &VolumeMetadata{}, &MaterialModel{}); err != nil {
		return fmt.Errorf("falha na migração do banco: %w", err)
	}

	s.DB = db

	// Se o banco já tem dimensões gravadas, elas prevalecem sobre as do construtor
	if w, h, d, vs, ok := s.loadDimensions(); ok {
		s.Size = GridCoord{X: w, Y: h, Z: d}
		s.VoxelSize = vs
	} else {
		s.saveDimensions()
	}

	db.Save(&VolumeMetadata{Key: "FormatVersion", Value: fmt.Sprint(CurrentFormatVersion)})

	log.Printf("[Persistence] Banco de dados SQLite aberto: %s (%dx%dx%d voxels)",
		dbPath, s.Size.X, s.Size.Y, s.Size.Z)
	return nil
}

// SaveDimensions regrava as dimensões e o tamanho de voxel nos metadados.
// Necessário quando Size muda depois de OpenInitialize (ex: volume semeado).
func (s *VolumeStore) SaveDimensions() error {
	if s.DB == nil {
		return fmt.Errorf("banco de dados não inicializado")
	}
	s.saveDimensions()
	return nil
}

func (s *VolumeStore) saveDimensions() {
	s.DB.Save(&VolumeMetadata{Key: "Width", Value: fmt.Sprint(s.Size.X)})
	s.DB.Save(&VolumeMetadata{Key: "Height", Value: fmt.Sprint(s.Size.Y)})
	s.DB.Save(&VolumeMetadata{Key: "Depth", Value: fmt.Sprint(s.Size.Z)})
	s.DB.Save(&VolumeMetadata{Key: "VoxelSize", Value: strconv.FormatFloat(float64(s.VoxelSize), 'g', -1, 32)})
}

func (s *VolumeStore) loadDimensions() (w, h, d int32, voxelSize float32, ok bool) {
	readInt := func(key string) (int32, bool) {
		var meta VolumeMetadata
		if err := s.DB.First(&meta, "key = ?", key).Error; err != nil {
			return 0, false
		}
		v, err := strconv.ParseInt(meta.Value, 10, 32)
		if err != nil {
			return 0, false
		}
		return int32(v), true
	}

	w, okW := readInt("Width")
	h, okH := readInt("Height")
	d, okD := readInt("Depth")
	if !okW || !okH || !okD {
		return 0, 0, 0, 0, false
	}

	voxelSize = 1.0
	var meta VolumeMetadata
	if err := s.DB.First(&meta, "key = ?", "VoxelSize").Error; err == nil {
		if v, err := strconv.ParseFloat(meta.Value, 32); err == nil {
			voxelSize = float32(v)
		}
	}
	return w, h, d, voxelSize, true
}

// SaveChunk salva um único chunk no banco de dados SQLite.
func (s *VolumeStore) SaveChunk(chunk *Chunk) error {
	if s.DB == nil {
		return fmt.Errorf("banco de dados não inicializado")
	}

	// Serializa os rótulos do chunk em bytes (GOB)
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(chunk.Labels); err != nil {
		log.Printf("[Persistence] ERRO Crítico GOB: %v", err)
		return err
	}

	id := fmt.Sprintf("%d_%d_%d", chunk.Origin.X, chunk.Origin.Y, chunk.Origin.Z)
	model := ChunkModel{
		ID:    id,
		X:     chunk.Origin.X,
		Y:     chunk.Origin.Y,
		Z:     chunk.Origin.Z,
		Data:  buf.Bytes(),
		MTime: chunk.MTime,
	}

	// Upsert (Cria ou Atualiza)
	err := s.DB.Save(&model).Error
	if err != nil {
		log.Printf("[Persistence] ERRO ao salvar chunk %s: %v", id, err)
	} else {
		chunk.IsDirty = false
	}
	return err
}

// LoadChunk tenta carregar um chunk específico do banco de dados.
func (s *VolumeStore) LoadChunk(origin GridCoord) (*Chunk, error) {
	if s.DB == nil {
		return nil, fmt.Errorf("banco de dados não inicializado")
	}

	id := fmt.Sprintf("%d_%d_%d", origin.X, origin.Y, origin.Z)
	var model ChunkModel
	if err := s.DB.First(&model, "id = ?", id).Error; err != nil {
		return nil, err // Retorna error se não encontrar
	}

	chunk := &Chunk{
		Origin: origin,
		MTime:  model.MTime,
	}
	dec := gob.NewDecoder(bytes.NewReader(model.Data))
	if err := dec.Decode(&chunk.Labels); err != nil {
		return nil, err
	}

	return chunk, nil
}

// SaveAll persiste todos os chunks sujos residentes em RAM.
func (s *VolumeStore) SaveAll() error {
	if s.DB == nil {
		return fmt.Errorf("banco de dados não inicializado")
	}

	// Coleta uma lista dos chunks sujos para salvar fora do lock
	s.Mu.Lock()
	var dirtyChunks []*Chunk
	for _, chunk := range s.Chunks {
		if chunk.IsDirty {
			dirtyChunks = append(dirtyChunks, chunk)
		}
	}
	s.Mu.Unlock() // Libera o lock para não travar o chamador durante o IO

	if len(dirtyChunks) == 0 {
		return nil
	}

	log.Printf("[Persistence] Iniciando salvamento em SQLite... (Chunks sujos: %d)", len(dirtyChunks))
	count := 0
	s.dbMu.Lock()
	for _, chunk := range dirtyChunks {
		if err := s.SaveChunk(chunk); err == nil {
			count++
		}
	}
	s.dbMu.Unlock()
	log.Printf("[Persistence] Salvamento concluído: %d chunks persistidos.", count)

	return nil
}

// SaveMaterials persiste a paleta de materiais no banco.
func (s *VolumeStore) SaveMaterials(mats *MaterialStore) error {
	if s.DB == nil {
		return fmt.Errorf("banco de dados não inicializado")
	}
	for i := 0; i < MaterialCount; i++ {
		c := mats.Color(uint8(i))
		model := MaterialModel{ID: uint8(i), R: c.R, G: c.G, B: c.B, A: c.A}
		if err := s.DB.Save(&model).Error; err != nil {
			return err
		}
	}
	return nil
}

// LoadMaterials carrega a paleta de materiais persistida, se houver.
func (s *VolumeStore) LoadMaterials(mats *MaterialStore) error {
	if s.DB == nil {
		return fmt.Errorf("banco de dados não inicializado")
	}
	var models []MaterialModel
	if err := s.DB.Find(&models).Error; err != nil {
		return err
	}
	for _, m := range models {
		mats.SetColor(m.ID, Color{R: m.R, G: m.G, B: m.B, A: m.A})
	}
	return nil
}
