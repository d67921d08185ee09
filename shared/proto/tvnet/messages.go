// Package tvnet define as mensagens do protocolo entre o servidor de
// malhas e os clientes (visualizador e exportador), serializadas em
// protobuf wire format via protowire.
package tvnet

import (
	"fmt"

	"TomoVision/shared/pkg/protowire"
)

// Tipos de mensagem transportados no Envelope.
const (
	TypeMeshJobRequest  = 1
	TypeJobCancel       = 2
	TypeJobProgress     = 3
	TypeMeshResult      = 4
	TypeServerStatus    = 5
	TypeMaterialPalette = 6
)

// Envelope embrulha qualquer mensagem do protocolo com seu tipo,
// permitindo multiplexar mensagens numa única conexão websocket.
type Envelope struct {
	Type int32
	Body []byte
}

func (m *Envelope) Marshal() []byte {
	e := protowire.NewEncoder()
	e.EncodeVarint(1, int64(m.Type))
	e.EncodeBytes(2, m.Body)
	return e.Bytes()
}

func (m *Envelope) Unmarshal(data []byte) error {
	d := protowire.NewDecoder(data)
	for !d.Done() {
		fieldNum, wireType, err := d.ReadTag()
		if err != nil {
			return err
		}
		switch fieldNum {
		case 1:
			v, err := d.ReadVarint()
			if err != nil {
				return err
			}
			m.Type = int32(v)
		case 2:
			b, err := d.ReadBytes()
			if err != nil {
				return err
			}
			m.Body = b
		default:
			if err := d.SkipField(wireType); err != nil {
				return err
			}
		}
	}
	if m.Type == 0 {
		return fmt.Errorf("tvnet: envelope sem tipo")
	}
	return nil
}

// MeshJobRequest pede ao servidor a geração da malha de um material.
type MeshJobRequest struct {
	JobID        int32
	MaterialID   int32
	TargetFacets int32
	Workers      int32
}

func (m *MeshJobRequest) Marshal() []byte {
	e := protowire.NewEncoder()
	e.EncodeVarint(1, int64(m.JobID))
	e.EncodeVarint(2, int64(m.MaterialID))
	e.EncodeVarint(3, int64(m.TargetFacets))
	e.EncodeVarint(4, int64(m.Workers))
	return e.Bytes()
}

func (m *MeshJobRequest) Unmarshal(data []byte) error {
	d := protowire.NewDecoder(data)
	for !d.Done() {
		fieldNum, wireType, err := d.ReadTag()
		if err != nil {
			return err
		}
		switch fieldNum {
		case 1:
			v, err := d.ReadVarint()
			if err != nil {
				return err
			}
			m.JobID = int32(v)
		case 2:
			v, err := d.ReadVarint()
			if err != nil {
				return err
			}
			m.MaterialID = int32(v)
		case 3:
			v, err := d.ReadVarint()
			if err != nil {
				return err
			}
			m.TargetFacets = int32(v)
		case 4:
			v, err := d.ReadVarint()
			if err != nil {
				return err
			}
			m.Workers = int32(v)
		default:
			if err := d.SkipField(wireType); err != nil {
				return err
			}
		}
	}
	return nil
}

// JobCancel solicita o cancelamento cooperativo de um job em andamento.
type JobCancel struct {
	JobID int32
}

func (m *JobCancel) Marshal() []byte {
	e := protowire.NewEncoder()
	e.EncodeVarint(1, int64(m.JobID))
	return e.Bytes()
}

func (m *JobCancel) Unmarshal(data []byte) error {
	d := protowire.NewDecoder(data)
	for !d.Done() {
		fieldNum, wireType, err := d.ReadTag()
		if err != nil {
			return err
		}
		switch fieldNum {
		case 1:
			v, err := d.ReadVarint()
			if err != nil {
				return err
			}
			m.JobID = int32(v)
		default:
			if err := d.SkipField(wireType); err != nil {
				return err
			}
		}
	}
	return nil
}

// JobProgress reporta o progresso (0 a 100) de um job em andamento.
type JobProgress struct {
	JobID   int32
	Percent int32
}

func (m *JobProgress) Marshal() []byte {
	e := protowire.NewEncoder()
	e.EncodeVarint(1, int64(m.JobID))
	e.EncodeVarint(2, int64(m.Percent))
	return e.Bytes()
}

func (m *JobProgress) Unmarshal(data []byte) error {
	d := protowire.NewDecoder(data)
	for !d.Done() {
		fieldNum, wireType, err := d.ReadTag()
		if err != nil {
			return err
		}
		switch fieldNum {
		case 1:
			v, err := d.ReadVarint()
			if err != nil {
				return err
			}
			m.JobID = int32(v)
		case 2:
			v, err := d.ReadVarint()
			if err != nil {
				return err
			}
			m.Percent = int32(v)
		default:
			if err := d.SkipField(wireType); err != nil {
				return err
			}
		}
	}
	return nil
}

// MeshResult entrega a malha final (ou parcial, se cancelado) de um job.
// Payload carrega a malha serializada em gob.
type MeshResult struct {
	JobID         int32
	Outcome       string
	VertexCount   int32
	TriangleCount int32
	VoxelSize     float32
	Payload       []byte
}

func (m *MeshResult) Marshal() []byte {
	e := protowire.NewEncoder()
	e.EncodeVarint(1, int64(m.JobID))
	e.EncodeString(2, m.Outcome)
	e.EncodeVarint(3, int64(m.VertexCount))
	e.EncodeVarint(4, int64(m.TriangleCount))
	e.EncodeFloat32(5, m.VoxelSize)
	e.EncodeBytes(6, m.Payload)
	return e.Bytes()
}

func (m *MeshResult) Unmarshal(data []byte) error {
	d := protowire.NewDecoder(data)
	for !d.Done() {
		fieldNum, wireType, err := d.ReadTag()
		if err != nil {
			return err
		}
		switch fieldNum {
		case 1:
			v, err := d.ReadVarint()
			if err != nil {
				return err
			}
			m.JobID = int32(v)
		case 2:
			s, err := d.ReadString()
			if err != nil {
				return err
			}
			m.Outcome = s
		case 3:
			v, err := d.ReadVarint()
			if err != nil {
				return err
			}
			m.VertexCount = int32(v)
		case 4:
			v, err := d.ReadVarint()
			if err != nil {
				return err
			}
			m.TriangleCount = int32(v)
		case 5:
			f, err := d.ReadFloat32()
			if err != nil {
				return err
			}
			m.VoxelSize = f
		case 6:
			b, err := d.ReadBytes()
			if err != nil {
				return err
			}
			m.Payload = b
		default:
			if err := d.SkipField(wireType); err != nil {
				return err
			}
		}
	}
	return nil
}

// ServerStatus descreve o volume carregado e o estado do servidor,
// enviado a cada cliente na conexão e após mudanças.
type ServerStatus struct {
	Width     int32
	Height    int32
	Depth     int32
	VoxelSize float32
	Busy      bool
	ActiveJob int32
}

func (m *ServerStatus) Marshal() []byte {
	e := protowire.NewEncoder()
	e.EncodeVarint(1, int64(m.Width))
	e.EncodeVarint(2, int64(m.Height))
	e.EncodeVarint(3, int64(m.Depth))
	e.EncodeFloat32(4, m.VoxelSize)
	e.EncodeBool(5, m.Busy)
	e.EncodeVarint(6, int64(m.ActiveJob))
	return e.Bytes()
}

func (m *ServerStatus) Unmarshal(data []byte) error {
	d := protowire.NewDecoder(data)
	for !d.Done() {
		fieldNum, wireType, err := d.ReadTag()
		if err != nil {
			return err
		}
		switch fieldNum {
		case 1:
			v, err := d.ReadVarint()
			if err != nil {
				return err
			}
			m.Width = int32(v)
		case 2:
			v, err := d.ReadVarint()
			if err != nil {
				return err
			}
			m.Height = int32(v)
		case 3:
			v, err := d.ReadVarint()
			if err != nil {
				return err
			}
			m.Depth = int32(v)
		case 4:
			f, err := d.ReadFloat32()
			if err != nil {
				return err
			}
			m.VoxelSize = f
		case 5:
			b, err := d.ReadBool()
			if err != nil {
				return err
			}
			m.Busy = b
		case 6:
			v, err := d.ReadVarint()
			if err != nil {
				return err
			}
			m.ActiveJob = int32(v)
		default:
			if err := d.SkipField(wireType); err != nil {
				return err
			}
		}
	}
	return nil
}

// MaterialEntry é uma entrada individual da paleta no protocolo tvnet.
type MaterialEntry struct {
	ID   int32
	ARGB uint32
}

// MaterialPalette publica a paleta de cores dos materiais do volume.
type MaterialPalette struct {
	Entries []MaterialEntry
}

func (m *MaterialPalette) Marshal() []byte {
	e := protowire.NewEncoder()
	for _, entry := range m.Entries {
		pe := protowire.NewEncoder()
		pe.EncodeVarint(1, int64(entry.ID))
		pe.EncodeUvarint(2, uint64(entry.ARGB))
		e.EncodeSubmessage(1, pe.Bytes())
	}
	return e.Bytes()
}

func (m *MaterialPalette) Unmarshal(data []byte) error {
	d := protowire.NewDecoder(data)
	for !d.Done() {
		fieldNum, wireType, err := d.ReadTag()
		if err != nil {
			return err
		}
		switch fieldNum {
		case 1:
			subData, err := d.ReadBytes()
			if err != nil {
				return err
			}
			var entry MaterialEntry
			if err := entry.Unmarshal(subData); err != nil {
				return err
			}
			m.Entries = append(m.Entries, entry)
		default:
			if err := d.SkipField(wireType); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *MaterialEntry) Unmarshal(data []byte) error {
	d := protowire.NewDecoder(data)
	for !d.Done() {
		fieldNum, wireType, err := d.ReadTag()
		if err != nil {
			return err
		}
		switch fieldNum {
		case 1:
			v, err := d.ReadVarint()
			if err != nil {
				return err
			}
			p.ID = int32(v)
		case 2:
			v, err := d.ReadUvarint()
			if err != nil {
				return err
			}
			p.ARGB = uint32(v)
		default:
			if err := d.SkipField(wireType); err != nil {
				return err
			}
		}
	}
	return nil
}
