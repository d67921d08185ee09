package tvnet

import (
	"bytes"
	"encoding/gob"

	"TomoVision/shared/geometry"
)

// EncodeMeshPayload serializa a malha em gob para o campo Payload do
// MeshResult. Gob comprime bem os arrays homogêneos da malha e evita
// definir a geometria inteira em protobuf.
func EncodeMeshPayload(m *geometry.Mesh) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeMeshPayload reconstrói a malha de um Payload.
func DecodeMeshPayload(data []byte) (*geometry.Mesh, error) {
	var m geometry.Mesh
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}
