package client

import (
	"log"
	"sync"
	"time"

	"TomoVision/shared/geometry"
	"TomoVision/shared/proto/tvnet"

	"github.com/gorilla/websocket"
)

// NetworkClient lida com a comunicação com o servidor TomoVision.
type NetworkClient struct {
	conn      *websocket.Conn
	url       string
	connected bool
	mu        sync.RWMutex

	// Callbacks para o App. Executam na goroutine de leitura; o App é
	// responsável por repassar para a thread principal quando necessário.
	OnStatus   func(status *tvnet.ServerStatus)
	OnPalette  func(palette *tvnet.MaterialPalette)
	OnProgress func(progress *tvnet.JobProgress)
	OnResult   func(result *tvnet.MeshResult, mesh *geometry.Mesh)
}

func NewNetworkClient(url string) *NetworkClient {
	return &NetworkClient{url: url}
}

func (c *NetworkClient) Connect() error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}

	var err error
	maxRetries := 10
	for i := 0; i < maxRetries; i++ {
		log.Printf("[Network] Tentativa de conexão %d/%d em %s...", i+1, maxRetries, c.url)
		c.conn, _, err = dialer.Dial(c.url, nil)
		if err == nil {
			break
		}
		log.Printf("[Network] Servidor ainda não está pronto: %v. Aguardando...", err)
		time.Sleep(2 * time.Second)
	}

	if err != nil {
		log.Printf("[Network] ERRO CRÍTICO após %d tentativas: %v", maxRetries, err)
		return err
	}

	c.mu.Lock()
	c.connected = true
	c.mu.Unlock()

	go c.readLoop()
	return nil
}

func (c *NetworkClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// RequestMesh pede ao servidor a malha de um material.
func (c *NetworkClient) RequestMesh(jobID, materialID, targetFacets, workers int32) {
	c.Send(tvnet.TypeMeshJobRequest, &tvnet.MeshJobRequest{
		JobID:        jobID,
		MaterialID:   materialID,
		TargetFacets: targetFacets,
		Workers:      workers,
	})
}

// CancelJob pede o cancelamento do job em andamento.
func (c *NetworkClient) CancelJob(jobID int32) {
	c.Send(tvnet.TypeJobCancel, &tvnet.JobCancel{JobID: jobID})
}

type marshaler interface {
	Marshal() []byte
}

func (c *NetworkClient) Send(msgType int32, msg marshaler) {
	if !c.IsConnected() {
		return
	}

	env := &tvnet.Envelope{Type: msgType}
	if msg != nil {
		env.Body = msg.Marshal()
	}

	c.mu.Lock()
	err := c.conn.WriteMessage(websocket.BinaryMessage, env.Marshal())
	if err != nil {
		c.connected = false
	}
	c.mu.Unlock()

	if err != nil {
		log.Printf("[Network] Erro ao enviar mensagem: %v", err)
	}
}

func (c *NetworkClient) readLoop() {
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		if c.conn != nil {
			c.conn.Close()
		}
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			log.Printf("[Network] Conexão perdida: %v", err)
			break
		}

		var env tvnet.Envelope
		if err := env.Unmarshal(message); err != nil {
			log.Printf("[Network] Erro ao desempacotar envelope: %v", err)
			continue
		}

		c.handleMessage(&env)
	}
}

func (c *NetworkClient) handleMessage(env *tvnet.Envelope) {
	switch env.Type {
	case tvnet.TypeServerStatus:
		var status tvnet.ServerStatus
		if err := status.Unmarshal(env.Body); err == nil {
			if c.OnStatus != nil {
				c.OnStatus(&status)
			}
		}
	case tvnet.TypeMaterialPalette:
		var palette tvnet.MaterialPalette
		if err := palette.Unmarshal(env.Body); err == nil {
			log.Printf("[Network] Paleta recebida: %d materiais", len(palette.Entries))
			if c.OnPalette != nil {
				c.OnPalette(&palette)
			}
		}
	case tvnet.TypeJobProgress:
		var progress tvnet.JobProgress
		if err := progress.Unmarshal(env.Body); err == nil {
			if c.OnProgress != nil {
				c.OnProgress(&progress)
			}
		}
	case tvnet.TypeMeshResult:
		var result tvnet.MeshResult
		if err := result.Unmarshal(env.Body); err != nil {
			log.Printf("[Network] Erro ao ler MeshResult: %v", err)
			return
		}
		var mesh *geometry.Mesh
		if len(result.Payload) > 0 {
			m, err := tvnet.DecodeMeshPayload(result.Payload)
			if err != nil {
				log.Printf("[Network] Erro ao decodificar malha do job %d: %v", result.JobID, err)
				return
			}
			mesh = m
		}
		log.Printf("[Network] Resultado do job %d: %s (%d triângulos)",
			result.JobID, result.Outcome, result.TriangleCount)
		if c.OnResult != nil {
			c.OnResult(&result, mesh)
		}
	default:
		log.Printf("[Network] Mensagem de tipo desconhecido: %d", env.Type)
	}
}
