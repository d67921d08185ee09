package main

import (
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"TomoVision/shared/config"
	"TomoVision/shared/proto/tvnet"
	"TomoVision/shared/volume"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// marshaler é o contrato mínimo das mensagens tvnet.
type marshaler interface {
	Marshal() []byte
}

// Hub gerencia as conexões WebSocket ativas
type Hub struct {
	clients    map[*websocket.Conn]*sync.Mutex
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	mu         sync.Mutex
}

func newHub() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]*sync.Mutex),
		broadcast:  make(chan []byte, 4096), // Bufferizado para evitar deadlocks e bloqueios
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
	}
}

func (h *Hub) run() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Hub] Recuperado de pânico fatal: %v", r)
		}
	}()

	for {
		select {
		case client, ok := <-h.register:
			if !ok {
				return
			}
			h.mu.Lock()
			h.clients[client] = &sync.Mutex{}
			h.mu.Unlock()
			log.Printf("Cliente registrado: %s", client.RemoteAddr())
		case client, ok := <-h.unregister:
			if !ok {
				return
			}
			h.mu.Lock()
			if lock, ok := h.clients[client]; ok {
				lock.Lock()
				delete(h.clients, client)
				client.Close()
				lock.Unlock()
				log.Printf("Cliente desregistrado: %s", client.RemoteAddr())
			}
			h.mu.Unlock()
		case message, ok := <-h.broadcast:
			if !ok {
				return
			}
			h.mu.Lock()
			// Lista de clientes para iterar fora do lock do hub
			type clientEntry struct {
				conn *websocket.Conn
				lock *sync.Mutex
			}
			var targets []clientEntry
			for c, l := range h.clients {
				targets = append(targets, clientEntry{c, l})
			}
			h.mu.Unlock()

			for _, target := range targets {
				target.lock.Lock()
				err := target.conn.WriteMessage(websocket.BinaryMessage, message)
				if err != nil {
					log.Printf("Erro ao enviar para cliente %s: %v", target.conn.RemoteAddr(), err)
					target.conn.Close()
					h.mu.Lock()
					delete(h.clients, target.conn)
					h.mu.Unlock()
				}
				target.lock.Unlock()
			}
		}
	}
}

// WriteSafe garante que apenas uma goroutine escreva no WebSocket por vez
func (h *Hub) WriteSafe(conn *websocket.Conn, messageType int, data []byte) error {
	h.mu.Lock()
	lock, ok := h.clients[conn]
	h.mu.Unlock()

	if !ok {
		return fmt.Errorf("cliente não encontrado no hub")
	}

	lock.Lock()
	defer lock.Unlock()
	return conn.WriteMessage(messageType, data)
}

// safeSend envia para o canal de broadcast protegendo contra pânicos de canal fechado
func (h *Hub) safeSend(data []byte) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Hub] Aviso: Falha ao enviar broadcast (canal fechado?): %v", r)
		}
	}()
	// Não segurar h.mu aqui: h.broadcast <- data pode bloquear com o buffer
	// cheio, e o run() precisaria do lock para esvaziar.
	h.broadcast <- data
}

// SendMessage serializa e envia uma mensagem tvnet para um único cliente.
func (h *Hub) SendMessage(conn *websocket.Conn, msgType int32, msg marshaler) {
	envelope := &tvnet.Envelope{Type: msgType}
	if msg != nil {
		envelope.Body = msg.Marshal()
	}
	if err := h.WriteSafe(conn, websocket.BinaryMessage, envelope.Marshal()); err != nil {
		log.Printf("Erro ao enviar mensagem tipo %d: %v", msgType, err)
	}
}

// Broadcast serializa e envia uma mensagem tvnet para todos os clientes.
func (h *Hub) Broadcast(msgType int32, msg marshaler) {
	envelope := &tvnet.Envelope{Type: msgType}
	if msg != nil {
		envelope.Body = msg.Marshal()
	}
	h.safeSend(envelope.Marshal())
}

func main() {
	// Garante que o working directory é o mesmo diretório do executável,
	// para que caminhos relativos (volume.db, tmp/) funcionem corretamente.
	if exePath, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exePath)
		os.Chdir(exeDir)
	}

	log.SetFlags(log.Ltime | log.Lshortfile)

	// Log em arquivo para depuração de crash
	if err := os.MkdirAll("tmp", 0755); err == nil {
		logFile, err := os.OpenFile("tmp/server.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err == nil {
			mw := io.MultiWriter(os.Stdout, logFile)
			log.SetOutput(mw)
		}
	}
	log.Println("╔══════════════════════════════════════╗")
	log.Println("║      TomoVision SERVER v0.1.0        ║")
	log.Println("╚══════════════════════════════════════╝")

	cfg := config.Load()

	hub := newHub()
	go hub.run()

	// Inicializar Store (SQLite)
	store := volume.NewVolumeStore(0, 0, 0, cfg.VoxelSize)
	if err := store.OpenInitialize(cfg.VolumePath); err != nil {
		log.Fatalf("Erro fatal ao abrir o banco de volume: %v", err)
	}
	defer store.Close()

	materials := volume.NewMaterialStore()
	if err := store.LoadMaterials(materials); err != nil {
		log.Printf("Aviso: paleta não carregada do banco: %v", err)
	}

	// Banco vazio: semeia um phantom sintético para o servidor ter o que servir.
	if !store.HasData() {
		log.Println("[Startup] Banco vazio. Semeando phantom sintético 96³...")
		seedPhantom(store, materials, 96)
	}

	w, h, d := store.Dimensions()
	log.Printf("[Startup] Volume %dx%dx%d, voxel %g mm", w, h, d, store.VoxelSize)

	jobs := NewJobManager(hub, store, cfg)

	// Auto-save periódico e purga de chunks limpos
	go func() {
		for {
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.Printf("[AutoSave-Loop] Recuperado de pânico: %v", r)
					}
				}()
				if err := store.SaveAll(); err != nil {
					log.Printf("[AutoSave] Erro: %v", err)
				}
			}()
			time.Sleep(30 * time.Second)
		}
	}()

	http.HandleFunc("/ws", func(rw http.ResponseWriter, r *http.Request) {
		serveWs(hub, rw, r, materials, jobs)
	})

	addr := cfg.ListenAddr
	if p := os.Getenv("PORT"); p != "" {
		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			host = "127.0.0.1"
		}
		addr = net.JoinHostPort(host, p)
	}

	// Verificação antecipada de porta para mensagem de erro melhor
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Printf("ERRO CRÍTICO: não foi possível abrir %s (outra instância rodando?)", addr)
		log.Fatalf("Erro ao iniciar servidor: %v", err)
	}
	ln.Close() // Fecha para o ListenAndServe reabrir

	log.Printf("Servidor TomoVision iniciado em %s", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalf("Erro fatal no servidor HTTP: %v", err)
	}
}

func maxDim(w, h, d int32) int32 {
	m := w
	if h > m {
		m = h
	}
	if d > m {
		m = d
	}
	return m
}

// seedPhantom copia um phantom sintético para o store e persiste tudo.
func seedPhantom(store *volume.VolumeStore, materials *volume.MaterialStore, size int32) {
	phantom := volume.SyntheticPhantom(size, store.VoxelSize)
	w, h, d := phantom.Dimensions()
	store.Size = volume.GridCoord{X: w, Y: h, Z: d}
	for z := int32(0); z < d; z++ {
		for y := int32(0); y < h; y++ {
			for x := int32(0); x < w; x++ {
				if label := phantom.Label(x, y, z); label != 0 {
					store.SetLabel(x, y, z, label)
				}
			}
		}
	}
	if err := store.SaveDimensions(); err != nil {
		log.Printf("[Startup] Erro ao persistir dimensões: %v", err)
	}
	if err := store.SaveAll(); err != nil {
		log.Printf("[Startup] Erro ao persistir phantom: %v", err)
	}
	if err := store.SaveMaterials(materials); err != nil {
		log.Printf("[Startup] Erro ao persistir paleta: %v", err)
	}
}

// serveWs maneja requisições websocket do peer.
func serveWs(hub *Hub, w http.ResponseWriter, r *http.Request, materials *volume.MaterialStore, jobs *JobManager) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Erro no upgrade do WebSocket: %v", err)
		return
	}
	hub.register <- conn

	// Estado inicial: dimensões do volume e paleta de materiais
	hub.SendMessage(conn, tvnet.TypeServerStatus, jobs.Status())
	hub.SendMessage(conn, tvnet.TypeMaterialPalette, paletteMessage(materials))

	go func() {
		defer func() {
			hub.unregister <- conn
		}()

		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				log.Printf("Erro ao ler mensagem: %v", err)
				break
			}

			var envelope tvnet.Envelope
			if err := envelope.Unmarshal(message); err != nil {
				log.Printf("Erro ao desempacotar envelope: %v", err)
				continue
			}

			handleClientMessage(hub, conn, jobs, &envelope)
		}
	}()
}

func handleClientMessage(hub *Hub, conn *websocket.Conn, jobs *JobManager, env *tvnet.Envelope) {
	switch env.Type {
	case tvnet.TypeMeshJobRequest:
		var req tvnet.MeshJobRequest
		if err := req.Unmarshal(env.Body); err != nil {
			log.Printf("Erro ao ler MeshJobRequest: %v", err)
			return
		}
		jobs.Submit(&req)
	case tvnet.TypeJobCancel:
		var req tvnet.JobCancel
		if err := req.Unmarshal(env.Body); err != nil {
			log.Printf("Erro ao ler JobCancel: %v", err)
			return
		}
		jobs.Cancel(req.JobID)
	default:
		log.Printf("[Network] Mensagem de tipo desconhecido: %d", env.Type)
	}
}

// paletteMessage converte a paleta do store para o protocolo tvnet.
func paletteMessage(materials *volume.MaterialStore) *tvnet.MaterialPalette {
	msg := &tvnet.MaterialPalette{}
	for i := 0; i < volume.MaterialCount; i++ {
		c := materials.Color(uint8(i))
		argb := uint32(c.A)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
		msg.Entries = append(msg.Entries, tvnet.MaterialEntry{ID: int32(i), ARGB: argb})
	}
	return msg
}
