package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config armazena as configurações do TomoVision.
type Config struct {
	// Janela
	WindowWidth  int32  `json:"window_width"`
	WindowHeight int32  `json:"window_height"`
	WindowTitle  string `json:"window_title"`
	Fullscreen   bool   `json:"fullscreen"`
	TargetFPS    int32  `json:"target_fps"`

	// Servidor de malhas (usado pelo servidor)
	ListenAddr string `json:"listen_addr"`
	VolumePath string `json:"volume_path"`

	// Servidor de malhas (usado pelo cliente)
	ServerURL string `json:"server_url"`

	// Geração de malha
	MesherThreads   int     `json:"mesher_threads"`
	DefaultMaterial int     `json:"default_material"`
	DefaultTarget   int     `json:"default_target"`
	VoxelSize       float32 `json:"voxel_size"`

	// Câmera
	FOV               float32 `json:"fov"`
	CameraSensitivity float32 `json:"camera_sensitivity"`
	ZoomSpeed         float32 `json:"zoom_speed"`

	// Debug
	ShowDebugInfo bool `json:"show_debug_info"`
	WireframeMode bool `json:"wireframe_mode"`
}

// DefaultConfig retorna a configuração padrão.
func DefaultConfig() *Config {
	return &Config{
		WindowWidth:  1280,
		WindowHeight: 720,
		WindowTitle:  "TomoVision",
		Fullscreen:   false,
		TargetFPS:    60,

		ListenAddr: "127.0.0.1:8080",
		VolumePath: "volume.db",

		ServerURL: "ws://127.0.0.1:8080/ws",

		MesherThreads:   0, // 0 = runtime.NumCPU
		DefaultMaterial: 1,
		DefaultTarget:   100000,
		VoxelSize:       1.0,

		FOV:               60.0,
		CameraSensitivity: 2.0,
		ZoomSpeed:         10.0,

		ShowDebugInfo: true,
		WireframeMode: false,
	}
}

// configPath retorna o caminho do arquivo de configuração.
func configPath() string {
	execDir, err := os.Executable()
	if err != nil {
		return "config.json"
	}
	return filepath.Join(filepath.Dir(execDir), "config.json")
}

// Load carrega as configurações de um arquivo JSON.
// Se o arquivo não existir, grava e retorna as configurações padrão,
// deixando um config.json editável ao lado do executável.
func Load() *Config {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath())
	if err != nil {
		if os.IsNotExist(err) {
			cfg.Save()
		}
		return cfg
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return DefaultConfig()
	}

	return cfg
}

// Save salva as configurações em um arquivo JSON.
func (c *Config) Save() error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(configPath(), data, 0644)
}
