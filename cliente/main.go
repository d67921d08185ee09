package main

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"TomoVision/cliente/internal/app"
	"TomoVision/shared/config"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func main() {
	// Working directory junto do executável, para config.json relativo
	if exePath, err := os.Executable(); err == nil {
		os.Chdir(filepath.Dir(exePath))
	}

	log.SetFlags(log.Ltime | log.Lshortfile)
	if err := os.MkdirAll("tmp", 0755); err == nil {
		logFile, err := os.OpenFile("tmp/client.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err == nil {
			log.SetOutput(io.MultiWriter(os.Stdout, logFile))
		}
	}

	cfg := config.Load()

	rl.SetConfigFlags(rl.FlagMsaa4xHint | rl.FlagWindowResizable)
	rl.InitWindow(cfg.WindowWidth, cfg.WindowHeight, cfg.WindowTitle)
	defer rl.CloseWindow()
	if cfg.Fullscreen {
		rl.ToggleFullscreen()
	}
	rl.SetTargetFPS(cfg.TargetFPS)

	app.New(cfg).Run()
}
