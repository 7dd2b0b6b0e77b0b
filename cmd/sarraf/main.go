package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"sarraf/internal/app"
	"sarraf/internal/config"
	"sarraf/internal/logger"

	"gopkg.in/yaml.v3"
)

func main() {
	printConfig := flag.Bool("print-config", false, "dump the effective configuration and exit")
	flag.Parse()

	cfgPath := os.Getenv("SARRAF_CONFIG")
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	if *printConfig {
		out, err := yaml.Marshal(cfg)
		if err != nil {
			log.Fatalf("marshal config failed: %v", err)
		}
		os.Stdout.Write(out)
		return
	}

	logFile, err := setupLogOutput(cfg.App.LogPath)
	if err != nil {
		log.Fatalf("init log file failed: %v", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}
	logger.SetLevel(cfg.App.LogLevel)
	logger.Infof("config loaded from %s", cfgPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.NewApp(cfg)
	if err != nil {
		log.Fatalf("init app failed: %v", err)
	}
	a.EnableConfigReload(cfgPath)
	if err := a.Run(ctx); err != nil {
		log.Fatalf("run failed: %v", err)
	}
	logger.Infof("shutdown complete")
}

func setupLogOutput(path string) (*os.File, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, nil
	}
	dir := filepath.Dir(trimmed)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	mw := io.MultiWriter(os.Stdout, file)
	log.SetOutput(mw)
	logger.SetOutput(mw)
	return file, nil
}
