package main

import (
	"path/filepath"
	"testing"

	"github.com/hauntess/server/internal/config"
	"github.com/hauntess/server/internal/haunt"
	"go.uber.org/zap"
)

func TestShippedConfigYieldsHauntedPreset(t *testing.T) {
	root := filepath.Join("..", "..")
	cfg, err := config.Load(filepath.Join(root, "config", "server.toml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.Scripting.Dir = filepath.Join(root, cfg.Scripting.Dir)

	preset, err := loadPreset(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("loadPreset: %v", err)
	}
	if preset != haunt.HauntedPreset {
		t.Fatalf("boot preset = %+v, want %+v", preset, haunt.HauntedPreset)
	}
}
