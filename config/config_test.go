package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if !cfg.DecodeBase64 || !cfg.DecodeQP || !cfg.DecodeUU {
		t.Error("expected all decoders enabled by default")
	}
	if cfg.MaxRecursionLevel != defaultMaxRecursion {
		t.Errorf("MaxRecursionLevel = %d, want %d", cfg.MaxRecursionLevel, defaultMaxRecursion)
	}
	if cfg.UnpackMode != ModeToDirectory {
		t.Errorf("UnpackMode = %q", cfg.UnpackMode)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := "decode_tnef = false\nmax_recursion_level = 8\noutput_dir = \"/tmp/out\"\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DecodeTNEF {
		t.Error("expected decode_tnef overridden to false")
	}
	if cfg.MaxRecursionLevel != 8 {
		t.Errorf("MaxRecursionLevel = %d", cfg.MaxRecursionLevel)
	}
	if cfg.OutputDir != "/tmp/out" {
		t.Errorf("OutputDir = %q", cfg.OutputDir)
	}
	if !cfg.DecodeBase64 {
		t.Error("expected decode_base64 to keep its default (true)")
	}
}
