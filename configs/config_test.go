package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadServer_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.yaml")
	body := "listen: \":9000\"\nrender_scale: 3\nsettle: 150ms\nmax_records: 10\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "7070")
	t.Setenv("DB_PATH", "/tmp/x.db")
	t.Setenv("RENDER_SCALE", "")

	cfg, err := LoadServer(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Listen != ":7070" || cfg.DBPath != "/tmp/x.db" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
	if cfg.RenderScale != 3 || cfg.Settle != 150*time.Millisecond || cfg.MaxRecords != 10 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.DataDir != DefaultServer().DataDir {
		t.Errorf("unset fields should keep defaults: %q", cfg.DataDir)
	}
}

func TestLoadServer_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("RENDER_SCALE", "")
	t.Setenv("DB_PATH", "")
	t.Setenv("DATA_DIR", "")
	cfg, err := LoadServer(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if *cfg != *DefaultServer() {
		t.Errorf("got %+v", cfg)
	}
}

func TestLoadServer_Rejects(t *testing.T) {
	t.Setenv("RENDER_SCALE", "fast")
	if _, err := LoadServer(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("bad RENDER_SCALE accepted")
	}
	t.Setenv("RENDER_SCALE", "0")
	if _, err := LoadServer(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("zero render scale accepted")
	}
}
