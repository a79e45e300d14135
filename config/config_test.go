package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kevin-chtw/tw_replay/config"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fetcher.yml")
	content := `
http:
  base_url: game.example.com
  record_endpoint: /record
  history_endpoint: /history
  session_endpoint: /game
  timeout_ms: 5000
  use_ssl: true
headers:
  user_agent: test-agent
  x_requested_with: XMLHttpRequest
storage:
  backend: file
  dir: data
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := config.Load(path); err != nil {
		t.Fatal(err)
	}

	cfg := config.Get()
	if cfg.HTTP.BaseURL != "game.example.com" || cfg.HTTP.TimeoutMs != 5000 {
		t.Errorf("http config = %+v", cfg.HTTP)
	}
	if !cfg.HTTP.UseSSL {
		t.Error("use_ssl not parsed")
	}

	// 头名转写：下划线转连字符并首字母大写
	if got := cfg.Headers["User-Agent"]; got != "test-agent" {
		t.Errorf("headers = %v", cfg.Headers)
	}
	if got := cfg.Headers["X-Requested-With"]; got != "XMLHttpRequest" {
		t.Errorf("headers = %v", cfg.Headers)
	}
	if cfg.Storage.Backend != "file" || cfg.Storage.Dir != "data" {
		t.Errorf("storage config = %+v", cfg.Storage)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if err := config.Load(filepath.Join(t.TempDir(), "absent.yml")); err == nil {
		t.Error("loading missing config should fail")
	}
}
