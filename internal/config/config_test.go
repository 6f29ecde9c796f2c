package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validYAML = `
telegram:
  token: "123:abc"
  admin_id: 42
backend:
  host: "backend.local:8000"
markets:
  - prefix: ozon
    title: Ozon
  - prefix: wb
    title: Wildberries
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run mode default = %q", cfg.Telegram.RunMode)
	}
	if len(cfg.Markets) != 2 || cfg.Markets[0].Prefix != "ozon" {
		t.Fatalf("markets = %+v", cfg.Markets)
	}
	if cfg.Database.MaxConnections != 4 {
		t.Fatalf("db max connections default = %d", cfg.Database.MaxConnections)
	}
	if cfg.Backend.Timeout().Seconds() != 15 {
		t.Fatalf("backend timeout default = %v", cfg.Backend.Timeout())
	}
}

func TestLoadEnvOverlay(t *testing.T) {
	t.Setenv("BACKEND_HOST", "env-host:9000")
	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend.Host != "env-host:9000" {
		t.Fatalf("env overlay not applied: %q", cfg.Backend.Host)
	}
}

func TestNormalizeRejections(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing token",
			yaml: strings.Replace(validYAML, `token: "123:abc"`, `token: ""`, 1),
			want: "token",
		},
		{
			name: "missing admin",
			yaml: strings.Replace(validYAML, "admin_id: 42", "admin_id: 0", 1),
			want: "admin_id",
		},
		{
			name: "no markets",
			yaml: validYAML[:strings.Index(validYAML, "markets:")],
			want: "market",
		},
		{
			name: "duplicate prefix",
			yaml: strings.Replace(validYAML, "prefix: wb", "prefix: ozon", 1),
			want: "duplicate",
		},
		{
			name: "prefix with separator",
			yaml: strings.Replace(validYAML, "prefix: wb", `prefix: "w:b"`, 1),
			want: "must not contain",
		},
		{
			name: "bad run mode",
			yaml: strings.Replace(validYAML, "admin_id: 42", "admin_id: 42\n  run_mode: carrier-pigeon", 1),
			want: "run_mode",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestNormalizeWebhookRequirements(t *testing.T) {
	body := strings.Replace(validYAML, "admin_id: 42", "admin_id: 42\n  run_mode: webhook", 1)
	_, err := Load(writeConfig(t, body))
	if err == nil || !strings.Contains(err.Error(), "webhook.url") {
		t.Fatalf("expected webhook.url error, got %v", err)
	}
}

func TestMarketTitleDefaultsToPrefix(t *testing.T) {
	body := strings.Replace(validYAML, "title: Wildberries", "title: \"\"", 1)
	cfg, err := Load(writeConfig(t, body))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Markets[1].Title != "wb" {
		t.Fatalf("title default = %q", cfg.Markets[1].Title)
	}
}
