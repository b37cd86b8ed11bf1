package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validYAML = `
server:
  host: "0.0.0.0"
  port: 8080
catalog:
  database:
    host: "localhost"
    port: 5432
    name: "pivotfit"
    user: "pivotfit"
    password: "secret"
    sslmode: "disable"
state:
  dir: "/var/lib/pivotfit"
auth:
  api_key: "test-key-123"
entitlements:
  unlimited_swaps: false
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestLoadValid verifies that a well-formed YAML config loads with all
// fields populated.
func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("server.host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Catalog.Database.Host != "localhost" {
		t.Errorf("catalog.database.host = %q, want %q", cfg.Catalog.Database.Host, "localhost")
	}
	if cfg.State.Dir != "/var/lib/pivotfit" {
		t.Errorf("state.dir = %q, want %q", cfg.State.Dir, "/var/lib/pivotfit")
	}
	if cfg.Auth.APIKey != "test-key-123" {
		t.Errorf("auth.api_key = %q, want %q", cfg.Auth.APIKey, "test-key-123")
	}
	if cfg.Entitlements.UnlimitedSwaps {
		t.Error("entitlements.unlimited_swaps = true, want false")
	}
	if !cfg.Catalog.UseDatabase() {
		t.Error("UseDatabase() = false, want true")
	}
}

// TestEnvOverride verifies that PIVOTFIT_ env vars take precedence over
// YAML values.
func TestEnvOverride(t *testing.T) {
	t.Setenv("PIVOTFIT_DB_PASSWORD", "env-secret")
	t.Setenv("PIVOTFIT_SERVER_PORT", "9090")
	t.Setenv("PIVOTFIT_UNLIMITED_SWAPS", "true")

	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Catalog.Database.Password != "env-secret" {
		t.Errorf("password = %q, want %q", cfg.Catalog.Database.Password, "env-secret")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("server.port = %d, want 9090", cfg.Server.Port)
	}
	if !cfg.Entitlements.UnlimitedSwaps {
		t.Error("entitlements.unlimited_swaps = false, want true")
	}
}

// TestFileCatalogSkipsDBValidation verifies that a file-backed catalog
// does not require database settings.
func TestFileCatalogSkipsDBValidation(t *testing.T) {
	yaml := `
server:
  port: 8080
catalog:
  file: "exercises.yaml"
state:
  dir: "/tmp/pivotfit"
auth:
  api_key: "k"
`
	cfg, err := Load(writeTemp(t, yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Catalog.UseDatabase() {
		t.Error("UseDatabase() = true, want false")
	}
}

// TestValidationErrors verifies required fields are enforced.
func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing port",
			yaml:    "state:\n  dir: /tmp/x\nauth:\n  api_key: k\ncatalog:\n  file: f.yaml\n",
			wantErr: "server.port",
		},
		{
			name:    "missing state dir",
			yaml:    "server:\n  port: 8080\nauth:\n  api_key: k\ncatalog:\n  file: f.yaml\n",
			wantErr: "state.dir",
		},
		{
			name:    "missing api key",
			yaml:    "server:\n  port: 8080\nstate:\n  dir: /tmp/x\ncatalog:\n  file: f.yaml\n",
			wantErr: "auth.api_key",
		},
		{
			name:    "missing db host",
			yaml:    "server:\n  port: 8080\nstate:\n  dir: /tmp/x\nauth:\n  api_key: k\n",
			wantErr: "catalog.database.host",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeTemp(t, tt.yaml))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}
