package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultBaseURL(t *testing.T) {
	t.Setenv("SECRETS_FILE", filepath.Join(t.TempDir(), "missing.json"))
	_ = os.Unsetenv("API_BASE_URL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.BaseURL != DefaultBaseURL {
		t.Fatalf("expected default base URL, got %q", cfg.API.BaseURL)
	}
}

func TestLoadEnvOverridesDefault(t *testing.T) {
	t.Setenv("SECRETS_FILE", filepath.Join(t.TempDir(), "missing.json"))
	t.Setenv("API_BASE_URL", "http://localhost:9000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:9000" {
		t.Fatalf("expected env base URL, got %q", cfg.API.BaseURL)
	}
}

func TestLoadSecretsFileWinsOverEnv(t *testing.T) {
	secrets := filepath.Join(t.TempDir(), "secrets.json")
	if err := os.WriteFile(secrets, []byte(`{"API_BASE_URL":"http://secrets:7000"}`), 0600); err != nil {
		t.Fatalf("write secrets: %v", err)
	}
	t.Setenv("SECRETS_FILE", secrets)
	t.Setenv("API_BASE_URL", "http://env:9000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.BaseURL != "http://secrets:7000" {
		t.Fatalf("expected secrets-file base URL, got %q", cfg.API.BaseURL)
	}
}

func TestLoadMalformedSecretsFileFallsThrough(t *testing.T) {
	secrets := filepath.Join(t.TempDir(), "secrets.json")
	if err := os.WriteFile(secrets, []byte("not json"), 0600); err != nil {
		t.Fatalf("write secrets: %v", err)
	}
	t.Setenv("SECRETS_FILE", secrets)
	t.Setenv("API_BASE_URL", "http://env:9000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.BaseURL != "http://env:9000" {
		t.Fatalf("expected env fallback, got %q", cfg.API.BaseURL)
	}
}

func TestTimeoutDefaults(t *testing.T) {
	api := APIConfig{}
	if api.HealthTimeout().Seconds() != 10 {
		t.Fatalf("expected 10s health timeout default, got %v", api.HealthTimeout())
	}
	if api.RequestTimeout() != 0 {
		t.Fatalf("expected zero request timeout when unset, got %v", api.RequestTimeout())
	}
}
