package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/evmeri")
	t.Setenv("API_BASE_URL", "https://example.test/")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv(configFileEnv, "")
	setRequired(t)
	t.Setenv("JWT_EXPIRES_IN", "2h")
	t.Setenv("TELEGRAM_ADMIN_CHAT_ID", "-100123")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIBaseURL != "https://example.test" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.APIBaseURL)
	}
	if cfg.JWTExpiresIn != 2*time.Hour {
		t.Errorf("JWTExpiresIn = %v", cfg.JWTExpiresIn)
	}
	if cfg.TelegramAdminChatID != -100123 {
		t.Errorf("TelegramAdminChatID = %d", cfg.TelegramAdminChatID)
	}
	if cfg.HTTPPort != "8080" || cfg.FAQCacheTTL != 5*time.Minute || cfg.StationMapCacheTTL != 5*time.Minute {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadYAMLThenEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "database_url: postgres://yaml/db\napi_base_url: https://yaml.test\njwt_secret: fromyaml\nhttp_port: \"9000\"\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(configFileEnv, path)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("API_BASE_URL", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("HTTP_PORT", "9100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DatabaseURL != "postgres://yaml/db" || cfg.JWTSecret != "fromyaml" {
		t.Errorf("yaml values not loaded: %+v", cfg)
	}
	if cfg.HTTPPort != "9100" {
		t.Errorf("env should override yaml, got %q", cfg.HTTPPort)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv(configFileEnv, "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("API_BASE_URL", "")
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, k := range []string{"DATABASE_URL", "API_BASE_URL", "JWT_SECRET"} {
		if !strings.Contains(err.Error(), k) {
			t.Errorf("error %q does not mention %s", err, k)
		}
	}
}

func TestLoadRejectsRelativeBaseURL(t *testing.T) {
	t.Setenv(configFileEnv, "")
	setRequired(t)
	t.Setenv("API_BASE_URL", "example.test")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for base url without scheme")
	}
}

func TestLoadBadDuration(t *testing.T) {
	t.Setenv(configFileEnv, "")
	setRequired(t)
	t.Setenv("FAQ_CACHE_TTL", "soon")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "FAQ_CACHE_TTL") {
		t.Fatalf("expected parse error, got %v", err)
	}
}
