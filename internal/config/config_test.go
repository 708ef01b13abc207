package config

import "testing"

func setRequiredEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/signage_test")
	t.Setenv("FIREBASE_PROJECT_ID", "signage-test")
	t.Setenv("R2_ACCOUNT_ID", "acct")
	t.Setenv("R2_ACCESS_KEY", "key")
	t.Setenv("R2_SECRET_KEY", "secret")
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err != ErrMissingDatabaseURL {
		t.Fatalf("expected ErrMissingDatabaseURL, got %v", err)
	}
}

func TestLoadRequiresR2Credentials(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("R2_SECRET_KEY", "")

	if _, err := Load(); err != ErrMissingR2Config {
		t.Fatalf("expected ErrMissingR2Config, got %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "")
	t.Setenv("ALLOWED_ORIGINS", "")
	t.Setenv("DISPLAY_CACHE_SECONDS", "")
	t.Setenv("R2_BUCKET_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("port = %q", cfg.Port)
	}
	if cfg.DisplayCacheSeconds != 30 {
		t.Fatalf("display cache = %d", cfg.DisplayCacheSeconds)
	}
	if cfg.R2Config.PublicURL == "" {
		t.Fatalf("public URL should derive from account and bucket")
	}
}

func TestLoadParsesOrigins(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example.com" {
		t.Fatalf("origins = %v", cfg.AllowedOrigins)
	}
}

func TestDisplayCacheSecondsIgnoresGarbage(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DISPLAY_CACHE_SECONDS", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DisplayCacheSeconds != 30 {
		t.Fatalf("garbage value should fall back to default, got %d", cfg.DisplayCacheSeconds)
	}
}
