package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DB_PORT", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("MAIL_SERVICE_ID", "")

	cfg := Load()

	if cfg.Server.Port != "8090" {
		t.Errorf("Expected default port 8090, got %s", cfg.Server.Port)
	}
	if cfg.Database.Driver != "postgres" || cfg.Database.Port != "5432" {
		t.Errorf("Expected postgres on 5432, got %s on %s", cfg.Database.Driver, cfg.Database.Port)
	}
	if cfg.Auth.JWTSecret == "" {
		t.Error("Expected a generated JWT secret")
	}
	if cfg.Mail.Configured() {
		t.Error("Expected mail to be unconfigured without credentials")
	}
	if cfg.Storage.MaxUploadBytes != 5<<20 {
		t.Errorf("Expected 5MB upload limit, got %d", cfg.Storage.MaxUploadBytes)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("DB_DRIVER", "MySQL")
	t.Setenv("DB_PORT", "")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://haven.example, ,https://admin.haven.example")
	t.Setenv("CORS_ALLOW_CREDENTIALS", "no")
	t.Setenv("SERVER_READ_TIMEOUT", "abc")
	t.Setenv("MAIL_SERVICE_ID", "svc")
	t.Setenv("MAIL_TEMPLATE_ID", "tpl")
	t.Setenv("MAIL_PUBLIC_KEY", "pk")

	cfg := Load()

	if cfg.Database.Driver != "mysql" || cfg.Database.Port != "3306" {
		t.Errorf("Expected mysql on 3306, got %s on %s", cfg.Database.Driver, cfg.Database.Port)
	}
	if cfg.Auth.JWTSecret != "s3cret" {
		t.Errorf("Expected JWT secret from env, got %s", cfg.Auth.JWTSecret)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://admin.haven.example" {
		t.Errorf("Unexpected origins %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.CORS.AllowCredentials {
		t.Error("Expected credentials disabled")
	}
	if cfg.Server.ReadTimeout != 30 {
		t.Errorf("Expected fallback read timeout 30, got %d", cfg.Server.ReadTimeout)
	}
	if !cfg.Mail.Configured() {
		t.Error("Expected mail to be configured")
	}
}

func TestSplitString(t *testing.T) {
	if got := splitString(""); len(got) != 0 {
		t.Errorf("Expected empty slice, got %v", got)
	}
	got := splitString(" a ,b,, c")
	if len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Errorf("Unexpected split %v", got)
	}
}
