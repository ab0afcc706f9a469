// Package config provides configuration management for Haven
package config

import (
	"crypto/rand"
	"encoding/base64"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Config holds the runtime configuration
type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	CORS     CORSConfig
	Database DatabaseConfig
	Mail     MailConfig
	Storage  StorageConfig
	Site     SiteConfig
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port         string
	Mode         string
	ReadTimeout  int
	WriteTimeout int
}

// AuthConfig holds authentication settings
type AuthConfig struct {
	JWTSecret        string
	AccessExpiry     int // hours
	MaxLoginAttempts int // per LoginWindowMins before the key is blocked
	LoginWindowMins  int
	LoginBlockMins   int
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins   []string
	AllowCredentials bool
}

// DatabaseConfig holds database settings. URL wins over the discrete fields.
type DatabaseConfig struct {
	Driver       string // postgres | mysql
	URL          string
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	LogLevel     string // silent | error | warn | info
	SlowQueryMS  int
	MaxOpenConns int
	MaxIdleConns int
}

// MailConfig holds the transactional email API credentials
type MailConfig struct {
	Endpoint   string
	ServiceID  string
	TemplateID string
	PublicKey  string
	ToEmail    string
	Fallback   string
	TimeoutSec int
}

// Configured reports whether every credential needed to send is present
func (m MailConfig) Configured() bool {
	return m.ServiceID != "" && m.TemplateID != "" && m.PublicKey != ""
}

// StorageConfig holds the upload bucket settings
type StorageConfig struct {
	Dir            string
	PublicBaseURL  string
	MaxUploadBytes int64
	AllowInline    bool
}

// SiteConfig holds public site defaults
type SiteConfig struct {
	Name            string
	DefaultTitle    string
	DefaultDesc     string
	ContactEmail    string
	ContactPhone    string
	SeedDemoContent bool
}

// Load builds the configuration from environment variables
func Load() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8090"),
			Mode:         getEnv("SERVER_MODE", "debug"),
			ReadTimeout:  getInt("SERVER_READ_TIMEOUT", 30),
			WriteTimeout: getInt("SERVER_WRITE_TIMEOUT", 30),
		},
		Auth: AuthConfig{
			JWTSecret:        getEnv("JWT_SECRET", ""),
			AccessExpiry:     getInt("JWT_ACCESS_EXPIRY", 24),
			MaxLoginAttempts: getInt("LOGIN_MAX_ATTEMPTS", 5),
			LoginWindowMins:  getInt("LOGIN_WINDOW_MINUTES", 5),
			LoginBlockMins:   getInt("LOGIN_BLOCK_MINUTES", 15),
		},
		CORS: CORSConfig{
			AllowedOrigins:   splitString(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
			AllowCredentials: getBool("CORS_ALLOW_CREDENTIALS", true),
		},
		Database: DatabaseConfig{
			Driver:       strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			URL:          getEnv("DATABASE_URL", ""),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", ""),
			User:         getEnv("DB_USER", "haven"),
			Password:     getEnv("DB_PASSWORD", ""),
			Name:         getEnv("DB_NAME", "haven"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			LogLevel:     getEnv("DB_LOG_LEVEL", "warn"),
			SlowQueryMS:  getInt("DB_SLOW_QUERY_MS", 200),
			MaxOpenConns: getInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getInt("DB_MAX_IDLE_CONNS", 5),
		},
		Mail: MailConfig{
			Endpoint:   getEnv("MAIL_ENDPOINT", "https://api.emailjs.com/api/v1.0/email/send"),
			ServiceID:  getEnv("MAIL_SERVICE_ID", ""),
			TemplateID: getEnv("MAIL_TEMPLATE_ID", ""),
			PublicKey:  getEnv("MAIL_PUBLIC_KEY", ""),
			ToEmail:    getEnv("MAIL_TO", ""),
			Fallback:   getEnv("MAIL_FALLBACK", "Please call or email us directly while online messaging is being set up."),
			TimeoutSec: getInt("MAIL_TIMEOUT", 10),
		},
		Storage: StorageConfig{
			Dir:            getEnv("UPLOAD_DIR", "./uploads"),
			PublicBaseURL:  getEnv("UPLOAD_PUBLIC_URL", "/uploads"),
			MaxUploadBytes: int64(getInt("UPLOAD_MAX_MB", 5)) << 20,
			AllowInline:    getBool("UPLOAD_ALLOW_INLINE", true),
		},
		Site: SiteConfig{
			Name:            getEnv("SITE_NAME", "Haven Resort"),
			DefaultTitle:    getEnv("SITE_TITLE", "Haven Resort | Rooms, Dining & Offers"),
			DefaultDesc:     getEnv("SITE_DESCRIPTION", "A quiet resort with comfortable rooms, a seasonal restaurant and curated experiences."),
			ContactEmail:    getEnv("SITE_CONTACT_EMAIL", ""),
			ContactPhone:    getEnv("SITE_CONTACT_PHONE", ""),
			SeedDemoContent: getBool("SEED_DEMO_CONTENT", false),
		},
	}

	if cfg.Database.Port == "" {
		cfg.Database.Port = DefaultPort(cfg.Database.Driver)
	}

	if cfg.Auth.JWTSecret == "" {
		if cfg.Server.Mode == "release" {
			log.Printf("⚠️  JWT_SECRET is not set; sessions will not survive a restart")
		}
		cfg.Auth.JWTSecret = GenerateJWTSecret()
	}

	return cfg
}

// DefaultPort returns the conventional port of a database driver
func DefaultPort(driver string) string {
	if driver == "mysql" {
		return "3306"
	}
	return "5432"
}

// GenerateJWTSecret generates a secure random JWT secret
func GenerateJWTSecret() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "haven-fallback-secret-" + uuid.New().String()
	}
	return base64.URLEncoding.EncodeToString(bytes)
}

func getEnv(key, defaultValue string) string {
	if val, ok := os.LookupEnv(key); ok && strings.TrimSpace(val) != "" {
		return strings.TrimSpace(val)
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	val := getEnv(key, "")
	if val == "" {
		return defaultValue
	}
	if i, err := strconv.Atoi(val); err == nil {
		return i
	}
	log.Printf("config: %s=%q is not a number, using %d", key, val, defaultValue)
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	val := strings.ToLower(getEnv(key, ""))
	if val == "" {
		return defaultValue
	}
	return val == "true" || val == "1" || val == "yes"
}

// splitString splits a comma-separated string into a slice
func splitString(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
