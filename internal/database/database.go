// Package database opens the gorm connection and keeps the schema current
package database

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/aethra/haven/internal/config"
)

// Connect opens the database selected by cfg.Driver and configures the pool
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn, err := BuildDSN(cfg)
	if err != nil {
		return nil, err
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres", "postgresql":
		dialector = postgres.Open(dsn)
	case "mysql":
		dialector = gormmysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newLogger(cfg),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// Close releases the underlying pool
func Close(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

func newLogger(cfg config.DatabaseConfig) logger.Interface {
	level := logger.Warn
	switch strings.ToLower(cfg.LogLevel) {
	case "silent":
		level = logger.Silent
	case "error":
		level = logger.Error
	case "info":
		level = logger.Info
	}

	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Duration(cfg.SlowQueryMS) * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// BuildDSN constructs the driver connection string. DATABASE_URL wins over
// the discrete settings; a URL without a recognised scheme is used as is.
func BuildDSN(cfg config.DatabaseConfig) (string, error) {
	raw := strings.TrimSpace(cfg.URL)
	if raw != "" {
		switch {
		case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
			dsn, err := pq.ParseURL(raw)
			if err != nil {
				return "", fmt.Errorf("invalid postgres url: %w", err)
			}
			return dsn, nil
		case strings.HasPrefix(raw, "mysql://"):
			return mysqlDSNFromURL(raw)
		default:
			return raw, nil
		}
	}

	switch cfg.Driver {
	case "postgres", "postgresql":
		return buildPostgresDSN(cfg), nil
	case "mysql":
		return buildMySQLDSN(cfg), nil
	default:
		return "", fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

func buildPostgresDSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)
}

func buildMySQLDSN(cfg config.DatabaseConfig) string {
	mc := mysqlConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Addr = cfg.Host + ":" + cfg.Port
	mc.DBName = cfg.Name
	return mc.FormatDSN()
}

func mysqlDSNFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid mysql url: %w", err)
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", fmt.Errorf("mysql url missing database name")
	}
	port := u.Port()
	if port == "" {
		port = config.DefaultPort("mysql")
	}

	mc := mysqlConfig()
	mc.User = u.User.Username()
	mc.Passwd, _ = u.User.Password()
	mc.Addr = u.Hostname() + ":" + port
	mc.DBName = dbName
	for key, values := range u.Query() {
		if key == "parseTime" || key == "loc" {
			continue
		}
		if len(values) > 0 {
			mc.Params[key] = values[0]
		}
	}
	return mc.FormatDSN(), nil
}

func mysqlConfig() *mysqldriver.Config {
	mc := mysqldriver.NewConfig()
	mc.Net = "tcp"
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc
}
