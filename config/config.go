package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Server configures the catalog backend.
type Server struct {
	Port     string `envconfig:"PORT" default:"3000"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// DBDriver is postgres or sqlite.
	DBDriver    string `envconfig:"DB_DRIVER" default:"postgres"`
	DatabaseURL string `envconfig:"DATABASE_URL"`
	DBHost      string `envconfig:"DB_HOST" default:"localhost"`
	DBPort      string `envconfig:"DB_PORT" default:"5432"`
	DBUser      string `envconfig:"DB_USER" default:"postgres"`
	DBPassword  string `envconfig:"DB_PASSWORD"`
	DBName      string `envconfig:"DB_NAME" default:"ecoisla"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"ecoisla.db"`

	UploadDir       string        `envconfig:"UPLOAD_DIR" default:"uploads"`
	BackupDir       string        `envconfig:"BACKUP_DIR"`
	BackupRetention time.Duration `envconfig:"BACKUP_RETENTION" default:"96h"`

	JWTSecret      string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL       time.Duration `envconfig:"TOKEN_TTL" default:"72h"`
	AllowedOrigins []string      `envconfig:"ALLOWED_ORIGINS" default:"*"`
}

// DSN is the postgres connection string, DATABASE_URL taking precedence.
func (s *Server) DSN() string {
	if s.DatabaseURL != "" {
		return s.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		s.DBHost, s.DBUser, s.DBPassword, s.DBName, s.DBPort,
	)
}

func LoadServer() (*Server, error) {
	var cfg Server
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must not be empty")
	}
	cfg.DBDriver = strings.ToLower(cfg.DBDriver)
	if cfg.DBDriver != "postgres" && cfg.DBDriver != "sqlite" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	return &cfg, nil
}

// Storefront configures the command-line storefront. Flags override it.
type Storefront struct {
	APIURL  string `envconfig:"API_URL" default:"http://localhost:3000"`
	Profile string `envconfig:"PROFILE" default:"ecoisla-profile.db"`
	// Variant is "direct" (cart straight to payment) or "shipping".
	Variant  string `envconfig:"VARIANT" default:"direct"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"warn"`
}

func LoadStorefront() (*Storefront, error) {
	var cfg Storefront
	if err := envconfig.Process("ecoisla", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
