package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServer(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test,http://b.test")

	cfg, err := LoadServer()
	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, 72*time.Hour, cfg.TokenTTL)
}

func TestLoadServer_Errors(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := LoadServer()
		assert.Error(t, err)
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "x")
		t.Setenv("DB_DRIVER", "mongo")
		_, err := LoadServer()
		assert.Error(t, err)
	})
}

func TestServerDSN(t *testing.T) {
	cfg := Server{DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "n", DBPort: "5433"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5433 sslmode=disable", cfg.DSN())

	cfg.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", cfg.DSN())
}

func TestLoadStorefront(t *testing.T) {
	t.Setenv("ECOISLA_API_URL", "http://api.test")
	t.Setenv("ECOISLA_VARIANT", "shipping")

	cfg, err := LoadStorefront()
	require.NoError(t, err)
	assert.Equal(t, "http://api.test", cfg.APIURL)
	assert.Equal(t, "shipping", cfg.Variant)
	assert.Equal(t, "ecoisla-profile.db", cfg.Profile)
}
