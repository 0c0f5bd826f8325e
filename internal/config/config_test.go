package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inTempDir runs the test away from any .env in the working tree
func inTempDir(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	inTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, int64(10<<20), cfg.Intake.MaxImageSize)
	assert.Equal(t, int64(50<<20), cfg.Intake.MaxVideoSize)
	assert.Equal(t, 1500*time.Millisecond, cfg.Intake.WishLatency)
	assert.Equal(t, 2*time.Second, cfg.Intake.PhotoLatency)
	assert.InDelta(t, 51.0970, cfg.Venue.Latitude, 1e-9)
	assert.InDelta(t, 16.9645, cfg.Venue.Longitude, 1e-9)
	assert.Equal(t, "Wieża Bismarcka", cfg.Venue.Label)
	assert.Empty(t, cfg.Storage.Provider)
	assert.True(t, cfg.Server.IsDevelopment())
}

func TestLoad_Environment(t *testing.T) {
	inTempDir(t)
	t.Setenv("PORT", "9000")
	t.Setenv("ENV", "production")
	t.Setenv("SESSION_SECRET", "a-real-production-secret")
	t.Setenv("WISH_LATENCY", "250ms")
	t.Setenv("ALLOWED_ORIGINS", "https://festival.example, https://www.festival.example")
	t.Setenv("VENUE_LATITUDE", "50.5")
	t.Setenv("MAX_IMAGE_SIZE", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.False(t, cfg.Server.IsDevelopment())
	assert.Equal(t, 250*time.Millisecond, cfg.Intake.WishLatency)
	assert.Equal(t, []string{"https://festival.example", "https://www.festival.example"}, cfg.Server.AllowedOrigins)
	assert.InDelta(t, 50.5, cfg.Venue.Latitude, 1e-9)
	assert.Equal(t, int64(10<<20), cfg.Intake.MaxImageSize, "unparsable values fall back")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown driver", "DB_DRIVER", "mysql"},
		{"latitude out of range", "VENUE_LATITUDE", "123"},
		{"short secret", "SESSION_SECRET", "short"},
		{"unknown provider", "STORAGE_PROVIDER", "ftp"},
		{"s3 without bucket", "STORAGE_PROVIDER", "s3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inTempDir(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.ErrorContains(t, err, "invalid configuration")
		})
	}
}

func TestLoad_DefaultSecretOnlyInDevelopment(t *testing.T) {
	for _, env := range []string{"production", "test"} {
		t.Run(env, func(t *testing.T) {
			inTempDir(t)
			t.Setenv("ENV", env)

			_, err := Load()
			assert.ErrorContains(t, err, "SESSION_SECRET must be set")

			t.Setenv("SESSION_SECRET", "another-long-enough-secret")
			_, err = Load()
			assert.NoError(t, err)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "festival", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=festival sslmode=disable", d.DSN())
}
