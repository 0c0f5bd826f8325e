package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Session  SessionConfig
	Intake   IntakeConfig
	Storage  StorageConfig
	Redis    RedisConfig
	Venue    VenueConfig
}

type ServerConfig struct {
	Port string `validate:"required,numeric"`
	Env  string `validate:"oneof=development production test"`
	// PublicURL prefixes preview locators handed to the browser
	PublicURL      string   `validate:"required,url"`
	AllowedOrigins []string `validate:"min=1"`
}

type DatabaseConfig struct {
	Driver   string `validate:"oneof=postgres sqlite"`
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	// Path is the sqlite file, ":memory:" for an in-process database
	Path string
}

type SessionConfig struct {
	Secret        string        `validate:"required,min=16"`
	TTL           time.Duration `validate:"gt=0"`
	SweepInterval time.Duration `validate:"gt=0"`
}

type IntakeConfig struct {
	MaxImageSize  int64         `validate:"gt=0"`
	MaxVideoSize  int64         `validate:"gt=0"`
	WishLatency   time.Duration `validate:"gte=0"`
	PhotoLatency  time.Duration `validate:"gte=0"`
	MaxUploadSize int64         `validate:"gtefield=MaxVideoSize"`
}

type StorageConfig struct {
	// Provider is empty when catalog locators are plain URLs
	Provider   string `validate:"omitempty,oneof=s3 seaweedfs"`
	PresignTTL time.Duration
	SeaweedFS  SeaweedFSConfig
	S3         S3Config
}

type SeaweedFSConfig struct {
	MasterURL string
	Filer     string
}

type S3Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicURL       string
	Endpoint        string
	ForcePathStyle  bool
}

type RedisConfig struct {
	// Addr is empty when pub/sub fan-out is off
	Addr     string
	Password string
	DB       int `validate:"gte=0"`
}

type VenueConfig struct {
	Latitude  float64 `validate:"latitude"`
	Longitude float64 `validate:"longitude"`
	Label     string  `validate:"required"`
}

// Load reads .env if present, then the environment. A missing .env is fine.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Env:            getEnv("ENV", "development"),
			PublicURL:      strings.TrimSuffix(getEnv("PUBLIC_URL", "http://localhost:8080"), "/"),
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "sqlite"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "festival"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Path:     getEnv("DB_PATH", "festival.db"),
		},
		Session: SessionConfig{
			Secret:        getEnv("SESSION_SECRET", defaultSessionSecret),
			TTL:           getEnvAsDuration("SESSION_TTL", 30*time.Minute),
			SweepInterval: getEnvAsDuration("SESSION_SWEEP_INTERVAL", time.Minute),
		},
		Intake: IntakeConfig{
			MaxImageSize:  int64(getEnvAsInt("MAX_IMAGE_SIZE", 10<<20)),
			MaxVideoSize:  int64(getEnvAsInt("MAX_VIDEO_SIZE", 50<<20)),
			WishLatency:   getEnvAsDuration("WISH_LATENCY", 1500*time.Millisecond),
			PhotoLatency:  getEnvAsDuration("PHOTO_LATENCY", 2000*time.Millisecond),
			MaxUploadSize: int64(getEnvAsInt("MAX_UPLOAD_SIZE", 64<<20)),
		},
		Storage: StorageConfig{
			Provider:   getEnv("STORAGE_PROVIDER", ""),
			PresignTTL: getEnvAsDuration("STORAGE_PRESIGN_TTL", 15*time.Minute),
			SeaweedFS: SeaweedFSConfig{
				MasterURL: getEnv("SEAWEEDFS_MASTER_URL", "http://localhost:9333"),
				Filer:     getEnv("SEAWEEDFS_FILER_URL", ""),
			},
			S3: S3Config{
				Region:          getEnv("AWS_REGION", "us-east-1"),
				AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
				SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
				BucketName:      getEnv("AWS_BUCKET_NAME", ""),
				PublicURL:       getEnv("AWS_PUBLIC_URL", ""),
				Endpoint:        getEnv("AWS_ENDPOINT", ""),
				ForcePathStyle:  getEnvAsBool("AWS_FORCE_PATH_STYLE", false),
			},
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Venue: VenueConfig{
			Latitude:  getEnvAsFloat("VENUE_LATITUDE", 51.0970),
			Longitude: getEnvAsFloat("VENUE_LONGITUDE", 16.9645),
			Label:     getEnv("VENUE_LABEL", "Wieża Bismarcka"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// defaultSessionSecret only signs tokens on a developer machine
const defaultSessionSecret = "change-me-festival-secret"

var validate = validator.New()

// Validate checks every section
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Storage.Provider == "s3" && c.Storage.S3.BucketName == "" {
		return errors.New("invalid configuration: AWS_BUCKET_NAME is required for the s3 provider")
	}
	if !c.Server.IsDevelopment() && c.Session.Secret == defaultSessionSecret {
		return fmt.Errorf("invalid configuration: SESSION_SECRET must be set when ENV=%s", c.Server.Env)
	}
	return nil
}

// IsDevelopment reports whether the server runs with development defaults
func (s ServerConfig) IsDevelopment() bool {
	return s.Env == "development"
}

func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
