package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	StorageLocal = "local"
	StorageS3    = "s3"
)

type Config struct {
	Env  string
	Port string

	DBDriver    string
	DatabaseURL string

	UploadsDir    string
	UploadsBase   string
	StorageDriver string
	S3            S3Config

	JWTSecret     string
	JWTExpiration time.Duration

	SiteURL     string
	CORSOrigins []string

	SeedAdminEmail    string
	SeedAdminPassword string
}

type S3Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	PublicURL       string
	ForcePathStyle  bool
}

// LoadDotEnv loads .env.local then .env. Variables already present in the
// process environment are never overwritten.
func LoadDotEnv() []string {
	var loaded []string
	for _, f := range []string{".env.local", ".env"} {
		if _, err := os.Stat(f); err == nil {
			loaded = append(loaded, f)
		}
	}
	if len(loaded) > 0 {
		_ = godotenv.Load(loaded...)
	}
	return loaded
}

func newViper() *viper.Viper {
	vp := viper.New()
	vp.AutomaticEnv()

	vp.SetDefault("APP_ENV", "development")
	vp.SetDefault("PORT", "8080")
	vp.SetDefault("DB_DRIVER", DriverPostgres)
	vp.SetDefault("DB_HOST", "localhost")
	vp.SetDefault("DB_PORT", "5432")
	vp.SetDefault("DB_USER", "postgres")
	vp.SetDefault("DB_NAME", "carbon_codex")
	vp.SetDefault("DB_SSLMODE", "disable")
	vp.SetDefault("UPLOADS_DIR", "public/uploads")
	vp.SetDefault("UPLOADS_BASE", "/uploads")
	vp.SetDefault("STORAGE_DRIVER", StorageLocal)
	vp.SetDefault("S3_REGION", "auto")
	vp.SetDefault("JWT_EXPIRATION", "24h")
	vp.SetDefault("SITE_URL", "http://localhost:3000")
	vp.SetDefault("CORS_ORIGINS", "*")
	vp.SetDefault("SEED_ADMIN_EMAIL", "admin@example.com")
	vp.SetDefault("SEED_ADMIN_PASSWORD", "admin123")
	return vp
}

// Load reads .env files and the environment into a Config and installs the
// JWT settings.
func Load() (*Config, error) {
	LoadDotEnv()
	return FromViper(newViper())
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(vp *viper.Viper) (*Config, error) {
	cfg := &Config{
		Env:               vp.GetString("APP_ENV"),
		Port:              vp.GetString("PORT"),
		DBDriver:          strings.ToLower(vp.GetString("DB_DRIVER")),
		DatabaseURL:       vp.GetString("DATABASE_URL"),
		UploadsDir:        vp.GetString("UPLOADS_DIR"),
		UploadsBase:       vp.GetString("UPLOADS_BASE"),
		StorageDriver:     strings.ToLower(vp.GetString("STORAGE_DRIVER")),
		JWTSecret:         vp.GetString("JWT_SECRET"),
		JWTExpiration:     vp.GetDuration("JWT_EXPIRATION"),
		SiteURL:           strings.TrimRight(vp.GetString("SITE_URL"), "/"),
		CORSOrigins:       splitList(vp.GetString("CORS_ORIGINS")),
		SeedAdminEmail:    vp.GetString("SEED_ADMIN_EMAIL"),
		SeedAdminPassword: vp.GetString("SEED_ADMIN_PASSWORD"),
		S3: S3Config{
			Endpoint:        vp.GetString("S3_ENDPOINT"),
			Region:          vp.GetString("S3_REGION"),
			Bucket:          vp.GetString("S3_BUCKET"),
			AccessKeyID:     vp.GetString("S3_ACCESS_KEY_ID"),
			SecretAccessKey: vp.GetString("S3_SECRET_ACCESS_KEY"),
			PublicURL:       vp.GetString("S3_PUBLIC_URL"),
			ForcePathStyle:  vp.GetBool("S3_FORCE_PATH_STYLE"),
		},
	}

	if cfg.DatabaseURL == "" && cfg.DBDriver == DriverPostgres {
		cfg.DatabaseURL = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			vp.GetString("DB_HOST"), vp.GetString("DB_PORT"), vp.GetString("DB_USER"),
			vp.GetString("DB_PASSWORD"), vp.GetString("DB_NAME"), vp.GetString("DB_SSLMODE"))
	}
	if cfg.DatabaseURL == "" && cfg.DBDriver == DriverSQLite {
		cfg.DatabaseURL = "carbon-codex.db"
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	SetJWT(cfg.JWTSecret, cfg.JWTExpiration)
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.StorageDriver {
	case StorageLocal:
		if c.UploadsDir == "" {
			return fmt.Errorf("UPLOADS_DIR is not set")
		}
	case StorageS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when STORAGE_DRIVER=s3")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.Env == "production" && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
