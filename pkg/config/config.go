package config

import (
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	App struct {
		Env       string `env:"APP_ENV" env-default:"development"`
		Port      int    `env:"APP_PORT" env-default:"8080"`
		SentryDSN string `env:"APP_SENTRY_DSN"`
	}
	Postgres struct {
		Port     int    `env:"POSTGRES_PORT" env-default:"5432"`
		Host     string `env:"POSTGRES_HOST" env-default:"localhost"`
		User     string `env:"POSTGRES_USER"`
		Pass     string `env:"POSTGRES_PASS"`
		Name     string `env:"POSTGRES_NAME"`
		SslMode  string `env:"POSTGRES_SSL_MODE" env-default:"disable"`
		MaxConns int32  `env:"POSTGRES_MAX_CONNS" env-default:"10"`
	}
	Store struct {
		Driver string `env:"STORE_DRIVER" env-default:"postgres"`
	}
	Auth struct {
		JWTSecret string   `env:"AUTH_JWT_SECRET"`
		Issuer    string   `env:"AUTH_ISSUER" env-default:"snapconnect"`
		AdminIDs  []string `env:"AUTH_ADMIN_IDS" env-separator:","`
	}
	Media struct {
		Root string `env:"MEDIA_ROOT" env-default:"./media"`
	}
	Lifecycle struct {
		SnapTTL            time.Duration `env:"LIFECYCLE_SNAP_TTL" env-default:"24h"`
		StoryTTL           time.Duration `env:"LIFECYCLE_STORY_TTL" env-default:"24h"`
		SweepInterval      time.Duration `env:"LIFECYCLE_SWEEP_INTERVAL" env-default:"5m"`
		SweepCron          string        `env:"LIFECYCLE_SWEEP_CRON"`
		SweepBatch         int           `env:"LIFECYCLE_SWEEP_BATCH" env-default:"500"`
		SweepWorkers       int           `env:"LIFECYCLE_SWEEP_WORKERS" env-default:"8"`
		TombstoneRetention time.Duration `env:"LIFECYCLE_TOMBSTONE_RETENTION" env-default:"72h"`
		PurgeHour          uint          `env:"LIFECYCLE_PURGE_HOUR" env-default:"3"`
	}
	RateLimit struct {
		Requests int           `env:"RATE_LIMIT_REQUESTS" env-default:"20"`
		Per      time.Duration `env:"RATE_LIMIT_PER" env-default:"1s"`
		Burst    int           `env:"RATE_LIMIT_BURST" env-default:"40"`
	}
}

// GetDSN returns the postgres connection string shared by pgx and goose.
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Postgres.User,
		c.Postgres.Pass,
		c.Postgres.Host,
		c.Postgres.Port,
		c.Postgres.Name,
		c.Postgres.SslMode,
	)
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c *Config) IsAdmin(userID string) bool {
	return slices.Contains(c.Auth.AdminIDs, userID)
}

var (
	once sync.Once
	cfg  *Config
)

func New() (*Config, error) {
	once.Do(func() {
		// .env is optional; real deployments inject the environment directly.
		_ = godotenv.Load()

		cfg = &Config{}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			help, _ := cleanenv.GetDescription(cfg, nil)
			log.Fatalf("Failed to read configuration: %v\n%v", err, help)
		}
	})
	return cfg, nil
}
