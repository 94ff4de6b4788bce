package main

import (
	"time"

	"github.com/dmitrymomot/cvbuilder/integration/database/pg"
	"github.com/dmitrymomot/cvbuilder/integration/database/redis"
	"github.com/dmitrymomot/cvbuilder/integration/storage/s3"
	"github.com/dmitrymomot/cvbuilder/pkg/ratelimiter"
)

// Config aggregates all server configuration from the environment.
type Config struct {
	DB        pg.Config
	Redis     redis.Config
	S3        s3.Config
	RateLimit ratelimiter.Config

	AppName  string `env:"APP_NAME" envDefault:"cvbuilder"`
	Env      string `env:"APP_ENV" envDefault:"development"`
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8000"`

	JWTSecret    string `env:"JWT_SECRET,required"`
	OpenAIAPIKey string `env:"API_KEY,required"`

	CacheTTL        time.Duration `env:"CACHE_TTL" envDefault:"20m"`
	DialogTTL       time.Duration `env:"DIALOG_TTL" envDefault:"180s"`
	DialogMaxLength int           `env:"DIALOG_MAX_MESSAGES" envDefault:"6"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
}
