package jwtmw

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvKeyJWTSecret is the environment variable holding the HMAC signing key.
const EnvKeyJWTSecret = "JWT_SECRET"

// Config holds JWT signing settings.
type Config struct {
	Secret string        `env:"JWT_SECRET"`
	TTL    time.Duration `env:"JWT_TTL" envDefault:"1h"`
}

// LoadConfig loads JWT settings from environment variables.
func LoadConfig() (Config, error) {
	return env.ParseAs[Config]()
}
