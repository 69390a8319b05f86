package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// envConfig lists the variables overlaid on Config. JWT_SECRET is not here;
// SigningSecret reads it at use so the precedence holds for every caller.
type envConfig struct {
	Env         string `env:"APP_ENV" env-description:"deployment environment (local, dev, production)"`
	HTTPAddr    string `env:"HTTP_ADDR" env-description:"HTTP bind address"`
	DatabaseDSN string `env:"DATABASE_DSN" env-description:"PostgreSQL DSN, or memory"`
}

// parseEnv loads envFile into the process environment (variables already
// set are kept) and overlays the non-empty variables of envConfig. A
// missing envFile is not an error.
func parseEnv(config *Config, envFile string) error {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", envFile, err)
	}

	var e envConfig
	if err := cleanenv.ReadEnv(&e); err != nil {
		return fmt.Errorf("read env: %w", err)
	}

	if e.Env != "" {
		config.Env = e.Env
	}
	if e.HTTPAddr != "" {
		config.HTTPAddr = e.HTTPAddr
	}
	if e.DatabaseDSN != "" {
		config.DatabaseDSN = e.DatabaseDSN
	}

	return nil
}

// EnvUsage describes the environment variables the server reads.
func EnvUsage() string {
	desc, err := cleanenv.GetDescription(&envConfig{}, nil)
	if err != nil {
		return ""
	}
	return desc + "\n  " + SecretEnvVar + " string\n    \tJWT signing secret, takes precedence over -s"
}
