package app

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bovipred/bovipred-backend/internal/platform/env"
	"github.com/bovipred/bovipred-backend/internal/platform/logger"
)

type Config struct {
	Port      string
	JWTSecret string
	TokenTTL  time.Duration

	// MLStrict turns an unreachable prediction service into a 503
	// instead of falling back to the local heuristic.
	MLStrict bool
}

// fileConfig is the optional YAML overlay pointed at by
// BOVIPRED_CONFIG. Environment variables win over file values.
type fileConfig struct {
	Port            string `yaml:"port"`
	JWTSecret       string `yaml:"jwt_secret"`
	TokenTTLSeconds int    `yaml:"token_ttl_seconds"`
	MLStrict        *bool  `yaml:"ml_strict"`
}

func LoadConfig(log *logger.Logger) Config {
	defaults := fileConfig{
		Port:            "8080",
		JWTSecret:       "defaultsecret",
		TokenTTLSeconds: 86400,
	}

	if path := os.Getenv("BOVIPRED_CONFIG"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			log.Warn("Could not read config file, using defaults", "path", path, "error", err)
		} else if err := yaml.Unmarshal(raw, &defaults); err != nil {
			log.Warn("Could not parse config file, using defaults", "path", path, "error", err)
		}
	}

	mlStrict := false
	if defaults.MLStrict != nil {
		mlStrict = *defaults.MLStrict
	}

	return Config{
		Port:      env.Get("PORT", defaults.Port, log),
		JWTSecret: env.Get("JWT_SECRET_KEY", defaults.JWTSecret, log),
		TokenTTL:  time.Duration(env.GetInt("TOKEN_TTL", defaults.TokenTTLSeconds, log)) * time.Second,
		MLStrict:  env.GetBool("ML_STRICT", mlStrict, log),
	}
}
