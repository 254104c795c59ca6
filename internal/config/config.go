package config

import (
	"github.com/caarlos0/env/v11"

	"boost-engine/internal/config/configs"
)

// Config aggregates all configuration sections for the application. Fields
// are populated from environment variables using the caarlos0/env library.
// The nested structs are tagged with envPrefix so their fields are parsed
// with the given prefix. See the types in the configs package for default
// values. Use Load to construct a Config.
type Config struct {
	// Env names the deployment environment (e.g. prod, dev). It is added
	// to every log line.
	Env string `env:"ENV" envDefault:"prod"`

	HTTP configs.HTTP   `envPrefix:"HTTP_"`
	Log  configs.Logger `envPrefix:"LOG_"`

	// Psql is only used with the postgres storage driver.
	Psql    configs.Postgres `envPrefix:"PSQL_"`
	Storage configs.Storage  `envPrefix:"STORAGE_"`

	// Lock selects how admissions of one seller are serialized; Redis is
	// only used with the redis lock driver.
	Lock  configs.Lock  `envPrefix:"LOCK_"`
	Redis configs.Redis `envPrefix:"REDIS_"`

	Admission configs.Admission `envPrefix:"ADMISSION_"`
	Pricing   configs.Pricing   `envPrefix:"PRICING_"`
	Payment   configs.Payment   `envPrefix:"PAYMENT_"`
	Sweep     configs.Sweeper   `envPrefix:"SWEEP_"`
}

// Load reads configuration from environment variables into a Config. All
// fields fall back to their defaults when no variable is provided.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
