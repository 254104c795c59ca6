package configs

import (
	"strings"
	"time"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Storage selects the campaign store and usage ledger backend.
type Storage struct {
	Driver string `env:"DRIVER" envDefault:"memory"`
	// Timeout bounds every storage call. Admission fails closed when it
	// expires.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"2s"`
}

// Backend normalises Driver. Unknown values fall back to memory.
func (c Storage) Backend() string {
	if strings.EqualFold(c.Driver, DriverPostgres) {
		return DriverPostgres
	}
	return DriverMemory
}

// Lock selects the per-seller admission lock.
type Lock struct {
	Driver string `env:"DRIVER" envDefault:"memory"`
}

// Backend normalises Driver. Unknown values fall back to memory.
func (c Lock) Backend() string {
	if strings.EqualFold(c.Driver, DriverRedis) {
		return DriverRedis
	}
	return DriverMemory
}

// Redis configures the client behind the distributed seller lock.
type Redis struct {
	Address   string        `env:"ADDRESS" envDefault:"localhost:6379"`
	Password  string        `env:"PASSWORD"`
	DB        int           `env:"DB" envDefault:"0"`
	LockTTL   time.Duration `env:"LOCK_TTL" envDefault:"10s"`
	LockRetry time.Duration `env:"LOCK_RETRY" envDefault:"25ms"`
}
