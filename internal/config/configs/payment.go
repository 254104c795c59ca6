package configs

import "time"

// Payment configures the payment processor client. An empty URL selects
// the local approve-all gateway.
type Payment struct {
	URL             string        `env:"URL"`
	Timeout         time.Duration `env:"TIMEOUT" envDefault:"5s"`
	BreakerFailures uint32        `env:"BREAKER_FAILURES" envDefault:"5"`
	BreakerCooldown time.Duration `env:"BREAKER_COOLDOWN" envDefault:"30s"`
}
