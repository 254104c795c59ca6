package configs

import "time"

// Sweeper configures the background lifecycle sweeper. Retention is raised
// to the longest admission window at startup.
type Sweeper struct {
	Interval  time.Duration `env:"INTERVAL" envDefault:"1m"`
	Retention time.Duration `env:"RETENTION" envDefault:"48h"`
}
