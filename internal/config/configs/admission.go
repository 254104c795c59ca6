package configs

import (
	"time"

	"boost-engine/internal/core/admission"
	"boost-engine/internal/core/domain"
)

// Admission holds the abuse limits. Each content type has its own sliding
// window cap and cooldown.
type Admission struct {
	LiveMax      int           `env:"LIVE_MAX" envDefault:"3"`
	LiveWindow   time.Duration `env:"LIVE_WINDOW" envDefault:"30m"`
	LiveCooldown time.Duration `env:"LIVE_COOLDOWN" envDefault:"2m"`

	PostMax      int           `env:"POST_MAX" envDefault:"5"`
	PostWindow   time.Duration `env:"POST_WINDOW" envDefault:"2h"`
	PostCooldown time.Duration `env:"POST_COOLDOWN" envDefault:"3m"`

	ProfileMax      int           `env:"PROFILE_MAX" envDefault:"1"`
	ProfileWindow   time.Duration `env:"PROFILE_WINDOW" envDefault:"24h"`
	ProfileCooldown time.Duration `env:"PROFILE_COOLDOWN" envDefault:"1h"`

	SameContentCooldown time.Duration `env:"SAME_CONTENT_COOLDOWN" envDefault:"1h"`
	MaxDaily            int           `env:"MAX_DAILY" envDefault:"10"`
	DailyWindow         time.Duration `env:"DAILY_WINDOW" envDefault:"24h"`
}

// Rules converts the section into the admission controller config.
func (c Admission) Rules() admission.Config {
	return admission.Config{
		Limits: map[domain.ContentType]admission.Limit{
			domain.ContentTypeLiveStream: {MaxBoosts: c.LiveMax, Window: c.LiveWindow, Cooldown: c.LiveCooldown},
			domain.ContentTypePost:       {MaxBoosts: c.PostMax, Window: c.PostWindow, Cooldown: c.PostCooldown},
			domain.ContentTypeProfile:    {MaxBoosts: c.ProfileMax, Window: c.ProfileWindow, Cooldown: c.ProfileCooldown},
		},
		SameContentCooldown: c.SameContentCooldown,
		MaxDailyBoosts:      c.MaxDaily,
		DailyWindow:         c.DailyWindow,
	}
}
