package daemon

import (
	"log/slog"
	"time"

	"github.com/1broseidon/tiledock/internal/config"
	"github.com/1broseidon/tiledock/internal/dock"
	"github.com/1broseidon/tiledock/internal/geometry"
)

// OptionsFromConfig maps the docking section of cfg onto controller options.
// cfg is expected to be validated.
func OptionsFromConfig(cfg *config.Config, logger *slog.Logger) dock.Options {
	d := cfg.Docking
	return dock.Options{
		DetachThreshold:    d.DetachThreshold,
		Cooldown:           time.Duration(d.DetachCooldownMS) * time.Millisecond,
		Gap:                d.DefaultGap,
		Alignment:          geometry.Alignment(d.DefaultAlignment),
		ProximityThreshold: d.ProximityThreshold,
		Policies: dock.Policies{
			OnTargetHidden:    dock.HiddenPolicy(d.OnTargetHidden),
			OnTargetDestroyed: dock.DestroyedPolicy(d.OnTargetDestroyed),
		},
		NoClamp: d.Clamp == config.ClampNone,
		Logger:  logger,
	}
}
