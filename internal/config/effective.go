package config

import (
	"fmt"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// BuildEffectiveConfig overlays raw onto the defaults.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.Display != nil {
		cfg.Display = *raw.Display
	}
	if raw.XAuthority != nil {
		cfg.XAuthority = *raw.XAuthority
	}
	if raw.ReconcileIntervalSeconds != nil {
		cfg.ReconcileIntervalSeconds = *raw.ReconcileIntervalSeconds
	}

	if d := raw.Docking; d != nil {
		if d.DetachThreshold != nil {
			cfg.Docking.DetachThreshold = *d.DetachThreshold
		}
		if d.DetachCooldownMS != nil {
			cfg.Docking.DetachCooldownMS = *d.DetachCooldownMS
		}
		cfg.Docking.DefaultGap = derefInt(d.DefaultGap, cfg.Docking.DefaultGap)
		if d.DefaultAlignment != nil {
			cfg.Docking.DefaultAlignment = *d.DefaultAlignment
		}
		if d.ProximityThreshold != nil {
			cfg.Docking.ProximityThreshold = *d.ProximityThreshold
		}
		if d.Clamp != nil {
			cfg.Docking.Clamp = *d.Clamp
		}
		if d.OnTargetHidden != nil {
			cfg.Docking.OnTargetHidden = *d.OnTargetHidden
		}
		if d.OnTargetDestroyed != nil {
			cfg.Docking.OnTargetDestroyed = *d.OnTargetDestroyed
		}
	}

	if raw.Drag != nil && raw.Drag.Button != nil {
		cfg.Drag.Button = *raw.Drag.Button
	}
	if h := raw.Hotkeys; h != nil {
		if h.Detach != nil {
			cfg.Hotkeys.Detach = *h.Detach
		}
		if h.Resnap != nil {
			cfg.Hotkeys.Resnap = *h.Resnap
		}
	}
	if raw.Logging != nil && raw.Logging.Level != nil {
		cfg.Logging.Level = *raw.Logging.Level
	}

	if raw.AutoSnap != nil {
		cfg.AutoSnap = append([]AutoSnapRule(nil), raw.AutoSnap...)
	}

	return cfg, nil
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
