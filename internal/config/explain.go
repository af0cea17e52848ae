package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths include:
//
//	display
//	xauthority
//	docking.detach_threshold
//	docking.clamp
//	drag.button
//	hotkeys.detach
//	logging.level
//	reconcile_interval_seconds
//	auto_snap
//	auto_snap.<app_id>
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	// Exact-path file source wins.
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	// Rules are tracked as one sequence.
	if strings.HasPrefix(path, "auto_snap.") {
		if src, ok := res.Sources["auto_snap"]; ok {
			return value, src, nil
		}
	}

	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	leaf := func(v any) (any, error) {
		if len(parts) != 1 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		return v, nil
	}
	field := func(fields map[string]any) (any, error) {
		if len(parts) == 1 {
			return fields, nil
		}
		if len(parts) != 2 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		v, ok := fields[parts[1]]
		if !ok {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		return v, nil
	}

	switch parts[0] {
	case "display":
		return leaf(cfg.Display)
	case "xauthority":
		return leaf(cfg.XAuthority)
	case "reconcile_interval_seconds":
		return leaf(cfg.ReconcileIntervalSeconds)
	case "docking":
		d := cfg.Docking
		return field(map[string]any{
			"detach_threshold":    d.DetachThreshold,
			"detach_cooldown_ms":  d.DetachCooldownMS,
			"default_gap":         d.DefaultGap,
			"default_alignment":   d.DefaultAlignment,
			"proximity_threshold": d.ProximityThreshold,
			"clamp":               d.Clamp,
			"on_target_hidden":    d.OnTargetHidden,
			"on_target_destroyed": d.OnTargetDestroyed,
		})
	case "drag":
		return field(map[string]any{"button": cfg.Drag.Button})
	case "hotkeys":
		return field(map[string]any{
			"detach": cfg.Hotkeys.Detach,
			"resnap": cfg.Hotkeys.Resnap,
		})
	case "logging":
		return field(map[string]any{"level": cfg.Logging.Level})
	case "auto_snap":
		if len(parts) == 1 {
			return cfg.AutoSnap, nil
		}
		appID := strings.Join(parts[1:], ".")
		rule, ok := cfg.RuleFor(appID)
		if !ok {
			return nil, fmt.Errorf("no auto_snap rule for %q", appID)
		}
		return rule, nil
	default:
		return nil, fmt.Errorf("unknown path: %s", path)
	}
}
