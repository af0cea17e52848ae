package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawDockingConfig struct {
	DetachThreshold    *float64   `yaml:"detach_threshold"`
	DetachCooldownMS   *int       `yaml:"detach_cooldown_ms"`
	DefaultGap         *int       `yaml:"default_gap"`
	DefaultAlignment   *string    `yaml:"default_alignment"`
	ProximityThreshold *float64   `yaml:"proximity_threshold"`
	Clamp              *ClampMode `yaml:"clamp"`
	OnTargetHidden     *string    `yaml:"on_target_hidden"`
	OnTargetDestroyed  *string    `yaml:"on_target_destroyed"`
}

type RawDragConfig struct {
	Button *string `yaml:"button"`
}

type RawHotkeysConfig struct {
	Detach *string `yaml:"detach"`
	Resnap *string `yaml:"resnap"`
}

type RawLoggingConfig struct {
	Level *string `yaml:"level"`
}

type RawConfig struct {
	Include                  IncludeList       `yaml:"include"`
	Display                  *string           `yaml:"display"`
	XAuthority               *string           `yaml:"xauthority"`
	Docking                  *RawDockingConfig `yaml:"docking"`
	Drag                     *RawDragConfig    `yaml:"drag"`
	Hotkeys                  *RawHotkeysConfig `yaml:"hotkeys"`
	Logging                  *RawLoggingConfig `yaml:"logging"`
	ReconcileIntervalSeconds *int              `yaml:"reconcile_interval_seconds"`
	AutoSnap                 []AutoSnapRule    `yaml:"auto_snap"`
}

// merge applies overlay on top of c. Scalars are replaced when set; auto_snap
// rules are merged by app_id with overlay rules winning.
func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c
	out.Include = nil

	if overlay.Display != nil {
		out.Display = overlay.Display
	}
	if overlay.XAuthority != nil {
		out.XAuthority = overlay.XAuthority
	}
	if overlay.ReconcileIntervalSeconds != nil {
		out.ReconcileIntervalSeconds = overlay.ReconcileIntervalSeconds
	}

	if overlay.Docking != nil {
		if out.Docking == nil {
			out.Docking = &RawDockingConfig{}
		}
		merged := mergeRawDocking(*out.Docking, *overlay.Docking)
		out.Docking = &merged
	}

	if overlay.Drag != nil {
		if out.Drag == nil {
			out.Drag = &RawDragConfig{}
		}
		merged := *out.Drag
		if overlay.Drag.Button != nil {
			merged.Button = overlay.Drag.Button
		}
		out.Drag = &merged
	}

	if overlay.Hotkeys != nil {
		if out.Hotkeys == nil {
			out.Hotkeys = &RawHotkeysConfig{}
		}
		merged := *out.Hotkeys
		if overlay.Hotkeys.Detach != nil {
			merged.Detach = overlay.Hotkeys.Detach
		}
		if overlay.Hotkeys.Resnap != nil {
			merged.Resnap = overlay.Hotkeys.Resnap
		}
		out.Hotkeys = &merged
	}

	if overlay.Logging != nil {
		if out.Logging == nil {
			out.Logging = &RawLoggingConfig{}
		}
		merged := *out.Logging
		if overlay.Logging.Level != nil {
			merged.Level = overlay.Logging.Level
		}
		out.Logging = &merged
	}

	if overlay.AutoSnap != nil {
		out.AutoSnap = mergeAutoSnapRules(out.AutoSnap, overlay.AutoSnap)
	}

	return out
}

func mergeRawDocking(base RawDockingConfig, overlay RawDockingConfig) RawDockingConfig {
	out := base
	if overlay.DetachThreshold != nil {
		out.DetachThreshold = overlay.DetachThreshold
	}
	if overlay.DetachCooldownMS != nil {
		out.DetachCooldownMS = overlay.DetachCooldownMS
	}
	if overlay.DefaultGap != nil {
		out.DefaultGap = overlay.DefaultGap
	}
	if overlay.DefaultAlignment != nil {
		out.DefaultAlignment = overlay.DefaultAlignment
	}
	if overlay.ProximityThreshold != nil {
		out.ProximityThreshold = overlay.ProximityThreshold
	}
	if overlay.Clamp != nil {
		out.Clamp = overlay.Clamp
	}
	if overlay.OnTargetHidden != nil {
		out.OnTargetHidden = overlay.OnTargetHidden
	}
	if overlay.OnTargetDestroyed != nil {
		out.OnTargetDestroyed = overlay.OnTargetDestroyed
	}
	return out
}

func mergeAutoSnapRules(base []AutoSnapRule, overlay []AutoSnapRule) []AutoSnapRule {
	out := make([]AutoSnapRule, 0, len(base)+len(overlay))
	out = append(out, base...)
	for _, rule := range overlay {
		replaced := false
		for i := range out {
			if out[i].AppID != "" && out[i].Matches(rule.AppID) {
				out[i] = rule
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, rule)
		}
	}
	return out
}
