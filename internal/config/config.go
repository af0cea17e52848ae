package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/tiledock/internal/dock"
	"github.com/1broseidon/tiledock/internal/geometry"
)

// ClampMode selects the work area anchored positions are clamped into.
type ClampMode string

const (
	ClampTargetDisplay ClampMode = "target-display" // Work area of the display holding the target's center.
	ClampNone          ClampMode = "none"           // Never clamp.
)

// DockingConfig tunes the docking controller.
type DockingConfig struct {
	DetachThreshold    float64   `yaml:"detach_threshold"`
	DetachCooldownMS   int       `yaml:"detach_cooldown_ms"`
	DefaultGap         int       `yaml:"default_gap"`
	DefaultAlignment   string    `yaml:"default_alignment"`
	ProximityThreshold float64   `yaml:"proximity_threshold"`
	Clamp              ClampMode `yaml:"clamp"`
	OnTargetHidden     string    `yaml:"on_target_hidden"`
	OnTargetDestroyed  string    `yaml:"on_target_destroyed"`
}

// DragConfig configures the pointer binding that starts panel drags.
type DragConfig struct {
	// Button is an xgbutil mouse string, e.g. "Mod4-1" for Super+left click.
	Button string `yaml:"button"`
}

// HotkeysConfig holds global key bindings. Empty disables a binding.
type HotkeysConfig struct {
	Detach string `yaml:"detach,omitempty"`
	Resnap string `yaml:"resnap,omitempty"`
}

// LoggingConfig configures the daemon logger.
type LoggingConfig struct {
	// Level controls verbosity: debug, info, warn, error
	Level string `yaml:"level"`
}

// AutoSnapRule applies an auto-snap declaration to every panel whose
// WM_CLASS matches AppID.
type AutoSnapRule struct {
	AppID              string   `yaml:"app_id"`
	AcceptsSnapOn      []string `yaml:"accepts_snap_on,omitempty"`
	CanSnapFrom        []string `yaml:"can_snap_from,omitempty"`
	Targets            []string `yaml:"targets,omitempty"` // WM_CLASS allow-list; empty means any
	ProximityThreshold float64  `yaml:"proximity_threshold,omitempty"`
	ShowFeedback       bool     `yaml:"show_feedback,omitempty"`
}

// Matches reports whether class names this rule's application.
func (r AutoSnapRule) Matches(class string) bool {
	return r.AppID != "" && strings.EqualFold(r.AppID, class)
}

// Config holds the application configuration.
type Config struct {
	Display                  string         `yaml:"display,omitempty"`
	XAuthority               string         `yaml:"xauthority,omitempty"`
	Docking                  DockingConfig  `yaml:"docking"`
	Drag                     DragConfig     `yaml:"drag"`
	Hotkeys                  HotkeysConfig  `yaml:"hotkeys"`
	Logging                  LoggingConfig  `yaml:"logging"`
	ReconcileIntervalSeconds int            `yaml:"reconcile_interval_seconds"`
	AutoSnap                 []AutoSnapRule `yaml:"auto_snap,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Docking: DockingConfig{
			DetachThreshold:    dock.DefaultDetachThreshold,
			DetachCooldownMS:   int(dock.DefaultCooldown.Milliseconds()),
			DefaultGap:         dock.DefaultGap,
			DefaultAlignment:   string(geometry.AlignCenter),
			ProximityThreshold: dock.DefaultProximityThreshold,
			Clamp:              ClampTargetDisplay,
			OnTargetHidden:     string(dock.DefaultPolicies.OnTargetHidden),
			OnTargetDestroyed:  string(dock.DefaultPolicies.OnTargetDestroyed),
		},
		Drag: DragConfig{
			Button: "Mod4-1", // Super+left click
		},
		Hotkeys: HotkeysConfig{
			Detach: "Mod4-Mod1-d",
			Resnap: "Mod4-Mod1-s",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		ReconcileIntervalSeconds: 5,
	}
}

// Save writes the configuration to path, or to the standard location when
// path is empty.
//
// Note: this marshals the effective config and will not preserve comments or
// include structure from the original YAML.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	d := c.Docking
	if d.DetachThreshold <= 0 {
		return &ValidationError{Path: "docking.detach_threshold", Err: fmt.Errorf("detach_threshold must be > 0")}
	}
	if d.DetachCooldownMS < 0 {
		return &ValidationError{Path: "docking.detach_cooldown_ms", Err: fmt.Errorf("detach_cooldown_ms must be >= 0")}
	}
	if d.DefaultGap < 0 {
		return &ValidationError{Path: "docking.default_gap", Err: fmt.Errorf("default_gap must be >= 0")}
	}
	if _, err := geometry.ParseAlignment(d.DefaultAlignment); err != nil {
		return &ValidationError{Path: "docking.default_alignment", Err: err}
	}
	if d.ProximityThreshold <= 0 {
		return &ValidationError{Path: "docking.proximity_threshold", Err: fmt.Errorf("proximity_threshold must be > 0")}
	}
	switch d.Clamp {
	case ClampTargetDisplay, ClampNone:
	default:
		return &ValidationError{Path: "docking.clamp", Err: fmt.Errorf("clamp must be one of: target-display, none")}
	}
	if !dock.HiddenPolicy(d.OnTargetHidden).Valid() {
		return &ValidationError{Path: "docking.on_target_hidden", Err: fmt.Errorf("on_target_hidden must be one of: hideFollower, detach, keepBinding")}
	}
	if !dock.DestroyedPolicy(d.OnTargetDestroyed).Valid() {
		return &ValidationError{Path: "docking.on_target_destroyed", Err: fmt.Errorf("on_target_destroyed must be one of: hideAndDetach, detach")}
	}
	if strings.TrimSpace(c.Drag.Button) == "" {
		return &ValidationError{Path: "drag.button", Err: fmt.Errorf("drag.button is required")}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("level must be one of: debug, info, warn, error")}
	}
	if c.ReconcileIntervalSeconds <= 0 {
		return &ValidationError{Path: "reconcile_interval_seconds", Err: fmt.Errorf("reconcile_interval_seconds must be > 0")}
	}

	seen := make(map[string]bool)
	for i, rule := range c.AutoSnap {
		path := fmt.Sprintf("auto_snap[%d]", i)
		if strings.TrimSpace(rule.AppID) == "" {
			return &ValidationError{Path: path + ".app_id", Err: fmt.Errorf("app_id is required")}
		}
		key := strings.ToLower(rule.AppID)
		if seen[key] {
			return &ValidationError{Path: path + ".app_id", Err: fmt.Errorf("duplicate rule for %q", rule.AppID)}
		}
		seen[key] = true
		if len(rule.AcceptsSnapOn) == 0 && len(rule.CanSnapFrom) == 0 {
			return &ValidationError{Path: path, Err: fmt.Errorf("rule must set accepts_snap_on or can_snap_from")}
		}
		if _, err := ParseEdges(rule.AcceptsSnapOn); err != nil {
			return &ValidationError{Path: path + ".accepts_snap_on", Err: err}
		}
		if _, err := ParseEdges(rule.CanSnapFrom); err != nil {
			return &ValidationError{Path: path + ".can_snap_from", Err: err}
		}
		if rule.ProximityThreshold < 0 {
			return &ValidationError{Path: path + ".proximity_threshold", Err: fmt.Errorf("proximity_threshold must be >= 0")}
		}
	}

	return nil
}

// ParseEdges converts edge names, rejecting unknown ones.
func ParseEdges(names []string) ([]geometry.Edge, error) {
	out := make([]geometry.Edge, 0, len(names))
	for _, n := range names {
		e, err := geometry.ParseEdge(n)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// RuleFor returns the auto-snap rule matching class.
func (c *Config) RuleFor(class string) (AutoSnapRule, bool) {
	for _, r := range c.AutoSnap {
		if r.Matches(class) {
			return r, true
		}
	}
	return AutoSnapRule{}, false
}
