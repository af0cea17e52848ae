package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/tiledock/internal/geometry"
)

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.Docking.DetachThreshold != 50 {
		t.Fatalf("expected detach_threshold 50, got %v", cfg.Docking.DetachThreshold)
	}
	if cfg.Docking.DetachCooldownMS != 300 {
		t.Fatalf("expected detach_cooldown_ms 300, got %d", cfg.Docking.DetachCooldownMS)
	}
	if cfg.Docking.DefaultGap != 4 {
		t.Fatalf("expected default_gap 4, got %d", cfg.Docking.DefaultGap)
	}
	if cfg.Docking.OnTargetHidden != "hideFollower" || cfg.Docking.OnTargetDestroyed != "hideAndDetach" {
		t.Fatalf("unexpected default policies: %+v", cfg.Docking)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Drag.Button != "Mod4-1" {
		t.Fatalf("expected default drag button, got %q", res.Config.Drag.Button)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected no files, got %v", res.Files)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Docking.Clamp != ClampTargetDisplay {
		t.Fatalf("expected clamp %q, got %q", ClampTargetDisplay, res.Config.Docking.Clamp)
	}
}

func TestLoadFromPath_OverridesDocking(t *testing.T) {
	data := strings.Join([]string{
		"docking:",
		"  detach_threshold: 80",
		"  default_gap: 0",
		"  clamp: none",
		"  on_target_hidden: keepBinding",
		"logging:",
		"  level: debug",
		"",
	}, "\n")
	path := writeFile(t, t.TempDir(), "config.yaml", data)

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	d := res.Config.Docking
	if d.DetachThreshold != 80 {
		t.Fatalf("expected detach_threshold 80, got %v", d.DetachThreshold)
	}
	if d.DefaultGap != 0 {
		t.Fatalf("expected explicit default_gap 0 to be kept, got %d", d.DefaultGap)
	}
	if d.Clamp != ClampNone {
		t.Fatalf("expected clamp none, got %q", d.Clamp)
	}
	if d.OnTargetHidden != "keepBinding" {
		t.Fatalf("expected keepBinding, got %q", d.OnTargetHidden)
	}
	if d.DetachCooldownMS != 300 {
		t.Fatalf("expected untouched cooldown default, got %d", d.DetachCooldownMS)
	}
	if res.Config.Logging.Level != "debug" {
		t.Fatalf("expected debug, got %q", res.Config.Logging.Level)
	}
}

func TestLoadFromPath_UnknownKeyRejected(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "docking:\n  detach_treshold: 10\n")

	if _, err := LoadFromPath(path); err == nil {
		t.Fatalf("expected unknown key to be rejected")
	}
}

func TestLoadFromPath_ValidationErrorHasSource(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "docking:\n  clamp: follower-display\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if verr.Path != "docking.clamp" {
		t.Fatalf("expected path docking.clamp, got %q", verr.Path)
	}
	if verr.Source.Line != 2 {
		t.Fatalf("expected line 2, got %d", verr.Source.Line)
	}
	if !strings.Contains(err.Error(), "config.yaml:2:") {
		t.Fatalf("expected file:line prefix, got %q", err.Error())
	}
}

func TestLoadFromPath_IncludeMergesRules(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "rules.yaml", strings.Join([]string{
		"auto_snap:",
		"  - app_id: Inspector",
		"    can_snap_from: [top]",
		"  - app_id: Canvas",
		"    accepts_snap_on: [bottom]",
		"docking:",
		"  default_gap: 8",
		"",
	}, "\n"))
	path := writeFile(t, dir, "config.yaml", strings.Join([]string{
		"include: rules.yaml",
		"auto_snap:",
		"  - app_id: inspector",
		"    can_snap_from: [top, left]",
		"    show_feedback: true",
		"docking:",
		"  default_gap: 2",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Docking.DefaultGap != 2 {
		t.Fatalf("expected including file to win, got gap %d", res.Config.Docking.DefaultGap)
	}
	if len(res.Config.AutoSnap) != 2 {
		t.Fatalf("expected 2 rules, got %+v", res.Config.AutoSnap)
	}
	rule, ok := res.Config.RuleFor("INSPECTOR")
	if !ok {
		t.Fatalf("expected case-insensitive rule lookup")
	}
	if len(rule.CanSnapFrom) != 2 || !rule.ShowFeedback {
		t.Fatalf("expected overriding rule, got %+v", rule)
	}
	if len(res.Files) != 2 {
		t.Fatalf("expected 2 loaded files, got %v", res.Files)
	}
}

func TestLoadFromPath_IncludeCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "include: b.yaml\n")
	writeFile(t, dir, "b.yaml", "include: a.yaml\n")

	_, err := LoadFromPath(filepath.Join(dir, "a.yaml"))
	if err == nil || !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected include cycle error, got %v", err)
	}
}

func TestLoadFromPath_RuleErrorPointsAtIncludedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "rules.yaml", strings.Join([]string{
		"auto_snap:",
		"  - app_id: Canvas",
		"    accepts_snap_on: [bottom]",
		"  - app_id: Inspector",
		"    can_snap_from: [sideways]",
		"",
	}, "\n"))
	path := writeFile(t, dir, "config.yaml", "include: rules.yaml\n")

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if filepath.Base(verr.Source.File) != "rules.yaml" || verr.Source.Line != 4 {
		t.Fatalf("expected rules.yaml:4, got %+v", verr.Source)
	}
}

func TestLoadFromPath_DirectoryInclude(t *testing.T) {
	dir := t.TempDir()
	rules := filepath.Join(dir, "rules.d")
	if err := os.Mkdir(rules, 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, rules, "10-canvas.yaml", "auto_snap:\n  - app_id: Canvas\n    accepts_snap_on: [bottom]\n")
	writeFile(t, rules, "20-inspector.yml", "auto_snap:\n  - app_id: Inspector\n    can_snap_from: [top]\n")
	writeFile(t, rules, "README.txt", "not yaml: [")
	path := writeFile(t, dir, "config.yaml", "include: [rules.d]\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(res.Config.AutoSnap) != 2 || len(res.Files) != 3 {
		t.Fatalf("expected 2 rules from 3 files, got %+v %v", res.Config.AutoSnap, res.Files)
	}
	if _, ok := res.Sources["auto_snap.inspector"]; !ok {
		t.Fatalf("expected rule source, got %v", res.Sources)
	}
}

func TestDefaultConfigPath_Overrides(t *testing.T) {
	t.Setenv(EnvConfigPath, "/tmp/custom.yaml")
	if got, _ := DefaultConfigPath(); got != "/tmp/custom.yaml" {
		t.Fatalf("expected env override, got %q", got)
	}

	t.Setenv(EnvConfigPath, "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got, _ := DefaultConfigPath(); got != filepath.Join("/tmp/xdg", "tiledock", "config.yaml") {
		t.Fatalf("expected XDG path, got %q", got)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"zero detach threshold", func(c *Config) { c.Docking.DetachThreshold = 0 }, "docking.detach_threshold"},
		{"negative gap", func(c *Config) { c.Docking.DefaultGap = -1 }, "docking.default_gap"},
		{"bad alignment", func(c *Config) { c.Docking.DefaultAlignment = "middle" }, "docking.default_alignment"},
		{"bad hidden policy", func(c *Config) { c.Docking.OnTargetHidden = "minimize" }, "docking.on_target_hidden"},
		{"bad destroyed policy", func(c *Config) { c.Docking.OnTargetDestroyed = "keepBinding" }, "docking.on_target_destroyed"},
		{"no drag button", func(c *Config) { c.Drag.Button = " " }, "drag.button"},
		{"bad log level", func(c *Config) { c.Logging.Level = "warning" }, "logging.level"},
		{"zero reconcile interval", func(c *Config) { c.ReconcileIntervalSeconds = 0 }, "reconcile_interval_seconds"},
		{"rule without app", func(c *Config) {
			c.AutoSnap = []AutoSnapRule{{CanSnapFrom: []string{"top"}}}
		}, "auto_snap[0].app_id"},
		{"rule without edges", func(c *Config) {
			c.AutoSnap = []AutoSnapRule{{AppID: "x"}}
		}, "auto_snap[0]"},
		{"rule bad edge", func(c *Config) {
			c.AutoSnap = []AutoSnapRule{{AppID: "x", AcceptsSnapOn: []string{"north"}}}
		}, "auto_snap[0].accepts_snap_on"},
		{"duplicate rule", func(c *Config) {
			c.AutoSnap = []AutoSnapRule{
				{AppID: "x", CanSnapFrom: []string{"top"}},
				{AppID: "X", CanSnapFrom: []string{"left"}},
			}
		}, "auto_snap[1].app_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if verr.Path != tt.path {
				t.Errorf("Validate() path = %q, want %q", verr.Path, tt.path)
			}
		})
	}
}

func TestParseEdges(t *testing.T) {
	got, err := ParseEdges([]string{"Top", " left"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []geometry.Edge{geometry.EdgeTop, geometry.EdgeLeft}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("ParseEdges() = %v, want %v", got, want)
	}
	if _, err := ParseEdges([]string{"up"}); err == nil {
		t.Fatalf("expected error for unknown edge")
	}
}

func TestSave_RoundTripsThroughLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Docking.DefaultGap = 10
	cfg.AutoSnap = []AutoSnapRule{{AppID: "Inspector", CanSnapFrom: []string{"top"}}}

	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Docking.DefaultGap != 10 {
		t.Fatalf("expected gap 10, got %d", res.Config.Docking.DefaultGap)
	}
	if _, ok := res.Config.RuleFor("inspector"); !ok {
		t.Fatalf("expected saved rule")
	}
}

func TestExplain(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "drag:\n  button: Mod1-1\n")
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	val, src, err := Explain(res, "drag.button")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != "Mod1-1" || src.Kind != SourceFile || src.Line != 2 {
		t.Fatalf("unexpected explain result: %v %+v", val, src)
	}

	val, src, err = Explain(res, "docking.default_gap")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != 4 || src.Kind != SourceDefault {
		t.Fatalf("unexpected explain result: %v %+v", val, src)
	}

	if _, _, err := Explain(res, "docking.nope"); err == nil {
		t.Fatalf("expected unknown path error")
	}
}
