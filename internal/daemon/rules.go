package daemon

import (
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/1broseidon/tiledock/internal/config"
	"github.com/1broseidon/tiledock/internal/dock"
	"github.com/1broseidon/tiledock/internal/platform"
)

// AutoSnapper is the part of the controller rules are applied through.
type AutoSnapper interface {
	SetAutoSnapConfig(cfg dock.AutoSnapConfig) error
	DisableAutoSnap(id platform.PanelID)
	AutoSnapConfig(id platform.PanelID) (dock.AutoSnapConfig, bool)
}

// ConfigsForPanels resolves rules against the listed panels. Each panel
// takes the first rule matching its AppID. Target classes become the IDs of
// the listed panels of those classes; a rule with target classes and no
// matching panel keeps only its accepting edges.
func ConfigsForPanels(rules []config.AutoSnapRule, panels []platform.Panel) []dock.AutoSnapConfig {
	var out []dock.AutoSnapConfig
	for _, p := range panels {
		rule, ok := firstRule(rules, p.AppID)
		if !ok {
			continue
		}
		accepts, err := config.ParseEdges(rule.AcceptsSnapOn)
		if err != nil {
			continue
		}
		from, err := config.ParseEdges(rule.CanSnapFrom)
		if err != nil {
			continue
		}
		cfg := dock.AutoSnapConfig{
			PanelID:       p.ID,
			AcceptsSnapOn: accepts,
			CanSnapFrom:   from,
			Threshold:     rule.ProximityThreshold,
			ShowFeedback:  rule.ShowFeedback,
		}
		if len(rule.Targets) > 0 {
			cfg.Targets = targetIDs(rule.Targets, panels, p.ID)
			if len(cfg.Targets) == 0 {
				cfg.CanSnapFrom = nil
			}
		}
		if cfg.Disabled() {
			continue
		}
		out = append(out, cfg)
	}
	return out
}

func firstRule(rules []config.AutoSnapRule, class string) (config.AutoSnapRule, bool) {
	for _, r := range rules {
		if r.Matches(class) {
			return r, true
		}
	}
	return config.AutoSnapRule{}, false
}

func targetIDs(classes []string, panels []platform.Panel, self platform.PanelID) []platform.PanelID {
	var ids []platform.PanelID
	for _, p := range panels {
		if p.ID == self {
			continue
		}
		for _, c := range classes {
			if strings.EqualFold(c, p.AppID) {
				ids = append(ids, p.ID)
				break
			}
		}
	}
	return ids
}

// Rules keeps rule-derived auto-snap declarations in sync with the panel
// list. Declarations set by other means are left alone.
type Rules struct {
	mu      sync.Mutex
	rules   []config.AutoSnapRule
	applied map[platform.PanelID]dock.AutoSnapConfig
	logger  *slog.Logger
}

// NewRules creates a rule applier. logger may be nil.
func NewRules(rules []config.AutoSnapRule, logger *slog.Logger) *Rules {
	if logger == nil {
		logger = slog.Default()
	}
	return &Rules{
		rules:   slices.Clone(rules),
		applied: make(map[platform.PanelID]dock.AutoSnapConfig),
		logger:  logger,
	}
}

// SetRules replaces the rule list. It takes effect on the next Apply.
func (r *Rules) SetRules(rules []config.AutoSnapRule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = slices.Clone(rules)
}

// Managed reports whether id carries a rule-derived declaration.
func (r *Rules) Managed(id platform.PanelID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.applied[id]
	return ok
}

// Apply installs, updates and withdraws rule-derived declarations.
func (r *Rules) Apply(ctl AutoSnapper, panels []platform.Panel) {
	r.mu.Lock()
	defer r.mu.Unlock()

	desired := make(map[platform.PanelID]dock.AutoSnapConfig)
	for _, cfg := range ConfigsForPanels(r.rules, panels) {
		desired[cfg.PanelID] = cfg
	}

	for id, want := range desired {
		current, has := ctl.AutoSnapConfig(id)
		prev, managed := r.applied[id]
		if has && (!managed || !sameConfig(current, prev)) {
			// Set over IPC or MCP; the explicit declaration wins.
			delete(r.applied, id)
			continue
		}
		if has && sameConfig(current, want) {
			continue
		}
		if err := ctl.SetAutoSnapConfig(want); err != nil {
			r.logger.Warn("auto-snap rule rejected", "panel", id, "error", err)
			continue
		}
		r.applied[id] = want
		r.logger.Debug("auto-snap rule applied", "panel", id, "targets", len(want.Targets))
	}

	for id, prev := range r.applied {
		if _, ok := desired[id]; ok {
			continue
		}
		delete(r.applied, id)
		if current, has := ctl.AutoSnapConfig(id); has && sameConfig(current, prev) {
			ctl.DisableAutoSnap(id)
			r.logger.Debug("auto-snap rule withdrawn", "panel", id)
		}
	}
}

func sameConfig(a, b dock.AutoSnapConfig) bool {
	return a.PanelID == b.PanelID &&
		slices.Equal(a.AcceptsSnapOn, b.AcceptsSnapOn) &&
		slices.Equal(a.CanSnapFrom, b.CanSnapFrom) &&
		slices.Equal(a.Targets, b.Targets) &&
		a.Threshold == b.Threshold &&
		a.ShowFeedback == b.ShowFeedback
}
