package daemon

import (
	"log/slog"
	"sync"

	"github.com/1broseidon/tiledock/internal/dock"
	"github.com/1broseidon/tiledock/internal/geometry"
	"github.com/1broseidon/tiledock/internal/platform"
)

// FeedbackShower draws the snap candidate highlight.
type FeedbackShower interface {
	ShowFeedback(target platform.PanelID, edge geometry.Edge) error
	HideFeedback()
}

// AutoSnapLookup resolves a panel's auto-snap declaration.
type AutoSnapLookup interface {
	AutoSnapConfig(id platform.PanelID) (dock.AutoSnapConfig, bool)
}

// FeedbackSink is a dock.Sink that highlights the candidate edge while a
// panel that asked for feedback is in proximity.
type FeedbackSink struct {
	shower  FeedbackShower
	configs AutoSnapLookup
	logger  *slog.Logger

	mu      sync.Mutex
	showing bool
}

// NewFeedbackSink creates the sink. configs may be set later with SetLookup
// since the controller needs the sink at construction.
func NewFeedbackSink(shower FeedbackShower, logger *slog.Logger) *FeedbackSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeedbackSink{shower: shower, logger: logger}
}

// SetLookup sets where auto-snap declarations are read from.
func (s *FeedbackSink) SetLookup(configs AutoSnapLookup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs = configs
}

// Showing reports whether a highlight is on screen.
func (s *FeedbackSink) Showing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.showing
}

func (s *FeedbackSink) Emit(e dock.Event) {
	switch e.Kind {
	case dock.EventProximityEntered, dock.EventProximityUpdated:
		if !s.wantsFeedback(e.PanelID) {
			return
		}
		if err := s.shower.ShowFeedback(e.TargetID, e.TargetEdge); err != nil {
			s.logger.Debug("feedback not shown", "target", e.TargetID, "error", err)
			return
		}
		s.setShowing(true)
	case dock.EventProximityExited, dock.EventSnapped:
		s.mu.Lock()
		showing := s.showing
		s.showing = false
		s.mu.Unlock()
		if showing {
			s.shower.HideFeedback()
		}
	}
}

func (s *FeedbackSink) wantsFeedback(id platform.PanelID) bool {
	s.mu.Lock()
	configs := s.configs
	s.mu.Unlock()
	if configs == nil {
		return false
	}
	cfg, ok := configs.AutoSnapConfig(id)
	return ok && cfg.ShowFeedback
}

func (s *FeedbackSink) setShowing(v bool) {
	s.mu.Lock()
	s.showing = v
	s.mu.Unlock()
}
