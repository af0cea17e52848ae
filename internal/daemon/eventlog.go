package daemon

import (
	"log/slog"

	"github.com/1broseidon/tiledock/internal/dock"
)

// LogSink logs docking events. Snaps and detaches are logged at info,
// proximity and follower drag chatter at debug.
func LogSink(logger *slog.Logger) dock.Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return dock.SinkFunc(func(e dock.Event) {
		switch e.Kind {
		case dock.EventSnapped:
			logger.Info("panel snapped", "panel", e.PanelID, "target", e.TargetID, "edge", e.TargetEdge)
		case dock.EventDetached:
			logger.Info("panel detached", "panel", e.PanelID, "target", e.TargetID, "reason", e.Reason)
		default:
			logger.Debug("docking event", "kind", e.Kind, "panel", e.PanelID, "target", e.TargetID, "distance", e.Distance)
		}
	})
}
