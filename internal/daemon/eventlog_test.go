package daemon

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/1broseidon/tiledock/internal/dock"
)

func TestLogSink_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	sink := LogSink(logger)

	sink.Emit(dock.Event{Kind: dock.EventProximityEntered, PanelID: "F", TargetID: "T"})
	assert.Empty(t, buf.String())

	sink.Emit(dock.Event{Kind: dock.EventSnapped, PanelID: "F", TargetID: "T"})
	assert.Contains(t, buf.String(), "panel snapped")

	sink.Emit(dock.Event{Kind: dock.EventDetached, PanelID: "F", TargetID: "T", Reason: dock.ReasonRequested})
	assert.Contains(t, buf.String(), "reason=requested")
}
