package hotkeys

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/1broseidon/tiledock/internal/geometry"
	"github.com/1broseidon/tiledock/internal/platform"
)

func TestIgnoreMasks(t *testing.T) {
	assert.ElementsMatch(t, []uint16{0, 2}, ignoreMasks([]uint16{2}))
	assert.ElementsMatch(t, []uint16{0, 2, 16, 18}, ignoreMasks([]uint16{2, 16}))
	assert.Len(t, ignoreMasks([]uint16{2, 16, 128}), 8)
}

type recordingDocker struct {
	detached []platform.PanelID
	err      error
}

func (d *recordingDocker) Detach(id platform.PanelID) error {
	d.detached = append(d.detached, id)
	return d.err
}

func (d *recordingDocker) ReSnap(platform.PanelID) error { return nil }

func TestOnActiveUsesFocusedPanel(t *testing.T) {
	mem := platform.NewMemoryBackend()
	mem.AddPanel("a", geometry.Rect{Width: 10, Height: 10})
	docker := &recordingDocker{}
	h := NewHandler(mem, docker, nil)

	// No focused panel: nothing happens.
	h.onActive("detach", docker.Detach)
	assert.Empty(t, docker.detached)

	mem.SetActive("a")
	h.onActive("detach", docker.Detach)
	assert.Equal(t, []platform.PanelID{"a"}, docker.detached)

	docker.err = errors.New("boom")
	h.onActive("detach", docker.Detach)
	assert.Len(t, docker.detached, 2)
}

func TestRegisterWithoutX11Fails(t *testing.T) {
	h := NewHandler(platform.NewMemoryBackend(), &recordingDocker{}, nil)
	assert.Error(t, h.Register("Mod4-d", ""))
	assert.NoError(t, h.Register("", ""))
}
