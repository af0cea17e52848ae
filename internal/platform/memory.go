package platform

import (
	"fmt"
	"sort"
	"sync"

	"github.com/1broseidon/tiledock/internal/geometry"
)

type link struct {
	target PanelID
	offset geometry.Point
}

// MemoryBackend is an in-process Backend. Its glue behaves like native
// child-window parenting: a linked follower keeps its offset from the
// target whenever the target's frame changes.
type MemoryBackend struct {
	mu       sync.Mutex
	panels   map[PanelID]*Panel
	links    map[PanelID]link
	displays []Display
	active   PanelID
	frameLog []FrameChange
}

// FrameChange records a SetFrame call.
type FrameChange struct {
	ID    PanelID
	Frame geometry.Rect
}

var _ Backend = (*MemoryBackend)(nil)

// NewMemoryBackend creates an empty backend. Displays, when given, provide
// the work areas used for clamping.
func NewMemoryBackend(displays ...Display) *MemoryBackend {
	return &MemoryBackend{
		panels:   make(map[PanelID]*Panel),
		links:    make(map[PanelID]link),
		displays: displays,
	}
}

// AddPanel registers a visible, draggable panel.
func (b *MemoryBackend) AddPanel(id PanelID, frame geometry.Rect) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.panels[id] = &Panel{ID: id, Frame: frame, Visible: true, Draggable: true}
}

// PutPanel registers or replaces a panel with full metadata.
func (b *MemoryBackend) PutPanel(p Panel) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cp := p
	b.panels[p.ID] = &cp
}

// RemovePanel forgets a panel and any link it participates in.
func (b *MemoryBackend) RemovePanel(id PanelID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.panels, id)
	delete(b.links, id)
	for f, l := range b.links {
		if l.target == id {
			delete(b.links, f)
		}
	}
}

// SetActive marks the focused panel.
func (b *MemoryBackend) SetActive(id PanelID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.active = id
}

// LinkedTarget reports the target a follower is glued to.
func (b *MemoryBackend) LinkedTarget(follower PanelID) (PanelID, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	l, ok := b.links[follower]
	return l.target, ok
}

// FrameLog returns every SetFrame call in order.
func (b *MemoryBackend) FrameLog() []FrameChange {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]FrameChange, len(b.frameLog))
	copy(out, b.frameLog)
	return out
}

func (b *MemoryBackend) get(id PanelID) (*Panel, error) {
	p, ok := b.panels[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPanelNotFound, id)
	}
	return p, nil
}

func (b *MemoryBackend) Frame(id PanelID) (geometry.Rect, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, err := b.get(id)
	if err != nil {
		return geometry.Rect{}, err
	}
	return p.Frame, nil
}

func (b *MemoryBackend) SetFrame(id PanelID, frame geometry.Rect) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := b.get(id); err != nil {
		return err
	}
	b.setFrameLocked(id, frame, map[PanelID]bool{})
	return nil
}

func (b *MemoryBackend) setFrameLocked(id PanelID, frame geometry.Rect, seen map[PanelID]bool) {
	if seen[id] {
		return
	}
	seen[id] = true

	p := b.panels[id]
	p.Frame = frame
	b.frameLog = append(b.frameLog, FrameChange{ID: id, Frame: frame})

	for _, f := range b.sortedLinkedFollowers(id) {
		fp, ok := b.panels[f]
		if !ok {
			continue
		}
		origin := frame.Origin().Add(b.links[f].offset)
		b.setFrameLocked(f, fp.Frame.At(origin), seen)
	}
}

func (b *MemoryBackend) sortedLinkedFollowers(target PanelID) []PanelID {
	var out []PanelID
	for f, l := range b.links {
		if l.target == target {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (b *MemoryBackend) IsVisible(id PanelID) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, err := b.get(id)
	if err != nil {
		return false, err
	}
	return p.Visible, nil
}

func (b *MemoryBackend) SetVisible(id PanelID, visible bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, err := b.get(id)
	if err != nil {
		return err
	}
	p.Visible = visible
	return nil
}

func (b *MemoryBackend) IsDraggable(id PanelID) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, err := b.get(id)
	if err != nil {
		return false, err
	}
	return p.Draggable, nil
}

// AttachLinked records the follower's current offset from the target.
func (b *MemoryBackend) AttachLinked(follower, target PanelID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	fp, err := b.get(follower)
	if err != nil {
		return err
	}
	tp, err := b.get(target)
	if err != nil {
		return err
	}
	b.links[follower] = link{
		target: target,
		offset: fp.Frame.Origin().Sub(tp.Frame.Origin()),
	}
	return nil
}

// DetachLinked removes the link. Detaching an unlinked follower is a no-op.
func (b *MemoryBackend) DetachLinked(follower, target PanelID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if l, ok := b.links[follower]; ok && l.target == target {
		delete(b.links, follower)
	}
	return nil
}

func (b *MemoryBackend) WorkArea(frame geometry.Rect) (geometry.Rect, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := DisplayFor(b.displays, frame)
	if !ok {
		return geometry.Rect{}, false
	}
	return d.Usable, true
}

func (b *MemoryBackend) Displays() ([]Display, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Display, len(b.displays))
	copy(out, b.displays)
	return out, nil
}

func (b *MemoryBackend) ActivePanel() (PanelID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.active == "" {
		return "", fmt.Errorf("%w: no active panel", ErrPanelNotFound)
	}
	return b.active, nil
}

func (b *MemoryBackend) ListPanels() ([]Panel, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Panel, 0, len(b.panels))
	for _, p := range b.panels {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
