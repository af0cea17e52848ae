package x11

import (
	"errors"
	"slices"
	"sync"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/tiledock/internal/geometry"
)

// ErrLinkCycle is returned when a link would make a window follow itself.
var ErrLinkCycle = errors.New("link would create a cycle")

// Link glues Follower to Target at a fixed origin offset in panel space.
type Link struct {
	Follower xproto.Window
	Target   xproto.Window
	Offset   geometry.Point
}

// Placement is a new origin for a glued window.
type Placement struct {
	Window xproto.Window
	Origin geometry.Point
}

// Links tracks glued windows. X11 has no cross-client child windows, so
// followers are moved explicitly whenever a target's ConfigureNotify arrives.
type Links struct {
	mu    sync.Mutex
	links map[xproto.Window]Link
}

func NewLinks() *Links {
	return &Links{links: make(map[xproto.Window]Link)}
}

// Attach glues follower to target, replacing any previous link of follower.
func (l *Links) Attach(follower, target xproto.Window, offset geometry.Point) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if follower == target {
		return ErrLinkCycle
	}
	seen := map[xproto.Window]bool{}
	for cur := target; !seen[cur]; {
		seen[cur] = true
		next, ok := l.links[cur]
		if !ok {
			break
		}
		if next.Target == follower {
			return ErrLinkCycle
		}
		cur = next.Target
	}

	l.links[follower] = Link{Follower: follower, Target: target, Offset: offset}
	return nil
}

// Detach removes follower's link if it points at target.
func (l *Links) Detach(follower, target xproto.Window) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if link, ok := l.links[follower]; ok && link.Target == target {
		delete(l.links, follower)
		return true
	}
	return false
}

// Forget drops every link that win participates in.
func (l *Links) Forget(win xproto.Window) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.links, win)
	for f, link := range l.links {
		if link.Target == win {
			delete(l.links, f)
		}
	}
}

// Target returns the window follower is glued to.
func (l *Links) Target(follower xproto.Window) (xproto.Window, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	link, ok := l.links[follower]
	return link.Target, ok
}

// Followers returns the links targeting target, ordered by follower.
func (l *Links) Followers(target xproto.Window) []Link {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.followersLocked(target)
}

func (l *Links) followersLocked(target xproto.Window) []Link {
	var out []Link
	for _, link := range l.links {
		if link.Target == target {
			out = append(out, link)
		}
	}
	slices.SortFunc(out, func(a, b Link) int { return int(a.Follower) - int(b.Follower) })
	return out
}

// Placements returns the new origins of every window glued, directly or
// through other followers, to target once target's origin is origin.
func (l *Links) Placements(target xproto.Window, origin geometry.Point) []Placement {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []Placement
	seen := map[xproto.Window]bool{target: true}
	queue := []Placement{{Window: target, Origin: origin}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, link := range l.followersLocked(cur.Window) {
			if seen[link.Follower] {
				continue
			}
			seen[link.Follower] = true
			p := Placement{Window: link.Follower, Origin: cur.Origin.Add(link.Offset)}
			out = append(out, p)
			queue = append(queue, p)
		}
	}
	return out
}
