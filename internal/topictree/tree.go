package topictree

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/abhisek/cadence/internal/spacedrep"
)

// Tree indexes items by path. It is a read-only view; build a new one after
// the underlying items change.
type Tree struct {
	items    map[string]*spacedrep.Item
	children map[string][]string
	roots    []string
}

// New indexes items. An item whose parent path is not present is a root.
func New(items []*spacedrep.Item) *Tree {
	t := &Tree{
		items:    make(map[string]*spacedrep.Item, len(items)),
		children: make(map[string][]string),
	}
	for _, it := range items {
		if it != nil {
			t.items[it.ID] = it
		}
	}
	for id := range t.items {
		if parent, ok := Parent(id); ok {
			if _, exists := t.items[parent]; exists {
				t.children[parent] = append(t.children[parent], id)
				continue
			}
		}
		t.roots = append(t.roots, id)
	}
	for _, ids := range t.children {
		sort.Strings(ids)
	}
	sort.Strings(t.roots)
	return t
}

// Get returns the item at path.
func (t *Tree) Get(path string) (*spacedrep.Item, bool) {
	it, ok := t.items[path]
	return it, ok
}

// Len returns the number of indexed items.
func (t *Tree) Len() int { return len(t.items) }

// Roots returns the top-level items sorted by path.
func (t *Tree) Roots() []*spacedrep.Item {
	return t.lookup(t.roots)
}

// Children returns the direct children of path sorted by path.
func (t *Tree) Children(path string) []*spacedrep.Item {
	return t.lookup(t.children[path])
}

// Subtree returns path and all its descendants in depth-first order.
func (t *Tree) Subtree(path string) []*spacedrep.Item {
	var out []*spacedrep.Item
	if _, ok := t.items[path]; !ok {
		return nil
	}
	t.walk(path, 0, func(it *spacedrep.Item, _ int) bool {
		out = append(out, it)
		return true
	})
	return out
}

// Related returns the siblings, children and parent of path, sorted by path.
// The item itself is not included.
func (t *Tree) Related(path string) []*spacedrep.Item {
	if _, ok := t.items[path]; !ok {
		return nil
	}
	seen := map[string]bool{path: true}
	var ids []string
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	parent, hasParent := Parent(path)
	if _, ok := t.items[parent]; hasParent && ok {
		for _, sib := range t.children[parent] {
			add(sib)
		}
		add(parent)
	} else {
		for _, r := range t.roots {
			add(r)
		}
	}
	for _, c := range t.children[path] {
		add(c)
	}
	sort.Strings(ids)
	return t.lookup(ids)
}

// Walk visits every item depth-first from the roots, children in path order.
// Returning false from fn skips that item's descendants.
func (t *Tree) Walk(fn func(it *spacedrep.Item, depth int) bool) {
	for _, r := range t.roots {
		t.walk(r, 0, fn)
	}
}

func (t *Tree) walk(id string, depth int, fn func(*spacedrep.Item, int) bool) {
	if !fn(t.items[id], depth) {
		return
	}
	for _, c := range t.children[id] {
		t.walk(c, depth+1, fn)
	}
}

func (t *Tree) lookup(ids []string) []*spacedrep.Item {
	out := make([]*spacedrep.Item, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.items[id])
	}
	return out
}

// ErrParentNotReviewed is returned by Propagate when the parent has no
// review yet, so its performance carries no signal.
var ErrParentNotReviewed = errors.New("parent has not been reviewed")

// Propagation factors applied to direct children of a reviewed parent.
const (
	weakParentFactor   = 0.9
	strongParentFactor = 1.1
	weakParentBelow    = 0.5
)

// Propagate nudges the performance of each direct child toward the parent's
// result: down by 10% when the parent performed below 0.5, up by 10%
// otherwise, clamped to [0, 1]. It returns adjusted copies and never touches
// grandchildren.
func Propagate(parent *spacedrep.Item, children []*spacedrep.Item) ([]*spacedrep.Item, error) {
	if parent.LastReviewed == nil {
		return nil, ErrParentNotReviewed
	}
	factor := strongParentFactor
	if parent.Performance < weakParentBelow {
		factor = weakParentFactor
	}
	out := make([]*spacedrep.Item, 0, len(children))
	for _, c := range children {
		adj := c.Clone()
		adj.Performance = math.Min(1, math.Max(0, c.Performance*factor))
		out = append(out, adj)
	}
	return out, nil
}

// EnsurePath returns new items for path and any of its ancestors missing
// from known, outermost first. Items already in known are not returned.
func EnsurePath(known map[string]*spacedrep.Item, path string, status spacedrep.Status, now time.Time) ([]*spacedrep.Item, error) {
	clean, err := Clean(path)
	if err != nil {
		return nil, err
	}
	var created []*spacedrep.Item
	for _, p := range append(Ancestors(clean), clean) {
		if _, ok := known[p]; ok {
			continue
		}
		it := spacedrep.NewItem(p, now)
		it.Status = status
		created = append(created, it)
	}
	return created, nil
}
