// Package route is the console's navigation table: named routes arranged in a
// tree, resolved by full path.
package route

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
)

const (
	NameLogin    = "Login"
	NameHome     = "Home"
	NameNotFound = "NotFound"

	PathLogin    = "/login"
	PathHome     = "/"
	PathNotFound = "/404"
)

var (
	ErrDuplicateName = errors.New("route: name already registered")
	ErrUnknownParent = errors.New("route: unknown parent")
	ErrEmptyName     = errors.New("route: empty name")
)

type Meta struct {
	Title string `json:"title,omitempty"`
	Icon  string `json:"icon,omitempty"`
}

// Route is one navigable entry. View is empty for containers that only group
// children.
type Route struct {
	Name     string  `json:"name"`
	Path     string  `json:"path"`
	View     string  `json:"view,omitempty"`
	Redirect string  `json:"redirect,omitempty"`
	Meta     Meta    `json:"meta"`
	Children []Route `json:"children,omitempty"`
}

// Match is a resolved route plus the chain of names from the root.
type Match struct {
	Route    Route    `json:"route"`
	FullPath string   `json:"fullPath"`
	Matched  []string `json:"matched"`
}

type entry struct {
	route    Route
	parent   string
	fullPath string
	children []string
}

type Table struct {
	mu      sync.RWMutex
	entries map[string]*entry
	order   []string
}

func NewTable() *Table {
	return &Table{entries: make(map[string]*entry)}
}

// NewStaticTable returns a table holding the routes that exist before login.
func NewStaticTable() *Table {
	t := NewTable()
	for _, r := range []Route{
		{Name: NameLogin, Path: PathLogin, View: "login", Meta: Meta{Title: "Login"}},
		{Name: NameHome, Path: PathHome, View: "home", Meta: Meta{Title: "Home"}},
		{Name: NameNotFound, Path: PathNotFound, View: "404", Meta: Meta{Title: "Not Found"}},
	} {
		_ = t.Add("", r)
	}
	return t
}

// Add inserts r under parent ("" for a top-level route). Children of r are not
// inserted; callers walk the tree themselves.
func (t *Table) Add(parent string, r Route) error {
	if r.Name == "" {
		return ErrEmptyName
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.entries[r.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateName, r.Name)
	}

	base := PathHome
	if parent != "" {
		p, ok := t.entries[parent]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownParent, parent)
		}
		base = p.fullPath
		p.children = append(p.children, r.Name)
	}

	stored := r
	stored.Children = nil
	t.entries[r.Name] = &entry{
		route:    stored,
		parent:   parent,
		fullPath: joinPath(base, r.Path),
	}
	t.order = append(t.order, r.Name)
	return nil
}

func (t *Table) Has(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.entries[name]
	return ok
}

// Remove deletes the named route and everything registered beneath it.
func (t *Table) Remove(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[name]
	if !ok {
		return false
	}
	if p, ok := t.entries[e.parent]; ok {
		p.children = without(p.children, name)
	}

	removed := make(map[string]bool)
	t.removeLocked(name, removed)

	kept := t.order[:0]
	for _, n := range t.order {
		if !removed[n] {
			kept = append(kept, n)
		}
	}
	t.order = kept
	return true
}

func (t *Table) removeLocked(name string, removed map[string]bool) {
	e, ok := t.entries[name]
	if !ok {
		return
	}
	for _, c := range e.children {
		t.removeLocked(c, removed)
	}
	delete(t.entries, name)
	removed[name] = true
}

// Resolve finds the first registered route whose full path equals p after
// normalization. Query strings and fragments are ignored.
func (t *Table) Resolve(p string) (Match, bool) {
	want := Normalize(p)

	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, name := range t.order {
		e := t.entries[name]
		if e.fullPath != want {
			continue
		}
		return Match{Route: e.route, FullPath: e.fullPath, Matched: t.chainLocked(name)}, true
	}
	return Match{}, false
}

func (t *Table) chainLocked(name string) []string {
	var chain []string
	for n := name; n != ""; {
		chain = append([]string{n}, chain...)
		n = t.entries[n].parent
	}
	return chain
}

// Names lists every registered route name in sorted order.
func (t *Table) Names() []string {
	t.mu.RLock()
	names := make([]string, 0, len(t.entries))
	for n := range t.entries {
		names = append(names, n)
	}
	t.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Tree rebuilds the nested view of top-level routes in registration order.
func (t *Table) Tree() []Route {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []Route
	for _, name := range t.order {
		if t.entries[name].parent == "" {
			out = append(out, t.subtreeLocked(name))
		}
	}
	return out
}

func (t *Table) subtreeLocked(name string) Route {
	e := t.entries[name]
	r := e.route
	r.Path = e.fullPath
	for _, c := range e.children {
		r.Children = append(r.Children, t.subtreeLocked(c))
	}
	return r
}

// Normalize cleans p into the form full paths are stored in.
func Normalize(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

func joinPath(base, p string) string {
	if strings.HasPrefix(p, "/") {
		return Normalize(p)
	}
	return Normalize(path.Join(base, p))
}

func without(list []string, name string) []string {
	out := list[:0]
	for _, n := range list {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}
