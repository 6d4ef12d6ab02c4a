package permission

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/suPer8Hu/mall-console/internal/api"
)

// ErrUnknownView means the menu tree names a view the console does not ship.
// It is a configuration mismatch between backend and console, not a 404.
var ErrUnknownView = errors.New("permission: unknown view")

// ComponentResolver maps a menu node to the view that renders it. Container
// nodes resolve to "".
type ComponentResolver interface {
	Resolve(typ api.MenuType, path string) (string, error)
}

type Registry struct {
	mu     sync.RWMutex
	layout string
	views  map[string]string
}

func NewRegistry(layoutView string) *Registry {
	return &Registry{layout: layoutView, views: make(map[string]string)}
}

// DefaultRegistry knows every view the console serves.
func DefaultRegistry() *Registry {
	r := NewRegistry("layout/home")
	for _, p := range []string{
		"statistics",
		"store",
		"goods/list",
		"goods/publish",
		"goods/comment",
		"goods/audit",
		"order",
		"audit",
		"banner",
		"category",
		"unit",
		"chat",
		"user",
		"system",
	} {
		r.Register(p, p)
	}
	return r
}

func normalizeView(p string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(p), "/"))
}

func (r *Registry) Register(path, view string) {
	path = normalizeView(path)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views[path] = view
}

func (r *Registry) Resolve(typ api.MenuType, path string) (string, error) {
	switch typ {
	case api.MenuLayout:
		return r.layout, nil
	case api.MenuParentView:
		return "", nil
	case api.MenuView:
		r.mu.RLock()
		v, ok := r.views[normalizeView(path)]
		r.mu.RUnlock()
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrUnknownView, path)
		}
		return v, nil
	default:
		return "", fmt.Errorf("%w: type %q at %s", ErrUnknownView, typ, path)
	}
}
