// Package permission turns the operator's role into registered console routes
// and guards navigation against them.
package permission

import (
	"context"
	"slices"
	"sync"

	"github.com/pkg/errors"
	"github.com/suPer8Hu/mall-console/internal/api"
	"github.com/suPer8Hu/mall-console/internal/logger"
	"github.com/suPer8Hu/mall-console/internal/persist"
	"github.com/suPer8Hu/mall-console/internal/route"
)

const persistKey = "permission"

type MenuLoader interface {
	FetchMenus(ctx context.Context, role string) ([]api.MenuNode, error)
}

type RoleSource interface {
	Role() string
}

// State is the persisted shape of the store.
type State struct {
	Menus           []api.MenuNode `json:"menus"`
	RoutesLoaded    bool           `json:"routesLoaded"`
	CurrentRole     string         `json:"currentRole"`
	AddedRouteNames []string       `json:"addedRouteNames"`
}

type Store struct {
	mu      sync.RWMutex
	state   State
	added   map[string]struct{}
	menus   MenuLoader
	roles   RoleSource
	persist persist.Persister
}

func NewStore(menus MenuLoader, roles RoleSource, p persist.Persister) *Store {
	return &Store{
		added:   make(map[string]struct{}),
		menus:   menus,
		roles:   roles,
		persist: p,
	}
}

// Restore loads persisted state. Routes are not registered until the guard
// sees they are missing from the table.
func (s *Store) Restore(ctx context.Context) error {
	var st State
	ok, err := s.persist.Load(ctx, persistKey, &st)
	if err != nil || !ok {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
	s.added = make(map[string]struct{}, len(st.AddedRouteNames))
	for _, n := range st.AddedRouteNames {
		s.added[n] = struct{}{}
	}
	s.state.AddedRouteNames = s.addedNamesLocked()
	return nil
}

func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	st.Menus = slices.Clone(s.state.Menus)
	st.AddedRouteNames = s.addedNamesLocked()
	return st
}

func (s *Store) RoutesLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.RoutesLoaded
}

func (s *Store) CurrentRole() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.CurrentRole
}

func (s *Store) Menus() []api.MenuNode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.state.Menus)
}

// AddedRouteNames lists every dynamically registered route name, sorted.
func (s *Store) AddedRouteNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addedNamesLocked()
}

func (s *Store) addedNamesLocked() []string {
	names := make([]string, 0, len(s.added))
	for n := range s.added {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// LoadMenus fetches the menu tree for role and keeps it. Errors are returned
// as is; there is no retry.
func (s *Store) LoadMenus(ctx context.Context, role string) ([]api.MenuNode, error) {
	menus, err := s.menus.FetchMenus(ctx, role)
	if err != nil {
		return nil, err
	}
	if menus == nil {
		menus = []api.MenuNode{}
	}

	s.mu.Lock()
	s.state.Menus = menus
	s.mu.Unlock()
	return slices.Clone(menus), nil
}

// MenusToRoutes converts menu nodes into routes, keeping names, order and
// nesting. Any resolver error aborts the conversion.
func MenusToRoutes(nodes []api.MenuNode, resolver ComponentResolver) ([]route.Route, error) {
	out := make([]route.Route, 0, len(nodes))
	for _, n := range nodes {
		view, err := resolver.Resolve(n.Type, n.Path)
		if err != nil {
			return nil, errors.Wrapf(err, "menu %s", n.Name)
		}

		p := n.RoutePath
		if p == "" {
			p = n.Path
		}
		r := route.Route{
			Name:     n.Name,
			Path:     p,
			View:     view,
			Redirect: n.Redirect,
			Meta:     route.Meta{Title: n.Meta.Title, Icon: n.Meta.Icon},
		}
		if len(n.Children) > 0 {
			if r.Children, err = MenusToRoutes(n.Children, resolver); err != nil {
				return nil, err
			}
		}
		out = append(out, r)
	}
	return out, nil
}

// AddRoutesToRouter registers routes under parent ("" for top level). Names
// already in the table are skipped but their children are still walked.
func (s *Store) AddRoutesToRouter(table *route.Table, routes []route.Route, parent string) error {
	for _, r := range routes {
		if !table.Has(r.Name) {
			if err := table.Add(parent, r); err != nil {
				return err
			}
			s.mu.Lock()
			s.added[r.Name] = struct{}{}
			s.mu.Unlock()
		}
		if len(r.Children) > 0 {
			if err := s.AddRoutesToRouter(table, r.Children, r.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

// Clear removes every recorded route from table (when given) and resets the
// store. Called on logout and role switch.
func (s *Store) Clear(ctx context.Context, table *route.Table) error {
	s.mu.Lock()
	if table != nil {
		for n := range s.added {
			if table.Has(n) {
				table.Remove(n)
			}
		}
	}
	s.added = make(map[string]struct{})
	s.state = State{}
	s.mu.Unlock()

	return s.persist.Delete(ctx, persistKey)
}

// LoadAndRegisterRoutes fetches, converts and registers the routes of the
// current role. Routes of a previous role are removed first.
func (s *Store) LoadAndRegisterRoutes(ctx context.Context, table *route.Table, resolver ComponentResolver) ([]route.Route, error) {
	role := s.roles.Role()

	if prev := s.CurrentRole(); prev != "" && prev != role {
		logger.Infof("[permission] role changed %s -> %s, dropping routes", prev, role)
		if err := s.Clear(ctx, table); err != nil {
			return nil, err
		}
	}

	menus, err := s.LoadMenus(ctx, role)
	if err != nil {
		return nil, err
	}
	routes, err := MenusToRoutes(menus, resolver)
	if err != nil {
		return nil, err
	}
	if err := s.AddRoutesToRouter(table, routes, ""); err != nil {
		return nil, err
	}

	s.markLoaded(role)
	logger.Infof("[permission] registered %d top-level routes for %s", len(routes), role)
	return routes, s.save(ctx)
}

// RestoreRoutesFromPersist registers the persisted menus into table without a
// network call. It returns nil routes when nothing was persisted.
func (s *Store) RestoreRoutesFromPersist(ctx context.Context, table *route.Table, resolver ComponentResolver) ([]route.Route, error) {
	menus := s.Menus()
	if len(menus) == 0 {
		return nil, nil
	}

	routes, err := MenusToRoutes(menus, resolver)
	if err != nil {
		return nil, err
	}
	if err := s.AddRoutesToRouter(table, routes, ""); err != nil {
		return nil, err
	}

	s.markLoaded(s.roles.Role())
	return routes, s.save(ctx)
}

// NeedsRestore reports persisted menus whose routes are missing from table,
// as after a restart with a fresh table.
func (s *Store) NeedsRestore(table *route.Table) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.state.RoutesLoaded || len(s.state.Menus) == 0 {
		return false
	}
	for _, m := range s.state.Menus {
		if !table.Has(m.Name) {
			return true
		}
	}
	return false
}

func (s *Store) markLoaded(role string) {
	s.mu.Lock()
	s.state.RoutesLoaded = true
	s.state.CurrentRole = role
	s.mu.Unlock()
}

func (s *Store) save(ctx context.Context) error {
	return s.persist.Save(ctx, persistKey, s.Snapshot())
}
