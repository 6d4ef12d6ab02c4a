package permission

import (
	"context"
	"sync"

	"github.com/suPer8Hu/mall-console/internal/logger"
	"github.com/suPer8Hu/mall-console/internal/route"
)

type DecisionKind string

const (
	Proceed  DecisionKind = "proceed"
	Redirect DecisionKind = "redirect"
	Abort    DecisionKind = "abort"
)

// Decision is the single outcome of one navigation attempt. For Abort, Target
// is the route the operator stays on.
type Decision struct {
	Kind   DecisionKind `json:"kind"`
	Target string       `json:"target"`
	Match  *route.Match `json:"match,omitempty"`
	Err    error        `json:"-"`
}

type Authenticator interface {
	Authenticated() bool
	Role() string
}

type Guard struct {
	mu       sync.Mutex
	perm     *Store
	auth     Authenticator
	table    *route.Table
	resolver ComponentResolver
}

func NewGuard(perm *Store, auth Authenticator, table *route.Table, resolver ComponentResolver) *Guard {
	return &Guard{perm: perm, auth: auth, table: table, resolver: resolver}
}

func (g *Guard) Table() *route.Table { return g.table }

// BeforeEach decides a navigation from -> to. Navigations are serialized so a
// route load is never run twice for the same transition.
func (g *Guard) BeforeEach(ctx context.Context, from, to string) Decision {
	g.mu.Lock()
	defer g.mu.Unlock()

	target := route.Normalize(to)

	if target == route.PathLogin {
		if g.auth.Authenticated() {
			return Decision{Kind: Redirect, Target: route.PathHome}
		}
		return g.proceed(target)
	}
	if !g.auth.Authenticated() {
		return Decision{Kind: Redirect, Target: route.PathLogin}
	}

	restored := false
	switch {
	case !g.perm.RoutesLoaded() || g.perm.CurrentRole() != g.auth.Role():
		if _, err := g.perm.LoadAndRegisterRoutes(ctx, g.table, g.resolver); err != nil {
			logger.Errorf("[guard] load routes for %s failed: %v", to, err)
			return Decision{Kind: Abort, Target: from, Err: err}
		}
	case g.perm.NeedsRestore(g.table):
		if err := g.restore(ctx); err != nil {
			return Decision{Kind: Abort, Target: from, Err: err}
		}
		restored = true
	}

	m, ok := g.table.Resolve(target)
	if !ok && !restored && len(g.perm.Menus()) > 0 {
		if err := g.restore(ctx); err != nil {
			return Decision{Kind: Abort, Target: from, Err: err}
		}
		m, ok = g.table.Resolve(target)
	}
	if !ok {
		return Decision{Kind: Redirect, Target: route.PathNotFound}
	}

	if m.Route.Redirect != "" && route.Normalize(m.Route.Redirect) != target {
		return Decision{Kind: Redirect, Target: m.Route.Redirect, Match: &m}
	}
	return Decision{Kind: Proceed, Target: m.FullPath, Match: &m}
}

func (g *Guard) restore(ctx context.Context) error {
	if _, err := g.perm.RestoreRoutesFromPersist(ctx, g.table, g.resolver); err != nil {
		logger.Errorf("[guard] restore routes failed: %v", err)
		return err
	}
	return nil
}

func (g *Guard) proceed(target string) Decision {
	if m, ok := g.table.Resolve(target); ok {
		return Decision{Kind: Proceed, Target: m.FullPath, Match: &m}
	}
	return Decision{Kind: Proceed, Target: target}
}

// Reset drops dynamic routes, as on logout.
func (g *Guard) Reset(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.perm.Clear(ctx, g.table)
}
