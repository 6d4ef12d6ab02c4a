package permission

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/suPer8Hu/mall-console/internal/api"
	"github.com/suPer8Hu/mall-console/internal/logger"
	"github.com/suPer8Hu/mall-console/internal/persist"
	"github.com/suPer8Hu/mall-console/internal/route"
)

func init() {
	logger.SetOutput(io.Discard)
}

type fakeMenus struct {
	byRole map[string][]api.MenuNode
	err    error
	calls  int
}

func (f *fakeMenus) FetchMenus(ctx context.Context, role string) ([]api.MenuNode, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.byRole[role], nil
}

type fakeAuth struct {
	token string
	role  string
}

func (a *fakeAuth) Authenticated() bool { return a.token != "" }
func (a *fakeAuth) Role() string        { return a.role }

func goodsTree() []api.MenuNode {
	return []api.MenuNode{{
		Name:      "goods",
		Path:      "goods",
		Type:      api.MenuParentView,
		RoutePath: "/goods",
		Redirect:  "/goods/list",
		Meta:      api.MenuMeta{Title: "Goods"},
		Children: []api.MenuNode{{
			Name:      "goods-list",
			Path:      "goods/list",
			Type:      api.MenuView,
			RoutePath: "/goods/list",
			Meta:      api.MenuMeta{Title: "Goods list"},
		}},
	}}
}

func newFixture() (*Store, *Guard, *fakeMenus, *fakeAuth, *persist.Store) {
	menus := &fakeMenus{byRole: map[string][]api.MenuNode{
		"merchant": goodsTree(),
		"admin": {{
			Name: "audit", Path: "audit", Type: api.MenuView, RoutePath: "/audit",
		}},
	}}
	auth := &fakeAuth{}
	p := persist.New(persist.NewMemoryBackend(), nil, "test")
	store := NewStore(menus, auth, p)
	guard := NewGuard(store, auth, route.NewStaticTable(), DefaultRegistry())
	return store, guard, menus, auth, p
}

func TestMenusToRoutes_PreservesNamesAndNesting(t *testing.T) {
	routes, err := MenusToRoutes(goodsTree(), DefaultRegistry())
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if len(routes) != 1 || routes[0].Name != "goods" || routes[0].View != "" {
		t.Fatalf("unexpected parent route: %+v", routes)
	}
	if routes[0].Redirect != "/goods/list" || routes[0].Path != "/goods" {
		t.Fatalf("unexpected parent fields: %+v", routes[0])
	}
	if len(routes[0].Children) != 1 || routes[0].Children[0].Name != "goods-list" || routes[0].Children[0].View != "goods/list" {
		t.Fatalf("unexpected children: %+v", routes[0].Children)
	}
}

func TestMenusToRoutes_UnknownViewIsConfigError(t *testing.T) {
	nodes := []api.MenuNode{{Name: "x", Path: "no/such/view", Type: api.MenuView, RoutePath: "/x"}}
	_, err := MenusToRoutes(nodes, DefaultRegistry())
	if !errors.Is(err, ErrUnknownView) {
		t.Fatalf("expected ErrUnknownView, got %v", err)
	}
}

func TestAddRoutesToRouter_Idempotent(t *testing.T) {
	store, _, _, _, _ := newFixture()
	table := route.NewStaticTable()
	routes, _ := MenusToRoutes(goodsTree(), DefaultRegistry())

	for i := 0; i < 2; i++ {
		if err := store.AddRoutesToRouter(table, routes, ""); err != nil {
			t.Fatalf("add #%d: %v", i, err)
		}
	}
	names := store.AddedRouteNames()
	if len(names) != 2 || names[0] != "goods" || names[1] != "goods-list" {
		t.Fatalf("unexpected recorded names: %v", names)
	}
	if len(table.Names()) != 5 {
		t.Fatalf("expected 3 static + 2 dynamic routes, got %v", table.Names())
	}
}

func TestAddRoutesToRouter_RecursesIntoRegisteredParent(t *testing.T) {
	store, _, _, _, _ := newFixture()
	table := route.NewStaticTable()
	_ = table.Add("", route.Route{Name: "goods", Path: "/goods"})

	routes, _ := MenusToRoutes(goodsTree(), DefaultRegistry())
	if err := store.AddRoutesToRouter(table, routes, ""); err != nil {
		t.Fatalf("add: %v", err)
	}
	if !table.Has("goods-list") {
		t.Fatalf("expected child registered under existing parent")
	}
	if m, ok := table.Resolve("/goods/list"); !ok || m.Matched[0] != "goods" {
		t.Fatalf("unexpected resolve: %+v %v", m, ok)
	}
}

func TestClear_RemovesRecordedRoutes(t *testing.T) {
	store, _, _, auth, p := newFixture()
	auth.token, auth.role = "t", "merchant"
	table := route.NewStaticTable()

	if _, err := store.LoadAndRegisterRoutes(context.Background(), table, DefaultRegistry()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := store.Clear(context.Background(), table); err != nil {
		t.Fatalf("clear: %v", err)
	}
	for _, n := range []string{"goods", "goods-list"} {
		if table.Has(n) {
			t.Fatalf("route %s should be gone", n)
		}
	}
	if len(store.AddedRouteNames()) != 0 || store.RoutesLoaded() || store.CurrentRole() != "" {
		t.Fatalf("unexpected state after clear: %+v", store.Snapshot())
	}
	if !table.Has(route.NameLogin) {
		t.Fatalf("static routes must survive clear")
	}
	var st State
	if ok, _ := p.Load(context.Background(), "permission", &st); ok {
		t.Fatalf("persisted permission state should be deleted")
	}
}

func TestGuard_UnauthenticatedGoesToLogin(t *testing.T) {
	_, guard, menus, _, _ := newFixture()
	d := guard.BeforeEach(context.Background(), "/", "/goods/list")
	if d.Kind != Redirect || d.Target != route.PathLogin {
		t.Fatalf("unexpected decision: %+v", d)
	}
	if d := guard.BeforeEach(context.Background(), "/", "/login"); d.Kind != Proceed {
		t.Fatalf("login page should be reachable, got %+v", d)
	}
	if menus.calls != 0 {
		t.Fatalf("menus must not be fetched before login")
	}
}

func TestGuard_LoginWithTokenGoesHome(t *testing.T) {
	_, guard, _, auth, _ := newFixture()
	auth.token, auth.role = "t", "merchant"
	d := guard.BeforeEach(context.Background(), "/", "/login")
	if d.Kind != Redirect || d.Target != route.PathHome {
		t.Fatalf("unexpected decision: %+v", d)
	}
}

func TestGuard_LoadFailureAbortsOnFrom(t *testing.T) {
	_, guard, menus, auth, _ := newFixture()
	auth.token, auth.role = "t", "merchant"
	menus.err = errors.New("boom")

	d := guard.BeforeEach(context.Background(), "/statistics", "/goods/list")
	if d.Kind != Abort || d.Target != "/statistics" || d.Err == nil {
		t.Fatalf("unexpected decision: %+v", d)
	}
}

func TestGuard_UnmatchedAndRedirect(t *testing.T) {
	_, guard, _, auth, _ := newFixture()
	auth.token, auth.role = "t", "merchant"
	ctx := context.Background()

	if d := guard.BeforeEach(ctx, "/", "/nowhere"); d.Kind != Redirect || d.Target != route.PathNotFound {
		t.Fatalf("expected 404 redirect, got %+v", d)
	}
	if d := guard.BeforeEach(ctx, "/", "/goods"); d.Kind != Redirect || d.Target != "/goods/list" {
		t.Fatalf("expected route redirect, got %+v", d)
	}
	d := guard.BeforeEach(ctx, "/goods", "/goods/list")
	if d.Kind != Proceed || d.Match == nil || d.Match.Route.Name != "goods-list" {
		t.Fatalf("expected proceed to goods-list, got %+v", d)
	}
}

func TestGuard_MerchantLoginThenLogout(t *testing.T) {
	_, guard, _, auth, _ := newFixture()
	ctx := context.Background()

	auth.token, auth.role = "t", "merchant"
	d := guard.BeforeEach(ctx, "/login", "/goods/list")
	if d.Kind != Proceed || d.Match.Route.Name != "goods-list" {
		t.Fatalf("expected goods-list reachable, got %+v", d)
	}
	if !guard.Table().Has("goods-list") {
		t.Fatalf("goods-list should be registered")
	}

	auth.token, auth.role = "", ""
	if err := guard.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, ok := guard.Table().Resolve("/goods/list"); ok {
		t.Fatalf("goods-list must not resolve after logout")
	}
	if d := guard.BeforeEach(ctx, "/", "/goods/list"); d.Kind != Redirect || d.Target != route.PathLogin {
		t.Fatalf("expected login redirect after logout, got %+v", d)
	}
}

func TestGuard_RoleChangeReloads(t *testing.T) {
	_, guard, menus, auth, _ := newFixture()
	ctx := context.Background()

	auth.token, auth.role = "t", "merchant"
	guard.BeforeEach(ctx, "/", "/goods/list")

	auth.role = "admin"
	d := guard.BeforeEach(ctx, "/", "/audit")
	if d.Kind != Proceed || d.Match.Route.Name != "audit" {
		t.Fatalf("expected admin route, got %+v", d)
	}
	if guard.Table().Has("goods-list") {
		t.Fatalf("merchant routes should be dropped on role change")
	}
	if menus.calls != 2 {
		t.Fatalf("expected one fetch per role, got %d", menus.calls)
	}
}

func TestGuard_RestoresAfterRestartWithoutFetching(t *testing.T) {
	_, guard, menus, auth, p := newFixture()
	ctx := context.Background()
	auth.token, auth.role = "t", "merchant"
	guard.BeforeEach(ctx, "/", "/goods/list")

	// Fresh store and table over the same persisted state.
	restarted := NewStore(menus, auth, p)
	if err := restarted.Restore(ctx); err != nil {
		t.Fatalf("restore: %v", err)
	}
	guard2 := NewGuard(restarted, auth, route.NewStaticTable(), DefaultRegistry())

	d := guard2.BeforeEach(ctx, "/", "/goods/list")
	if d.Kind != Proceed || d.Match.Route.Name != "goods-list" {
		t.Fatalf("expected restored route, got %+v", d)
	}
	if menus.calls != 1 {
		t.Fatalf("restore must not refetch menus, calls=%d", menus.calls)
	}
}
