package catalog

import (
	"context"
	"errors"
	"io"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suPer8Hu/mall-console/internal/api"
	"github.com/suPer8Hu/mall-console/internal/logger"
)

func init() {
	logger.SetOutput(io.Discard)
}

type fakeCatalogAPI struct {
	listCalls atomic.Int32
	treeCalls atomic.Int32
	unitCalls atomic.Int32
	gate      chan struct{}
	err       error
}

func (f *fakeCatalogAPI) MerchantCategoryList(ctx context.Context) ([]api.CategoryItem, error) {
	f.listCalls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	if f.err != nil {
		return nil, f.err
	}
	return []api.CategoryItem{
		{ID: "1", Name: "Electronics", ParentID: "0"},
		{ID: "5", Name: "Phones", ParentID: "1"},
		{ID: "7", Name: "Smartphones", ParentID: "5"},
		{ID: "9", Name: "Orphan", ParentID: "404"},
	}, nil
}

func (f *fakeCatalogAPI) CategoryTree(ctx context.Context) ([]api.CategoryItem, error) {
	f.treeCalls.Add(1)
	return []api.CategoryItem{{ID: "1", Name: "Electronics", Children: []api.CategoryItem{{ID: "5", Name: "Phones"}}}}, nil
}

func (f *fakeCatalogAPI) MerchantUnitList(ctx context.Context) ([]api.UnitItem, error) {
	f.unitCalls.Add(1)
	return []api.UnitItem{{ID: "u1", Name: "piece", Status: api.UnitEnabled}, {ID: "u2", Name: "box"}}, nil
}

func TestCategories_LoadOnceShared(t *testing.T) {
	f := &fakeCatalogAPI{gate: make(chan struct{})}
	c := NewCategories(f)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.LoadList(context.Background())
		}()
	}
	// let the callers pile up behind the single request
	for f.listCalls.Load() == 0 {
		runtime.Gosched()
	}
	close(f.gate)
	wg.Wait()

	list, err := c.LoadList(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 4)
	assert.Equal(t, int32(1), f.listCalls.Load())
}

func TestCategories_LoadErrorNotCached(t *testing.T) {
	f := &fakeCatalogAPI{err: errors.New("down")}
	c := NewCategories(f)

	_, err := c.LoadList(context.Background())
	require.Error(t, err)
	assert.Empty(t, c.List())

	f.err = nil
	list, err := c.LoadList(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 4)
	assert.Equal(t, int32(2), f.listCalls.Load())
}

func TestCategories_NamesAndPaths(t *testing.T) {
	c := NewCategories(&fakeCatalogAPI{})
	assert.Equal(t, Unknown, c.Name("1"), "unknown before load")

	_, err := c.LoadList(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Phones", c.Name("5"))
	assert.Equal(t, Unknown, c.Name("nope"))

	path := c.Path("7")
	require.Len(t, path, 3)
	assert.Equal(t, "Electronics", path[0].Name)
	assert.Equal(t, "Electronics > Phones > Smartphones", c.PathString("7"))
	assert.Equal(t, "Orphan", c.PathString("9"))
	assert.Equal(t, Unknown, c.PathString("nope"))

	assert.Equal(t, "Electronics > Smartphones", c.PathStringByIDPath([]int64{1, 42, 7}))
	assert.Equal(t, Unknown, c.PathStringByIDPath(nil))
	assert.Equal(t, "Electronics", c.FirstLevelName([]int64{1, 5}))
	assert.Equal(t, Unknown, c.FirstLevelName(nil))
}

func TestCategories_TreeAndReset(t *testing.T) {
	f := &fakeCatalogAPI{}
	c := NewCategories(f)

	tree, err := c.LoadTree(context.Background())
	require.NoError(t, err)
	require.Len(t, tree, 1)
	_, _ = c.LoadTree(context.Background())
	assert.Equal(t, int32(1), f.treeCalls.Load())

	c.Reset()
	assert.Empty(t, c.Tree())
	_, _ = c.LoadTree(context.Background())
	assert.Equal(t, int32(2), f.treeCalls.Load())
}

func TestUnits_LoadAndName(t *testing.T) {
	f := &fakeCatalogAPI{}
	u := NewUnits(f)

	list, err := u.LoadList(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Unit{{ID: "u1", Name: "piece"}, {ID: "u2", Name: "box"}}, list)

	_, _ = u.LoadList(context.Background())
	assert.Equal(t, int32(1), f.unitCalls.Load())
	assert.Equal(t, "box", u.Name("u2"))
	assert.Equal(t, Unknown, u.Name("u9"))
}
