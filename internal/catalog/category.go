// Package catalog caches reference data (categories and units) that is
// fetched once per console session.
package catalog

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/suPer8Hu/mall-console/internal/api"
	"github.com/suPer8Hu/mall-console/internal/logger"
	"golang.org/x/sync/singleflight"
)

// Unknown is shown for ids that are not in the cache.
const Unknown = "-"

const rootParentID = "0"

type CategoryAPI interface {
	MerchantCategoryList(ctx context.Context) ([]api.CategoryItem, error)
	CategoryTree(ctx context.Context) ([]api.CategoryItem, error)
}

type Categories struct {
	api   CategoryAPI
	group singleflight.Group

	mu         sync.RWMutex
	list       []api.CategoryItem
	tree       []api.CategoryItem
	listLoaded bool
	treeLoaded bool
}

func NewCategories(a CategoryAPI) *Categories {
	return &Categories{api: a}
}

// LoadList fetches the flat category list once. Concurrent callers share one
// request.
func (c *Categories) LoadList(ctx context.Context) ([]api.CategoryItem, error) {
	c.mu.RLock()
	if c.listLoaded {
		out := slices.Clone(c.list)
		c.mu.RUnlock()
		return out, nil
	}
	c.mu.RUnlock()

	_, err, _ := c.group.Do("list", func() (any, error) {
		if c.loaded(&c.listLoaded) {
			return nil, nil
		}
		items, err := c.api.MerchantCategoryList(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.list, c.listLoaded = items, true
		c.mu.Unlock()
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return c.List(), nil
}

func (c *Categories) LoadTree(ctx context.Context) ([]api.CategoryItem, error) {
	c.mu.RLock()
	if c.treeLoaded {
		out := slices.Clone(c.tree)
		c.mu.RUnlock()
		return out, nil
	}
	c.mu.RUnlock()

	_, err, _ := c.group.Do("tree", func() (any, error) {
		if c.loaded(&c.treeLoaded) {
			return nil, nil
		}
		items, err := c.api.CategoryTree(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.tree, c.treeLoaded = items, true
		c.mu.Unlock()
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return c.Tree(), nil
}

// loaded re-checks a flag inside the flight; a caller may have raced a
// finished load.
func (c *Categories) loaded(flag *bool) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return *flag
}

// List returns the loaded list, empty before LoadList.
func (c *Categories) List() []api.CategoryItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.list)
}

func (c *Categories) Tree() []api.CategoryItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.tree)
}

func (c *Categories) byID() map[string]api.CategoryItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m := make(map[string]api.CategoryItem, len(c.list))
	for _, it := range c.list {
		m[it.ID] = it
	}
	return m
}

func (c *Categories) Name(id string) string {
	if it, ok := c.byID()[id]; ok && it.Name != "" {
		return it.Name
	}
	return Unknown
}

// Path walks parent links from id up to the root and returns the chain
// root first. A missing link ends the walk.
func (c *Categories) Path(id string) []api.CategoryItem {
	m := c.byID()
	var path []api.CategoryItem
	seen := make(map[string]bool)
	for cur := id; cur != "" && cur != rootParentID; {
		if seen[cur] {
			logger.Warnf("[catalog] category cycle at %s", cur)
			break
		}
		seen[cur] = true

		it, ok := m[cur]
		if !ok {
			logger.Warnf("[catalog] category %s not found", cur)
			break
		}
		path = append([]api.CategoryItem{it}, path...)
		cur = it.ParentID
	}
	return path
}

// PathString renders Path as "a > b > c".
func (c *Categories) PathString(id string) string {
	return joinNames(c.Path(id))
}

// PathStringByIDPath renders the known categories of an explicit id path.
func (c *Categories) PathStringByIDPath(ids []int64) string {
	if len(ids) == 0 {
		return Unknown
	}
	m := c.byID()
	var path []api.CategoryItem
	for _, id := range ids {
		if it, ok := m[strconv.FormatInt(id, 10)]; ok {
			path = append(path, it)
		}
	}
	return joinNames(path)
}

func (c *Categories) FirstLevelName(ids []int64) string {
	if len(ids) == 0 {
		return Unknown
	}
	return c.Name(strconv.FormatInt(ids[0], 10))
}

func joinNames(items []api.CategoryItem) string {
	if len(items) == 0 {
		return Unknown
	}
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	return strings.Join(names, " > ")
}

// Reset forgets both cached views, as on logout.
func (c *Categories) Reset() {
	c.mu.Lock()
	c.list, c.tree = nil, nil
	c.listLoaded, c.treeLoaded = false, false
	c.mu.Unlock()
}
