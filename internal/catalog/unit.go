package catalog

import (
	"context"
	"slices"
	"sync"

	"github.com/suPer8Hu/mall-console/internal/api"
	"golang.org/x/sync/singleflight"
)

type UnitAPI interface {
	MerchantUnitList(ctx context.Context) ([]api.UnitItem, error)
}

// Unit is the id/name pair the console keeps.
type Unit struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Units struct {
	api   UnitAPI
	group singleflight.Group

	mu     sync.RWMutex
	list   []Unit
	loaded bool
}

func NewUnits(a UnitAPI) *Units {
	return &Units{api: a}
}

func (u *Units) LoadList(ctx context.Context) ([]Unit, error) {
	u.mu.RLock()
	if u.loaded {
		out := slices.Clone(u.list)
		u.mu.RUnlock()
		return out, nil
	}
	u.mu.RUnlock()

	_, err, _ := u.group.Do("list", func() (any, error) {
		u.mu.RLock()
		done := u.loaded
		u.mu.RUnlock()
		if done {
			return nil, nil
		}
		items, err := u.api.MerchantUnitList(ctx)
		if err != nil {
			return nil, err
		}
		list := make([]Unit, 0, len(items))
		for _, it := range items {
			list = append(list, Unit{ID: it.ID, Name: it.Name})
		}
		u.mu.Lock()
		u.list, u.loaded = list, true
		u.mu.Unlock()
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return u.List(), nil
}

func (u *Units) List() []Unit {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return slices.Clone(u.list)
}

func (u *Units) Name(id string) string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	for _, it := range u.list {
		if it.ID == id && it.Name != "" {
			return it.Name
		}
	}
	return Unknown
}

// Reset forgets the cached list, as on logout.
func (u *Units) Reset() {
	u.mu.Lock()
	u.list, u.loaded = nil, false
	u.mu.Unlock()
}
