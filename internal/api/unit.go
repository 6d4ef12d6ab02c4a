package api

import (
	"context"
	"net/url"

	"github.com/suPer8Hu/mall-console/internal/apiclient"
)

type UnitStatus int

const (
	UnitDisabled UnitStatus = 0
	UnitEnabled  UnitStatus = 1
)

type UnitItem struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Status UnitStatus `json:"status"`
	Sort   int        `json:"sort"`
}

func (c *Client) MerchantUnitList(ctx context.Context) ([]UnitItem, error) {
	var out []UnitItem
	if err := c.r.Get(ctx, "/merchant/units/list", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AdminUnitPage(ctx context.Context, p PageParams) (*PageResult[UnitItem], error) {
	var out PageResult[UnitItem]
	if err := c.r.Get(ctx, "/admin/units", p.Values(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AdminAddUnit(ctx context.Context, u UnitItem) (*UnitItem, error) {
	if u.Name == "" {
		return nil, apiclient.Invalid("addUnit", "name is required")
	}
	var out UnitItem
	if err := c.r.Post(ctx, "/admin/units", u, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AdminUnit(ctx context.Context, id string) (*UnitItem, error) {
	var out UnitItem
	if err := c.r.Get(ctx, "/admin/units/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AdminUpdateUnit(ctx context.Context, id string, u UnitItem) (*UnitItem, error) {
	if id == "" {
		return nil, apiclient.Invalid("updateUnit", "id is required")
	}
	var out UnitItem
	if err := c.r.Put(ctx, "/admin/units/"+url.PathEscape(id), u, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AdminDeleteUnit(ctx context.Context, id string) error {
	return c.r.Delete(ctx, "/admin/units/"+url.PathEscape(id), nil, nil)
}

func (c *Client) AdminBatchDeleteUnits(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return apiclient.Invalid("batchDeleteUnit", "no ids given")
	}
	return c.r.Post(ctx, "/admin/units/batch/delete", map[string]any{"ids": ids}, nil)
}

func (c *Client) AdminUpdateUnitStatus(ctx context.Context, id string, s UnitStatus) (*UnitItem, error) {
	var out UnitItem
	if err := c.r.Patch(ctx, "/admin/units/"+url.PathEscape(id)+"/status", map[string]any{"status": s}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
