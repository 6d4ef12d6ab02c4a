package api

import (
	"context"
	"net/url"

	"github.com/suPer8Hu/mall-console/internal/apiclient"
)

type CategoryItem struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	ParentID    string         `json:"parentId,omitempty"`
	Level       int            `json:"level,omitempty"`
	Status      int            `json:"status,omitempty"`
	Sort        int            `json:"sort,omitempty"`
	Children    []CategoryItem `json:"children,omitempty"`
}

type CategoryForm struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Status      int    `json:"status"`
	ParentID    string `json:"parentId,omitempty"`
	Description string `json:"description,omitempty"`
	Sort        int    `json:"sort,omitempty"`
}

func (c *Client) CategoryTree(ctx context.Context) ([]CategoryItem, error) {
	var out []CategoryItem
	if err := c.r.Get(ctx, "/category/tree", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) MerchantCategoryList(ctx context.Context) ([]CategoryItem, error) {
	var out []CategoryItem
	if err := c.r.Get(ctx, "/merchant/category/list", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AdminCategoryList(ctx context.Context) ([]CategoryItem, error) {
	var out []CategoryItem
	if err := c.r.Get(ctx, "/admin/category/list", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AdminCategoryAllTree(ctx context.Context) ([]CategoryItem, error) {
	var out []CategoryItem
	if err := c.r.Get(ctx, "/admin/category/allTree", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AdminAddCategory(ctx context.Context, f CategoryForm) error {
	if f.Name == "" {
		return apiclient.Invalid("addCategory", "name is required")
	}
	return c.r.Post(ctx, "/admin/category/add", f, nil)
}

func (c *Client) AdminUpdateCategory(ctx context.Context, f CategoryForm) error {
	if f.ID == "" {
		return apiclient.Invalid("updateCategory", "id is required")
	}
	id := f.ID
	f.ID = ""
	return c.r.Post(ctx, "/admin/category/update/"+url.PathEscape(id), f, nil)
}

func (c *Client) AdminDeleteCategory(ctx context.Context, id string) error {
	return c.r.Post(ctx, "/admin/category/delete/"+url.PathEscape(id), nil, nil)
}
