package api

import (
	"context"
	"net/url"
)

type MenuType string

const (
	MenuLayout     MenuType = "layout"
	MenuView       MenuType = "view"
	MenuParentView MenuType = "parentView"
)

type MenuMeta struct {
	Title string `json:"title"`
	Icon  string `json:"icon,omitempty"`
}

// MenuNode is one navigable unit of the role-scoped navigation tree.
// Name is unique across the whole tree.
type MenuNode struct {
	Name      string     `json:"name"`
	Path      string     `json:"path"`
	Type      MenuType   `json:"type"`
	RoutePath string     `json:"routePath"`
	Redirect  string     `json:"redirect,omitempty"`
	Children  []MenuNode `json:"children,omitempty"`
	Meta      MenuMeta   `json:"meta"`
}

func (c *Client) FetchMenus(ctx context.Context, role string) ([]MenuNode, error) {
	var out []MenuNode
	if err := c.r.Get(ctx, "/menu/"+url.PathEscape(role), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
