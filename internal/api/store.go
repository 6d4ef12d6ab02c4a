package api

import (
	"context"
	"net/url"

	"github.com/suPer8Hu/mall-console/internal/apiclient"
)

// MerchantInfo is the logged-in merchant with the store it runs.
type MerchantInfo struct {
	UID       string `json:"uid"`
	Username  string `json:"username"`
	Nickname  string `json:"nickname"`
	Role      string `json:"role"`
	StoreID   string `json:"storeId"`
	StoreName string `json:"storeName"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

type StoreInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Info      string `json:"info"`
	AvatarURL string `json:"avatarUrl"`
	Banner    string `json:"banner,omitempty"`
}

// StoreUpdate is a partial update; nil fields are left alone.
type StoreUpdate struct {
	Name      *string `json:"name,omitempty"`
	Info      *string `json:"info,omitempty"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
	Banner    *string `json:"banner,omitempty"`
}

func (c *Client) MerchantInfo(ctx context.Context) (*MerchantInfo, error) {
	var out MerchantInfo
	if err := c.r.Get(ctx, "/store/info", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MyStore(ctx context.Context) (*StoreInfo, error) {
	var out StoreInfo
	if err := c.r.Get(ctx, "/store", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateStore(ctx context.Context, id string, u StoreUpdate) (*StoreInfo, error) {
	if id == "" {
		return nil, apiclient.Invalid("updateStore", "store id is required")
	}
	var out StoreInfo
	if err := c.r.Patch(ctx, "/store/"+url.PathEscape(id), u, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
