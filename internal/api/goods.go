package api

import (
	"context"
	"net/url"

	"github.com/suPer8Hu/mall-console/internal/apiclient"
)

type GoodsStatus int

const (
	GoodsOff GoodsStatus = 0
	GoodsOn  GoodsStatus = 1
)

type SkuSpec struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Specification struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

type SkuItem struct {
	Specs     []SkuSpec   `json:"specs"`
	Price     float64     `json:"price"`
	Inventory int         `json:"inventory"`
	Status    GoodsStatus `json:"status"`
}

type GoodsItem struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Price          float64         `json:"price,omitempty"`
	Inventory      int             `json:"inventory,omitempty"`
	Category       string          `json:"category,omitempty"`
	CategoryID     string          `json:"categoryId,omitempty"`
	StoreID        string          `json:"storeId"`
	StoreName      string          `json:"storeName"`
	Info           string          `json:"info,omitempty"`
	Img            string          `json:"img,omitempty"`
	ImgList        string          `json:"imgList,omitempty"`
	DetailImages   string          `json:"detailImages,omitempty"`
	Unit           string          `json:"unit,omitempty"`
	Status         bool            `json:"status"`
	Specifications []Specification `json:"specifications,omitempty"`
	Skus           []SkuItem       `json:"skus,omitempty"`
}

type GoodsPayload struct {
	ID             string          `json:"id,omitempty"`
	Name           string          `json:"name"`
	CategoryID     string          `json:"categoryId"`
	StoreID        string          `json:"storeId"`
	StoreName      string          `json:"storeName,omitempty"`
	Info           string          `json:"info"`
	Img            string          `json:"img"`
	ImgList        string          `json:"imgList,omitempty"`
	DetailImages   string          `json:"detailImages,omitempty"`
	Unit           string          `json:"unit"`
	Status         GoodsStatus     `json:"status"`
	Specifications []Specification `json:"specifications,omitempty"`
	Skus           []SkuItem       `json:"skus,omitempty"`
}

type GoodsExtraInfo struct {
	Specifications []Specification `json:"specifications"`
	Skus           []SkuItem       `json:"skus"`
}

type GoodsUnit struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// admin

func (c *Client) AdminGoodsPage(ctx context.Context, p PageParams) (*PageResult[GoodsItem], error) {
	var out PageResult[GoodsItem]
	if err := c.r.Get(ctx, "/admin/goods", p.Values(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AdminGoods(ctx context.Context, id string) (*GoodsItem, error) {
	var out GoodsItem
	if err := c.r.Get(ctx, "/admin/goods/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AdminUpdateGoodsStatus(ctx context.Context, id string, on bool) error {
	return c.r.Put(ctx, "/admin/goods/status", map[string]any{"id": id, "status": on}, nil)
}

func (c *Client) AdminDeleteGoods(ctx context.Context, id string) error {
	return c.r.Delete(ctx, "/admin/goods/"+url.PathEscape(id), nil, nil)
}

// AdminAuditGoods records a decision: status 1 approves, 2 rejects.
func (c *Client) AdminAuditGoods(ctx context.Context, id string, status AuditStatus, msg string) error {
	if status != AuditApproved && status != AuditRejected {
		return apiclient.Invalid("auditGoods", "status must be approved or rejected")
	}
	return c.r.Put(ctx, "/admin/goods/audit", map[string]any{"id": id, "auditStatus": status, "auditMsg": msg}, nil)
}

func (c *Client) AdminUpdateGoods(ctx context.Context, g GoodsItem) (*GoodsItem, error) {
	if g.ID == "" {
		return nil, apiclient.Invalid("updateGoods", "id is required")
	}
	var out GoodsItem
	if err := c.r.Put(ctx, "/admin/goods", g, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// merchant

func (c *Client) MerchantGoodsPage(ctx context.Context, p PageParams) (*PageResult[GoodsItem], error) {
	var out PageResult[GoodsItem]
	if err := c.r.Get(ctx, "/merchant/goods", p.Values(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MerchantGoods(ctx context.Context, id string) (*GoodsItem, error) {
	var out GoodsItem
	if err := c.r.Get(ctx, "/merchant/goods/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MerchantGoodsSpecs(ctx context.Context, id string) (*GoodsExtraInfo, error) {
	var out GoodsExtraInfo
	if err := c.r.Get(ctx, "/merchant/goods/detail/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MerchantAddGoods(ctx context.Context, p GoodsPayload) error {
	return c.r.Post(ctx, "/merchant/goods", p, nil)
}

func (c *Client) MerchantRepublishGoods(ctx context.Context, auditID string, p GoodsPayload) error {
	if auditID == "" {
		return apiclient.Invalid("republishGoods", "audit id is required")
	}
	return c.r.Post(ctx, "/merchant/goods/republish/"+url.PathEscape(auditID), p, nil)
}

func (c *Client) MerchantUpdateGoods(ctx context.Context, p GoodsPayload) error {
	if p.ID == "" {
		return apiclient.Invalid("updateGoods", "id is required")
	}
	return c.r.Put(ctx, "/merchant/goods", p, nil)
}

func (c *Client) MerchantDeleteGoods(ctx context.Context, id string) error {
	return c.r.Delete(ctx, "/merchant/goods/"+url.PathEscape(id), nil, nil)
}

func (c *Client) MerchantUpdateGoodsStatus(ctx context.Context, id string, on bool) error {
	return c.r.Put(ctx, "/merchant/goods/status", map[string]any{"goodsId": id, "status": on}, nil)
}

func (c *Client) MerchantGoodsUnits(ctx context.Context) ([]GoodsUnit, error) {
	var out []GoodsUnit
	if err := c.r.Get(ctx, "/merchant/goods/units", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
