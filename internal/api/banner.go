package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/suPer8Hu/mall-console/internal/apiclient"
)

type BannerItem struct {
	ID          string `json:"id"`
	ImageURL    string `json:"imageUrl"`
	GoodsID     string `json:"goodsId"`
	GoodsName   string `json:"goodsName"`
	IsRecommend bool   `json:"isRecommend"`
}

func (c *Client) BannerPage(ctx context.Context, p PageParams) (*PageResult[BannerItem], error) {
	var out PageResult[BannerItem]
	if err := c.r.Get(ctx, "/admin/banner/page", p.Values(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SetBannerRecommend(ctx context.Context, id string, recommend bool) error {
	return c.r.Post(ctx, "/admin/banner/recommend/"+url.PathEscape(id)+"/"+strconv.FormatBool(recommend), nil, nil)
}

func (c *Client) AddBanner(ctx context.Context, b BannerItem) error {
	if b.ImageURL == "" {
		return apiclient.Invalid("addBanner", "image is required")
	}
	return c.r.Post(ctx, "/admin/banner/add", b, nil)
}

func (c *Client) UpdateBanner(ctx context.Context, id string, b BannerItem) error {
	if id == "" {
		return apiclient.Invalid("updateBanner", "id is required")
	}
	return c.r.Post(ctx, "/admin/banner/update/"+url.PathEscape(id), b, nil)
}

func (c *Client) BatchDeleteBanners(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return apiclient.Invalid("batchDeleteBanner", "no ids given")
	}
	return c.r.Post(ctx, "/admin/banner/batch/del", map[string]any{"ids": ids}, nil)
}
