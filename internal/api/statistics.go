package api

import (
	"context"
	"net/url"
	"strconv"
)

type DashboardOverview struct {
	TodayRevenue      float64 `json:"todayRevenue"`
	TodayOrderCount   int     `json:"todayOrderCount"`
	TodayNewUserCount int     `json:"todayNewUserCount"`
	TotalRevenue      float64 `json:"totalRevenue"`
}

type TopProduct struct {
	Rank       int    `json:"rank"`
	GoodsID    int64  `json:"goodsId"`
	GoodsName  string `json:"goodsName"`
	GoodsCover string `json:"goodsCover"`
	SaleCount  int    `json:"saleCount"`
	SaleAmount string `json:"saleAmount"`
}

type CategoryRatio struct {
	CategoryID   string  `json:"categoryId"`
	CategoryName string  `json:"categoryName"`
	SaleAmount   float64 `json:"saleAmount"`
	SaleRatio    float64 `json:"saleRatio"`
}

type TopCollectedProduct struct {
	Rank              int    `json:"rank"`
	GoodsID           string `json:"goodsId"`
	GoodsName         string `json:"goodsName"`
	GoodsImage        string `json:"goodsImage"`
	FavoriteTotal     int    `json:"favoriteTotal"`
	FavoriteLast7Days int    `json:"favoriteLast7Days"`
}

type DashboardData struct {
	Overview           DashboardOverview     `json:"dashboardOverview"`
	RevenueTrend       map[string]float64    `json:"revenueTrend"`
	GoodsSalesRank     []TopProduct          `json:"goodsSalesRank"`
	CategorySalesRatio []CategoryRatio       `json:"categorySalesRatio"`
	GoodsFavoriteRank  []TopCollectedProduct `json:"goodsFavoriteRank"`
}

func (c *Client) Dashboard(ctx context.Context) (*DashboardData, error) {
	var out DashboardData
	if err := c.r.Get(ctx, "/statistics/all", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RevenueTrend returns revenue keyed by date for the last days days.
func (c *Client) RevenueTrend(ctx context.Context, days int) (map[string]float64, error) {
	if days <= 0 {
		days = 7
	}
	q := url.Values{}
	q.Set("days", strconv.Itoa(days))
	var out map[string]float64
	if err := c.r.Get(ctx, "/statistics/revenue-trend", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}
