package handlers

import (
	"maps"
	"net/http"
	"slices"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/suPer8Hu/mall-console/internal/api"
	"github.com/suPer8Hu/mall-console/internal/common"
)

func (h *Handler) Dashboard(c *gin.Context) {
	data, err := h.App.API.Dashboard(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, data)
}

type trendPoint struct {
	Date    string `json:"date"`
	Revenue string `json:"revenue"`
}

// RevenueTrend returns daily revenue in date order with its total.
func (h *Handler) RevenueTrend(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil || days < 1 || days > 90 {
		common.Fail(c, http.StatusBadRequest, 10002, "days must be between 1 and 90")
		return
	}
	byDay, err := h.App.API.RevenueTrend(c.Request.Context(), days)
	if err != nil {
		failErr(c, err)
		return
	}

	total := decimal.Zero
	points := make([]trendPoint, 0, len(byDay))
	for _, day := range slices.Sorted(maps.Keys(byDay)) {
		v := common.MoneyFromFloat(byDay[day])
		total = total.Add(v)
		points = append(points, trendPoint{Date: day, Revenue: v.StringFixed(2)})
	}
	common.OK(c, gin.H{"days": days, "points": points, "total": total.StringFixed(2)})
}

type orderView struct {
	api.OrderItem
	TypeLabel  string         `json:"typeLabel"`
	StatusInfo api.StatusInfo `json:"statusInfo"`
}

func (h *Handler) ListOrders(c *gin.Context) {
	page, ok := pageQuery(c)
	if !ok {
		return
	}
	res, err := h.App.API.OrderPage(c.Request.Context(), api.PageParams{
		Page:    page,
		Filters: map[string]string{"status": c.Query("status"), "orderNo": c.Query("orderNo")},
	})
	if err != nil {
		failErr(c, err)
		return
	}

	rows := make([]orderView, 0, len(res.Records))
	for _, o := range res.Records {
		rows = append(rows, orderView{
			OrderItem:  o,
			TypeLabel:  o.OrderType.Label(),
			StatusInfo: api.OrderStatus(o.OrderStatus).Info(),
		})
	}
	common.OK(c, gin.H{"records": rows, "total": res.Total, "pages": res.TotalPages()})
}

func (h *Handler) OrderDetail(c *gin.Context) {
	d, err := h.App.API.OrderDetail(c.Request.Context(), c.Param("no"))
	if err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, d)
}

func (h *Handler) ShipOrder(c *gin.Context) {
	if err := h.App.API.ShipOrder(c.Request.Context(), c.Param("no")); err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, gin.H{"orderNo": c.Param("no")})
}

func (h *Handler) CancelOrder(c *gin.Context) {
	if err := h.App.API.CancelOrder(c.Request.Context(), c.Param("no")); err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, gin.H{"orderNo": c.Param("no")})
}
