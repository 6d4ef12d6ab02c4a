package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/mall-console/internal/api"
	"github.com/suPer8Hu/mall-console/internal/common"
)

type idsReq struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

type switchReq struct {
	On *bool `json:"on" binding:"required"`
}

func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json or missing fields")
		return false
	}
	return true
}

// banners

func (h *Handler) ListBanners(c *gin.Context) {
	page, ok := pageQuery(c)
	if !ok {
		return
	}
	res, err := h.App.API.BannerPage(c.Request.Context(), api.PageParams{Page: page})
	if err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, gin.H{"records": res.Records, "total": res.Total, "pages": res.TotalPages()})
}

func (h *Handler) AddBanner(c *gin.Context) {
	var b api.BannerItem
	if !bindJSON(c, &b) {
		return
	}
	if err := h.App.API.AddBanner(c.Request.Context(), b); err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, b)
}

func (h *Handler) UpdateBanner(c *gin.Context) {
	var b api.BannerItem
	if !bindJSON(c, &b) {
		return
	}
	b.ID = c.Param("id")
	if err := h.App.API.UpdateBanner(c.Request.Context(), b.ID, b); err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, b)
}

func (h *Handler) RecommendBanner(c *gin.Context) {
	var req switchReq
	if !bindJSON(c, &req) {
		return
	}
	if err := h.App.API.SetBannerRecommend(c.Request.Context(), c.Param("id"), *req.On); err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, gin.H{"id": c.Param("id"), "isRecommend": *req.On})
}

func (h *Handler) DeleteBanners(c *gin.Context) {
	var req idsReq
	if !bindJSON(c, &req) {
		return
	}
	if err := h.App.API.BatchDeleteBanners(c.Request.Context(), req.IDs); err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, gin.H{"deleted": len(req.IDs)})
}

// categories; every write drops the console's cached category list

func (h *Handler) AdminCategories(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		items []api.CategoryItem
		err   error
	)
	switch c.DefaultQuery("view", "list") {
	case "list":
		items, err = h.App.API.AdminCategoryList(ctx)
	case "tree":
		items, err = h.App.API.AdminCategoryAllTree(ctx)
	default:
		common.Fail(c, http.StatusBadRequest, 10007, "view must be list or tree")
		return
	}
	if err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, items)
}

func (h *Handler) AddCategory(c *gin.Context) {
	var f api.CategoryForm
	if !bindJSON(c, &f) {
		return
	}
	if err := h.App.API.AdminAddCategory(c.Request.Context(), f); err != nil {
		failErr(c, err)
		return
	}
	h.App.Categories.Reset()
	common.OK(c, f)
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	var f api.CategoryForm
	if !bindJSON(c, &f) {
		return
	}
	f.ID = c.Param("id")
	if err := h.App.API.AdminUpdateCategory(c.Request.Context(), f); err != nil {
		failErr(c, err)
		return
	}
	h.App.Categories.Reset()
	common.OK(c, f)
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	if err := h.App.API.AdminDeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		failErr(c, err)
		return
	}
	h.App.Categories.Reset()
	common.OK(c, gin.H{"id": c.Param("id")})
}

// units

func (h *Handler) AdminUnits(c *gin.Context) {
	page, ok := pageQuery(c)
	if !ok {
		return
	}
	res, err := h.App.API.AdminUnitPage(c.Request.Context(), api.PageParams{
		Page:    page,
		Filters: map[string]string{"name": c.Query("name")},
	})
	if err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, gin.H{"records": res.Records, "total": res.Total, "pages": res.TotalPages()})
}

func (h *Handler) AdminUnit(c *gin.Context) {
	u, err := h.App.API.AdminUnit(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, u)
}

func (h *Handler) AddUnit(c *gin.Context) {
	var u api.UnitItem
	if !bindJSON(c, &u) {
		return
	}
	out, err := h.App.API.AdminAddUnit(c.Request.Context(), u)
	if err != nil {
		failErr(c, err)
		return
	}
	h.App.Units.Reset()
	common.OK(c, out)
}

func (h *Handler) UpdateUnit(c *gin.Context) {
	var u api.UnitItem
	if !bindJSON(c, &u) {
		return
	}
	out, err := h.App.API.AdminUpdateUnit(c.Request.Context(), c.Param("id"), u)
	if err != nil {
		failErr(c, err)
		return
	}
	h.App.Units.Reset()
	common.OK(c, out)
}

type unitStatusReq struct {
	Status *api.UnitStatus `json:"status" binding:"required"`
}

func (h *Handler) UpdateUnitStatus(c *gin.Context) {
	var req unitStatusReq
	if !bindJSON(c, &req) {
		return
	}
	if s := *req.Status; s != api.UnitEnabled && s != api.UnitDisabled {
		common.Fail(c, http.StatusBadRequest, 10002, "status must be 0 or 1")
		return
	}
	out, err := h.App.API.AdminUpdateUnitStatus(c.Request.Context(), c.Param("id"), *req.Status)
	if err != nil {
		failErr(c, err)
		return
	}
	h.App.Units.Reset()
	common.OK(c, out)
}

func (h *Handler) DeleteUnit(c *gin.Context) {
	if err := h.App.API.AdminDeleteUnit(c.Request.Context(), c.Param("id")); err != nil {
		failErr(c, err)
		return
	}
	h.App.Units.Reset()
	common.OK(c, gin.H{"id": c.Param("id")})
}

func (h *Handler) DeleteUnits(c *gin.Context) {
	var req idsReq
	if !bindJSON(c, &req) {
		return
	}
	if err := h.App.API.AdminBatchDeleteUnits(c.Request.Context(), req.IDs); err != nil {
		failErr(c, err)
		return
	}
	h.App.Units.Reset()
	common.OK(c, gin.H{"deleted": len(req.IDs)})
}

// goods moderation

func (h *Handler) AdminListGoods(c *gin.Context) {
	page, ok := pageQuery(c)
	if !ok {
		return
	}
	res, err := h.App.API.AdminGoodsPage(c.Request.Context(), api.PageParams{
		Page:    page,
		Filters: map[string]string{"name": c.Query("name"), "storeId": c.Query("storeId")},
	})
	if err != nil {
		failErr(c, err)
		return
	}
	rows := make([]goodsRow, 0, len(res.Records))
	for _, g := range res.Records {
		rows = append(rows, goodsRow{GoodsItem: g, CategoryName: g.Category, PriceLabel: priceLabel(g)})
	}
	common.OK(c, gin.H{"records": rows, "total": res.Total, "pages": res.TotalPages()})
}

func (h *Handler) AdminGetGoods(c *gin.Context) {
	g, err := h.App.API.AdminGoods(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, goodsRow{GoodsItem: *g, CategoryName: g.Category, PriceLabel: priceLabel(*g)})
}

func (h *Handler) AdminUpdateGoods(c *gin.Context) {
	var g api.GoodsItem
	if !bindJSON(c, &g) {
		return
	}
	g.ID = c.Param("id")
	out, err := h.App.API.AdminUpdateGoods(c.Request.Context(), g)
	if err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, out)
}

func (h *Handler) AdminGoodsStatus(c *gin.Context) {
	var req switchReq
	if !bindJSON(c, &req) {
		return
	}
	if err := h.App.API.AdminUpdateGoodsStatus(c.Request.Context(), c.Param("id"), *req.On); err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, gin.H{"id": c.Param("id"), "status": *req.On})
}

func (h *Handler) AdminDeleteGoods(c *gin.Context) {
	if err := h.App.API.AdminDeleteGoods(c.Request.Context(), c.Param("id")); err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, gin.H{"id": c.Param("id")})
}

type goodsAuditReq struct {
	Status  api.AuditStatus `json:"status"`
	Message string          `json:"message"`
}

func (h *Handler) AdminAuditGoods(c *gin.Context) {
	var req goodsAuditReq
	if !bindJSON(c, &req) {
		return
	}
	if err := h.App.API.AdminAuditGoods(c.Request.Context(), c.Param("id"), req.Status, req.Message); err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, gin.H{"id": c.Param("id"), "status": req.Status.Label()})
}
