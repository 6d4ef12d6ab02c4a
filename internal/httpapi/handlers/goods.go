package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/suPer8Hu/mall-console/internal/api"
	"github.com/suPer8Hu/mall-console/internal/common"
	"github.com/suPer8Hu/mall-console/internal/goodspublish"
)

func (h *Handler) draftView(c *gin.Context) {
	common.OK(c, gin.H{
		"draft":        h.App.Draft.Snapshot(),
		"formValid":    h.App.Draft.IsFormValid(),
		"hasValidSpec": h.App.Draft.HasValidSpec(),
	})
}

func (h *Handler) GetDraft(c *gin.Context) {
	h.draftView(c)
}

// InitDraft loads categories and units, and stamps the operator's store on
// the form.
func (h *Handler) InitDraft(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.App.Draft.InitBaseData(ctx); err != nil {
		failErr(c, err)
		return
	}
	st := h.App.Session.Snapshot()
	if err := h.App.Draft.SetStoreInfo(ctx, st.StoreID, st.StoreName); err != nil {
		failErr(c, err)
		return
	}
	h.draftView(c)
}

type draftPatch struct {
	Form           *api.GoodsPayload       `json:"formData"`
	DisplayImages  []goodspublish.FileItem `json:"displayImages"`
	DetailImages   []goodspublish.FileItem `json:"detailImages"`
	Specifications []api.Specification     `json:"specifications"`
	Skus           []api.SkuItem           `json:"skuList"`
	ActiveStep     *int                    `json:"activeStep"`
	Readonly       *bool                   `json:"isReadonly"`
}

// UpdateDraft applies whichever parts of the draft the body carries.
func (h *Handler) UpdateDraft(c *gin.Context) {
	var p draftPatch
	if err := c.ShouldBindJSON(&p); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	ctx := c.Request.Context()
	d := h.App.Draft

	var err error
	if p.Form != nil {
		form := *p.Form
		err = d.UpdateForm(ctx, func(f *api.GoodsPayload) {
			storeID, storeName := f.StoreID, f.StoreName
			*f = form
			if f.StoreID == "" {
				f.StoreID, f.StoreName = storeID, storeName
			}
		})
	}
	if err == nil && p.DisplayImages != nil {
		err = d.SetDisplayImages(ctx, p.DisplayImages)
	}
	if err == nil && p.DetailImages != nil {
		err = d.SetDetailImages(ctx, p.DetailImages)
	}
	if err == nil && p.Specifications != nil {
		err = d.SetSpecifications(ctx, p.Specifications)
	}
	if err == nil && p.Skus != nil {
		err = d.SetSkus(ctx, p.Skus)
	}
	if err == nil && p.ActiveStep != nil {
		err = d.SetActiveStep(ctx, *p.ActiveStep)
	}
	if err == nil && p.Readonly != nil {
		err = d.SetReadonly(ctx, *p.Readonly)
	}
	if err != nil {
		failErr(c, err)
		return
	}
	h.draftView(c)
}

func (h *Handler) LoadDraft(c *gin.Context) {
	if err := h.App.Draft.LoadGoods(c.Request.Context(), c.Param("id")); err != nil {
		failErr(c, err)
		return
	}
	h.draftView(c)
}

func (h *Handler) SubmitDraft(c *gin.Context) {
	if err := h.App.Draft.Submit(c.Request.Context()); err != nil {
		failErr(c, err)
		return
	}
	h.draftView(c)
}

// RepublishDraft resubmits the draft against a rejected audit.
func (h *Handler) RepublishDraft(c *gin.Context) {
	if err := h.App.Draft.Republish(c.Request.Context(), c.Param("auditId")); err != nil {
		failErr(c, err)
		return
	}
	h.draftView(c)
}

func (h *Handler) DeleteDraft(c *gin.Context) {
	if err := h.App.Draft.Reset(c.Request.Context()); err != nil {
		failErr(c, err)
		return
	}
	h.draftView(c)
}

type goodsRow struct {
	api.GoodsItem
	CategoryName string `json:"categoryName"`
	PriceLabel   string `json:"priceLabel"`
}

// priceLabel shows the SKU price range, falling back to the list price.
func priceLabel(g api.GoodsItem) string {
	if len(g.Skus) == 0 {
		return common.PriceRange(common.MoneyFromFloat(g.Price))
	}
	prices := make([]decimal.Decimal, 0, len(g.Skus))
	for _, s := range g.Skus {
		prices = append(prices, common.MoneyFromFloat(s.Price))
	}
	return common.PriceRange(prices...)
}

func (h *Handler) ListGoods(c *gin.Context) {
	page, ok := pageQuery(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := h.App.Categories.LoadList(ctx); err != nil {
		failErr(c, err)
		return
	}
	res, err := h.App.API.MerchantGoodsPage(ctx, api.PageParams{
		Page:    page,
		Filters: map[string]string{"name": c.Query("name")},
	})
	if err != nil {
		failErr(c, err)
		return
	}

	rows := make([]goodsRow, 0, len(res.Records))
	for _, g := range res.Records {
		rows = append(rows, goodsRow{
			GoodsItem:    g,
			CategoryName: h.App.Categories.Name(g.CategoryID),
			PriceLabel:   priceLabel(g),
		})
	}
	common.OK(c, gin.H{"records": rows, "total": res.Total, "pages": res.TotalPages()})
}

func (h *Handler) GoodsSpecs(c *gin.Context) {
	info, err := h.App.API.MerchantGoodsSpecs(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	prices := make([]decimal.Decimal, 0, len(info.Skus))
	for _, s := range info.Skus {
		prices = append(prices, common.MoneyFromFloat(s.Price))
	}
	common.OK(c, gin.H{
		"specifications": info.Specifications,
		"skus":           info.Skus,
		"priceLabel":     common.PriceRange(prices...),
	})
}

func (h *Handler) GoodsStatus(c *gin.Context) {
	var req switchReq
	if !bindJSON(c, &req) {
		return
	}
	if err := h.App.API.MerchantUpdateGoodsStatus(c.Request.Context(), c.Param("id"), *req.On); err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, gin.H{"id": c.Param("id"), "status": *req.On})
}

func (h *Handler) DeleteGoods(c *gin.Context) {
	if err := h.App.API.MerchantDeleteGoods(c.Request.Context(), c.Param("id")); err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, gin.H{"id": c.Param("id")})
}
