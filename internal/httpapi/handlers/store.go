package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/mall-console/internal/api"
	"github.com/suPer8Hu/mall-console/internal/common"
	"github.com/suPer8Hu/mall-console/internal/session"
)

const maxImageSize = 5 << 20

func (h *Handler) MyStore(c *gin.Context) {
	st, err := h.App.API.MyStore(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, st)
}

// MerchantInfo refreshes the session's store fields from upstream.
func (h *Handler) MerchantInfo(c *gin.Context) {
	ctx := c.Request.Context()
	info, err := h.App.API.MerchantInfo(ctx)
	if err != nil {
		failErr(c, err)
		return
	}
	if err := h.App.Session.SetUser(ctx, session.State{
		Nickname:  info.Nickname,
		AvatarURL: info.AvatarURL,
		StoreID:   info.StoreID,
		StoreName: info.StoreName,
	}); err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, info)
}

func (h *Handler) UpdateStore(c *gin.Context) {
	var u api.StoreUpdate
	if !bindJSON(c, &u) {
		return
	}
	ctx := c.Request.Context()
	st, err := h.App.API.UpdateStore(ctx, h.App.Session.Snapshot().StoreID, u)
	if err != nil {
		failErr(c, err)
		return
	}
	if u.Name != nil {
		if err := h.App.Session.SetUser(ctx, session.State{StoreName: st.Name}); err != nil {
			failErr(c, err)
			return
		}
	}
	common.OK(c, st)
}

func (h *Handler) ListComments(c *gin.Context) {
	page, ok := pageQuery(c)
	if !ok {
		return
	}
	p := api.CommentPageParams{Page: page, PageSize: 10, GoodsName: c.Query("goodsName")}
	if v := c.Query("hasReply"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			common.Fail(c, http.StatusBadRequest, 10002, "hasReply must be true or false")
			return
		}
		p.HasReply = &b
	}
	res, err := h.App.API.CommentPage(c.Request.Context(), p)
	if err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, gin.H{"records": res.Records, "total": res.Total, "pages": res.TotalPages()})
}

func (h *Handler) CommentDetail(c *gin.Context) {
	cm, err := h.App.API.CommentDetail(c.Request.Context(), c.Param("no"))
	if err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, cm)
}

type replyReq struct {
	CommentID string `json:"commentId" binding:"required"`
	Content   string `json:"replyContent" binding:"required"`
}

func (h *Handler) ReplyComment(c *gin.Context) {
	var req replyReq
	if !bindJSON(c, &req) {
		return
	}
	if err := h.App.API.ReplyComment(c.Request.Context(), req.CommentID, req.Content); err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, gin.H{"commentId": req.CommentID, "reply": req.Content})
}

// UploadImage forwards the multipart field "file" to the upload service.
func (h *Handler) UploadImage(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "file is required")
		return
	}
	if fh.Size > maxImageSize {
		common.Fail(c, http.StatusBadRequest, 10002, "image is larger than 5MB")
		return
	}
	f, err := fh.Open()
	if err != nil {
		failErr(c, err)
		return
	}
	defer f.Close()

	img, err := h.App.API.UploadImage(c.Request.Context(), fh.Filename, f)
	if err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, img)
}
