package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/mall-console/internal/api"
	"github.com/suPer8Hu/mall-console/internal/common"
	"github.com/suPer8Hu/mall-console/internal/session"
)

type auditRow struct {
	api.AuditLog
	StatusLabel string `json:"statusLabel"`
}

// ListAudits pages the audit log. Admins see every applicant, merchants only
// their own applications.
func (h *Handler) ListAudits(c *gin.Context) {
	page, ok := pageQuery(c)
	if !ok {
		return
	}
	p := api.AuditPageParams{Page: page, PageSize: 10, TargetType: c.Query("targetType")}
	if v := c.Query("status"); v != "" {
		n, err := strconv.Atoi(v)
		s := api.AuditStatus(n)
		if err != nil || !s.Valid() {
			common.Fail(c, http.StatusBadRequest, 10002, "invalid audit status")
			return
		}
		p.Status = &s
	}

	ctx := c.Request.Context()
	var (
		res *api.PageResult[api.AuditLog]
		err error
	)
	if h.App.Session.Role() == session.RoleAdmin {
		p.ApplicantID = c.Query("applicantId")
		res, err = h.App.API.AdminAuditPage(ctx, p)
	} else {
		res, err = h.App.API.MerchantAuditPage(ctx, p)
	}
	if err != nil {
		failErr(c, err)
		return
	}

	rows := make([]auditRow, 0, len(res.Records))
	for _, a := range res.Records {
		rows = append(rows, auditRow{AuditLog: a, StatusLabel: a.Status.Label()})
	}
	common.OK(c, gin.H{"records": rows, "total": res.Total, "pages": res.TotalPages()})
}

type auditDecisionReq struct {
	Approved *bool  `json:"approved" binding:"required"`
	Reason   string `json:"reason"`
}

func (h *Handler) DecideAudit(c *gin.Context) {
	var req auditDecisionReq
	if !bindJSON(c, &req) {
		return
	}
	if !*req.Approved && req.Reason == "" {
		common.Fail(c, http.StatusBadRequest, 10002, "a rejection needs a reason")
		return
	}
	if err := h.App.API.AdminSubmitAudit(c.Request.Context(), c.Param("id"), *req.Approved, req.Reason); err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, gin.H{"auditId": c.Param("id"), "approved": *req.Approved})
}

func (h *Handler) WithdrawAudit(c *gin.Context) {
	if err := h.App.API.MerchantWithdrawAudit(c.Request.Context(), c.Param("id")); err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, gin.H{"auditId": c.Param("id"), "status": api.AuditRevoked.Label()})
}
