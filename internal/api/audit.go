package api

import (
	"context"
	"net/url"
	"strconv"
)

type AuditStatus int

const (
	AuditPending  AuditStatus = 0
	AuditApproved AuditStatus = 1
	AuditRejected AuditStatus = 2
	AuditRevoked  AuditStatus = 3
)

func (s AuditStatus) Valid() bool { return s >= AuditPending && s <= AuditRevoked }

func (s AuditStatus) Label() string {
	switch s {
	case AuditPending:
		return "pending"
	case AuditApproved:
		return "approved"
	case AuditRejected:
		return "rejected"
	case AuditRevoked:
		return "revoked"
	}
	return "-"
}

type AuditLog struct {
	AuditID       string      `json:"auditId"`
	TargetType    string      `json:"targetType"`
	TargetID      string      `json:"targetId"`
	Status        AuditStatus `json:"status"`
	StatusName    string      `json:"statusName,omitempty"`
	Reason        string      `json:"reason,omitempty"`
	ApplicantID   string      `json:"applicantId,omitempty"`
	ApplicantName string      `json:"applicantName"`
	AuditorID     string      `json:"auditorId,omitempty"`
	AuditorName   string      `json:"auditorName,omitempty"`
	ExtraInfo     string      `json:"extraInfo"`
	CreateTime    string      `json:"createTime"`
	AuditTime     string      `json:"auditTime,omitempty"`
}

type AuditPageParams struct {
	Page        int          `json:"page"`
	PageSize    int          `json:"pageSize"`
	Status      *AuditStatus `json:"status,omitempty"`
	TargetType  string       `json:"targetType,omitempty"`
	ApplicantID string       `json:"applicantId,omitempty"`
}

func (p AuditPageParams) pageParams() PageParams {
	f := map[string]string{"targetType": p.TargetType, "applicantId": p.ApplicantID}
	if p.Status != nil {
		f["status"] = strconv.Itoa(int(*p.Status))
	}
	return PageParams{Page: p.Page, PageSize: p.PageSize, Filters: f}
}

func (c *Client) AdminAuditPage(ctx context.Context, p AuditPageParams) (*PageResult[AuditLog], error) {
	var out PageResult[AuditLog]
	if err := c.r.Post(ctx, "/admin/audit/page", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AdminSubmitAudit(ctx context.Context, auditID string, approved bool, reason string) error {
	return c.r.Post(ctx, "/admin/audit/goods/decision", map[string]any{
		"auditId":  auditID,
		"approved": approved,
		"reason":   reason,
	}, nil)
}

func (c *Client) MerchantAuditPage(ctx context.Context, p AuditPageParams) (*PageResult[AuditLog], error) {
	var out PageResult[AuditLog]
	if err := c.r.Get(ctx, "/merchant/audit/page", p.pageParams().Values(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MerchantWithdrawAudit(ctx context.Context, id string) error {
	return c.r.Post(ctx, "/merchant/audit/withdraw/"+url.PathEscape(id), nil, nil)
}
