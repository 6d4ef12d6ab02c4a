package api

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/suPer8Hu/mall-console/internal/apiclient"
)

type CommentItem struct {
	CommentID         string `json:"commentId"`
	OrderNo           string `json:"orderNo"`
	GoodsName         string `json:"goodsName"`
	GoodsMainImageURL string `json:"goodsMainImageUrl"`
	BuyerName         string `json:"buyerName"`
	Rate              int    `json:"rate"`
	Comment           string `json:"comment"`
	Reply             string `json:"reply,omitempty"`
	CreateTime        string `json:"createTime"`
}

type CommentPageParams struct {
	Page      int
	PageSize  int
	HasReply  *bool
	GoodsName string
}

func (p CommentPageParams) pageParams() PageParams {
	f := map[string]string{"goodsName": p.GoodsName}
	if p.HasReply != nil {
		f["hasReply"] = strconv.FormatBool(*p.HasReply)
	}
	return PageParams{Page: p.Page, PageSize: p.PageSize, Filters: f}
}

func (c *Client) CommentPage(ctx context.Context, p CommentPageParams) (*PageResult[CommentItem], error) {
	var out PageResult[CommentItem]
	if err := c.r.Get(ctx, "/comments/page", p.pageParams().Values(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ReplyComment(ctx context.Context, commentID, reply string) error {
	if commentID == "" {
		return apiclient.Invalid("replyComment", "comment id is required")
	}
	if strings.TrimSpace(reply) == "" {
		return apiclient.Invalid("replyComment", "reply is empty")
	}
	return c.r.Post(ctx, "/comments/reply", map[string]string{"commentId": commentID, "replyContent": reply}, nil)
}

// CommentDetail looks a comment up by the order it was left on.
func (c *Client) CommentDetail(ctx context.Context, orderNo string) (*CommentItem, error) {
	if orderNo == "" {
		return nil, apiclient.Invalid("commentDetail", "order number is required")
	}
	var out CommentItem
	if err := c.r.Get(ctx, "/comments/"+url.PathEscape(orderNo), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
