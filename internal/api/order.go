package api

import (
	"context"
	"net/url"

	"github.com/suPer8Hu/mall-console/internal/apiclient"
)

type OrderType string

const (
	OrderParent OrderType = "PARENT"
	OrderSub    OrderType = "SUB"
	OrderNormal OrderType = "NORMAL"
)

func (t OrderType) Label() string {
	switch t {
	case OrderParent:
		return "aggregate order"
	case OrderSub, OrderNormal:
		return "regular order"
	}
	return "-"
}

type OrderStatus string

const (
	OrderCreated  OrderStatus = "CREATED"
	OrderPaid     OrderStatus = "PAID"
	OrderShipped  OrderStatus = "SHIPPED"
	OrderFinished OrderStatus = "FINISHED"
	OrderCanceled OrderStatus = "CANCELED"
	OrderClosed   OrderStatus = "CLOSED"
)

type StatusInfo struct {
	Label string `json:"label"`
	Tone  string `json:"tone"`
}

var orderStatusInfo = map[OrderStatus]StatusInfo{
	OrderCreated:  {Label: "awaiting payment", Tone: "warning"},
	OrderPaid:     {Label: "awaiting shipment", Tone: "primary"},
	OrderShipped:  {Label: "shipped", Tone: "success"},
	OrderFinished: {Label: "completed", Tone: "success"},
	OrderCanceled: {Label: "canceled", Tone: "info"},
	OrderClosed:   {Label: "closed", Tone: "info"},
}

func (s OrderStatus) Info() StatusInfo {
	if info, ok := orderStatusInfo[s]; ok {
		return info
	}
	return StatusInfo{Label: "-", Tone: "info"}
}

type OrderItem struct {
	OrderNo       string    `json:"orderNo"`
	OrderStatus   string    `json:"orderStatus"`
	OrderType     OrderType `json:"orderType"`
	CreateTime    string    `json:"createTime"`
	GoodsNum      int       `json:"goodsNum"`
	TotalPrice    string    `json:"totalPrice"`
	BuyerName     string    `json:"buyerName"`
	Phone         string    `json:"phone"`
	DetailAddress string    `json:"detailAddress"`
}

type OrderGoodsItem struct {
	GoodsID           string            `json:"goodsId"`
	GoodsName         string            `json:"goodsName"`
	GoodsMainImageURL string            `json:"goodsMainImageUrl"`
	GoodsPrice        string            `json:"goodsPrice"`
	Quantity          int               `json:"quantity"`
	TotalPrice        string            `json:"totalPrice"`
	CreateTime        string            `json:"createTime"`
	SelectedSpecs     map[string]string `json:"selectedSpecs,omitempty"`
}

type OrderStoreItem struct {
	OrderNo    string           `json:"orderNo"`
	StoreID    string           `json:"storeId"`
	StoreName  string           `json:"storeName"`
	Status     string           `json:"status"`
	Items      []OrderGoodsItem `json:"items"`
	TotalPrice string           `json:"totalPrice"`
	Count      int              `json:"count"`
}

type OrderDetail struct {
	OrderNo     string           `json:"orderNo"`
	Status      string           `json:"status"`
	CreateTime  string           `json:"createTime"`
	StoreOrders []OrderStoreItem `json:"storeOrders"`
	TotalPrice  string           `json:"totalPrice"`
}

func (c *Client) OrderPage(ctx context.Context, p PageParams) (*PageResult[OrderItem], error) {
	var out PageResult[OrderItem]
	if err := c.r.Get(ctx, "/orders/page", p.Values(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) OrderDetail(ctx context.Context, orderNo string) (*OrderDetail, error) {
	if orderNo == "" {
		return nil, apiclient.Invalid("orderDetail", "order number is required")
	}
	var out OrderDetail
	if err := c.r.Get(ctx, "/orders/"+url.PathEscape(orderNo), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CancelOrder(ctx context.Context, orderNo string) error {
	if orderNo == "" {
		return apiclient.Invalid("cancelOrder", "order number is required")
	}
	return c.r.Put(ctx, "/orders/"+url.PathEscape(orderNo)+"/cancel", nil, nil)
}

func (c *Client) ShipOrder(ctx context.Context, orderNo string) error {
	if orderNo == "" {
		return apiclient.Invalid("shipOrder", "order number is required")
	}
	return c.r.Put(ctx, "/orders/"+url.PathEscape(orderNo)+"/ship", nil, nil)
}
