package http

import (
	"time"

	"github.com/dejobratic/cafepos/internal/catalog"
	"github.com/dejobratic/cafepos/internal/orders/domain"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type ItemResponse struct {
	Index    int              `json:"index"`
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Price    int              `json:"price"`
	Category catalog.Category `json:"category"`
	Assignee string           `json:"assignee,omitempty"`
}

type CommentResponse struct {
	Author    domain.CommentAuthor `json:"author"`
	Text      string               `json:"text"`
	CreatedAt time.Time            `json:"created_at"`
}

type OrderResponse struct {
	ID                        string             `json:"id"`
	OrderNumber               int                `json:"order_number"`
	Status                    domain.OrderStatus `json:"status"`
	CreatedAt                 time.Time          `json:"created_at"`
	ReadyAt                   *time.Time         `json:"ready_at,omitempty"`
	ServedAt                  *time.Time         `json:"served_at,omitempty"`
	Items                     []ItemResponse     `json:"items"`
	Comments                  []CommentResponse  `json:"comments"`
	Total                     int                `json:"total"`
	Discount                  int                `json:"discount"`
	BillingAmount             int                `json:"billing_amount"`
	ReceivedAmount            int                `json:"received_amount"`
	Charge                    int                `json:"charge"`
	DiscountAnchorOrderNumber *int               `json:"discount_anchor_order_number,omitempty"`
	EstimateSeconds           int                `json:"estimate_seconds"`
	Split                     domain.SplitAdvice `json:"split"`
}

type ListOrdersResponse struct {
	Orders   []OrderResponse `json:"orders"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

type ReceiptLineResponse struct {
	Name  string `json:"name"`
	Price int    `json:"price"`
}

type CupLabelResponse struct {
	Seq      int    `json:"seq"`
	Of       int    `json:"of"`
	Name     string `json:"name"`
	Assignee string `json:"assignee,omitempty"`
}

type ReceiptResponse struct {
	OrderNumber    int                   `json:"order_number"`
	IssuedAt       time.Time             `json:"issued_at"`
	Lines          []ReceiptLineResponse `json:"lines"`
	Total          int                   `json:"total"`
	Discount       int                   `json:"discount"`
	BillingAmount  int                   `json:"billing_amount"`
	ReceivedAmount int                   `json:"received_amount"`
	Charge         int                   `json:"charge"`
	Labels         []CupLabelResponse    `json:"labels"`
}

type EligibilityResponse struct {
	OrderNumber int                `json:"order_number"`
	Eligibility domain.Eligibility `json:"eligibility"`
}

type AddCommentRequest struct {
	Author domain.CommentAuthor `json:"author"`
	Text   string               `json:"text"`
}

type AssignItemRequest struct {
	Assignee string `json:"assignee"`
}

type ApplyDiscountRequest struct {
	AnchorOrderNumber int `json:"anchor_order_number"`
}

type SplitPreviewRequest struct {
	Items []string `json:"items"`
}

func mapOrderToResponse(order *domain.Order, advice domain.SplitAdvice) OrderResponse {
	items := order.Items()
	itemResponses := make([]ItemResponse, len(items))
	for i, item := range items {
		assignee, _ := item.Assignee()
		itemResponses[i] = ItemResponse{
			Index:    i,
			ID:       item.ID,
			Name:     item.Name,
			Price:    item.Price,
			Category: item.Category,
			Assignee: assignee,
		}
	}

	comments := order.Comments()
	commentResponses := make([]CommentResponse, len(comments))
	for i, c := range comments {
		commentResponses[i] = CommentResponse{Author: c.Author, Text: c.Text, CreatedAt: c.CreatedAt}
	}

	resp := OrderResponse{
		ID:              order.ID,
		OrderNumber:     order.OrderNumber,
		Status:          order.Status(),
		CreatedAt:       order.CreatedAt,
		ReadyAt:         order.ReadyAt(),
		ServedAt:        order.ServedAt(),
		Items:           itemResponses,
		Comments:        commentResponses,
		Total:           order.Total(),
		Discount:        order.Discount(),
		BillingAmount:   order.BillingAmount(),
		ReceivedAmount:  order.ReceivedAmount,
		Charge:          order.Charge(),
		EstimateSeconds: order.EstimateSeconds,
		Split:           advice,
	}
	if anchor, ok := order.DiscountAnchor(); ok {
		resp.DiscountAnchorOrderNumber = &anchor
	}
	return resp
}

func mapReceiptToResponse(r domain.Receipt) ReceiptResponse {
	lines := make([]ReceiptLineResponse, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = ReceiptLineResponse{Name: l.Name, Price: l.Price}
	}
	labels := make([]CupLabelResponse, len(r.Labels))
	for i, l := range r.Labels {
		labels[i] = CupLabelResponse{Seq: l.Seq, Of: l.Of, Name: l.Name, Assignee: l.Assignee}
	}
	return ReceiptResponse{
		OrderNumber:    r.OrderNumber,
		IssuedAt:       r.IssuedAt,
		Lines:          lines,
		Total:          r.Total,
		Discount:       r.Discount,
		BillingAmount:  r.BillingAmount,
		ReceivedAmount: r.ReceivedAmount,
		Charge:         r.Charge,
		Labels:         labels,
	}
}
