package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/dejobratic/cafepos/internal/catalog"
)

// ItemRecord is the plain-data form of an Item.
type ItemRecord struct {
	ID       string           `json:"id,omitempty"`
	Name     string           `json:"name"`
	Price    int              `json:"price"`
	Category catalog.Category `json:"category"`
	Assignee *string          `json:"assignee,omitempty"`
}

// CommentRecord is the plain-data form of a Comment.
type CommentRecord struct {
	Author    CommentAuthor `json:"author"`
	Text      string        `json:"text"`
	CreatedAt time.Time     `json:"created_at"`
}

// Record is the plain-data form of an Order exchanged with storage and subscribers.
// Derived amounts are included for readers and ignored when decoding.
type Record struct {
	ID                        string          `json:"id,omitempty"`
	OrderNumber               int             `json:"order_number"`
	CreatedAt                 time.Time       `json:"created_at"`
	ReadyAt                   *time.Time      `json:"ready_at"`
	ServedAt                  *time.Time      `json:"served_at"`
	ReadySetByServe           *bool           `json:"ready_set_by_serve,omitempty"`
	Items                     []ItemRecord    `json:"items"`
	Comments                  []CommentRecord `json:"comments"`
	ReceivedAmount            int             `json:"received_amount"`
	DiscountAnchorOrderNumber *int            `json:"discount_anchor_order_number"`
	DiscountAnchorCupCount    int             `json:"discount_anchor_cup_count"`
	DiscountPerCup            int             `json:"discount_per_cup"`
	EstimateSeconds           int             `json:"estimate_seconds"`

	Status        OrderStatus `json:"status,omitempty"`
	Total         int         `json:"total"`
	Discount      int         `json:"discount"`
	BillingAmount int         `json:"billing_amount"`
	Charge        int         `json:"charge"`
}

// ErrInvalidRecord is returned when plain data cannot describe a valid order.
var ErrInvalidRecord = errors.New("invalid order record")

// ToRecord converts the order to its plain-data form.
func (o *Order) ToRecord() Record {
	flag := o.readySetByServe
	r := Record{
		ID:                     o.ID,
		OrderNumber:            o.OrderNumber,
		CreatedAt:              o.CreatedAt,
		ReadyAt:                copyTime(o.readyAt),
		ServedAt:               copyTime(o.servedAt),
		ReadySetByServe:        &flag,
		Items:                  make([]ItemRecord, 0, len(o.items)),
		Comments:               make([]CommentRecord, 0, len(o.comments)),
		ReceivedAmount:         o.ReceivedAmount,
		DiscountAnchorCupCount: o.discountAnchorCupCount,
		DiscountPerCup:         o.DiscountPerCup,
		EstimateSeconds:        o.EstimateSeconds,
		Status:                 o.Status(),
		Total:                  o.Total(),
		Discount:               o.Discount(),
		BillingAmount:          o.BillingAmount(),
		Charge:                 o.Charge(),
	}
	if n, ok := o.DiscountAnchor(); ok {
		r.DiscountAnchorOrderNumber = &n
	}

	for _, item := range o.items {
		ir := ItemRecord{ID: item.ID, Name: item.Name, Price: item.Price, Category: item.Category}
		if name, ok := item.Assignee(); ok {
			ir.Assignee = &name
		}
		r.Items = append(r.Items, ir)
	}
	for _, c := range o.comments {
		r.Comments = append(r.Comments, CommentRecord(c))
	}

	return r
}

// FromRecord rebuilds an order from its plain-data form. Records written before the
// ready-set-by-serve flag existed infer it from equal ready and served timestamps.
func FromRecord(r Record) (*Order, error) {
	o := &Order{
		ID:                     r.ID,
		OrderNumber:            r.OrderNumber,
		CreatedAt:              r.CreatedAt,
		ReceivedAmount:         r.ReceivedAmount,
		DiscountPerCup:         r.DiscountPerCup,
		EstimateSeconds:        r.EstimateSeconds,
		readyAt:                copyTime(r.ReadyAt),
		servedAt:               copyTime(r.ServedAt),
		discountAnchorCupCount: r.DiscountAnchorCupCount,
		items:                  make([]Item, 0, len(r.Items)),
		comments:               make([]Comment, 0, len(r.Comments)),
	}
	if r.DiscountAnchorOrderNumber != nil {
		n := *r.DiscountAnchorOrderNumber
		o.discountAnchorNumber = &n
	}

	switch {
	case r.ReadySetByServe != nil:
		o.readySetByServe = *r.ReadySetByServe && r.ReadyAt != nil
	case r.ReadyAt != nil && r.ServedAt != nil:
		o.readySetByServe = r.ReadyAt.Equal(*r.ServedAt)
	}

	for i, ir := range r.Items {
		if ir.Price < 0 {
			return nil, fmt.Errorf("%w: item %d has negative price", ErrInvalidRecord, i)
		}
		item := Item{ID: ir.ID, Name: ir.Name, Price: ir.Price, Category: ir.Category}
		if ir.Assignee != nil {
			item.SetAssignee(*ir.Assignee)
		}
		o.items = append(o.items, item)
	}
	for _, c := range r.Comments {
		o.comments = append(o.comments, Comment(c))
	}

	return o, nil
}
