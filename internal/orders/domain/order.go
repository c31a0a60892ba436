package domain

import (
	"errors"
	"fmt"
	"time"
)

// DefaultDiscountPerCup is the amount taken off each discounted coffee cup.
const DefaultDiscountPerCup = 100

// ErrIndexOutOfRange is returned when an item index does not address an item.
var ErrIndexOutOfRange = errors.New("item index out of range")

// OrderStatus captures where an order is in the brew/serve lifecycle.
type OrderStatus string

const (
	StatusPending OrderStatus = "pending"
	StatusReady   OrderStatus = "ready"
	StatusServed  OrderStatus = "served"
)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusReady, StatusServed:
		return true
	default:
		return false
	}
}

// Order is a customer's purchase at the register. Totals, discount and billing are
// derived from the items and the discount anchor on every read.
type Order struct {
	ID              string
	OrderNumber     int
	CreatedAt       time.Time
	ReceivedAmount  int
	DiscountPerCup  int
	EstimateSeconds int

	items    []Item
	comments []Comment

	readyAt  *time.Time
	servedAt *time.Time
	// readySetByServe is true when readyAt was filled in by MarkServed, so that
	// UndoServed knows to roll it back as well.
	readySetByServe bool

	discountAnchorNumber   *int
	discountAnchorCupCount int
}

// NewOrder creates an empty order with a provisional number.
func NewOrder(number int, discountPerCup int, createdAt time.Time) *Order {
	return &Order{
		OrderNumber:    number,
		CreatedAt:      createdAt,
		DiscountPerCup: discountPerCup,
	}
}

// Items returns a copy of the order lines in insertion order.
func (o *Order) Items() []Item {
	out := make([]Item, len(o.items))
	copy(out, o.items)
	return out
}

// Comments returns a copy of the comments in the order they were added.
func (o *Order) Comments() []Comment {
	out := make([]Comment, len(o.comments))
	copy(out, o.comments)
	return out
}

func (o *Order) AddItem(item Item) {
	o.items = append(o.items, item)
}

// RemoveItem deletes the item at index, keeping the relative order of the rest.
func (o *Order) RemoveItem(index int) error {
	if err := o.checkIndex(index); err != nil {
		return err
	}
	o.items = append(o.items[:index:index], o.items[index+1:]...)
	return nil
}

// MutateItem replaces the item at index with transform(current).
func (o *Order) MutateItem(index int, transform func(Item) Item) error {
	if err := o.checkIndex(index); err != nil {
		return err
	}
	o.items[index] = transform(o.items[index].Clone())
	return nil
}

func (o *Order) checkIndex(index int) error {
	if index < 0 || index >= len(o.items) {
		return fmt.Errorf("%w: index %d, %d items", ErrIndexOutOfRange, index, len(o.items))
	}
	return nil
}

// CoffeeCups returns the items brewed at a drip station, in item order.
func (o *Order) CoffeeCups() []Item {
	return coffeeCups(o.items)
}

func coffeeCups(items []Item) []Item {
	cups := make([]Item, 0, len(items))
	for _, item := range items {
		if item.IsCoffee() {
			cups = append(cups, item)
		}
	}
	return cups
}

func (o *Order) Total() int {
	total := 0
	for _, item := range o.items {
		total += item.Price
	}
	return total
}

func (o *Order) Discount() int {
	return min(len(o.CoffeeCups()), o.discountAnchorCupCount) * o.DiscountPerCup
}

func (o *Order) BillingAmount() int {
	return o.Total() - o.Discount()
}

// Charge is the change due to the customer.
func (o *Order) Charge() int {
	return o.ReceivedAmount - o.BillingAmount()
}

func (o *Order) SetReceivedAmount(amount int) {
	o.ReceivedAmount = amount
}

func (o *Order) SetEstimate(seconds int) {
	o.EstimateSeconds = seconds
}

// ApplyDiscount anchors the discount to a previously served order. The anchor's cup
// count is copied, so later edits to the anchor do not change this order.
func (o *Order) ApplyDiscount(anchor *Order) {
	number := anchor.OrderNumber
	o.discountAnchorNumber = &number
	o.discountAnchorCupCount = len(anchor.CoffeeCups())
}

func (o *Order) RemoveDiscount() {
	o.discountAnchorNumber = nil
	o.discountAnchorCupCount = 0
}

// DiscountAnchor returns the anchor order number and whether a discount is applied.
func (o *Order) DiscountAnchor() (int, bool) {
	if o.discountAnchorNumber == nil {
		return 0, false
	}
	return *o.discountAnchorNumber, true
}

func (o *Order) DiscountAnchorCupCount() int {
	return o.discountAnchorCupCount
}

func (o *Order) ReadyAt() *time.Time {
	return copyTime(o.readyAt)
}

func (o *Order) ServedAt() *time.Time {
	return copyTime(o.servedAt)
}

// ReadySetByServe reports whether the ready timestamp was filled in by MarkServed.
func (o *Order) ReadySetByServe() bool {
	return o.readySetByServe
}

func (o *Order) MarkReady(at time.Time) {
	o.readyAt = &at
	o.readySetByServe = false
}

// UndoReady clears the ready timestamp. It leaves ServedAt alone; callers undo
// serving first in the normal flow.
func (o *Order) UndoReady() {
	o.readyAt = nil
	o.readySetByServe = false
}

// MarkServed records the serve time. Serving implies readiness, so an order that was
// never marked ready becomes ready at the same instant. The ready-set-by-serve flag
// describes the latest call only.
func (o *Order) MarkServed(at time.Time) {
	o.servedAt = &at
	if o.readyAt == nil {
		ready := at
		o.readyAt = &ready
		o.readySetByServe = true
		return
	}
	o.readySetByServe = false
}

// UndoServed clears the serve time, and the ready time too when MarkServed set it.
func (o *Order) UndoServed() {
	if o.readySetByServe {
		o.readyAt = nil
		o.readySetByServe = false
	}
	o.servedAt = nil
}

func (o *Order) Status() OrderStatus {
	switch {
	case o.servedAt != nil:
		return StatusServed
	case o.readyAt != nil:
		return StatusReady
	default:
		return StatusPending
	}
}

// AddComment appends a comment. Empty text is ignored.
func (o *Order) AddComment(author CommentAuthor, text string, at time.Time) {
	if text == "" {
		return
	}
	o.comments = append(o.comments, Comment{Author: author, Text: text, CreatedAt: at})
}

// RefreshCreatedAt stamps the submission time so the receipt matches the moment the
// order was placed rather than when the cart was opened.
func (o *Order) RefreshCreatedAt(at time.Time) {
	o.CreatedAt = at
}

// Clone returns a deep copy of the order.
func (o *Order) Clone() *Order {
	c := *o
	c.items = o.Items()
	c.comments = o.Comments()
	c.readyAt = copyTime(o.readyAt)
	c.servedAt = copyTime(o.servedAt)
	if o.discountAnchorNumber != nil {
		n := *o.discountAnchorNumber
		c.discountAnchorNumber = &n
	}
	return &c
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
