package domain

import "time"

// ReceiptLine is one priced line on a receipt.
type ReceiptLine struct {
	Name  string
	Price int
}

// CupLabel is printed for each coffee cup so baristas can match cups to orders.
type CupLabel struct {
	OrderNumber int
	Seq         int
	Of          int
	Name        string
	Assignee    string
}

// Receipt is what the printer collaborator needs to print an order.
type Receipt struct {
	OrderNumber    int
	IssuedAt       time.Time
	Lines          []ReceiptLine
	Total          int
	Discount       int
	BillingAmount  int
	ReceivedAmount int
	Charge         int
	Labels         []CupLabel
}

// NewReceipt builds the receipt and cup labels. Labels follow CoffeeCups order.
func NewReceipt(o *Order) Receipt {
	r := Receipt{
		OrderNumber:    o.OrderNumber,
		IssuedAt:       o.CreatedAt,
		Lines:          make([]ReceiptLine, 0, len(o.items)),
		Total:          o.Total(),
		Discount:       o.Discount(),
		BillingAmount:  o.BillingAmount(),
		ReceivedAmount: o.ReceivedAmount,
		Charge:         o.Charge(),
	}
	for _, item := range o.items {
		r.Lines = append(r.Lines, ReceiptLine{Name: item.Name, Price: item.Price})
	}

	cups := o.CoffeeCups()
	r.Labels = make([]CupLabel, 0, len(cups))
	for i, cup := range cups {
		assignee, _ := cup.Assignee()
		r.Labels = append(r.Labels, CupLabel{
			OrderNumber: o.OrderNumber,
			Seq:         i + 1,
			Of:          len(cups),
			Name:        cup.Name,
			Assignee:    assignee,
		})
	}
	return r
}
