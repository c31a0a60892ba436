package domain

// Eligibility classifies whether an order number may anchor a discount.
type Eligibility string

const (
	EligibilityAvailable   Eligibility = "available"
	EligibilityAlreadyUsed Eligibility = "alreadyUsed"
	EligibilityUnserved    Eligibility = "unserved"
)

// ResolveAnchorEligibility reports whether the order numbered candidate can anchor a
// discount. The order must exist and have been served, and no order in the
// collection may already claim it as an anchor. Callers exclude the claiming order
// from orders so that re-applying its own anchor is not reported as a reuse.
func ResolveAnchorEligibility(candidate int, orders []*Order) Eligibility {
	var anchor *Order
	for _, o := range orders {
		if o.OrderNumber == candidate {
			anchor = o
			break
		}
	}
	if anchor == nil || anchor.servedAt == nil {
		return EligibilityUnserved
	}

	for _, o := range orders {
		if n, ok := o.DiscountAnchor(); ok && n == candidate {
			return EligibilityAlreadyUsed
		}
	}

	return EligibilityAvailable
}
