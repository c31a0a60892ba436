package domain

import "github.com/dejobratic/cafepos/internal/catalog"

// A drip station is staffed by two baristas who each brew one coffee type. One
// brewing cycle handles at most StationCapacity cups of at most StationTypes types,
// and when two types share a cycle each is capped at PartnerCapacity cups.
const (
	StationCapacity = 4
	StationTypes    = 2
	PartnerCapacity = 2

	splitVarietyThreshold = StationTypes + 1
	splitVolumeThreshold  = StationCapacity + 1
)

// SplitAnalysis is the verdict on whether an order needs more than one brewing cycle.
type SplitAnalysis struct {
	UniqueCoffeeTypes int  `json:"unique_coffee_types"`
	TotalCoffeeUnits  int  `json:"total_coffee_units"`
	ShouldSplit       bool `json:"should_split"`
}

// Group is a run of identical goods inside a sub-order.
type Group struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// SubOrder is one brewing cycle. Drinks respect the station limits; Extras carries
// the non-coffee goods batched onto the first cycle and is not capacity bound.
type SubOrder struct {
	Drinks []Group `json:"drinks"`
	Extras []Group `json:"extras,omitempty"`
}

// Units returns the number of coffee and tote units brewed in this cycle.
func (s SubOrder) Units() int {
	n := 0
	for _, g := range s.Drinks {
		n += g.Count
	}
	return n
}

// SplitAdvice bundles the verdict with the recommended grouping, which is only
// computed when the order should split.
type SplitAdvice struct {
	SplitAnalysis
	Recommendation []SubOrder `json:"recommendation,omitempty"`
}

// Splitter decides whether orders need splitting across drip stations and proposes
// a grouping. The catalog supplies the primary blend and tote set identities.
type Splitter struct {
	primary catalog.Entry
	tote    catalog.Entry
}

func NewSplitter(c *catalog.Catalog) *Splitter {
	return &Splitter{
		primary: c.PrimaryBlend(),
		tote:    c.ToteSet(),
	}
}

// Analyze counts coffee variety and volume. A tote set brews as one primary blend
// cup: it adds a unit, and adds the primary blend to the variety set, which may
// already contain it.
func (s *Splitter) Analyze(items []Item) SplitAnalysis {
	types := make(map[string]struct{})
	cups := 0
	totes := 0

	for _, item := range items {
		switch {
		case item.IsCoffee():
			types[identity(item)] = struct{}{}
			cups++
		case s.isTote(item):
			totes++
		}
	}
	if totes > 0 {
		types[s.primary.ID] = struct{}{}
	}

	a := SplitAnalysis{
		UniqueCoffeeTypes: len(types),
		TotalCoffeeUnits:  cups + totes,
	}
	a.ShouldSplit = a.UniqueCoffeeTypes >= splitVarietyThreshold || a.TotalCoffeeUnits >= splitVolumeThreshold
	return a
}

// Advise analyses items and, when a split is needed, attaches a recommendation.
func (s *Splitter) Advise(items []Item) SplitAdvice {
	advice := SplitAdvice{SplitAnalysis: s.Analyze(items)}
	if advice.ShouldSplit {
		advice.Recommendation = s.pack(items)
	}
	return advice
}

// Recommend returns the proposed brewing cycles, or nil when no split is needed.
func (s *Splitter) Recommend(items []Item) []SubOrder {
	return s.Advise(items).Recommendation
}

// SplitAdvice runs the splitter against the order's current items.
func (o *Order) SplitAdvice(s *Splitter) SplitAdvice {
	return s.Advise(o.items)
}

type bucket struct {
	id        string
	name      string
	remaining int
}

func (b *bucket) take(limit int) Group {
	n := min(b.remaining, limit)
	b.remaining -= n
	return Group{ID: b.id, Name: b.name, Count: n}
}

// pack greedily fills brewing cycles. Tote sets go first in every cycle they remain
// in; otherwise the earliest remaining coffee type leads. A lead that cannot fill the
// cycle alone shares it with one partner type.
func (s *Splitter) pack(items []Item) []SubOrder {
	tote := &bucket{id: s.tote.ID, name: s.tote.Name}
	var coffees, extras []*bucket
	coffeeIdx := make(map[string]int)
	extraIdx := make(map[string]int)

	for _, item := range items {
		switch {
		case item.IsCoffee():
			coffees = tally(coffees, coffeeIdx, item)
		case s.isTote(item):
			tote.remaining++
		default:
			extras = tally(extras, extraIdx, item)
		}
	}

	remaining := tote.remaining
	for _, b := range coffees {
		remaining += b.remaining
	}

	var cycles []SubOrder
	for remaining > 0 {
		var drinks []Group

		if tote.remaining > 0 {
			lead := tote.take(StationCapacity)
			drinks = append(drinks, lead)
			if lead.Count < StationCapacity {
				if partner := nextBucket(coffees, ""); partner != nil {
					drinks = append(drinks, partner.take(min(PartnerCapacity, StationCapacity-lead.Count)))
				}
			}
		} else {
			lead := nextBucket(coffees, "")
			leadCount := min(lead.remaining, StationCapacity)
			var partner *bucket
			if leadCount < StationCapacity {
				partner = nextBucket(coffees, lead.id)
			}
			if partner != nil {
				leadCount = min(leadCount, PartnerCapacity)
			}
			first := lead.take(leadCount)
			drinks = append(drinks, first)
			if partner != nil {
				drinks = append(drinks, partner.take(min(PartnerCapacity, StationCapacity-first.Count)))
			}
		}

		cycle := SubOrder{Drinks: drinks}
		remaining -= cycle.Units()
		cycles = append(cycles, cycle)
	}

	if len(cycles) > 0 && len(extras) > 0 {
		cycles[0].Extras = make([]Group, 0, len(extras))
		for _, b := range extras {
			cycles[0].Extras = append(cycles[0].Extras, Group{ID: b.id, Name: b.name, Count: b.remaining})
		}
	}

	return cycles
}

func (s *Splitter) isTote(item Item) bool {
	return item.ID != "" && item.ID == s.tote.ID
}

func tally(buckets []*bucket, index map[string]int, item Item) []*bucket {
	key := identity(item)
	if i, ok := index[key]; ok {
		buckets[i].remaining++
		return buckets
	}
	index[key] = len(buckets)
	return append(buckets, &bucket{id: key, name: item.Name, remaining: 1})
}

// nextBucket returns the earliest bucket with units left, skipping the one whose id
// is exclude.
func nextBucket(buckets []*bucket, exclude string) *bucket {
	for _, b := range buckets {
		if b.remaining > 0 && b.id != exclude {
			return b
		}
	}
	return nil
}

// identity falls back to the display name for items reconstructed without a
// catalog identity.
func identity(item Item) string {
	if item.ID != "" {
		return item.ID
	}
	return item.Name
}
