// Package catalog holds the views derived from one fetch cycle's items:
// category groups for the menu and the promotion subset for signage.
package catalog

import (
	"math"
	"math/rand"
	"sort"

	"menuboard/internal"
)

// Repository is the immutable item collection of one fetch cycle.
type Repository struct {
	items []internal.Item
}

func NewRepository(items []internal.Item) *Repository {
	cp := make([]internal.Item, len(items))
	copy(cp, items)
	return &Repository{items: cp}
}

func (r *Repository) Items() []internal.Item {
	out := make([]internal.Item, len(r.items))
	copy(out, r.items)
	return out
}

func (r *Repository) Len() int {
	return len(r.items)
}

func (r *Repository) Groups() []internal.CategoryGroup {
	return Groups(r.items)
}

func (r *Repository) Promotions() []internal.Item {
	return SelectPromotions(r.items, SignageEligible)
}

// GroupByCategory buckets listed items by category, each bucket ordered by
// SortOrder with ties kept in input order.
func GroupByCategory(items []internal.Item) map[string][]internal.Item {
	out := map[string][]internal.Item{}
	for _, it := range items {
		if !it.Listed() {
			continue
		}
		out[it.Category] = append(out[it.Category], it)
	}
	for _, group := range out {
		sortBy(group, func(it internal.Item) float64 { return it.SortOrder })
	}
	return out
}

// Groups is GroupByCategory with categories in first-seen order.
func Groups(items []internal.Item) []internal.CategoryGroup {
	byCategory := GroupByCategory(items)
	seen := map[string]bool{}
	out := make([]internal.CategoryGroup, 0, len(byCategory))
	for _, it := range items {
		if !it.Listed() || seen[it.Category] {
			continue
		}
		seen[it.Category] = true
		out = append(out, internal.CategoryGroup{Category: it.Category, Items: byCategory[it.Category]})
	}
	return out
}

// SelectPromotions keeps listed promotions accepted by eligible, ordered by
// signage order when set and by sort order otherwise. A nil predicate
// accepts everything.
func SelectPromotions(items []internal.Item, eligible func(internal.Item) bool) []internal.Item {
	out := make([]internal.Item, 0)
	for _, it := range items {
		if !it.Listed() || !it.IsPromotion {
			continue
		}
		if eligible != nil && !eligible(it) {
			continue
		}
		out = append(out, it)
	}
	sortBy(out, PromotionOrder)
	return out
}

// SignageEligible is the TV predicate for SelectPromotions.
func SignageEligible(it internal.Item) bool {
	return it.SignageEligible
}

// PromotionOrder is the signage sort key. The sentinel counts as unset.
func PromotionOrder(it internal.Item) float64 {
	if it.SignageOrder != internal.OrderUnset && !math.IsNaN(it.SignageOrder) && !math.IsInf(it.SignageOrder, 0) {
		return it.SignageOrder
	}
	return it.SortOrder
}

// Shuffle returns a uniformly permuted copy. A nil rng uses the global source.
func Shuffle(items []internal.Item, rng *rand.Rand) []internal.Item {
	out := make([]internal.Item, len(items))
	copy(out, items)
	intn := rand.Intn
	if rng != nil {
		intn = rng.Intn
	}
	for i := len(out) - 1; i > 0; i-- {
		j := intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func sortBy(items []internal.Item, key func(internal.Item) float64) {
	sort.SliceStable(items, func(i, j int) bool { return key(items[i]) < key(items[j]) })
}
