package sorting

import (
	"cmp"
	"slices"
	"time"

	"github.com/matst80/slask-homes/pkg/types"
)

// Comparator orders two properties, it must be a total order.
type Comparator func(a, b *types.Property) int

func byPrice(a, b *types.Property) int {
	return cmp.Compare(a.Price, b.Price)
}

func byArea(a, b *types.Property) int {
	return cmp.Compare(a.Area, b.Area)
}

func reversed(fn Comparator) Comparator {
	return func(a, b *types.Property) int {
		return fn(b, a)
	}
}

// byCreated treats a missing timestamp as now so it lands among the newest.
func byCreated(now time.Time) Comparator {
	created := func(p *types.Property) time.Time {
		if p.CreatedAt == nil {
			return now
		}
		return *p.CreatedAt
	}
	return func(a, b *types.Property) int {
		return created(a).Compare(created(b))
	}
}

func ComparatorFor(key types.SortKey, now time.Time) Comparator {
	switch key {
	case types.SortOldest:
		return byCreated(now)
	case types.SortPriceAsc:
		return byPrice
	case types.SortPriceDesc:
		return reversed(byPrice)
	case types.SortAreaAsc:
		return byArea
	case types.SortAreaDesc:
		return reversed(byArea)
	}
	return reversed(byCreated(now))
}

// Refine re-sorts a fetched page with the comparator of the model's sort key.
func Refine(page types.ResultsPage, model types.FilterModel) []types.Property {
	return RefineAt(page, model, time.Now())
}

// RefineAt returns a stably sorted copy of the page items. Items are never
// dropped and ties keep the order the endpoint sent.
func RefineAt(page types.ResultsPage, model types.FilterModel, now time.Time) []types.Property {
	items := slices.Clone(page.Items)
	if items == nil {
		return []types.Property{}
	}
	compare := ComparatorFor(model.SortKey, now)
	slices.SortStableFunc(items, func(a, b types.Property) int {
		return compare(&a, &b)
	})
	return items
}
