package sorting

import (
	"testing"
	"time"

	"github.com/matst80/slask-homes/pkg/types"
)

func at(day int) *time.Time {
	t := time.Date(2024, time.March, day, 12, 0, 0, 0, time.UTC)
	return &t
}

func ids(items []types.Property) []string {
	result := make([]string, len(items))
	for i, item := range items {
		result[i] = item.Id
	}
	return result
}

func equalIds(t *testing.T, expected []string, items []types.Property) {
	t.Helper()
	got := ids(items)
	if len(got) != len(expected) {
		t.Fatalf("Expected %v but got %v", expected, got)
	}
	for i := range got {
		if got[i] != expected[i] {
			t.Fatalf("Expected %v but got %v", expected, got)
		}
	}
}

var testPage = types.ResultsPage{
	Items: []types.Property{
		{Id: "a", Price: 300, Area: 50, CreatedAt: at(3)},
		{Id: "b", Price: 100, Area: 70, CreatedAt: at(1)},
		{Id: "c", Price: 300, Area: 50, CreatedAt: nil},
		{Id: "d", Price: 200, Area: 90, CreatedAt: at(2)},
	},
	Total: 40,
}

var now = time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)

func refineWith(key types.SortKey) []types.Property {
	m := types.DefaultFilterModel()
	m.SortKey = key
	return RefineAt(testPage, m, now)
}

func TestPriceSortIsStable(t *testing.T) {
	equalIds(t, []string{"b", "d", "a", "c"}, refineWith(types.SortPriceAsc))
	equalIds(t, []string{"a", "c", "d", "b"}, refineWith(types.SortPriceDesc))
}

func TestAreaSortIsStable(t *testing.T) {
	equalIds(t, []string{"a", "c", "b", "d"}, refineWith(types.SortAreaAsc))
	equalIds(t, []string{"d", "b", "a", "c"}, refineWith(types.SortAreaDesc))
}

func TestMissingTimestampSortsAsNow(t *testing.T) {
	equalIds(t, []string{"c", "a", "d", "b"}, refineWith(types.SortNewest))
	equalIds(t, []string{"b", "d", "a", "c"}, refineWith(types.SortOldest))
}

func TestRefineNeverDropsOrMutates(t *testing.T) {
	for _, key := range []types.SortKey{types.SortNewest, types.SortOldest, types.SortPriceAsc, types.SortPriceDesc, types.SortAreaAsc, types.SortAreaDesc} {
		items := refineWith(key)
		if len(items) != len(testPage.Items) {
			t.Errorf("%s: expected %d items, got %d", key, len(testPage.Items), len(items))
		}
	}
	equalIds(t, []string{"a", "b", "c", "d"}, testPage.Items)
	if testPage.Total != 40 {
		t.Errorf("Expected total to stay 40, got %d", testPage.Total)
	}
}

func TestRefineEmptyPage(t *testing.T) {
	items := Refine(types.ResultsPage{}, types.DefaultFilterModel())
	if items == nil || len(items) != 0 {
		t.Errorf("Expected empty non-nil slice, got %v", items)
	}
}

func TestUnknownSortKeyUsesNewest(t *testing.T) {
	equalIds(t, []string{"c", "a", "d", "b"}, refineWith(types.SortKey("bogus")))
}
