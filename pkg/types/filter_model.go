package types

import (
	"slices"
	"strings"
)

type PropertyType string

const (
	AnyPropertyType PropertyType = ""
	Apartment       PropertyType = "apartment"
	House           PropertyType = "house"
	Villa           PropertyType = "villa"
	Plot            PropertyType = "plot"
	Commercial      PropertyType = "commercial"
	Office          PropertyType = "office"
	Retail          PropertyType = "retail"
	Warehouse       PropertyType = "warehouse"
	Farmland        PropertyType = "farmland"
)

var PropertyTypes = []PropertyType{
	Apartment, House, Villa, Plot, Commercial, Office, Retail, Warehouse, Farmland,
}

func (p PropertyType) Valid() bool {
	return slices.Contains(PropertyTypes, p)
}

func ParsePropertyType(s string) PropertyType {
	p := PropertyType(strings.ToLower(strings.TrimSpace(s)))
	if p.Valid() {
		return p
	}
	return AnyPropertyType
}

type SaleOrRent string

const (
	AnySaleOrRent SaleOrRent = ""
	ForSale       SaleOrRent = "sale"
	ForRent       SaleOrRent = "rent"
)

func ParseSaleOrRent(s string) SaleOrRent {
	switch SaleOrRent(strings.ToLower(strings.TrimSpace(s))) {
	case ForSale:
		return ForSale
	case ForRent:
		return ForRent
	}
	return AnySaleOrRent
}

type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortOldest    SortKey = "oldest"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortAreaAsc   SortKey = "area_asc"
	SortAreaDesc  SortKey = "area_desc"
)

// wire tokens used by the search endpoint for each sort key
var sortTokens = map[SortKey]string{
	SortNewest:    "newest",
	SortOldest:    "oldest",
	SortPriceAsc:  "price_low",
	SortPriceDesc: "price_high",
	SortAreaAsc:   "area_low",
	SortAreaDesc:  "area_high",
}

// Token returns the sortBy value sent over the wire.
func (s SortKey) Token() string {
	if t, ok := sortTokens[s]; ok {
		return t
	}
	return sortTokens[DefaultSortKey]
}

func (s SortKey) Valid() bool {
	_, ok := sortTokens[s]
	return ok
}

// ParseSortKey accepts both wire tokens and internal keys, anything else
// becomes the default sort.
func ParseSortKey(s string) SortKey {
	s = strings.ToLower(strings.TrimSpace(s))
	for key, token := range sortTokens {
		if token == s || string(key) == s {
			return key
		}
	}
	return DefaultSortKey
}

const (
	DefaultPriceMin int64 = 0
	DefaultPriceMax int64 = 20_000_000
	DefaultAreaMin  int64 = 0
	DefaultAreaMax  int64 = 10_000
	DefaultSortKey        = SortNewest
	DefaultPage           = 1
	PageSize              = 12
)

// FilterModel holds every active facet of a property search. Amenities is a
// set kept sorted by Normalize, bedroom and bathroom bounds are nil when absent.
type FilterModel struct {
	Location     string       `json:"location,omitempty"`
	PropertyType PropertyType `json:"propertyType,omitempty"`
	SaleOrRent   SaleOrRent   `json:"saleOrRent,omitempty"`
	PriceMin     int64        `json:"priceMin"`
	PriceMax     int64        `json:"priceMax"`
	AreaMin      int64        `json:"areaMin"`
	AreaMax      int64        `json:"areaMax"`
	BedroomsMin  *int         `json:"bedroomsMin,omitempty"`
	BedroomsMax  *int         `json:"bedroomsMax,omitempty"`
	BathroomsMin *int         `json:"bathroomsMin,omitempty"`
	BathroomsMax *int         `json:"bathroomsMax,omitempty"`
	Amenities    []string     `json:"amenities,omitempty"`
	SortKey      SortKey      `json:"sortKey"`
	Page         int          `json:"page"`
}

func DefaultFilterModel() FilterModel {
	return FilterModel{
		PriceMin: DefaultPriceMin,
		PriceMax: DefaultPriceMax,
		AreaMin:  DefaultAreaMin,
		AreaMax:  DefaultAreaMax,
		SortKey:  DefaultSortKey,
		Page:     DefaultPage,
	}
}

func (m FilterModel) Clone() FilterModel {
	c := m
	c.BedroomsMin = clonePtr(m.BedroomsMin)
	c.BedroomsMax = clonePtr(m.BedroomsMax)
	c.BathroomsMin = clonePtr(m.BathroomsMin)
	c.BathroomsMax = clonePtr(m.BathroomsMax)
	if m.Amenities != nil {
		c.Amenities = slices.Clone(m.Amenities)
	}
	return c
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func orderedRange[T int | int64](lo, hi T) (T, T) {
	if lo > hi {
		return hi, lo
	}
	return lo, hi
}

func nonNegative(value, def int64) int64 {
	if value < 0 {
		return def
	}
	return value
}

func optionalBound(v *int) *int {
	if v == nil || *v < 0 {
		return nil
	}
	c := *v
	return &c
}

func orderedBounds(lo, hi *int) (*int, *int) {
	if lo != nil && hi != nil && *lo > *hi {
		return hi, lo
	}
	return lo, hi
}

func normalizeAmenities(amenities []string) []string {
	if len(amenities) == 0 {
		return nil
	}
	result := make([]string, 0, len(amenities))
	for _, a := range amenities {
		a = strings.TrimSpace(a)
		if a != "" {
			result = append(result, a)
		}
	}
	if len(result) == 0 {
		return nil
	}
	slices.Sort(result)
	return slices.Compact(result)
}

// Normalize returns a copy of m with every invariant repaired. It never fails.
func (m FilterModel) Normalize() FilterModel {
	n := FilterModel{
		Location:     strings.TrimSpace(m.Location),
		PropertyType: ParsePropertyType(string(m.PropertyType)),
		SaleOrRent:   ParseSaleOrRent(string(m.SaleOrRent)),
		Amenities:    normalizeAmenities(m.Amenities),
		SortKey:      m.SortKey,
		Page:         m.Page,
	}
	n.PriceMin, n.PriceMax = orderedRange(nonNegative(m.PriceMin, DefaultPriceMin), nonNegative(m.PriceMax, DefaultPriceMax))
	n.AreaMin, n.AreaMax = orderedRange(nonNegative(m.AreaMin, DefaultAreaMin), nonNegative(m.AreaMax, DefaultAreaMax))
	n.BedroomsMin, n.BedroomsMax = orderedBounds(optionalBound(m.BedroomsMin), optionalBound(m.BedroomsMax))
	n.BathroomsMin, n.BathroomsMax = orderedBounds(optionalBound(m.BathroomsMin), optionalBound(m.BathroomsMax))
	if !n.SortKey.Valid() {
		n.SortKey = ParseSortKey(string(m.SortKey))
	}
	if n.Page < 1 {
		n.Page = DefaultPage
	}
	return n
}

func equalBound(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// FacetsEqual compares everything except page and sort key.
func (m FilterModel) FacetsEqual(o FilterModel) bool {
	return m.Location == o.Location &&
		m.PropertyType == o.PropertyType &&
		m.SaleOrRent == o.SaleOrRent &&
		m.PriceMin == o.PriceMin &&
		m.PriceMax == o.PriceMax &&
		m.AreaMin == o.AreaMin &&
		m.AreaMax == o.AreaMax &&
		equalBound(m.BedroomsMin, o.BedroomsMin) &&
		equalBound(m.BedroomsMax, o.BedroomsMax) &&
		equalBound(m.BathroomsMin, o.BathroomsMin) &&
		equalBound(m.BathroomsMax, o.BathroomsMax) &&
		slices.Equal(m.Amenities, o.Amenities)
}

func (m FilterModel) Equal(o FilterModel) bool {
	return m.FacetsEqual(o) && m.SortKey == o.SortKey && m.Page == o.Page
}

// HasFilters reports whether any facet differs from its default. Sort and
// page are not filters.
func (m FilterModel) HasFilters() bool {
	return !m.Normalize().FacetsEqual(DefaultFilterModel())
}

// FilterUpdate is a partial FilterModel, nil fields are left untouched.
// Negative numbers reset a bound to its default, for bedrooms and bathrooms
// that means absent. An empty non-nil Amenities slice clears the set.
type FilterUpdate struct {
	Location     *string
	PropertyType *PropertyType
	SaleOrRent   *SaleOrRent
	PriceMin     *int64
	PriceMax     *int64
	AreaMin      *int64
	AreaMax      *int64
	BedroomsMin  *int
	BedroomsMax  *int
	BathroomsMin *int
	BathroomsMax *int
	Amenities    []string
	SortKey      *SortKey
	Page         *int
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func setBound(dst **int, src *int) {
	if src != nil {
		*dst = clonePtr(src)
	}
}

// Apply merges the update into a copy of m. The result is not normalized.
func (u FilterUpdate) Apply(m FilterModel) FilterModel {
	r := m.Clone()
	setIf(&r.Location, u.Location)
	setIf(&r.PropertyType, u.PropertyType)
	setIf(&r.SaleOrRent, u.SaleOrRent)
	setIf(&r.PriceMin, u.PriceMin)
	setIf(&r.PriceMax, u.PriceMax)
	setIf(&r.AreaMin, u.AreaMin)
	setIf(&r.AreaMax, u.AreaMax)
	setBound(&r.BedroomsMin, u.BedroomsMin)
	setBound(&r.BedroomsMax, u.BedroomsMax)
	setBound(&r.BathroomsMin, u.BathroomsMin)
	setBound(&r.BathroomsMax, u.BathroomsMax)
	if u.Amenities != nil {
		r.Amenities = slices.Clone(u.Amenities)
	}
	setIf(&r.SortKey, u.SortKey)
	setIf(&r.Page, u.Page)
	return r
}

func (u FilterUpdate) IsEmpty() bool {
	return u.Location == nil && u.PropertyType == nil && u.SaleOrRent == nil &&
		u.PriceMin == nil && u.PriceMax == nil && u.AreaMin == nil && u.AreaMax == nil &&
		u.BedroomsMin == nil && u.BedroomsMax == nil &&
		u.BathroomsMin == nil && u.BathroomsMax == nil &&
		u.Amenities == nil && u.SortKey == nil && u.Page == nil
}

func Ptr[T any](v T) *T {
	return &v
}
