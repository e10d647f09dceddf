package types

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/schema"
)

// queryParams is the wire shape of a FilterModel. Every value is kept as a
// string so a malformed number only affects its own field.
type queryParams struct {
	Location     string `schema:"location,omitempty"`
	PropertyType string `schema:"propertyType,omitempty"`
	SaleOrRent   string `schema:"saleOrRent,omitempty"`
	MinPrice     string `schema:"minPrice,omitempty"`
	MaxPrice     string `schema:"maxPrice,omitempty"`
	MinArea      string `schema:"minArea,omitempty"`
	MaxArea      string `schema:"maxArea,omitempty"`
	MinBedrooms  string `schema:"minBedrooms,omitempty"`
	MaxBedrooms  string `schema:"maxBedrooms,omitempty"`
	MinBathrooms string `schema:"minBathrooms,omitempty"`
	MaxBathrooms string `schema:"maxBathrooms,omitempty"`
	Amenities    string `schema:"amenities,omitempty"`
	SortBy       string `schema:"sortBy,omitempty"`
	Page         string `schema:"page,omitempty"`

	// older pages used these names for saleOrRent, never encoded
	ForSaleOrRent string `schema:"forSaleOrRent,omitempty"`
	RentOrSale    string `schema:"rentOrSale,omitempty"`
}

// CanonicalKeys lists the query keys in the order they are encoded.
var CanonicalKeys = []string{
	"location",
	"propertyType",
	"saleOrRent",
	"minPrice",
	"maxPrice",
	"minArea",
	"maxArea",
	"minBedrooms",
	"maxBedrooms",
	"minBathrooms",
	"maxBathrooms",
	"amenities",
	"sortBy",
	"page",
}

var (
	decoder = schema.NewDecoder()
	encoder = schema.NewEncoder()
)

func init() {
	decoder.IgnoreUnknownKeys(true)
}

func formatInt[T int | int64](value, def T) string {
	if value == def {
		return ""
	}
	return strconv.FormatInt(int64(value), 10)
}

func formatBound(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func toParams(m FilterModel) queryParams {
	p := queryParams{
		Location:     m.Location,
		PropertyType: string(m.PropertyType),
		SaleOrRent:   string(m.SaleOrRent),
		MinPrice:     formatInt(m.PriceMin, DefaultPriceMin),
		MaxPrice:     formatInt(m.PriceMax, DefaultPriceMax),
		MinArea:      formatInt(m.AreaMin, DefaultAreaMin),
		MaxArea:      formatInt(m.AreaMax, DefaultAreaMax),
		MinBedrooms:  formatBound(m.BedroomsMin),
		MaxBedrooms:  formatBound(m.BedroomsMax),
		MinBathrooms: formatBound(m.BathroomsMin),
		MaxBathrooms: formatBound(m.BathroomsMax),
		Amenities:    strings.Join(m.Amenities, ","),
		Page:         formatInt(m.Page, DefaultPage),
	}
	if m.SortKey != DefaultSortKey {
		p.SortBy = m.SortKey.Token()
	}
	return p
}

func escapeValue(v string) string {
	return strings.ReplaceAll(url.QueryEscape(v), "%2C", ",")
}

// Values returns the non-default facets of m as url values.
func Values(m FilterModel) url.Values {
	values := url.Values{}
	if err := encoder.Encode(toParams(m.Normalize()), values); err != nil {
		// only string fields, the encoder has nothing to reject
		return url.Values{}
	}
	return values
}

// Encode returns the canonical query string of m: normalized, default-free
// and with keys in CanonicalKeys order. The default model encodes to "".
func Encode(m FilterModel) string {
	values := Values(m)
	var buffer strings.Builder
	for _, key := range CanonicalKeys {
		v := values.Get(key)
		if v == "" {
			continue
		}
		if buffer.Len() > 0 {
			buffer.WriteByte('&')
		}
		buffer.WriteString(key)
		buffer.WriteByte('=')
		buffer.WriteString(escapeValue(v))
	}
	return buffer.String()
}

func parseInt(s string, def int64) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 {
		return def
	}
	return v
}

func parseBound(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return nil
	}
	return &v
}

func splitAmenities(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func fromParams(p queryParams) FilterModel {
	saleOrRent := p.SaleOrRent
	if saleOrRent == "" {
		saleOrRent = p.ForSaleOrRent
	}
	if saleOrRent == "" {
		saleOrRent = p.RentOrSale
	}
	page := int(parseInt(p.Page, DefaultPage))
	if page < 1 {
		page = DefaultPage
	}
	m := FilterModel{
		Location:     p.Location,
		PropertyType: ParsePropertyType(p.PropertyType),
		SaleOrRent:   ParseSaleOrRent(saleOrRent),
		PriceMin:     parseInt(p.MinPrice, DefaultPriceMin),
		PriceMax:     parseInt(p.MaxPrice, DefaultPriceMax),
		AreaMin:      parseInt(p.MinArea, DefaultAreaMin),
		AreaMax:      parseInt(p.MaxArea, DefaultAreaMax),
		BedroomsMin:  parseBound(p.MinBedrooms),
		BedroomsMax:  parseBound(p.MaxBedrooms),
		BathroomsMin: parseBound(p.MinBathrooms),
		BathroomsMax: parseBound(p.MaxBathrooms),
		Amenities:    splitAmenities(p.Amenities),
		SortKey:      ParseSortKey(p.SortBy),
		Page:         page,
	}
	return m.Normalize()
}

// DecodeValues builds a normalized model from already parsed values. Unknown
// keys are ignored and malformed values fall back to their defaults.
func DecodeValues(values url.Values) FilterModel {
	p := queryParams{}
	// field errors leave the field empty which decodes to its default
	_ = decoder.Decode(&p, values)
	return fromParams(p)
}

// Decode parses a query string, with or without a leading '?'.
func Decode(query string) FilterModel {
	// ParseQuery keeps every pair it could read
	values, _ := url.ParseQuery(strings.TrimPrefix(query, "?"))
	return DecodeValues(values)
}

// Canonical re-encodes a query string in its canonical form.
func Canonical(query string) string {
	return Encode(Decode(query))
}
