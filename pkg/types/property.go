package types

import "time"

type Property struct {
	Id           string       `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	Location     string       `json:"location"`
	PropertyType PropertyType `json:"propertyType,omitempty"`
	SaleOrRent   SaleOrRent   `json:"saleOrRent,omitempty"`
	Price        float64      `json:"price"`
	Area         float64      `json:"area"`
	Bedrooms     int          `json:"bedrooms,omitempty"`
	Bathrooms    int          `json:"bathrooms,omitempty"`
	Amenities    []string     `json:"amenities,omitempty"`
	Images       []string     `json:"images,omitempty"`
	Featured     bool         `json:"featured,omitempty"`
	CreatedAt    *time.Time   `json:"createdAt,omitempty"`
}

type ResultsPage struct {
	Items []Property `json:"properties"`
	Total int        `json:"total"`
}

// FeaturedPage wraps a parameterless featured listing, the endpoint sends no
// total so it is the number of items.
func FeaturedPage(items []Property) ResultsPage {
	if items == nil {
		items = []Property{}
	}
	return ResultsPage{Items: items, Total: len(items)}
}
