package server

import "github.com/matst80/slask-homes/pkg/types"

type SearchResponse struct {
	Query    string           `json:"query"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
	Total    int              `json:"total"`
	Items    []types.Property `json:"items"`
	Fallback bool             `json:"fallback,omitempty"`
	Error    string           `json:"error,omitempty"`
}

type FiltersResponse struct {
	Query   string            `json:"query"`
	Filters types.FilterModel `json:"filters"`
}
