package tracking

// SearchEvent describes one search sent to the endpoint.
type SearchEvent struct {
	SessionId string `json:"session_id,omitempty"`
	Query     string `json:"query"`
	Total     int    `json:"noi"`
	Fallback  bool   `json:"fallback,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp int64  `json:"ts"`
}

type Tracking interface {
	TrackSearch(event SearchEvent) error
}

type NoTracking struct{}

func (NoTracking) TrackSearch(SearchEvent) error {
	return nil
}
