package dto

type PropertyAck struct {
	PropertyID string `json:"property_id"`
	Version    int64  `json:"version"`
}

type SeasonalRateAck struct {
	ID         int64  `json:"id"`
	PropertyID string `json:"property_id"`
}

type IntervalAck struct {
	BookingID  string   `json:"booking_id"`
	PropertyID string   `json:"property_id"`
	Status     string   `json:"status"`
	Overlaps   []string `json:"overlaps,omitempty"`
}
