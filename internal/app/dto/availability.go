package dto

import (
	"time"

	"staydesk/internal/domain/availability"
	"staydesk/internal/domain/shared/daterange"
)

type BookingConflict struct {
	BookingID string `json:"booking_id"`
	CheckIn   string `json:"check_in"`
	CheckOut  string `json:"check_out"`
	Status    string `json:"status"`
}

type Availability struct {
	PropertyID string            `json:"property_id"`
	CheckIn    string            `json:"check_in"`
	CheckOut   string            `json:"check_out"`
	Available  bool              `json:"available"`
	Reason     string            `json:"reason,omitempty"`
	Conflicts  []BookingConflict `json:"conflicts,omitempty"`
}

type BookedDates struct {
	PropertyID string   `json:"property_id"`
	From       string   `json:"from"`
	To         string   `json:"to"`
	Dates      []string `json:"dates"`
}

func MapConflicts(intervals []availability.BookingInterval) []BookingConflict {
	if len(intervals) == 0 {
		return nil
	}
	out := make([]BookingConflict, 0, len(intervals))
	for _, b := range intervals {
		out = append(out, BookingConflict{
			BookingID: string(b.BookingID),
			CheckIn:   b.Range.CheckIn.Format(daterange.DateLayout),
			CheckOut:  b.Range.CheckOut.Format(daterange.DateLayout),
			Status:    string(b.Status),
		})
	}
	return out
}

func FormatDates(dates []time.Time) []string {
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Format(daterange.DateLayout))
	}
	return out
}
