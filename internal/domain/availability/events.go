package availability

import (
	"time"

	"staydesk/internal/domain/shared/daterange"
)

// OverlapDetected is recorded when a mirrored booking collides with another
// occupying booking of the same property.
type OverlapDetected struct {
	PropertyID  string
	BookingID   string
	Range       daterange.DateRange
	ConflictIDs []string
	At          time.Time
}

func (e OverlapDetected) EventName() string     { return "availability.overlap_detected" }
func (e OverlapDetected) AggregateID() string   { return e.PropertyID }
func (e OverlapDetected) OccurredAt() time.Time { return e.At }
