package policies

import (
	"time"

	domainavailability "staydesk/internal/domain/availability"
	domainproperties "staydesk/internal/domain/properties"
	"staydesk/internal/domain/shared/daterange"
)

// AvailabilityPort evaluates a requested range against loaded booking intervals.
type AvailabilityPort interface {
	Check(propertyID domainproperties.PropertyID, r daterange.DateRange, bookings []domainavailability.BookingInterval) (domainavailability.Result, error)
	IsAvailable(propertyID domainproperties.PropertyID, checkIn, checkOut string, bookings []domainavailability.BookingInterval) bool
	BookedDatesInRange(window daterange.DateRange, bookings []domainavailability.BookingInterval) []time.Time
}
