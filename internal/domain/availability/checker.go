package availability

import (
	"log/slog"
	"slices"
	"time"

	"staydesk/internal/domain/properties"
	"staydesk/internal/domain/shared/daterange"
)

type Reason string

const (
	ReasonFree         Reason = ""
	ReasonBooked       Reason = "booked"
	ReasonExcluded     Reason = "excluded"
	ReasonInvalidDates Reason = "invalid_dates"
)

// Exclusion blocks dates for reasons other than bookings, such as maintenance.
type Exclusion interface {
	Excludes(propertyID properties.PropertyID, r daterange.DateRange) bool
}

type ExclusionFunc func(propertyID properties.PropertyID, r daterange.DateRange) bool

func (f ExclusionFunc) Excludes(propertyID properties.PropertyID, r daterange.DateRange) bool {
	return f(propertyID, r)
}

type Result struct {
	Available bool
	Reason    Reason
	Conflicts []BookingInterval
}

// Checker answers availability questions over a supplied set of booking
// intervals. It keeps no state between calls.
type Checker struct {
	Logger     *slog.Logger
	Exclusions []Exclusion
}

// Check evaluates r against bookings and the configured exclusions.
func (c *Checker) Check(propertyID properties.PropertyID, r daterange.DateRange, bookings []BookingInterval) (Result, error) {
	if err := r.Validate(); err != nil {
		return Result{Reason: ReasonInvalidDates}, err
	}
	conflicts := c.Conflicts(propertyID, r, bookings)
	if len(conflicts) > 0 {
		return Result{Reason: ReasonBooked, Conflicts: conflicts}, nil
	}
	if c != nil {
		for _, ex := range c.Exclusions {
			if ex != nil && ex.Excludes(propertyID, r) {
				return Result{Reason: ReasonExcluded}, nil
			}
		}
	}
	return Result{Available: true}, nil
}

// Available reports whether r is free. An invalid range is never available.
func (c *Checker) Available(propertyID properties.PropertyID, r daterange.DateRange, bookings []BookingInterval) bool {
	res, err := c.Check(propertyID, r, bookings)
	return err == nil && res.Available
}

// IsAvailable parses the requested dates and fails closed: unparseable or
// inverted dates are logged and reported as unavailable.
func (c *Checker) IsAvailable(propertyID properties.PropertyID, checkIn, checkOut string, bookings []BookingInterval) bool {
	r, err := daterange.Parse(checkIn, checkOut)
	if err != nil {
		c.logger().Warn("availability check rejected dates",
			"property_id", propertyID,
			"check_in", checkIn,
			"check_out", checkOut,
			"error", err,
		)
		return false
	}
	return c.Available(propertyID, r, bookings)
}

// Conflicts returns the occupying bookings of propertyID that overlap r, in input order.
// Intervals without a property id are treated as belonging to propertyID.
func (c *Checker) Conflicts(propertyID properties.PropertyID, r daterange.DateRange, bookings []BookingInterval) []BookingInterval {
	var out []BookingInterval
	for _, b := range bookings {
		if b.PropertyID != "" && propertyID != "" && b.PropertyID != propertyID {
			continue
		}
		if b.Blocks(r) {
			out = append(out, b)
		}
	}
	return out
}

// BookedDatesInRange lists every night inside window that is held by a
// confirmed or checked-in booking. The result is ascending and de-duplicated.
func (c *Checker) BookedDatesInRange(window daterange.DateRange, bookings []BookingInterval) []time.Time {
	if window.Validate() != nil {
		return nil
	}
	seen := make(map[string]time.Time)
	for _, b := range bookings {
		if !b.Status.ShowsOnCalendar() {
			continue
		}
		overlap, ok := b.Range.Intersect(window)
		if !ok {
			continue
		}
		for night := range overlap.Nights() {
			seen[night.Format(daterange.DateLayout)] = night
		}
	}
	out := make([]time.Time, 0, len(seen))
	for _, d := range seen {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b time.Time) int { return a.Compare(b) })
	return out
}

func (c *Checker) logger() *slog.Logger {
	if c == nil || c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}
