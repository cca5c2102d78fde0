package availability

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"staydesk/internal/domain/properties"
	"staydesk/internal/domain/shared/daterange"
	"staydesk/internal/domain/shared/events"
)

var (
	ErrUnknownStatus      = errors.New("availability: unknown booking status")
	ErrBookingIDRequired  = errors.New("availability: booking id is required")
	ErrPropertyIDRequired = errors.New("availability: property id is required")
	ErrIntervalNotFound   = errors.New("availability: booking interval not found")
)

type BookingStatus string

const (
	StatusPendingVerification BookingStatus = "pending_verification"
	StatusConfirmed           BookingStatus = "confirmed"
	StatusCheckedIn           BookingStatus = "checked_in"
	StatusCheckedOut          BookingStatus = "checked_out"
	StatusCancelled           BookingStatus = "cancelled"
)

func ParseBookingStatus(raw string) (BookingStatus, error) {
	s := BookingStatus(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case StatusPendingVerification, StatusConfirmed, StatusCheckedIn, StatusCheckedOut, StatusCancelled:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
}

// Occupies reports whether a booking in this status blocks its dates.
func (s BookingStatus) Occupies() bool {
	switch s {
	case StatusPendingVerification, StatusConfirmed, StatusCheckedIn, StatusCheckedOut:
		return true
	default:
		return false
	}
}

// ShowsOnCalendar reports whether the booking's nights are listed as booked dates.
func (s BookingStatus) ShowsOnCalendar() bool {
	return s == StatusConfirmed || s == StatusCheckedIn
}

type BookingID string

// BookingInterval is the slice of a booking the checker needs.
type BookingInterval struct {
	BookingID  BookingID
	PropertyID properties.PropertyID
	Range      daterange.DateRange
	Status     BookingStatus
	UpdatedAt  time.Time
	events.EventRecorder
}

type BookingRepository interface {
	// ForProperty returns the intervals of a property overlapping window.
	ForProperty(ctx context.Context, id properties.PropertyID, window daterange.DateRange) ([]BookingInterval, error)
	ByID(ctx context.Context, id BookingID) (*BookingInterval, error)
	Save(ctx context.Context, interval *BookingInterval) error
}

func NewBookingInterval(id BookingID, propertyID properties.PropertyID, r daterange.DateRange, status BookingStatus, now time.Time) (*BookingInterval, error) {
	if strings.TrimSpace(string(id)) == "" {
		return nil, ErrBookingIDRequired
	}
	if strings.TrimSpace(string(propertyID)) == "" {
		return nil, ErrPropertyIDRequired
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("availability: %w", err)
	}
	if _, err := ParseBookingStatus(string(status)); err != nil {
		return nil, err
	}
	return &BookingInterval{
		BookingID:  id,
		PropertyID: propertyID,
		Range:      r,
		Status:     status,
		UpdatedAt:  now.UTC(),
	}, nil
}

// Blocks reports whether this interval occupies any night of r.
func (b BookingInterval) Blocks(r daterange.DateRange) bool {
	return b.Status.Occupies() && b.Range.Overlaps(r)
}

// MarkOverlaps records an overlap event for every occupying interval in others
// that collides with b. It returns the colliding intervals.
func (b *BookingInterval) MarkOverlaps(others []BookingInterval, now time.Time) []BookingInterval {
	if !b.Status.Occupies() {
		return nil
	}
	var hits []BookingInterval
	for _, other := range others {
		if other.BookingID == b.BookingID || other.PropertyID != b.PropertyID {
			continue
		}
		if other.Blocks(b.Range) {
			hits = append(hits, other)
		}
	}
	if len(hits) > 0 {
		ids := make([]string, 0, len(hits))
		for _, h := range hits {
			ids = append(ids, string(h.BookingID))
		}
		b.Record(OverlapDetected{
			PropertyID:  string(b.PropertyID),
			BookingID:   string(b.BookingID),
			Range:       b.Range,
			ConflictIDs: ids,
			At:          now.UTC(),
		})
	}
	return hits
}
