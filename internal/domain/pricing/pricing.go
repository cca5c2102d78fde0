package pricing

import (
	"errors"
	"fmt"
	"time"

	"staydesk/internal/domain/properties"
	"staydesk/internal/domain/shared/daterange"
)

var ErrInvalidGuests = errors.New("pricing: guests count must not be negative")

// StayRequest is the priced stay. Guests == 0 means the guest count was not supplied.
type StayRequest struct {
	PropertyID properties.PropertyID
	Range      daterange.DateRange
	Guests     int
}

func NewStayRequest(id properties.PropertyID, checkIn, checkOut time.Time, guests int) (StayRequest, error) {
	dr, err := daterange.New(checkIn, checkOut)
	if err != nil {
		return StayRequest{}, fmt.Errorf("pricing: %w", err)
	}
	req := StayRequest{PropertyID: id, Range: dr, Guests: guests}
	if err := req.Validate(); err != nil {
		return StayRequest{}, err
	}
	return req, nil
}

func (r StayRequest) Validate() error {
	if err := r.Range.Validate(); err != nil {
		return fmt.Errorf("pricing: %w", err)
	}
	if r.Range.NightCount() < 1 {
		return fmt.Errorf("pricing: %w", daterange.ErrInvalidRange)
	}
	if r.Guests < 0 {
		return ErrInvalidGuests
	}
	return nil
}
