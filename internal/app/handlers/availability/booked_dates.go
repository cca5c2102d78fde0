package availability

import (
	"context"
	"fmt"

	"staydesk/internal/app/dto"
	"staydesk/internal/app/handlers/support"
	"staydesk/internal/app/policies"
	"staydesk/internal/app/queries"
	"staydesk/internal/app/uow"
	domainavailability "staydesk/internal/domain/availability"
	domainproperties "staydesk/internal/domain/properties"
	"staydesk/internal/domain/shared/daterange"
)

const BookedDatesKey = "availability.booked_dates"

type BookedDatesQuery struct {
	PropertyID string `json:"property_id" validate:"required"`
	From       string `json:"from" validate:"required"`
	To         string `json:"to" validate:"required"`
}

func (q BookedDatesQuery) Key() string { return BookedDatesKey }

type BookedDatesHandler struct {
	UoWFactory uow.UoWFactory
	Checker    policies.AvailabilityPort
}

func (h *BookedDatesHandler) Handle(ctx context.Context, q BookedDatesQuery) (dto.BookedDates, error) {
	window, err := daterange.Parse(q.From, q.To)
	if err != nil {
		return dto.BookedDates{}, fmt.Errorf("availability: %w", err)
	}
	unit, ctx, done, err := support.ReadUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookedDates{}, err
	}
	defer done()

	bookings, err := unit.Bookings().ForProperty(ctx, domainproperties.PropertyID(q.PropertyID), window)
	if err != nil {
		return dto.BookedDates{}, err
	}
	checker := h.Checker
	if checker == nil {
		checker = &domainavailability.Checker{}
	}
	return dto.BookedDates{
		PropertyID: q.PropertyID,
		From:       window.CheckIn.Format(daterange.DateLayout),
		To:         window.CheckOut.Format(daterange.DateLayout),
		Dates:      dto.FormatDates(checker.BookedDatesInRange(window, bookings)),
	}, nil
}

var _ queries.Handler[BookedDatesQuery, dto.BookedDates] = (*BookedDatesHandler)(nil)
