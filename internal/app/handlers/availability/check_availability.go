package availability

import (
	"context"
	"log/slog"

	"staydesk/internal/app/dto"
	"staydesk/internal/app/handlers/support"
	"staydesk/internal/app/policies"
	"staydesk/internal/app/queries"
	"staydesk/internal/app/uow"
	domainavailability "staydesk/internal/domain/availability"
	domainproperties "staydesk/internal/domain/properties"
	"staydesk/internal/domain/shared/daterange"
)

const CheckAvailabilityKey = "availability.check"

type CheckAvailabilityQuery struct {
	PropertyID string `json:"property_id" validate:"required"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
}

func (q CheckAvailabilityQuery) Key() string { return CheckAvailabilityKey }

type CheckAvailabilityHandler struct {
	UoWFactory uow.UoWFactory
	Checker    policies.AvailabilityPort
	Logger     *slog.Logger
}

// Handle never reports unparseable or inverted dates as an error; they yield
// an unavailable result with reason invalid_dates.
func (h *CheckAvailabilityHandler) Handle(ctx context.Context, q CheckAvailabilityQuery) (dto.Availability, error) {
	out := dto.Availability{PropertyID: q.PropertyID, CheckIn: q.CheckIn, CheckOut: q.CheckOut}
	dr, err := daterange.Parse(q.CheckIn, q.CheckOut)
	if err != nil {
		h.logger().WarnContext(ctx, "availability check rejected dates",
			"property_id", q.PropertyID,
			"check_in", q.CheckIn,
			"check_out", q.CheckOut,
			"error", err,
		)
		out.Reason = string(domainavailability.ReasonInvalidDates)
		return out, nil
	}

	unit, ctx, done, err := support.ReadUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Availability{}, err
	}
	defer done()

	id := domainproperties.PropertyID(q.PropertyID)
	bookings, err := unit.Bookings().ForProperty(ctx, id, dr)
	if err != nil {
		return dto.Availability{}, err
	}
	res, err := h.checker().Check(id, dr, bookings)
	if err != nil {
		out.Reason = string(domainavailability.ReasonInvalidDates)
		return out, nil
	}
	out.Available = res.Available
	out.Reason = string(res.Reason)
	out.Conflicts = dto.MapConflicts(res.Conflicts)
	return out, nil
}

func (h *CheckAvailabilityHandler) checker() policies.AvailabilityPort {
	if h.Checker != nil {
		return h.Checker
	}
	return &domainavailability.Checker{Logger: h.Logger}
}

func (h *CheckAvailabilityHandler) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}

var _ queries.Handler[CheckAvailabilityQuery, dto.Availability] = (*CheckAvailabilityHandler)(nil)
