package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	availabilityapp "staydesk/internal/app/handlers/availability"
	pricingapp "staydesk/internal/app/handlers/pricing"
)

// propertyFixture seeds one property through the same commands the
// projection consumer dispatches.
type propertyFixture struct {
	Profile       pricingapp.UpsertPricingProfileCommand         `json:"profile"`
	SeasonalRates []pricingapp.UpsertSeasonalRateCommand         `json:"seasonal_rates"`
	Bookings      []availabilityapp.RecordBookingIntervalCommand `json:"bookings"`
}

func (a *application) loadFixtures(ctx context.Context, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("property fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	if len(data) == 0 {
		logger.Warn("property fixtures file empty", "path", path)
		return nil
	}

	var fixtures []propertyFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}
	for _, fx := range fixtures {
		id := fx.Profile.PropertyID
		if _, err := a.commands.Dispatch(ctx, fx.Profile); err != nil {
			logger.Error("fixture profile rejected", "property_id", id, "error", err)
			continue
		}
		for _, rate := range fx.SeasonalRates {
			if rate.PropertyID == "" {
				rate.PropertyID = id
			}
			if _, err := a.commands.Dispatch(ctx, rate); err != nil {
				logger.Error("fixture seasonal rate rejected", "property_id", id, "rate_id", rate.ID, "error", err)
			}
		}
		for _, booking := range fx.Bookings {
			if booking.PropertyID == "" {
				booking.PropertyID = id
			}
			if _, err := a.commands.Dispatch(ctx, booking); err != nil {
				logger.Error("fixture booking rejected", "property_id", id, "booking_id", booking.BookingID, "error", err)
			}
		}
		logger.Info("property fixture imported", "property_id", id,
			"seasonal_rates", len(fx.SeasonalRates), "bookings", len(fx.Bookings))
	}
	return nil
}

func defaultFixturesPath() string {
	candidates := []string{
		filepath.Join("data", "properties.json"),
		filepath.Join("..", "..", "data", "properties.json"),
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return candidates[0]
}
