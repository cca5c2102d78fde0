package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"staydesk/internal/app/dto"
	availabilityapp "staydesk/internal/app/handlers/availability"
	domainavailability "staydesk/internal/domain/availability"
	domainproperties "staydesk/internal/domain/properties"
	"staydesk/internal/domain/shared/daterange"
)

type availabilityOptions struct {
	bookingsPath string
	propertyID   string
	checkIn      string
	checkOut     string
}

func newAvailabilityCmd() *cobra.Command {
	opts := &availabilityOptions{}
	cmd := &cobra.Command{
		Use:   "availability",
		Short: "Check a date range against booking intervals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAvailability(cmd, opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.bookingsPath, "bookings", "", "booking intervals JSON file (array)")
	flags.StringVar(&opts.propertyID, "property", "", "property id")
	flags.StringVar(&opts.checkIn, "check-in", "", "check-in date (YYYY-MM-DD)")
	flags.StringVar(&opts.checkOut, "check-out", "", "check-out date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("bookings")
	_ = cmd.MarkFlagRequired("property")
	return cmd
}

func runAvailability(cmd *cobra.Command, opts *availabilityOptions) error {
	var records []availabilityapp.RecordBookingIntervalCommand
	if err := readJSON(opts.bookingsPath, &records); err != nil {
		return err
	}
	propertyID := domainproperties.PropertyID(opts.propertyID)
	bookings := make([]domainavailability.BookingInterval, 0, len(records))
	for _, rec := range records {
		if rec.PropertyID == "" {
			rec.PropertyID = opts.propertyID
		}
		r, err := daterange.Parse(rec.CheckIn, rec.CheckOut)
		if err != nil {
			return fmt.Errorf("booking %s: %w", rec.BookingID, err)
		}
		status, err := domainavailability.ParseBookingStatus(rec.Status)
		if err != nil {
			return fmt.Errorf("booking %s: %w", rec.BookingID, err)
		}
		bookings = append(bookings, domainavailability.BookingInterval{
			BookingID:  domainavailability.BookingID(rec.BookingID),
			PropertyID: domainproperties.PropertyID(rec.PropertyID),
			Range:      r,
			Status:     status,
		})
	}

	checker := &domainavailability.Checker{Logger: cliLogger(cmd.ErrOrStderr())}
	out := cmd.OutOrStdout()
	if !checker.IsAvailable(propertyID, opts.checkIn, opts.checkOut, bookings) {
		color.New(color.FgRed, color.Bold).Fprintln(out, "unavailable")
		if r, err := daterange.Parse(opts.checkIn, opts.checkOut); err == nil {
			for _, c := range dto.MapConflicts(checker.Conflicts(propertyID, r, bookings)) {
				fmt.Fprintf(out, "  conflicts with %s (%s to %s, %s)\n", c.BookingID, c.CheckIn, c.CheckOut, c.Status)
			}
		}
	} else {
		color.New(color.FgGreen, color.Bold).Fprintln(out, "available")
	}

	window, err := daterange.Parse(opts.checkIn, opts.checkOut)
	if err != nil {
		return nil
	}
	dates := dto.FormatDates(checker.BookedDatesInRange(window, bookings))
	if len(dates) == 0 {
		fmt.Fprintln(out, "booked dates: none")
		return nil
	}
	fmt.Fprintf(out, "booked dates: %s\n", strings.Join(dates, ", "))
	return nil
}
