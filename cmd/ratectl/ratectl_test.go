package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"staydesk/internal/app/dto"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	color.NoColor = true
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestQuoteCommand(t *testing.T) {
	dir := t.TempDir()
	profile := writeFile(t, dir, "profile.json", `{"property_id":"villa-1","currency":"IDR","base_rate":"500000","weekend_premium_percent":"20","min_stay_weekend":3}`)
	rates := writeFile(t, dir, "rates.json", `[{"id":1,"name":"Spring","start_date":"2025-03-01","end_date":"2025-03-31","rate_type":"percentage","rate_value":"10","active":true}]`)

	stdout, stderr, err := run(t, "quote", "--profile", profile, "--rates", rates, "--check-in", "2025-03-07", "--check-out", "2025-03-09")
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	var quote dto.RateQuote
	if err := json.Unmarshal([]byte(stdout), &quote); err != nil {
		t.Fatalf("decode output: %v\n%s", err, stdout)
	}
	if quote.TotalNights != 2 || quote.SeasonalNights != 2 || quote.WeekendNights != 2 {
		t.Fatalf("unexpected quote %+v", quote)
	}
	if !strings.Contains(stderr, "WARNING") || !strings.Contains(stderr, "weekend minimum of 3") {
		t.Fatalf("expected a minimum stay warning, got %q", stderr)
	}
}

func TestQuoteCommandRejectsBadDates(t *testing.T) {
	dir := t.TempDir()
	profile := writeFile(t, dir, "profile.json", `{"property_id":"villa-1","currency":"IDR","base_rate":"500000"}`)
	if _, _, err := run(t, "quote", "--profile", profile, "--check-in", "2025-03-09", "--check-out", "2025-03-07"); err == nil {
		t.Fatalf("expected an error for an inverted range")
	}
	if _, _, err := run(t, "quote", "--profile", profile); err == nil {
		t.Fatalf("expected an error for missing flags")
	}
}

func TestAvailabilityCommand(t *testing.T) {
	dir := t.TempDir()
	bookings := writeFile(t, dir, "bookings.json", `[
		{"booking_id":"b1","check_in":"2025-06-10","check_out":"2025-06-13","status":"confirmed"},
		{"booking_id":"b2","check_in":"2025-06-15","check_out":"2025-06-16","status":"cancelled"}
	]`)

	stdout, _, err := run(t, "availability", "--bookings", bookings, "--property", "villa-1", "--check-in", "2025-06-12", "--check-out", "2025-06-16")
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if !strings.HasPrefix(stdout, "unavailable") || !strings.Contains(stdout, "conflicts with b1") || !strings.Contains(stdout, "booked dates: 2025-06-12") {
		t.Fatalf("unexpected output %q", stdout)
	}

	stdout, _, err = run(t, "availability", "--bookings", bookings, "--property", "villa-1", "--check-in", "2025-06-13", "--check-out", "2025-06-16")
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if !strings.HasPrefix(stdout, "available") || !strings.Contains(stdout, "booked dates: none") {
		t.Fatalf("unexpected output %q", stdout)
	}

	stdout, stderr, err := run(t, "availability", "--bookings", bookings, "--property", "villa-1", "--check-in", "someday", "--check-out", "2025-06-16")
	if err != nil || !strings.HasPrefix(stdout, "unavailable") || !strings.Contains(stderr, "rejected dates") {
		t.Fatalf("invalid dates must fail closed: %q %q %v", stdout, stderr, err)
	}
}
