package daterange

import (
	"errors"
	"testing"
	"time"
)

func date(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNewRejectsEmptyAndReversedRanges(t *testing.T) {
	cases := []struct {
		name     string
		in, out  time.Time
		wantErr  error
		wantNite int
	}{
		{name: "valid", in: date("2025-01-05"), out: date("2025-01-08"), wantNite: 3},
		{name: "same day", in: date("2025-01-05"), out: date("2025-01-05"), wantErr: ErrInvalidRange},
		{name: "reversed", in: date("2025-01-08"), out: date("2025-01-05"), wantErr: ErrInvalidRange},
		{name: "zero", wantErr: ErrInvalidRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dr, err := New(tc.in, tc.out)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected error %v, got %v", tc.wantErr, err)
			}
			if tc.wantErr == nil && dr.NightCount() != tc.wantNite {
				t.Fatalf("expected %d nights, got %d", tc.wantNite, dr.NightCount())
			}
		})
	}
}

func TestNewTruncatesToCalendarDays(t *testing.T) {
	in := time.Date(2025, 3, 1, 15, 0, 0, 0, time.UTC)
	out := time.Date(2025, 3, 3, 11, 0, 0, 0, time.UTC)
	dr, err := New(in, out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dr.NightCount() != 2 {
		t.Fatalf("expected 2 nights, got %d", dr.NightCount())
	}
	if !dr.CheckIn.Equal(date("2025-03-01")) {
		t.Fatalf("check-in not truncated: %v", dr.CheckIn)
	}
}

func TestParseReportsInvalidInput(t *testing.T) {
	if _, err := Parse("2025-13-40", "2025-01-02"); !errors.Is(err, ErrInvalidDateInput) {
		t.Fatalf("expected ErrInvalidDateInput, got %v", err)
	}
	if _, err := Parse("", "2025-01-02"); !errors.Is(err, ErrInvalidDateInput) {
		t.Fatalf("expected ErrInvalidDateInput for empty value, got %v", err)
	}
	if _, err := Parse("2025-01-02", "2025-01-01"); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
	dr, err := Parse("2025-01-01T10:00:00Z", "2025-01-02")
	if err != nil {
		t.Fatalf("rfc3339 input rejected: %v", err)
	}
	if dr.NightCount() != 1 {
		t.Fatalf("expected 1 night, got %d", dr.NightCount())
	}
}

func TestNightsYieldsAscendingDatesExcludingCheckout(t *testing.T) {
	dr, _ := New(date("2025-02-27"), date("2025-03-02"))
	var got []string
	for d := range dr.Nights() {
		got = append(got, d.Format(DateLayout))
	}
	want := []string{"2025-02-27", "2025-02-28", "2025-03-01"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestOverlapsIsHalfOpenAndSymmetric(t *testing.T) {
	a, _ := New(date("2025-01-05"), date("2025-01-10"))
	adjacent, _ := New(date("2025-01-10"), date("2025-01-12"))
	inner, _ := New(date("2025-01-06"), date("2025-01-07"))
	if a.Overlaps(adjacent) || adjacent.Overlaps(a) {
		t.Fatalf("adjacent ranges must not overlap")
	}
	if !a.Adjacent(adjacent) {
		t.Fatalf("expected ranges to be adjacent")
	}
	if !a.Overlaps(inner) || !inner.Overlaps(a) {
		t.Fatalf("contained range must overlap both ways")
	}
}

func TestIntersect(t *testing.T) {
	a, _ := New(date("2025-01-05"), date("2025-01-10"))
	b, _ := New(date("2025-01-08"), date("2025-01-15"))
	got, ok := a.Intersect(b)
	if !ok {
		t.Fatalf("expected intersection")
	}
	if got.String() != "2025-01-08/2025-01-10" {
		t.Fatalf("unexpected intersection %s", got)
	}
	c, _ := New(date("2025-02-01"), date("2025-02-02"))
	if _, ok := a.Intersect(c); ok {
		t.Fatalf("disjoint ranges must not intersect")
	}
}
