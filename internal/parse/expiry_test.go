package parse

import (
	"testing"
	"time"

	apperrors "idb-pricer/internal/errors"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolveExpiryExplicitYear(t *testing.T) {
	ref := date(2026, time.January, 15)

	testCases := []struct {
		month string
		year  string
		want  time.Time
	}{
		{"jun", "26", date(2026, time.June, 19)},
		{"Jan", "27", date(2027, time.January, 15)},
		{"dec", "26", date(2026, time.December, 18)},
		{"SEP", "26", date(2026, time.September, 18)},
	}

	for _, tc := range testCases {
		t.Run(tc.month+tc.year, func(t *testing.T) {
			got, err := ResolveExpiry(tc.month, tc.year, ref)
			if err != nil {
				t.Fatalf("ResolveExpiry(%s, %s) error: %v", tc.month, tc.year, err)
			}
			if !got.Equal(tc.want) {
				t.Errorf("ResolveExpiry(%s, %s) = %v, want %v", tc.month, tc.year, got, tc.want)
			}
		})
	}
}

func TestResolveExpiryYearRollover(t *testing.T) {
	// A month at or before the reference month resolves to next year.
	testCases := []struct {
		name  string
		month string
		ref   time.Time
		want  time.Time
	}{
		{"future month stays in ref year", "apr", date(2026, time.January, 15), date(2026, time.April, 17)},
		{"past month rolls to next year", "may", date(2026, time.June, 15), date(2027, time.May, 21)},
		{"current month rolls to next year", "jun", date(2026, time.June, 15), date(2027, time.June, 18)},
		{"next month stays", "jul", date(2026, time.June, 15), date(2026, time.July, 17)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ResolveExpiry(tc.month, "", tc.ref)
			if err != nil {
				t.Fatalf("ResolveExpiry(%s) error: %v", tc.month, err)
			}
			if !got.Equal(tc.want) {
				t.Errorf("ResolveExpiry(%s, ref=%v) = %v, want %v", tc.month, tc.ref, got, tc.want)
			}
		})
	}
}

func TestResolveExpiryInvalidMonth(t *testing.T) {
	_, err := ResolveExpiry("xyz", "", date(2026, time.January, 15))
	if !apperrors.Is(err, apperrors.ErrMissingField) {
		t.Errorf("expected ErrMissingField for invalid month, got %v", err)
	}
}

func TestThirdFriday(t *testing.T) {
	testCases := []struct {
		year  int
		month time.Month
		day   int
	}{
		{2026, time.February, 20},
		{2026, time.March, 20},
		{2026, time.April, 17},
		{2026, time.June, 19},
		{2026, time.December, 18},
		{2027, time.January, 15},
	}

	for _, tc := range testCases {
		got := thirdFriday(tc.year, tc.month)
		if got.Day() != tc.day || got.Weekday() != time.Friday {
			t.Errorf("thirdFriday(%d, %v) = %v, want day %d", tc.year, tc.month, got, tc.day)
		}
	}
}
