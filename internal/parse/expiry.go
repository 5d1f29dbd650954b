package parse

import (
	"strconv"
	"strings"
	"time"

	apperrors "idb-pricer/internal/errors"
)

var months = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

const monthPattern = "jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec"

// ResolveExpiry resolves a month abbreviation with an optional
// two-digit year against an explicit reference date. When the year is
// omitted the nearest future occurrence of that month is used: a month
// at or before the reference month rolls into the next year. The
// resolved date is the standard monthly expiration, the third Friday.
func ResolveExpiry(monthStr, yearStr string, ref time.Time) (time.Time, error) {
	month, ok := months[strings.ToLower(monthStr)]
	if !ok {
		return time.Time{}, apperrors.NewMissingFieldError("expiry", monthStr)
	}

	var year int
	if yearStr != "" {
		yy, err := strconv.Atoi(yearStr)
		if err != nil {
			return time.Time{}, apperrors.NewMissingFieldError("expiry", monthStr+yearStr)
		}
		year = 2000 + yy
	} else {
		year = ref.Year()
		if month <= ref.Month() {
			year++
		}
	}

	return thirdFriday(year, month), nil
}

// thirdFriday returns the third Friday of the given month.
func thirdFriday(year int, month time.Month) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(time.Friday) - int(first.Weekday()) + 7) % 7
	return first.AddDate(0, 0, offset+14)
}
