package booking

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

const (
	dateTextLen = len("DD.MM.YYYY")
	timeTextLen = len("HH:MM")
)

var (
	errDateMalformed   = errors.New("enter a valid date")
	errDateNotUpcoming = errors.New("enter a valid upcoming date")
	errTimeMalformed   = errors.New("enter a valid time")
)

// FieldErrors maps a form field name to a human-readable message. The
// only contract per field is present vs absent; there are no codes.
type FieldErrors map[string]string

// NormalizeDateInput rewrites raw text into the incremental DD.MM.YYYY
// mask: non-digits are stripped, at most 8 digits are kept, and dots
// are inserted as soon as the day and month groups are complete.
// Idempotent on its own output.
func NormalizeDateInput(raw string) string {
	return mask(raw, 8, '.', 2, 4)
}

// NormalizeTimeInput is the HH:MM counterpart of NormalizeDateInput.
func NormalizeTimeInput(raw string) string {
	return mask(raw, 4, ':', 2)
}

func mask(raw string, maxDigits int, sep byte, groups ...int) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
			if digits.Len() == maxDigits {
				break
			}
		}
	}

	var out strings.Builder
	for i, d := range []byte(digits.String()) {
		for _, at := range groups {
			if i == at {
				out.WriteByte(sep)
			}
		}
		out.WriteByte(d)
	}
	return out.String()
}

// ValidateDate parses masked DD.MM.YYYY text into a calendar date. It
// rejects text of the wrong length, day/month/year combinations that
// do not name a real calendar day (31.02.2025), and dates strictly
// before now's calendar day. Time-of-day is ignored in the comparison.
func ValidateDate(text string, now time.Time) (time.Time, error) {
	if len(text) != dateTextLen {
		return time.Time{}, errDateMalformed
	}
	parts := strings.Split(text, ".")
	if len(parts) != 3 {
		return time.Time{}, errDateMalformed
	}
	day, errDay := strconv.Atoi(parts[0])
	month, errMonth := strconv.Atoi(parts[1])
	year, errYear := strconv.Atoi(parts[2])
	if errDay != nil || errMonth != nil || errYear != nil {
		return time.Time{}, errDateMalformed
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location())
	if date.Year() != year || date.Month() != time.Month(month) || date.Day() != day {
		// time.Date normalizes overflow (31.02 becomes 03.03), so a
		// changed component means the input named no real day.
		return time.Time{}, errDateNotUpcoming
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if date.Before(today) {
		return time.Time{}, errDateNotUpcoming
	}
	return date, nil
}

// ValidateTime parses masked HH:MM text into an hour and minute.
func ValidateTime(text string) (hour, minute int, err error) {
	if len(text) != timeTextLen {
		return 0, 0, errTimeMalformed
	}
	parts := strings.Split(text, ":")
	if len(parts) != 2 {
		return 0, 0, errTimeMalformed
	}
	hour, errHour := strconv.Atoi(parts[0])
	minute, errMinute := strconv.Atoi(parts[1])
	if errHour != nil || errMinute != nil {
		return 0, 0, errTimeMalformed
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, errTimeMalformed
	}
	return hour, minute, nil
}
