// Package clock converts between wall-clock text and minutes since midnight.
package clock

import (
	"fmt"
	"strconv"
	"strings"

	appErrors "github.com/siakad-go/room-booking-api/pkg/errors"
)

// MinutesPerDay is the upper bound (exclusive end) for interval minutes.
const MinutesPerDay = 24 * 60

// ParseClock converts "HH:MM" or "HH:MM:SS" into minutes since midnight.
// Seconds are accepted for compatibility with legacy clients and discarded.
func ParseClock(raw string) (int, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, appErrors.Clone(appErrors.ErrInvalidTimeFormat, fmt.Sprintf("invalid time %q", raw))
	}

	fields := make([]int, len(parts))
	for i, part := range parts {
		if len(part) != 2 {
			return 0, appErrors.Clone(appErrors.ErrInvalidTimeFormat, fmt.Sprintf("invalid time %q", raw))
		}
		value, err := strconv.Atoi(part)
		if err != nil {
			return 0, appErrors.Wrap(err, appErrors.ErrInvalidTimeFormat.Code, appErrors.ErrInvalidTimeFormat.Status, fmt.Sprintf("invalid time %q", raw))
		}
		fields[i] = value
	}

	hour, minute := fields[0], fields[1]
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, appErrors.Clone(appErrors.ErrInvalidTimeRange, fmt.Sprintf("time %q out of range", raw))
	}
	if len(fields) == 3 {
		if second := fields[2]; second < 0 || second > 59 {
			return 0, appErrors.Clone(appErrors.ErrInvalidTimeRange, fmt.Sprintf("time %q out of range", raw))
		}
	}

	return hour*60 + minute, nil
}

// FormatMinutes renders minutes since midnight as "HH:MM".
func FormatMinutes(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
