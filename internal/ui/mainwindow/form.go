package mainwindow

import (
	"fmt"
	"strconv"
	"strings"

	"podium/internal/core/slots"
)

const (
	maxHours   = 23
	maxMinutes = 59
	maxSeconds = 59
)

// ParseDuration converts the hours, minutes and seconds inputs to whole
// seconds. Empty inputs count as zero.
func ParseDuration(hours, minutes, seconds string) (int64, error) {
	hrs, err := parseField(hours, maxHours)
	if err != nil {
		return 0, err
	}
	mins, err := parseField(minutes, maxMinutes)
	if err != nil {
		return 0, err
	}
	secs, err := parseField(seconds, maxSeconds)
	if err != nil {
		return 0, err
	}
	return hrs*3600 + mins*60 + secs, nil
}

// ParseInput validates the slot form and returns its title and duration.
func ParseInput(title, hours, minutes, seconds string) (string, int64, error) {
	duration, err := ParseDuration(hours, minutes, seconds)
	if err != nil {
		return "", 0, err
	}
	title = strings.TrimSpace(title)
	if err := slots.ValidateInput(title, duration); err != nil {
		return "", 0, err
	}
	return title, duration, nil
}

func parseField(value string, limit int64) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil || parsed < 0 {
		return 0, fmt.Errorf("%w: %q is not a whole number", slots.ErrInvalidDuration, value)
	}
	if parsed > limit {
		return 0, fmt.Errorf("%w: %d is above %d", slots.ErrInvalidDuration, parsed, limit)
	}
	return parsed, nil
}
