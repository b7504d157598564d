package calendarfile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/example/meetplan/internal/internaltypes"
)

// ParseDuration converts a meeting duration written as "[H:MM]" into minutes.
// The brackets are optional. The result is always positive.
func ParseDuration(s string) (int, error) {
	raw := s
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")

	hh, mm, ok := strings.Cut(s, ":")
	if !ok || !digits(hh) || len(mm) != 2 || !digits(mm) {
		return 0, fmt.Errorf("%w: %q (want [HH:MM])", internaltypes.ErrInvalidDuration, raw)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 {
		return 0, fmt.Errorf("%w: %q (bad hours)", internaltypes.ErrInvalidDuration, raw)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q (bad minutes)", internaltypes.ErrInvalidDuration, raw)
	}
	total := h*60 + m
	if total <= 0 {
		return 0, fmt.Errorf("%w: %q must be positive", internaltypes.ErrInvalidDuration, raw)
	}
	return total, nil
}

// FormatDuration is the inverse of ParseDuration.
func FormatDuration(minutes int) string {
	return fmt.Sprintf("[%02d:%02d]", minutes/60, minutes%60)
}

func digits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
