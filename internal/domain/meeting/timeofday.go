package meeting

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/example/meetplan/internal/internaltypes"
)

// TimeOfDay is a wall-clock time within a single day, in minutes past midnight.
type TimeOfDay int

const (
	minutesPerHour = 60
	minutesPerDay  = 24 * minutesPerHour

	// Grid is the granularity proposed slots are rounded to.
	Grid = 5
)

// Clock returns the TimeOfDay for hour:minute.
func Clock(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*minutesPerHour + minute)
}

// ParseTimeOfDay parses "HH:MM" (or "HH:MM:00").
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	raw := s
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) == 3 {
		if parts[2] != "00" {
			return 0, fmt.Errorf("%w: %q (seconds are not supported)", internaltypes.ErrInvalidTimeFormat, raw)
		}
		parts = parts[:2]
	}
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 || !digits(parts[0]) || !digits(parts[1]) {
		return 0, fmt.Errorf("%w: %q (want HH:MM)", internaltypes.ErrInvalidTimeFormat, raw)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: %q (bad hour)", internaltypes.ErrInvalidTimeFormat, raw)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q (bad minute)", internaltypes.ErrInvalidTimeFormat, raw)
	}
	return Clock(h, m), nil
}

func (t TimeOfDay) Hour() int   { return int(t) / minutesPerHour }
func (t TimeOfDay) Minute() int { return int(t) % minutesPerHour }

func (t TimeOfDay) Before(o TimeOfDay) bool { return t < o }
func (t TimeOfDay) After(o TimeOfDay) bool  { return t > o }

// Add returns t shifted by n minutes. The result is not wrapped at midnight.
func (t TimeOfDay) Add(minutes int) TimeOfDay {
	return t + TimeOfDay(minutes)
}

// Sub returns t-o in minutes.
func (t TimeOfDay) Sub(o TimeOfDay) int {
	return int(t - o)
}

// Valid reports whether t lies within a single day.
func (t TimeOfDay) Valid() bool {
	return t >= 0 && t < minutesPerDay
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	v, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// digits reports whether s is non-empty and made of ASCII digits only. Signs
// are rejected.
func digits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
