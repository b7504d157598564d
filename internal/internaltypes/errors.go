package internaltypes

import "errors"

var (
	ErrUnauthorized = errors.New("unauthorized")

	ErrInvalidTimeFormat = errors.New("invalid time format")
	ErrInvalidPeriod     = errors.New("invalid period")
	ErrInvalidDuration   = errors.New("invalid duration")
	ErrInvalidCalendar   = errors.New("invalid calendar")
)
