// Package calendarfile decodes calendar documents and meeting durations from
// their textual forms into domain values.
//
// A calendar document looks like
//
//	{
//	  "working_hours": {"start": "09:00", "end": "20:00"},
//	  "planned_meeting": [{"start": "09:00", "end": "10:30"}]
//	}
//
// or the equivalent TOML ([working_hours] table, [[planned_meeting]] array).
package calendarfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/midbel/toml"

	"github.com/example/meetplan/internal/domain/meeting"
	"github.com/example/meetplan/internal/internaltypes"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// PeriodText is a period as written in a document, times still unparsed.
type PeriodText struct {
	Start string `json:"start" toml:"start"`
	End   string `json:"end" toml:"end"`
}

func (p PeriodText) Period() (meeting.Period, error) {
	return meeting.ParsePeriod(p.Start, p.End)
}

type Document struct {
	WorkingHours PeriodText   `json:"working_hours" toml:"working_hours"`
	Planned      []PeriodText `json:"planned_meeting" toml:"planned_meeting"`
}

// Calendar validates the document and builds a calendar from it.
func (d Document) Calendar(opts ...meeting.Option) (*meeting.Calendar, error) {
	w, err := d.WorkingHours.Period()
	if err != nil {
		return nil, fmt.Errorf("%w: working_hours: %w", internaltypes.ErrInvalidCalendar, err)
	}
	busy := make([]meeting.Period, 0, len(d.Planned))
	for i, pt := range d.Planned {
		p, err := pt.Period()
		if err != nil {
			return nil, fmt.Errorf("%w: planned_meeting[%d]: %w", internaltypes.ErrInvalidCalendar, i, err)
		}
		busy = append(busy, p)
	}
	return meeting.NewCalendar(meeting.WorkingHours{Start: w.Start, End: w.End}, busy, opts...)
}

// Decode reads one document in the given format. Unknown keys are ignored.
func Decode(r io.Reader, format Format) (Document, error) {
	var d Document
	switch format {
	case FormatJSON, "":
		if err := json.NewDecoder(r).Decode(&d); err != nil {
			return Document{}, fmt.Errorf("%w: json: %v", internaltypes.ErrInvalidCalendar, err)
		}
	case FormatTOML:
		if err := toml.Decode(r, &d); err != nil {
			return Document{}, fmt.Errorf("%w: toml: %v", internaltypes.ErrInvalidCalendar, err)
		}
	default:
		return Document{}, fmt.Errorf("%w: unsupported format %q", internaltypes.ErrInvalidCalendar, format)
	}
	return d, nil
}

// FormatFromPath picks the document format from a file extension; anything
// that is not .toml is read as JSON.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatJSON
}

func ReadFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, err
	}
	defer f.Close()

	d, err := Decode(f, FormatFromPath(path))
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// LoadCalendar reads and validates a calendar file.
func LoadCalendar(path string, opts ...meeting.Option) (*meeting.Calendar, error) {
	d, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := d.Calendar(opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// ParseJSON decodes a JSON calendar document held in memory.
func ParseJSON(s string, opts ...meeting.Option) (*meeting.Calendar, error) {
	d, err := Decode(bytes.NewBufferString(s), FormatJSON)
	if err != nil {
		return nil, err
	}
	return d.Calendar(opts...)
}

// ResolveCalendars decodes two JSON calendars and a bracketed duration such as
// "[00:30]" and returns the meetings both calendars can attend.
func ResolveCalendars(jsonA, jsonB, duration string, opts ...meeting.Option) ([]meeting.Period, error) {
	minutes, err := ParseDuration(duration)
	if err != nil {
		return nil, err
	}
	a, err := ParseJSON(jsonA, opts...)
	if err != nil {
		return nil, fmt.Errorf("first calendar: %w", err)
	}
	b, err := ParseJSON(jsonB, opts...)
	if err != nil {
		return nil, fmt.Errorf("second calendar: %w", err)
	}
	return a.ProposeMeetings(b, minutes), nil
}
