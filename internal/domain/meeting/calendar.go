package meeting

import (
	"fmt"

	"github.com/example/meetplan/internal/internaltypes"
)

// WorkingHours is the daily window in which one calendar accepts meetings.
type WorkingHours struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

func NewWorkingHours(start, end TimeOfDay) (WorkingHours, error) {
	if _, err := NewPeriod(start, end); err != nil {
		return WorkingHours{}, fmt.Errorf("working hours: %w", err)
	}
	return WorkingHours{Start: start, End: end}, nil
}

func (w WorkingHours) Period() Period {
	return Period{Start: w.Start, End: w.End}
}

func (w WorkingHours) String() string {
	return w.Period().String()
}

// Calendar is one participant's day: working hours and the periods already
// booked inside them. A Calendar is immutable once built, so it is safe to
// share between goroutines.
type Calendar struct {
	workingHours WorkingHours
	busy         []Period
}

type Option func(*calendarOptions)

type calendarOptions struct {
	mergeBusy bool
}

// WithMergedBusy collapses overlapping or touching busy periods into one
// before free time is derived. Without it, overlapping busy input is taken
// as-is and may produce free periods that are too generous.
func WithMergedBusy() Option {
	return func(o *calendarOptions) { o.mergeBusy = true }
}

// NewCalendar validates the inputs and stores a sorted copy of busy.
func NewCalendar(workingHours WorkingHours, busy []Period, opts ...Option) (*Calendar, error) {
	var o calendarOptions
	for _, opt := range opts {
		opt(&o)
	}
	if err := workingHours.Period().Validate(); err != nil {
		return nil, fmt.Errorf("%w: working hours: %w", internaltypes.ErrInvalidCalendar, err)
	}
	sorted := make([]Period, len(busy))
	for i, p := range busy {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("%w: busy period %d: %w", internaltypes.ErrInvalidCalendar, i, err)
		}
		sorted[i] = p
	}
	SortByStart(sorted)
	if o.mergeBusy {
		sorted = mergeSorted(sorted)
	}
	return &Calendar{workingHours: workingHours, busy: sorted}, nil
}

func (c *Calendar) WorkingHours() WorkingHours {
	return c.workingHours
}

// BusyPeriods returns the busy periods in ascending start order.
func (c *Calendar) BusyPeriods() []Period {
	return append([]Period(nil), c.busy...)
}

// FreePeriods returns the parts of the working hours not covered by a busy
// period, in ascending start order.
func (c *Calendar) FreePeriods() []Period {
	wh := c.workingHours
	if len(c.busy) == 0 {
		return []Period{wh.Period()}
	}

	var free []Period
	first, last := c.busy[0], c.busy[len(c.busy)-1]
	if first.Start.After(wh.Start) {
		free = append(free, Period{Start: wh.Start, End: first.Start})
	}
	for i := 0; i+1 < len(c.busy); i++ {
		prev, next := c.busy[i], c.busy[i+1]
		// overlapping neighbours leave no gap; they are not merged
		if prev.End.Before(next.Start) {
			free = append(free, Period{Start: prev.End, End: next.Start})
		}
	}
	if last.End.Before(wh.End) {
		free = append(free, Period{Start: last.End, End: wh.End})
	}
	SortByStart(free)
	return clip(free, wh.Period())
}

// clip drops the parts of free that fall outside the working hours, which
// only happens when busy periods were booked outside of them.
func clip(free []Period, wh Period) []Period {
	out := free[:0]
	for _, p := range free {
		if in, ok := p.Intersect(wh); ok && in.Length() > 0 {
			out = append(out, in)
		}
	}
	return out
}

// WorkingHoursOverlap reports whether the two working-hours windows share at
// least one instant. Windows that only touch overlap.
func (c *Calendar) WorkingHoursOverlap(other *Calendar) bool {
	return c.workingHours.Period().Overlaps(other.workingHours.Period())
}

// ProposeMeetings returns the slots in which a meeting of the given length
// (in minutes, assumed positive) fits both calendars, in ascending start
// order. It returns nil when the working hours do not overlap.
func (c *Calendar) ProposeMeetings(other *Calendar, minutes int) []Period {
	if !c.WorkingHoursOverlap(other) {
		return nil
	}
	return ProposeSlots(c.FreePeriods(), other.FreePeriods(), minutes)
}

func (c *Calendar) String() string {
	return fmt.Sprintf("%s %s", c.workingHours, FormatPeriods(c.busy))
}

func mergeSorted(ps []Period) []Period {
	if len(ps) == 0 {
		return ps
	}
	out := []Period{ps[0]}
	for _, p := range ps[1:] {
		cur := &out[len(out)-1]
		if p.Start.After(cur.End) {
			out = append(out, p)
			continue
		}
		cur.End = max(cur.End, p.End)
	}
	return out
}
