package meeting

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/example/meetplan/internal/internaltypes"
)

// Period is a time interval within a day. Start <= End for every period built
// with NewPeriod; zero-length periods are allowed.
type Period struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

func NewPeriod(start, end TimeOfDay) (Period, error) {
	p := Period{Start: start, End: end}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// ParsePeriod builds a Period from two "HH:MM" strings.
func ParsePeriod(start, end string) (Period, error) {
	s, err := ParseTimeOfDay(start)
	if err != nil {
		return Period{}, err
	}
	e, err := ParseTimeOfDay(end)
	if err != nil {
		return Period{}, err
	}
	return NewPeriod(s, e)
}

func (p Period) Validate() error {
	if !p.Start.Valid() || !p.End.Valid() {
		return fmt.Errorf("%w: %s outside of a day", internaltypes.ErrInvalidPeriod, p)
	}
	if p.Start.After(p.End) {
		return fmt.Errorf("%w: start %s is after end %s", internaltypes.ErrInvalidPeriod, p.Start, p.End)
	}
	return nil
}

// Length is End-Start in minutes.
func (p Period) Length() int {
	return p.End.Sub(p.Start)
}

func (p Period) Duration() time.Duration {
	return time.Duration(p.Length()) * time.Minute
}

// Overlaps reports whether p and o share at least one instant. Periods that
// only touch (p.End == o.Start) overlap.
func (p Period) Overlaps(o Period) bool {
	return !(p.End.Before(o.Start) || o.End.Before(p.Start))
}

// Intersect returns the common part of p and o. ok is false when they do not
// overlap; touching periods yield a zero-length intersection.
func (p Period) Intersect(o Period) (Period, bool) {
	if !p.Overlaps(o) {
		return Period{}, false
	}
	return Period{Start: max(p.Start, o.Start), End: min(p.End, o.End)}, true
}

// RoundToGrid moves Start up and End down to the nearest 5 minute mark.
// A period shorter than the grid may come back inverted; its Length is then
// negative.
func (p Period) RoundToGrid() Period {
	start := Clock(p.Start.Hour(), (p.Start.Minute()+Grid-1)/Grid*Grid)
	end := Clock(p.End.Hour(), p.End.Minute()/Grid*Grid)
	return Period{Start: start, End: end}
}

func (p Period) String() string {
	return fmt.Sprintf("[%q, %q]", p.Start.String(), p.End.String())
}

// SortByStart orders periods by start time. Equal starts keep their order.
func SortByStart(ps []Period) {
	sort.SliceStable(ps, func(i, j int) bool {
		return ps[i].Start.Before(ps[j].Start)
	})
}

// FormatPeriods renders periods as [["HH:MM", "HH:MM"], ...].
func FormatPeriods(ps []Period) string {
	var b strings.Builder
	b.WriteString("[")
	for i, p := range ps {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteString("]")
	return b.String()
}

// ProposeSlots intersects two lists of free periods and returns one slot per
// joint window that can hold a meeting of the given length.
//
// A joint window is first rounded to the grid. If the rounded window is still
// long enough it is proposed as a whole; otherwise the slot starts at the
// unrounded joint start and lasts exactly minutes.
func ProposeSlots(freeA, freeB []Period, minutes int) []Period {
	var out []Period
	for _, a := range freeA {
		if a.Length() < minutes {
			continue
		}
		for _, b := range freeB {
			joint, ok := a.Intersect(b)
			if !ok || joint.Length() < minutes {
				continue
			}
			out = append(out, slotFor(joint, minutes))
		}
	}
	SortByStart(out)
	return out
}

func slotFor(joint Period, minutes int) Period {
	rounded := joint.RoundToGrid()
	if rounded.Length() < minutes {
		return Period{Start: joint.Start, End: joint.Start.Add(minutes)}
	}
	return rounded
}
