package usecases

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/meetplan/internal/domain/meeting"
	"github.com/example/meetplan/internal/internaltypes"
)

// ProposeMeetings validates a request at the boundary and runs the slot
// search for two calendars.
type ProposeMeetings struct {
	Logger *zap.Logger
}

type Proposal struct {
	WorkingHoursOverlap bool             `json:"working_hours_overlap"`
	Minutes             int              `json:"minutes"`
	Slots               []meeting.Period `json:"proposals"`
}

func (u ProposeMeetings) Execute(ctx context.Context, a, b *meeting.Calendar, minutes int) (Proposal, error) {
	if err := ctx.Err(); err != nil {
		return Proposal{}, err
	}
	if a == nil || b == nil {
		return Proposal{}, fmt.Errorf("%w: two calendars are required", internaltypes.ErrInvalidCalendar)
	}
	if minutes <= 0 {
		return Proposal{}, fmt.Errorf("%w: %d minutes, must be positive", internaltypes.ErrInvalidDuration, minutes)
	}

	p := Proposal{
		WorkingHoursOverlap: a.WorkingHoursOverlap(b),
		Minutes:             minutes,
		Slots:               a.ProposeMeetings(b, minutes),
	}
	if p.Slots == nil {
		p.Slots = []meeting.Period{}
	}
	logger(u.Logger).Debug("meetings proposed",
		zap.Int("minutes", minutes),
		zap.Bool("working_hours_overlap", p.WorkingHoursOverlap),
		zap.Int("slots", len(p.Slots)),
	)
	return p, nil
}

type FreePeriods struct {
	Logger *zap.Logger
}

func (u FreePeriods) Execute(ctx context.Context, c *meeting.Calendar) ([]meeting.Period, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: calendar is required", internaltypes.ErrInvalidCalendar)
	}
	free := c.FreePeriods()
	if free == nil {
		free = []meeting.Period{}
	}
	logger(u.Logger).Debug("free periods computed",
		zap.Stringer("working_hours", c.WorkingHours()),
		zap.Int("free", len(free)),
	)
	return free, nil
}

func logger(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
