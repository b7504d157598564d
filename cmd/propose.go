package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/meetplan/internal/application/usecases"
	"github.com/example/meetplan/internal/domain/meeting"
	"github.com/example/meetplan/internal/infrastructure/calendarfile"
	"github.com/example/meetplan/internal/logging"
)

const (
	formatText = "text"
	formatJSON = "json"
)

func newProposeCmd() *cobra.Command {
	var (
		duration  string
		minutes   int
		mergeBusy bool
		format    string
	)

	c := &cobra.Command{
		Use:   "propose <calendarA> <calendarB>",
		Short: "Propose meeting slots that fit both calendars",
		Long: "Reads two calendar documents (.json or .toml) and prints every slot of at\n" +
			"least the requested duration that lies in both people's free time.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			logger, err := cliLogger(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			// an explicit --minutes is passed through as is, the use case rejects
			// non-positive values
			if !cmd.Flags().Changed("minutes") {
				if minutes, err = calendarfile.ParseDuration(duration); err != nil {
					return err
				}
			}

			opts := calendarOptions(mergeBusy)
			a, err := calendarfile.LoadCalendar(args[0], opts...)
			if err != nil {
				return err
			}
			b, err := calendarfile.LoadCalendar(args[1], opts...)
			if err != nil {
				return err
			}
			logger.Debug("calendars loaded",
				zap.Stringer("a", a),
				zap.Stringer("b", b),
			)

			res, err := usecases.ProposeMeetings{Logger: logger}.Execute(cmd.Context(), a, b, minutes)
			if err != nil {
				return err
			}
			if !res.WorkingHoursOverlap {
				logger.Warn("working hours do not overlap",
					zap.Stringer("a", a.WorkingHours()),
					zap.Stringer("b", b.WorkingHours()),
				)
			}
			return writeResult(cmd.OutOrStdout(), format, res, res.Slots)
		},
	}

	c.Flags().StringVar(&duration, "duration", "[00:30]", `meeting duration as "[HH:MM]"`)
	c.Flags().IntVar(&minutes, "minutes", 0, "meeting duration in minutes (overrides --duration)")
	c.Flags().BoolVar(&mergeBusy, "merge-busy", false, "merge overlapping busy periods before deriving free time")
	c.Flags().StringVar(&format, "format", formatText, "output format: text or json")
	return c
}

func newFreeCmd() *cobra.Command {
	var (
		mergeBusy bool
		format    string
	)

	c := &cobra.Command{
		Use:   "free <calendar>",
		Short: "Print the free periods of one calendar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			logger, err := cliLogger(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			cal, err := calendarfile.LoadCalendar(args[0], calendarOptions(mergeBusy)...)
			if err != nil {
				return err
			}
			free, err := usecases.FreePeriods{Logger: logger}.Execute(cmd.Context(), cal)
			if err != nil {
				return err
			}
			return writeResult(cmd.OutOrStdout(), format, map[string]any{
				"working_hours": cal.WorkingHours(),
				"free":          free,
			}, free)
		},
	}

	c.Flags().BoolVar(&mergeBusy, "merge-busy", false, "merge overlapping busy periods before deriving free time")
	c.Flags().StringVar(&format, "format", formatText, "output format: text or json")
	return c
}

func checkFormat(format string) error {
	switch format {
	case formatText, formatJSON:
		return nil
	}
	return fmt.Errorf("unknown --format %q (want text or json)", format)
}

// writeResult prints periods in the bracketed text form, or v as indented JSON.
func writeResult(w io.Writer, format string, v any, periods []meeting.Period) error {
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(w, meeting.FormatPeriods(periods))
	return err
}

func calendarOptions(mergeBusy bool) []meeting.Option {
	if mergeBusy {
		return []meeting.Option{meeting.WithMergedBusy()}
	}
	return nil
}

func cliLogger(cmd *cobra.Command) (*zap.Logger, error) {
	level := "warn"
	if f := cmd.Flag("log-level"); f != nil {
		level = f.Value.String()
	}
	return logging.New(false, level)
}
