package calendarfile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/meetplan/internal/domain/meeting"
	"github.com/example/meetplan/internal/internaltypes"
)

const calendarOne = `{
   "working_hours": {"start": "09:00", "end": "20:00"},
   "planned_meeting": [
      {"start": "09:00", "end": "10:30"},
      {"start": "12:00", "end": "13:00"},
      {"start": "16:00", "end": "18:30"}
   ]
}`

const calendarTwo = `{
   "working_hours": {"start": "10:00", "end": "18:30"},
   "planned_meeting": [
      {"start": "10:00", "end": "11:30"},
      {"start": "12:30", "end": "14:30"},
      {"start": "14:30", "end": "15:00"},
      {"start": "16:00", "end": "17:00"}
   ]
}`

func TestResolveCalendars(t *testing.T) {
	got, err := ResolveCalendars(calendarOne, calendarTwo, "[00:30]")
	if err != nil {
		t.Fatalf("ResolveCalendars: %v", err)
	}
	want := `[["11:30", "12:00"], ["15:00", "16:00"]]`
	if meeting.FormatPeriods(got) != want {
		t.Fatalf("got %s, want %s", meeting.FormatPeriods(got), want)
	}
}

func TestResolveCalendars_Errors(t *testing.T) {
	if _, err := ResolveCalendars(calendarOne, calendarTwo, "[00:00]"); !errors.Is(err, internaltypes.ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}
	if _, err := ResolveCalendars(calendarOne, "{", "[00:30]"); !errors.Is(err, internaltypes.ErrInvalidCalendar) {
		t.Fatalf("expected ErrInvalidCalendar, got %v", err)
	}
}

func TestParseJSON(t *testing.T) {
	c, err := ParseJSON(`{ "working_hours": {"start": "07:00", "end": "20:00"}, "owner": "ignored",
		"planned_meeting": [{"start": "17:00", "end": "18:00"}, {"start": "08:00", "end": "09:00"}]}`)
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if w := c.WorkingHours(); w.Start != meeting.Clock(7, 0) || w.End != meeting.Clock(20, 0) {
		t.Fatalf("unexpected working hours %s", w)
	}
	busy := c.BusyPeriods()
	if len(busy) != 2 {
		t.Fatalf("expected 2 busy periods, got %d", len(busy))
	}
	if busy[0].Start != meeting.Clock(8, 0) || busy[0].End != meeting.Clock(9, 0) {
		t.Fatalf("unexpected first busy period %s", busy[0])
	}
	if busy[1].Start != meeting.Clock(17, 0) || busy[1].End != meeting.Clock(18, 0) {
		t.Fatalf("unexpected second busy period %s", busy[1])
	}
}

func TestParseJSON_NoPlannedMeetings(t *testing.T) {
	c, err := ParseJSON(`{"working_hours": {"start": "09:00", "end": "17:00"}}`)
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if free := c.FreePeriods(); len(free) != 1 || free[0].Length() != 8*60 {
		t.Fatalf("expected whole day free, got %s", meeting.FormatPeriods(free))
	}
}

func TestParseJSON_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"malformed json", `{"working_hours":`, internaltypes.ErrInvalidCalendar},
		{"missing working hours", `{"planned_meeting": []}`, internaltypes.ErrInvalidTimeFormat},
		{"bad time", `{"working_hours": {"start": "9", "end": "17:00"}}`, internaltypes.ErrInvalidTimeFormat},
		{"inverted meeting", `{"working_hours": {"start": "09:00", "end": "17:00"},
			"planned_meeting": [{"start": "11:00", "end": "10:00"}]}`, internaltypes.ErrInvalidPeriod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSON(tt.doc)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if !errors.Is(err, internaltypes.ErrInvalidCalendar) {
				t.Fatalf("expected error to wrap ErrInvalidCalendar, got %v", err)
			}
		})
	}
}

func TestLoadCalendar(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "one.json")
	if err := os.WriteFile(path, []byte(calendarOne), 0o600); err != nil {
		t.Fatal(err)
	}
	c, err := LoadCalendar(path)
	if err != nil {
		t.Fatalf("LoadCalendar: %v", err)
	}
	if got := len(c.BusyPeriods()); got != 3 {
		t.Fatalf("expected 3 busy periods, got %d", got)
	}

	if _, err := LoadCalendar(filepath.Join(dir, "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestFormatFromPath(t *testing.T) {
	for path, want := range map[string]Format{
		"a.json":     FormatJSON,
		"a.toml":     FormatTOML,
		"dir/b.TOML": FormatTOML,
		"no-ext":     FormatJSON,
		"c.calendar": FormatJSON,
	} {
		if got := FormatFromPath(path); got != want {
			t.Errorf("FormatFromPath(%q) = %s, want %s", path, got, want)
		}
	}
}

const calendarTOML = `
[working_hours]
start = "09:00"
end = "17:00"

[[planned_meeting]]
start = "10:00"
end = "11:00"

[[planned_meeting]]
start = "12:00"
end = "13:00"
`

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		format   Format
		doc      string
		wantFree string
	}{
		{"json", FormatJSON, calendarOne, `[["10:30", "12:00"], ["13:00", "16:00"], ["18:30", "20:00"]]`},
		{"toml", FormatTOML, calendarTOML, `[["09:00", "10:00"], ["11:00", "12:00"], ["13:00", "17:00"]]`},
		{"toml without meetings", FormatTOML, "[working_hours]\nstart = \"08:00\"\nend = \"12:00\"\n", `[["08:00", "12:00"]]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Decode(strings.NewReader(tt.doc), tt.format)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			c, err := d.Calendar()
			if err != nil {
				t.Fatalf("Calendar: %v", err)
			}
			if got := meeting.FormatPeriods(c.FreePeriods()); got != tt.wantFree {
				t.Fatalf("free = %s, want %s", got, tt.wantFree)
			}
		})
	}
}

func TestDecode_MalformedTOML(t *testing.T) {
	for _, doc := range []string{
		"[working_hours\nstart = \"09:00\"\n",
		"[working_hours]\nstart = \"09:00\nend = \"17:00\"\n",
	} {
		if _, err := Decode(strings.NewReader(doc), FormatTOML); !errors.Is(err, internaltypes.ErrInvalidCalendar) {
			t.Errorf("Decode(%q) err = %v, want ErrInvalidCalendar", doc, err)
		}
	}
}

func TestLoadCalendar_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cal.toml")
	if err := os.WriteFile(path, []byte(calendarTOML), 0o600); err != nil {
		t.Fatal(err)
	}
	c, err := LoadCalendar(path)
	if err != nil {
		t.Fatalf("LoadCalendar: %v", err)
	}
	want := `[["09:00", "10:00"], ["11:00", "12:00"], ["13:00", "17:00"]]`
	if got := meeting.FormatPeriods(c.FreePeriods()); got != want {
		t.Fatalf("free = %s, want %s", got, want)
	}
}

func TestDecode_UnsupportedFormat(t *testing.T) {
	if _, err := Decode(strings.NewReader("{}"), "xml"); !errors.Is(err, internaltypes.ErrInvalidCalendar) {
		t.Fatalf("expected ErrInvalidCalendar, got %v", err)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"[00:30]", 30, false},
		{"[1:15]", 75, false},
		{"[02:00]", 120, false},
		{"00:45", 45, false},
		{" [00:05] ", 5, false},
		{"[00:00]", 0, true},
		{"[00:60]", 0, true},
		{"[0:5]", 0, true},
		{"[30]", 0, true},
		{"[:30]", 0, true},
		{"[-1:30]", 0, true},
		{"[aa:bb]", 0, true},
		{"[-0:30]", 0, true},
		{"[+1:00]", 0, true},
		{"[01:+5]", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDuration(tt.in)
		if tt.wantErr {
			if !errors.Is(err, internaltypes.ErrInvalidDuration) {
				t.Errorf("ParseDuration(%q) err = %v, want ErrInvalidDuration", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseDuration(%q) = %d, %v; want %d", tt.in, got, err, tt.want)
		}
		if back, _ := ParseDuration(FormatDuration(got)); back != got {
			t.Errorf("FormatDuration(%d) does not parse back: %q", got, FormatDuration(got))
		}
	}
}
