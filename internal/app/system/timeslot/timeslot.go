// Package timeslot parses and compares wall-clock time ranges.
//
// Availability slots and requested session times are stored as "HH:MM"
// strings. Internally a Range is a half-open interval [Start, End) measured
// in minutes since midnight, so 10:00-11:00 and 11:00-12:00 touch but do not
// overlap.
package timeslot

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the layout of requested dates.
const DateLayout = "2006-01-02"

var (
	ErrInvalidTime       = errors.New("Times must be in HH:MM format")
	ErrStartNotBeforeEnd = errors.New("Start time must be before end time")
	ErrInvalidDate       = errors.New("Dates must be in YYYY-MM-DD format")
	ErrInvalidDay        = errors.New("Day of week must be between 0 (Sunday) and 6 (Saturday)")
)

// ParseClock converts "HH:MM" into minutes since midnight.
// "24:00" is accepted as end of day.
func ParseClock(s string) (int, error) {
	s = strings.TrimSpace(s)
	hh, mm, ok := strings.Cut(s, ":")
	if !ok || len(hh) == 0 || len(hh) > 2 || len(mm) != 2 || !digits(hh) || !digits(mm) {
		return 0, ErrInvalidTime
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, ErrInvalidTime
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, ErrInvalidTime
	}
	if m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, ErrInvalidTime
	}
	return h*60 + m, nil
}

// digits reports whether s is all ASCII digits. strconv.Atoi alone allows a sign.
func digits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// FormatClock renders minutes since midnight as zero-padded "HH:MM".
func FormatClock(min int) string {
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}

// Range is a half-open interval of minutes since midnight.
type Range struct {
	Start int
	End   int
}

// Parse builds a Range from "HH:MM" strings. Start must be before end.
func Parse(start, end string) (Range, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Range{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Range{}, err
	}
	if s >= e {
		return Range{}, ErrStartNotBeforeEnd
	}
	return Range{Start: s, End: e}, nil
}

// MustParse is Parse for literals known to be valid. It panics otherwise.
func MustParse(start, end string) Range {
	r, err := Parse(start, end)
	if err != nil {
		panic(err)
	}
	return r
}

// Duration is the length of the range.
func (r Range) Duration() time.Duration {
	return time.Duration(r.End-r.Start) * time.Minute
}

// Overlaps reports whether r and o share any minute.
func (r Range) Overlaps(o Range) bool {
	return r.Start < o.End && o.Start < r.End
}

// Contains reports whether o lies entirely inside r.
func (r Range) Contains(o Range) bool {
	return r.Start <= o.Start && o.End <= r.End
}

// StartClock and EndClock render the bounds as "HH:MM".
func (r Range) StartClock() string { return FormatClock(r.Start) }
func (r Range) EndClock() string   { return FormatClock(r.End) }

func (r Range) String() string {
	return r.StartClock() + "-" + r.EndClock()
}

// OverlapsAny reports whether r overlaps any range in others.
func OverlapsAny(r Range, others []Range) bool {
	for _, o := range others {
		if r.Overlaps(o) {
			return true
		}
	}
	return false
}

// ContainedByAny reports whether some range in windows fully contains r.
func ContainedByAny(r Range, windows []Range) bool {
	for _, w := range windows {
		if w.Contains(r) {
			return true
		}
	}
	return false
}

// Subtract removes every busy range from window and returns what is left,
// sorted by start. Empty remainders are dropped.
func Subtract(window Range, busy []Range) []Range {
	sorted := make([]Range, len(busy))
	copy(sorted, busy)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var out []Range
	cur := window.Start
	for _, b := range sorted {
		if b.End <= cur || b.Start >= window.End {
			continue
		}
		if b.Start > cur {
			out = append(out, Range{Start: cur, End: b.Start})
		}
		if b.End > cur {
			cur = b.End
		}
	}
	if cur < window.End {
		out = append(out, Range{Start: cur, End: window.End})
	}
	return out
}

// ValidDay reports whether d is a weekday index (0 = Sunday).
func ValidDay(d int) bool {
	return d >= 0 && d <= 6
}

// ParseDate parses a "YYYY-MM-DD" calendar date in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// Weekday returns the day-of-week index (0 = Sunday) of a "YYYY-MM-DD" date.
func Weekday(date string) (int, error) {
	d, err := ParseDate(date, time.UTC)
	if err != nil {
		return 0, err
	}
	return int(d.Weekday()), nil
}

// At resolves a wall-clock minute on a calendar date to an absolute instant.
func At(date string, minute int, loc *time.Location) (time.Time, error) {
	d, err := ParseDate(date, loc)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), minute/60, minute%60, 0, 0, loc), nil
}

// Today returns the current calendar date in loc as "YYYY-MM-DD".
func Today(now time.Time, loc *time.Location) string {
	return now.In(loc).Format(DateLayout)
}
