package timeslot

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"9:30", 570, false},
		{"23:59", 1439, false},
		{"24:00", 1440, false},
		{" 10:15 ", 615, false},
		{"24:01", 0, true},
		{"25:00", 0, true},
		{"10:60", 0, true},
		{"10", 0, true},
		{"10:5", 0, true},
		{"ab:cd", 0, true},
		{"", 0, true},
		{"-1:00", 0, true},
		{"+9:00", 0, true},
		{"-0:30", 0, true},
		{"09:+5", 0, true},
		{"٠٩:٣٠", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTime) {
					t.Fatalf("ParseClock(%q) err = %v, want ErrInvalidTime", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseClock(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseClock(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatClock(t *testing.T) {
	if got := FormatClock(570); got != "09:30" {
		t.Errorf("FormatClock(570) = %q, want %q", got, "09:30")
	}
	if got := FormatClock(0); got != "00:00" {
		t.Errorf("FormatClock(0) = %q, want %q", got, "00:00")
	}
}

func TestParse_StartMustPrecedeEnd(t *testing.T) {
	if _, err := Parse("11:00", "10:00"); !errors.Is(err, ErrStartNotBeforeEnd) {
		t.Errorf("reversed range: err = %v, want ErrStartNotBeforeEnd", err)
	}
	if _, err := Parse("10:00", "10:00"); !errors.Is(err, ErrStartNotBeforeEnd) {
		t.Errorf("empty range: err = %v, want ErrStartNotBeforeEnd", err)
	}
	r, err := Parse("10:00", "11:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Duration() != 90*time.Minute {
		t.Errorf("Duration() = %v, want 90m", r.Duration())
	}
}

func TestRange_Overlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Range
		want bool
	}{
		{"identical", MustParse("10:00", "11:00"), MustParse("10:00", "11:00"), true},
		{"touching end", MustParse("10:00", "11:00"), MustParse("11:00", "12:00"), false},
		{"touching start", MustParse("11:00", "12:00"), MustParse("10:00", "11:00"), false},
		{"partial", MustParse("10:00", "11:00"), MustParse("10:30", "11:30"), true},
		{"inside", MustParse("09:00", "17:00"), MustParse("12:00", "13:00"), true},
		{"disjoint", MustParse("08:00", "09:00"), MustParse("13:00", "14:00"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Errorf("%v.Overlaps(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Errorf("overlap should be symmetric for %v and %v", tt.a, tt.b)
			}
		})
	}
}

func TestRange_Contains(t *testing.T) {
	window := MustParse("09:00", "12:00")
	tests := []struct {
		name string
		r    Range
		want bool
	}{
		{"exact", MustParse("09:00", "12:00"), true},
		{"start aligned", MustParse("09:00", "10:00"), true},
		{"end aligned", MustParse("11:00", "12:00"), true},
		{"spills before", MustParse("08:30", "09:30"), false},
		{"spills after", MustParse("11:30", "12:30"), false},
		{"outside", MustParse("13:00", "14:00"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := window.Contains(tt.r); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.r, got, tt.want)
			}
		})
	}
}

func TestSubtract(t *testing.T) {
	window := MustParse("09:00", "17:00")

	tests := []struct {
		name string
		busy []Range
		want []Range
	}{
		{
			name: "nothing busy",
			busy: nil,
			want: []Range{window},
		},
		{
			name: "middle block",
			busy: []Range{MustParse("12:00", "13:00")},
			want: []Range{MustParse("09:00", "12:00"), MustParse("13:00", "17:00")},
		},
		{
			name: "unsorted and overlapping busy",
			busy: []Range{MustParse("15:00", "16:00"), MustParse("09:00", "10:00"), MustParse("09:30", "11:00")},
			want: []Range{MustParse("11:00", "15:00"), MustParse("16:00", "17:00")},
		},
		{
			name: "fully booked",
			busy: []Range{MustParse("08:00", "18:00")},
			want: nil,
		},
		{
			name: "busy outside window ignored",
			busy: []Range{MustParse("06:00", "07:00"), MustParse("18:00", "19:00")},
			want: []Range{window},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Subtract(window, tt.busy)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Subtract() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWeekday(t *testing.T) {
	// 2026-10-14 is a Wednesday.
	got, err := Weekday("2026-10-14")
	if err != nil {
		t.Fatalf("Weekday failed: %v", err)
	}
	if got != int(time.Wednesday) {
		t.Errorf("Weekday = %d, want %d", got, time.Wednesday)
	}

	if _, err := Weekday("14/10/2026"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("bad date: err = %v, want ErrInvalidDate", err)
	}
}

func TestAt(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	got, err := At("2026-07-04", 14*60+30, loc)
	if err != nil {
		t.Fatalf("At failed: %v", err)
	}
	want := time.Date(2026, 7, 4, 18, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("At = %v, want %v", got.UTC(), want)
	}
}
