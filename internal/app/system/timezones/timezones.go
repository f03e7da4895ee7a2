// Package timezones is the curated list of time zones offered when a user
// picks one for their profile. Any IANA name is accepted on save; this list
// only drives the picker.
package timezones

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

type Zone struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Region string `json:"region"`
}

type ZoneGroup struct {
	Region string `json:"region"`
	Zones  []Zone `json:"zones"`
}

// curated covers the US, its territories and the main overseas duty
// stations.
var curated = []Zone{
	{"America/New_York", "Eastern Time", "United States"},
	{"America/Chicago", "Central Time", "United States"},
	{"America/Denver", "Mountain Time", "United States"},
	{"America/Phoenix", "Arizona", "United States"},
	{"America/Los_Angeles", "Pacific Time", "United States"},
	{"America/Anchorage", "Alaska", "United States"},
	{"Pacific/Honolulu", "Hawaii", "United States"},
	{"America/Puerto_Rico", "Puerto Rico", "US Territories"},
	{"Pacific/Guam", "Guam", "US Territories"},
	{"Pacific/Pago_Pago", "American Samoa", "US Territories"},
	{"Europe/London", "United Kingdom", "Europe"},
	{"Europe/Berlin", "Germany", "Europe"},
	{"Europe/Rome", "Italy", "Europe"},
	{"Europe/Madrid", "Spain", "Europe"},
	{"Asia/Tokyo", "Japan", "Asia-Pacific"},
	{"Asia/Seoul", "South Korea", "Asia-Pacific"},
	{"Asia/Manila", "Philippines", "Asia-Pacific"},
	{"Asia/Qatar", "Qatar", "Middle East"},
	{"Asia/Bahrain", "Bahrain", "Middle East"},
	{"Asia/Kuwait", "Kuwait", "Middle East"},
	{"UTC", "Coordinated Universal Time", "Other"},
}

var (
	once   sync.Once
	byID   map[string]Zone
	groups []ZoneGroup
)

func build() {
	once.Do(func() {
		byID = make(map[string]Zone, len(curated))
		byRegion := make(map[string][]Zone)
		var order []string
		for _, z := range curated {
			byID[z.ID] = z
			if _, seen := byRegion[z.Region]; !seen {
				order = append(order, z.Region)
			}
			byRegion[z.Region] = append(byRegion[z.Region], z)
		}
		for _, region := range order {
			groups = append(groups, ZoneGroup{Region: region, Zones: byRegion[region]})
		}
	})
}

// All returns the curated zones in display order.
func All() []Zone {
	return append([]Zone(nil), curated...)
}

// Valid reports whether id is in the curated list.
func Valid(id string) bool {
	build()
	_, ok := byID[id]
	return ok
}

// Label returns the display label for id, or id itself when it is not curated.
func Label(id string) string {
	build()
	if z, ok := byID[id]; ok {
		return z.Label
	}
	return id
}

// Groups returns the curated zones grouped by region in display order.
func Groups() []ZoneGroup {
	build()
	return groups
}

// Offset is a zone's current UTC offset.
type Offset struct {
	Zone
	UTCOffset string `json:"utc_offset"` // e.g. "-05:00"
}

// WithOffsets annotates every curated zone with its offset at t, sorted
// west to east. Zones the host's tz database lacks are skipped.
func WithOffsets(t time.Time) []Offset {
	out := make([]Offset, 0, len(curated))
	secs := make(map[string]int, len(curated))
	for _, z := range curated {
		loc, err := time.LoadLocation(z.ID)
		if err != nil {
			continue
		}
		_, off := t.In(loc).Zone()
		secs[z.ID] = off
		out = append(out, Offset{Zone: z, UTCOffset: formatOffset(off)})
	}
	sort.SliceStable(out, func(i, j int) bool { return secs[out[i].ID] < secs[out[j].ID] })
	return out
}

func formatOffset(secs int) string {
	sign := '+'
	if secs < 0 {
		sign = '-'
		secs = -secs
	}
	return fmt.Sprintf("%c%02d:%02d", sign, secs/3600, (secs%3600)/60)
}
