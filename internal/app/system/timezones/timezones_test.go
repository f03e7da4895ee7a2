package timezones

import (
	"testing"
	"time"
)

func TestValidAndLabel(t *testing.T) {
	tests := []struct {
		id    string
		valid bool
		label string
	}{
		{"America/New_York", true, "Eastern Time"},
		{"Pacific/Guam", true, "Guam"},
		{"UTC", true, "Coordinated Universal Time"},
		{"Invalid/Timezone", false, "Invalid/Timezone"},
		{"", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := Valid(tt.id); got != tt.valid {
				t.Errorf("Valid(%q) = %v, want %v", tt.id, got, tt.valid)
			}
			if got := Label(tt.id); got != tt.label {
				t.Errorf("Label(%q) = %q, want %q", tt.id, got, tt.label)
			}
		})
	}
}

func TestGroups(t *testing.T) {
	groups := Groups()
	if len(groups) == 0 || groups[0].Region != "United States" {
		t.Fatalf("groups = %+v", groups)
	}
	total := 0
	for _, g := range groups {
		total += len(g.Zones)
	}
	if total != len(All()) {
		t.Errorf("grouped %d zones, want %d", total, len(All()))
	}
}

func TestWithOffsets(t *testing.T) {
	jan := time.Date(2030, 1, 15, 12, 0, 0, 0, time.UTC)
	got := WithOffsets(jan)
	offsets := map[string]string{}
	for _, z := range got {
		offsets[z.ID] = z.UTCOffset
	}
	if offsets["America/New_York"] != "-05:00" {
		t.Errorf("New York = %q", offsets["America/New_York"])
	}
	if offsets["Asia/Tokyo"] != "+09:00" {
		t.Errorf("Tokyo = %q", offsets["Asia/Tokyo"])
	}
	if offsets["UTC"] != "+00:00" {
		t.Errorf("UTC = %q", offsets["UTC"])
	}
	if len(got) > 1 && got[0].ID != "Pacific/Pago_Pago" {
		t.Errorf("first zone = %q, want the westernmost", got[0].ID)
	}
}
