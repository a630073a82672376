package timeofday

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"09:30", "09:30:00", true},
		{"09:30:15", "09:30:15", true},
		{"00:00", "00:00:00", true},
		{"23:59:59", "23:59:59", true},
		{"24:00", "", false},
		{"12:60", "", false},
		{"12", "", false},
		{"not-a-time", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := Parse(tc.in)
		if tc.ok && err != nil {
			t.Errorf("Parse(%q): unexpected error: %v", tc.in, err)
			continue
		}
		if !tc.ok {
			if err == nil {
				t.Errorf("Parse(%q): expected error", tc.in)
			}
			continue
		}
		if got.String() != tc.want {
			t.Errorf("Parse(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestParseOptional(t *testing.T) {
	if ParseOptional("") != nil {
		t.Error("expected nil for empty string")
	}
	if ParseOptional("garbage") != nil {
		t.Error("expected nil for unparsable string")
	}
	got := ParseOptional("14:45")
	if got == nil || got.String() != "14:45:00" {
		t.Errorf("expected 14:45:00, got %v", got)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	orig, _ := Parse("08:15:30")
	data, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `"08:15:30"` {
		t.Errorf("unexpected JSON: %s", data)
	}
	var back TimeOfDay
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if back != orig {
		t.Errorf("round trip mismatch: %v != %v", back, orig)
	}
}

func TestScan(t *testing.T) {
	var tod TimeOfDay
	if err := tod.Scan("10:00:00"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tod.String() != "10:00:00" {
		t.Errorf("expected 10:00:00, got %s", tod)
	}

	if err := tod.Scan(time.Date(2000, 1, 1, 16, 30, 0, 0, time.UTC)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tod.String() != "16:30:00" {
		t.Errorf("expected 16:30:00, got %s", tod)
	}

	if err := tod.Scan(struct{}{}); err == nil {
		t.Error("expected error for unsupported type")
	}
}

func TestOrdering(t *testing.T) {
	early, _ := Parse("08:00")
	late, _ := Parse("17:00")
	if !(early < late) {
		t.Error("expected 08:00 to sort before 17:00")
	}
	if Midnight >= early {
		t.Error("expected midnight to sort first")
	}
}
