package timeofday

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a clock time within a single day, stored as microseconds
// since midnight. It maps to a PostgreSQL TIME column and serializes as
// "HH:mm:ss" in JSON.
type TimeOfDay int64

const (
	Midnight     TimeOfDay = 0
	microsPerSec           = int64(time.Second / time.Microsecond)
	secsPerDay             = 24 * 60 * 60
)

// Parse accepts "HH:mm" or "HH:mm:ss".
func Parse(s string) (TimeOfDay, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	var secs int64
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, fmt.Errorf("invalid time of day %q", s)
		}
		limit := 60
		if i == 0 {
			limit = 24
		}
		if n < 0 || n >= limit {
			return 0, fmt.Errorf("invalid time of day %q", s)
		}
		switch i {
		case 0:
			secs += int64(n) * 3600
		case 1:
			secs += int64(n) * 60
		case 2:
			secs += int64(n)
		}
	}
	return TimeOfDay(secs * microsPerSec), nil
}

// ParseOptional returns nil for an empty or unparsable string. Callers that
// treat bad input as "field absent" (partial update payloads) use this form.
func ParseOptional(s string) *TimeOfDay {
	if s == "" {
		return nil
	}
	t, err := Parse(s)
	if err != nil {
		return nil
	}
	return &t
}

func (t TimeOfDay) String() string {
	secs := int64(t) / microsPerSec
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs/60)%60, secs%60)
}

// Microseconds returns the value as microseconds since midnight, the wire
// representation pgx uses for TIME columns.
func (t TimeOfDay) Microseconds() int64 { return int64(t) }

// FromMicroseconds builds a TimeOfDay from a TIME column value.
func FromMicroseconds(us int64) TimeOfDay { return TimeOfDay(us) }

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		*t = 0
		return nil
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value implements driver.Valuer so the type binds directly as a TIME
// parameter.
func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String(), nil
}

// Scan implements sql.Scanner for TIME columns. pgx presents TIME either as a
// string or as time.Time depending on the codec in play.
func (t *TimeOfDay) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = 0
		return nil
	case string:
		parsed, err := Parse(v)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case time.Time:
		*t = TimeOfDay(int64(v.Hour()*3600+v.Minute()*60+v.Second()) * microsPerSec)
		return nil
	case int64:
		if v < 0 || v >= secsPerDay*microsPerSec {
			return fmt.Errorf("time of day out of range: %d", v)
		}
		*t = TimeOfDay(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into TimeOfDay", src)
	}
}
