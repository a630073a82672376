package availability

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/homecare/homecare/pkg/timeofday"
)

// Availability maps to the availabilities table: one worker's offer of time on
// one calendar day. At most one row may exist per (worker, day).
type Availability struct {
	ID        uuid.UUID            `db:"id" json:"id"`
	WorkerID  uuid.UUID            `db:"worker_id" json:"worker_id"`
	Day       DateOnly             `db:"day" json:"day"`
	StartTime *timeofday.TimeOfDay `db:"start_time" json:"start_time,omitempty"`
	EndTime   *timeofday.TimeOfDay `db:"end_time" json:"end_time,omitempty"`
	IsBooked  bool                 `db:"is_booked" json:"is_booked"`
	CreatedAt time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt time.Time            `db:"updated_at" json:"updated_at"`
}

// UnbookedSlot enriches an availability with the worker's name and position
// for patient browsing.
type UnbookedSlot struct {
	Availability
	WorkerName     string `json:"worker_name"`
	WorkerPosition string `json:"worker_position"`
}

// DateOnly carries a calendar day: "2006-01-02" on the wire, DATE in the
// database.
type DateOnly struct {
	time.Time
}

func NewDateOnly(t time.Time) DateOnly {
	return DateOnly{time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())}
}

func (d DateOnly) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	d.Time = t
	return nil
}

func (d DateOnly) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Time, nil
}

func (d *DateOnly) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		d.Time = time.Time{}
		return nil
	case time.Time:
		d.Time = v
		return nil
	case string:
		t, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			return err
		}
		d.Time = t
		return nil
	default:
		return fmt.Errorf("cannot scan %T into DateOnly", src)
	}
}
