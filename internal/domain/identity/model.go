package identity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Account is the authentication identity behind a patient or care worker
// profile. The password hash never leaves the server.
type Account struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Patient maps to the patients table.
type Patient struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	AccountID uuid.UUID  `db:"account_id" json:"account_id"`
	FirstName string     `db:"first_name" json:"first_name"`
	LastName  string     `db:"last_name" json:"last_name"`
	Address   *string    `db:"address" json:"address,omitempty"`
	Phone     *string    `db:"phone" json:"phone,omitempty"`
	Email     *string    `db:"email" json:"email,omitempty"`
	BirthDate *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// CareWorker maps to the care_workers table.
type CareWorker struct {
	ID        uuid.UUID `db:"id" json:"id"`
	AccountID uuid.UUID `db:"account_id" json:"account_id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	Email     *string   `db:"email" json:"email,omitempty"`
	Position  string    `db:"position" json:"position"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// FullName is used for duplicate detection on worker creation and for
// enriching availability listings.
func (w *CareWorker) FullName() string {
	return w.FirstName + " " + w.LastName
}

// birthDate accepts bare ISO dates ("2006-01-02") in request payloads, which
// time.Time's JSON decoding rejects.
type birthDate time.Time

func (d *birthDate) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	*d = birthDate(t)
	return nil
}

func (d *birthDate) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(*d).Format("2006-01-02") + `"`), nil
}

func (d *birthDate) timePtr() *time.Time {
	t := time.Time(*d)
	return &t
}
