package entity

import (
	"time"

	"github.com/google/uuid"
)

// TwoFACode is one issued login code. Only the bcrypt hash of the 6-digit
// value is stored; the plaintext lives just long enough to be delivered.
type TwoFACode struct {
	BaseSimple
	AdminID   uuid.UUID `db:"admin_id"`
	Email     string    `db:"email"`
	CodeHash  string    `db:"code_hash"`
	ExpiresAt time.Time `db:"expires_at"`
	Consumed  bool      `db:"consumed"`
}
