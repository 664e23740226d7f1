package entity

// Admin is the administrator account record. This service only ever reads
// it; accounts are provisioned out of band.
type Admin struct {
	Base
	Email        string  `db:"email"`
	PasswordHash string  `db:"password_hash"`
	Phone        *string `db:"phone"`
	IsActive     bool    `db:"is_active"`
}
