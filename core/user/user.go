package user

import (
	"database/sql"
	"time"
)

type User struct {
	ID           string       `json:"id" db:"user_id"`
	Email        string       `json:"email" db:"email"`
	PasswordHash []byte       `json:"-" db:"password_hash"`
	ResetToken   sql.NullString `json:"-" db:"reset_token"`
	ResetExpiry  sql.NullTime `json:"-" db:"reset_expiry"`
	CreatedAt    time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time    `json:"updatedAt" db:"updated_at"`
}

type UserNew struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

type UserLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
