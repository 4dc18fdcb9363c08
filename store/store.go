// Package store is the persistence boundary for user records and
// support messages. The auth core treats it as an external
// collaborator: everything above this package works against the
// interfaces, never a concrete database.
package store

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound   = errors.New("store: not found")
	ErrEmailTaken = errors.New("store: email already in use")
)

// User is a stored account record. PasswordHash is a bcrypt hash and
// never leaves this layer in API responses.
type User struct {
	ID           int64      `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Birthdate    time.Time  `db:"birthdate" json:"birthdate"`
	IsAdmin      bool       `db:"is_admin" json:"isAdmin"`
	ProfilePhoto *string    `db:"profile_photo" json:"profilePhoto"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	ResetToken   *string    `db:"reset_token" json:"-"`
	ResetExpiry  *time.Time `db:"reset_token_expiry" json:"-"`
}

// Message is one entry in a user's support conversation.
type Message struct {
	ID         int64     `db:"id" json:"id"`
	UserID     int64     `db:"user_id" json:"userId"`
	Text       string    `db:"message_text" json:"text"`
	FromSystem bool      `db:"is_from_system" json:"isFromSystem"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// Users persists account records.
type Users interface {
	// Create inserts the user and assigns its ID. Returns
	// ErrEmailTaken when the email is already registered.
	Create(ctx context.Context, u *User) error
	ByID(ctx context.Context, id int64) (*User, error)
	ByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
	UpdatePhoto(ctx context.Context, id int64, photoURL string) error
	Delete(ctx context.Context, id int64) error

	// SetResetToken records a password reset token and its expiry for
	// the account with the given email.
	SetResetToken(ctx context.Context, email, token string, expiry time.Time) error
	// ByResetToken resolves an unexpired reset token to its account.
	ByResetToken(ctx context.Context, token string) (*User, error)
	// UpdatePassword replaces the password hash and clears any reset
	// token.
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

// Messages persists support conversations.
type Messages interface {
	ListForUser(ctx context.Context, userID int64) ([]Message, error)
	Add(ctx context.Context, m *Message) error
	DeleteForUser(ctx context.Context, userID int64) error
}
