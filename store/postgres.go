package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
)

//go:embed schema.sql
var schema string

// Postgres implements Users and Messages on a postgres database.
type Postgres struct {
	db *sqlx.DB
}

var (
	_ Users    = (*Postgres)(nil)
	_ Messages = (*Postgres)(nil)
)

// OpenPostgres connects to the database behind dsn and verifies the
// connection.
func OpenPostgres(dsn string) (*Postgres, error) {
	db, err := sqlx.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Postgres{db: db}, nil
}

// EnsureSchema creates the tables if they do not exist yet.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}

func (p *Postgres) Create(ctx context.Context, u *User) error {
	var exists bool
	err := p.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1))`, u.Email)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if exists {
		return ErrEmailTaken
	}

	err = p.db.QueryRowxContext(ctx,
		`INSERT INTO users (username, email, password_hash, birthdate, is_admin)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		u.Username, u.Email, u.PasswordHash, u.Birthdate, u.IsAdmin,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (p *Postgres) ByID(ctx context.Context, id int64) (*User, error) {
	var u User
	err := p.db.GetContext(ctx, &u, `SELECT * FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user %d: %w", id, err)
	}
	return &u, nil
}

func (p *Postgres) ByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := p.db.GetContext(ctx, &u, `SELECT * FROM users WHERE lower(email) = lower($1)`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user by email: %w", err)
	}
	return &u, nil
}

func (p *Postgres) List(ctx context.Context) ([]User, error) {
	users := []User{}
	if err := p.db.SelectContext(ctx, &users, `SELECT * FROM users ORDER BY id ASC`); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (p *Postgres) UpdatePhoto(ctx context.Context, id int64, photoURL string) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE users SET profile_photo = $1 WHERE id = $2`, photoURL, id)
	if err != nil {
		return fmt.Errorf("update photo: %w", err)
	}
	return checkAffected(res)
}

func (p *Postgres) Delete(ctx context.Context, id int64) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return checkAffected(res)
}

func (p *Postgres) SetResetToken(ctx context.Context, email, token string, expiry time.Time) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE users SET reset_token = $1, reset_token_expiry = $2 WHERE lower(email) = lower($3)`,
		token, expiry, email)
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}
	return checkAffected(res)
}

func (p *Postgres) ByResetToken(ctx context.Context, token string) (*User, error) {
	var u User
	err := p.db.GetContext(ctx, &u,
		`SELECT * FROM users WHERE reset_token = $1 AND reset_token_expiry > now()`, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user by reset token: %w", err)
	}
	return &u, nil
}

func (p *Postgres) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $1, reset_token = NULL, reset_token_expiry = NULL WHERE id = $2`,
		passwordHash, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return checkAffected(res)
}

func (p *Postgres) ListForUser(ctx context.Context, userID int64) ([]Message, error) {
	msgs := []Message{}
	err := p.db.SelectContext(ctx, &msgs,
		`SELECT id, user_id, message_text, is_from_system, created_at
		 FROM messages WHERE user_id = $1 ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

func (p *Postgres) Add(ctx context.Context, m *Message) error {
	err := p.db.QueryRowxContext(ctx,
		`INSERT INTO messages (user_id, message_text, is_from_system)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		m.UserID, m.Text, m.FromSystem,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (p *Postgres) DeleteForUser(ctx context.Context, userID int64) error {
	if _, err := p.db.ExecContext(ctx, `DELETE FROM messages WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	return nil
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
