package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// Memory is an in-process store used in development and tests. A
// single mutex guards both tables; contention is irrelevant at that
// scale.
type Memory struct {
	mu       sync.Mutex
	users    map[int64]*User
	messages map[int64][]Message
	nextUser int64
	nextMsg  int64
	now      func() time.Time
}

var (
	_ Users    = (*Memory)(nil)
	_ Messages = (*Memory)(nil)
)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:    make(map[int64]*User),
		messages: make(map[int64][]Message),
		nextUser: 1,
		nextMsg:  1,
		now:      time.Now,
	}
}

func (m *Memory) Create(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrEmailTaken
		}
	}

	u.ID = m.nextUser
	m.nextUser++
	if u.CreatedAt.IsZero() {
		u.CreatedAt = m.now()
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *Memory) ByID(_ context.Context, id int64) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *Memory) ByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) List(_ context.Context) ([]User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	users := make([]User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (m *Memory) UpdatePhoto(_ context.Context, id int64, photoURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.ProfilePhoto = &photoURL
	return nil
}

func (m *Memory) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	delete(m.messages, id)
	return nil
}

func (m *Memory) SetResetToken(_ context.Context, email, token string, expiry time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			u.ResetToken = &token
			u.ResetExpiry = &expiry
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) ByResetToken(_ context.Context, token string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.ResetToken != nil && *u.ResetToken == token &&
			u.ResetExpiry != nil && u.ResetExpiry.After(m.now()) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.ResetToken = nil
	u.ResetExpiry = nil
	return nil
}

func (m *Memory) ListForUser(_ context.Context, userID int64) ([]Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	msgs := m.messages[userID]
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (m *Memory) Add(_ context.Context, msg *Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	msg.ID = m.nextMsg
	m.nextMsg++
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = m.now()
	}
	m.messages[msg.UserID] = append(m.messages[msg.UserID], *msg)
	return nil
}

func (m *Memory) DeleteForUser(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.messages, userID)
	return nil
}
