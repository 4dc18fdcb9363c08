package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryUsers(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	u := &User{Username: "ana", Email: "a@b.com", PasswordHash: "hash", Birthdate: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)}
	if err := m.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.ID == 0 {
		t.Fatal("Create did not assign an ID")
	}
	if u.CreatedAt.IsZero() {
		t.Error("Create did not stamp created_at")
	}

	if err := m.Create(ctx, &User{Username: "other", Email: "A@B.COM"}); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate email: err = %v, want ErrEmailTaken", err)
	}

	got, err := m.ByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if got.Username != "ana" {
		t.Errorf("Username = %q, want ana", got.Username)
	}

	// Returned records are copies; mutating them must not leak back.
	got.Username = "mutated"
	again, _ := m.ByID(ctx, u.ID)
	if again.Username != "ana" {
		t.Error("ByID leaks internal state")
	}

	if _, err := m.ByEmail(ctx, "a@b.com"); err != nil {
		t.Errorf("ByEmail: %v", err)
	}
	if _, err := m.ByID(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing user: err = %v, want ErrNotFound", err)
	}

	if err := m.UpdatePhoto(ctx, u.ID, "https://img.example/a.png"); err != nil {
		t.Fatalf("UpdatePhoto: %v", err)
	}
	got, _ = m.ByID(ctx, u.ID)
	if got.ProfilePhoto == nil || *got.ProfilePhoto != "https://img.example/a.png" {
		t.Error("photo not persisted")
	}

	if err := m.Delete(ctx, u.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := m.Delete(ctx, u.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("double delete: err = %v, want ErrNotFound", err)
	}
}

func TestMemoryResetTokens(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	u := &User{Username: "ana", Email: "a@b.com", PasswordHash: "old"}
	if err := m.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := m.SetResetToken(ctx, "missing@b.com", "tok", time.Now().Add(time.Hour)); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown email: err = %v, want ErrNotFound", err)
	}

	if err := m.SetResetToken(ctx, "a@b.com", "tok", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("SetResetToken: %v", err)
	}

	got, err := m.ByResetToken(ctx, "tok")
	if err != nil {
		t.Fatalf("ByResetToken: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("resolved user %d, want %d", got.ID, u.ID)
	}

	// Expired tokens do not resolve.
	if err := m.SetResetToken(ctx, "a@b.com", "expired", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("SetResetToken: %v", err)
	}
	if _, err := m.ByResetToken(ctx, "expired"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expired token: err = %v, want ErrNotFound", err)
	}

	m.SetResetToken(ctx, "a@b.com", "tok2", time.Now().Add(time.Hour))
	if err := m.UpdatePassword(ctx, u.ID, "new"); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}
	got, _ = m.ByID(ctx, u.ID)
	if got.PasswordHash != "new" {
		t.Error("password hash not updated")
	}
	if got.ResetToken != nil {
		t.Error("reset token not cleared after password update")
	}
}

func TestMemoryMessages(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	u := &User{Username: "ana", Email: "a@b.com"}
	m.Create(ctx, u)

	for _, text := range []string{"first", "second"} {
		if err := m.Add(ctx, &Message{UserID: u.ID, Text: text}); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	m.Add(ctx, &Message{UserID: 99, Text: "someone else"})

	msgs, err := m.ListForUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("len = %d, want 2", len(msgs))
	}
	if msgs[0].Text != "first" || msgs[1].Text != "second" {
		t.Errorf("messages out of order: %+v", msgs)
	}

	if err := m.DeleteForUser(ctx, u.ID); err != nil {
		t.Fatalf("DeleteForUser: %v", err)
	}
	msgs, _ = m.ListForUser(ctx, u.ID)
	if len(msgs) != 0 {
		t.Errorf("messages not cleared, len = %d", len(msgs))
	}
	if other, _ := m.ListForUser(ctx, 99); len(other) != 1 {
		t.Error("clearing one user touched another's messages")
	}
}
