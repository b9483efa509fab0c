package domain

import (
	"testing"
	"time"
)

func TestNewUserDefaults(t *testing.T) {
	before := time.Now().UTC()
	u := NewUser("alice@example.com", "hashed")
	after := time.Now().UTC()

	if u.ID != 0 {
		t.Errorf("expected zero ID before persistence, got %d", u.ID)
	}
	if u.Email != "alice@example.com" {
		t.Errorf("unexpected email: %s", u.Email)
	}
	if u.PasswordHash != "hashed" {
		t.Errorf("unexpected password hash: %s", u.PasswordHash)
	}
	if !u.IsActive {
		t.Error("new users should be active by default")
	}
	if u.CreatedAt.Before(before) || u.CreatedAt.After(after) {
		t.Errorf("CreatedAt outside expected window: %v", u.CreatedAt)
	}
	if !u.UpdatedAt.Equal(u.CreatedAt) {
		t.Errorf("UpdatedAt should equal CreatedAt on creation: %v != %v", u.UpdatedAt, u.CreatedAt)
	}
}

func TestCanAuthenticate(t *testing.T) {
	u := NewUser("bob@example.com", "hashed")
	if !u.CanAuthenticate() {
		t.Error("active user should be able to authenticate")
	}

	u.IsActive = false
	if u.CanAuthenticate() {
		t.Error("inactive user should not be able to authenticate")
	}
}
