package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	userID := uuid.New()

	token, err := m.IssueToken(userID)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	got, err := m.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if got != userID {
		t.Fatalf("VerifyToken = %s, want %s", got, userID)
	}
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	m := NewManager("test-secret", -time.Minute)
	token, err := m.IssueToken(uuid.New())
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if _, err := m.VerifyToken(token); err == nil {
		t.Fatal("expired token must be rejected")
	}
}

func TestVerifyTokenRejectsWrongKey(t *testing.T) {
	token, err := NewManager("secret-a", time.Hour).IssueToken(uuid.New())
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if _, err := NewManager("secret-b", time.Hour).VerifyToken(token); err == nil {
		t.Fatal("token signed with another key must be rejected")
	}
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	for _, raw := range []string{"", "not-a-token", "aaaa.bbbb.cccc"} {
		if _, err := m.VerifyToken(raw); err == nil {
			t.Fatalf("VerifyToken(%q) accepted garbage", raw)
		}
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("password stored in the clear")
	}
	if !CheckPassword(hash, "correct horse battery staple") {
		t.Fatal("correct password rejected")
	}
	if CheckPassword(hash, "wrong password") {
		t.Fatal("wrong password accepted")
	}
}
