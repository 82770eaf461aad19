package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func newTestPasswordService() *PasswordService {
	// MinCost keeps the bcrypt overhead out of the test run.
	return NewPasswordServiceForTest(bcrypt.MinCost)
}

func TestHashAndVerify(t *testing.T) {
	ps := newTestPasswordService()

	hash, err := ps.Hash("password123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "password123" {
		t.Fatal("Hash() returned the plaintext")
	}

	if err := ps.Verify(hash, "password123"); err != nil {
		t.Errorf("Verify() with correct password error = %v", err)
	}
	if err := ps.Verify(hash, "wrong-password"); err == nil {
		t.Error("Verify() with wrong password succeeded")
	}
}

func TestHash_SamePasswordDifferentHashes(t *testing.T) {
	ps := newTestPasswordService()

	h1, err := ps.Hash("password123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	h2, err := ps.Hash("password123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	// Each hash embeds a fresh random salt.
	if h1 == h2 {
		t.Error("two hashes of the same password are identical")
	}
}

func TestHash_RejectsOverlongPassword(t *testing.T) {
	ps := newTestPasswordService()

	if _, err := ps.Hash(strings.Repeat("x", 73)); err == nil {
		t.Error("expected error for a password longer than 72 bytes")
	}
}

func TestVerify_MalformedHash(t *testing.T) {
	ps := newTestPasswordService()

	if err := ps.Verify("not-a-bcrypt-hash", "password123"); err == nil {
		t.Error("expected error for a malformed hash")
	}
}
