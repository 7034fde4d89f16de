package auth

import (
	"testing"

	"chainmeet/backend/internal/identity"
)

const testSecret = "test-secret"

// TestSessionTokenRoundTrip verifies session token round trip behavior.
func TestSessionTokenRoundTrip(t *testing.T) {
	id := identity.MustParse("3bf0c63fcb93463407af97a5e5ee64fa883d107ef9e558472c4eb9aaaefa459d")

	token, err := SignSessionToken(testSecret, id, true)
	if err != nil {
		t.Fatalf("SignSessionToken() error = %v", err)
	}

	claims, err := ParseSessionToken(testSecret, token)
	if err != nil {
		t.Fatalf("ParseSessionToken() error = %v", err)
	}
	got, err := claims.Identity()
	if err != nil {
		t.Fatalf("Identity() error = %v", err)
	}
	if !got.Equal(id) {
		t.Fatalf("Identity() = %s, want %s", got.Hex(), id.Hex())
	}
	if !claims.IsAdmin {
		t.Fatal("IsAdmin flag was dropped")
	}
}

// TestSessionTokenWrongSecret verifies session token wrong secret behavior.
func TestSessionTokenWrongSecret(t *testing.T) {
	id := identity.MustParse("3bf0c63fcb93463407af97a5e5ee64fa883d107ef9e558472c4eb9aaaefa459d")

	token, err := SignSessionToken(testSecret, id, false)
	if err != nil {
		t.Fatalf("SignSessionToken() error = %v", err)
	}
	if _, err := ParseSessionToken("other-secret", token); err == nil {
		t.Fatal("ParseSessionToken() accepted a token signed with another secret")
	}
}

// TestSessionTokenGarbage verifies session token garbage behavior.
func TestSessionTokenGarbage(t *testing.T) {
	if _, err := ParseSessionToken(testSecret, "not-a-token"); err == nil {
		t.Fatal("ParseSessionToken() accepted garbage")
	}
}
