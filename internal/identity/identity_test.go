package identity

import "testing"

const fixtureHex = "3bf0c63fcb93463407af97a5e5ee64fa883d107ef9e558472c4eb9aaaefa459d"

// TestParseHexForms verifies parse hex forms behavior.
func TestParseHexForms(t *testing.T) {
	plain, err := Parse(fixtureHex)
	if err != nil {
		t.Fatalf("Parse(plain hex) error = %v", err)
	}
	prefixed, err := Parse("0x" + fixtureHex)
	if err != nil {
		t.Fatalf("Parse(0x hex) error = %v", err)
	}
	if !plain.Equal(prefixed) {
		t.Fatalf("plain and 0x-prefixed hex parsed to different identities")
	}
	if plain.Hex() != fixtureHex {
		t.Fatalf("Hex() = %q, want %q", plain.Hex(), fixtureHex)
	}
}

// TestParseNpubMatchesHex verifies parse npub matches hex behavior.
func TestParseNpubMatchesHex(t *testing.T) {
	fromHex := MustParse(fixtureHex)
	npub, err := fromHex.Npub()
	if err != nil {
		t.Fatalf("Npub() error = %v", err)
	}
	fromNpub, err := Parse(npub)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", npub, err)
	}
	if !fromHex.Equal(fromNpub) {
		t.Fatalf("npub and hex forms parsed to different identities")
	}
}

// TestParseUppercaseHex verifies parse uppercase hex behavior.
func TestParseUppercaseHex(t *testing.T) {
	upper, err := Parse("0X" + "3BF0C63FCB93463407AF97A5E5EE64FA883D107EF9E558472C4EB9AAAEFA459D")
	if err != nil {
		t.Fatalf("Parse(uppercase) error = %v", err)
	}
	if !upper.Equal(MustParse(fixtureHex)) {
		t.Fatalf("uppercase hex parsed to a different identity")
	}
}

// TestParseRejectsMalformed verifies parse rejects malformed behavior.
func TestParseRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"not-a-key",
		"abcd",
		"npub1invalidinvalidinvalid",
		fixtureHex + "00",
	}
	for _, input := range cases {
		if _, err := Parse(input); err == nil {
			t.Fatalf("Parse(%q) expected error, got nil", input)
		}
	}
}

// TestIsZero verifies is zero behavior.
func TestIsZero(t *testing.T) {
	if !Zero.IsZero() {
		t.Fatal("Zero.IsZero() = false")
	}
	if MustParse(fixtureHex).IsZero() {
		t.Fatal("parsed identity reported as zero")
	}
}
