package identity

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nbd-wtf/go-nostr/nip19"
)

// Size is the length of a canonical account key in bytes.
const Size = 32

// Identity is the canonical raw public key of an account. Two textual
// encodings of the same key (hex with or without 0x, bech32 npub) parse
// to the same Identity and compare equal.
type Identity [Size]byte

// Zero is the all-zero identity used as a decode sentinel.
var Zero Identity

// Parse decodes an account identity from any supported text form.
func Parse(s string) (Identity, error) {
	var id Identity
	s = strings.TrimSpace(s)
	if s == "" {
		return id, fmt.Errorf("empty identity")
	}
	if strings.HasPrefix(s, "npub1") {
		prefix, value, err := nip19.Decode(s)
		if err != nil {
			return id, fmt.Errorf("decode npub: %w", err)
		}
		if prefix != "npub" {
			return id, fmt.Errorf("unexpected bech32 prefix %q", prefix)
		}
		hexKey, ok := value.(string)
		if !ok {
			return id, fmt.Errorf("unexpected npub payload type %T", value)
		}
		s = hexKey
	}
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("decode hex identity: %w", err)
	}
	if len(raw) != Size {
		return id, fmt.Errorf("identity is %d bytes, want %d", len(raw), Size)
	}
	copy(id[:], raw)
	return id, nil
}

// MustParse is Parse for fixture values that are known to be valid.
func MustParse(s string) Identity {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// Hex returns the lowercase hex form without a 0x prefix.
func (id Identity) Hex() string {
	return hex.EncodeToString(id[:])
}

// Npub returns the bech32 npub form.
func (id Identity) Npub() (string, error) {
	return nip19.EncodePublicKey(id.Hex())
}

// Equal reports whether two identities share the same raw key.
func (id Identity) Equal(other Identity) bool {
	return id == other
}

// IsZero reports whether the identity is the decode sentinel.
func (id Identity) IsZero() bool {
	return id == Zero
}

func (id Identity) String() string {
	return id.Hex()
}

// MarshalJSON encodes the identity as its hex form.
func (id Identity) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.Hex())
}

// UnmarshalJSON accepts any supported text form.
func (id *Identity) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
