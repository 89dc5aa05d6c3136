package invite

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/clubkit/clubkit/internal/domain/group"
)

func TestCodec_RoundTrip(t *testing.T) {
	issued := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	codec := NewCodec().WithNow(func() time.Time { return issued })

	raw := codec.Generate(group.Group{ID: "group-1", InviteCode: "AB12CD"})

	token, err := codec.Decode(raw)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if token.GroupID != "group-1" {
		t.Fatalf("unexpected group id: %s", token.GroupID)
	}
	if token.InviteCode != "AB12CD" {
		t.Fatalf("unexpected invite code: %s", token.InviteCode)
	}
	if !token.IssuedAt.Equal(issued) {
		t.Fatalf("unexpected issue time: %s", token.IssuedAt)
	}
}

func TestCodec_Expiry(t *testing.T) {
	issued := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	codec := NewCodec().WithNow(func() time.Time { return issued })
	raw := codec.Generate(group.Group{ID: "group-1", InviteCode: "AB12CD"})

	stillValid := codec.WithNow(func() time.Time { return issued.Add(23 * time.Hour) })
	if _, err := stillValid.Decode(raw); err != nil {
		t.Fatalf("token should be valid at 23h: %v", err)
	}

	expired := codec.WithNow(func() time.Time { return issued.Add(25 * time.Hour) })
	if _, err := expired.Decode(raw); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired at 25h, got %v", err)
	}
}

func TestCodec_DecodeMalformed(t *testing.T) {
	codec := NewCodec()

	cases := map[string]string{
		"empty":            "",
		"whitespace":       "   ",
		"not base64":       "!!!not-base64!!!",
		"too few parts":    base64.RawURLEncoding.EncodeToString([]byte("group-1:AB12CD")),
		"too many parts":   base64.RawURLEncoding.EncodeToString([]byte("a:b:c:d")),
		"empty group id":   base64.RawURLEncoding.EncodeToString([]byte(":AB12CD:1700000000000")),
		"empty code":       base64.RawURLEncoding.EncodeToString([]byte("group-1::1700000000000")),
		"bad issue millis": base64.RawURLEncoding.EncodeToString([]byte("group-1:AB12CD:yesterday")),
	}

	for name, raw := range cases {
		if _, err := codec.Decode(raw); !errors.Is(err, ErrMalformed) {
			t.Fatalf("%s: expected ErrMalformed, got %v", name, err)
		}
	}
}

func TestNewCode(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		code, err := NewCode()
		if err != nil {
			t.Fatalf("generate code: %v", err)
		}
		if !group.ValidInviteCode(code) {
			t.Fatalf("generated code %q is not a valid invite code", code)
		}
		seen[code] = struct{}{}
	}
	if len(seen) < 2 {
		t.Fatalf("expected some variety across 50 codes, got %d distinct", len(seen))
	}
}

func TestNormalizeCode(t *testing.T) {
	if got := NormalizeCode("  ab12cd "); got != "AB12CD" {
		t.Fatalf("unexpected normalized code: %q", got)
	}
}
