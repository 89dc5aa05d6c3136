// Package invite implements the join-token protocol: opaque, time-limited
// encodings of a group id and its current invite code. Tokens are unsigned;
// the defense is code entropy plus a short expiry, checked against the live
// group on every resolution.
package invite

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/clubkit/clubkit/internal/domain/group"
)

// TokenTTL bounds a token's life from issue time. Expiry is evaluated on
// every decode; a token is never cached as already-validated.
const TokenTTL = 24 * time.Hour

var (
	ErrMalformed = errors.New("malformed join token")
	ErrExpired   = errors.New("expired join token")

	// ErrSecurityMismatch marks a token whose group exists but whose invite
	// code no longer matches the group's live code. Resolution treats it as
	// not found; matching by id alone is never a valid resolution.
	ErrSecurityMismatch = errors.New("invite code does not match group")
)

// Token is a derived, ephemeral value. It is never persisted.
type Token struct {
	GroupID    string
	InviteCode string
	IssuedAt   time.Time
}

// Codec encodes and decodes join tokens. The zero clock is wall time; tests
// inject their own.
type Codec struct {
	ttl time.Duration
	now func() time.Time
}

func NewCodec() *Codec {
	return &Codec{
		ttl: TokenTTL,
		now: time.Now,
	}
}

// WithNow returns a codec reading time from now; used by tests and by
// callers that pin a clock.
func (c *Codec) WithNow(now func() time.Time) *Codec {
	return &Codec{ttl: c.ttl, now: now}
}

// Generate issues a fresh token for the group, stamped with the current
// time.
func (c *Codec) Generate(g group.Group) string {
	return c.Encode(Token{
		GroupID:    g.ID,
		InviteCode: g.InviteCode,
		IssuedAt:   c.now(),
	})
}

// Encode packs the token into a URL-safe opaque string. The payload is
// groupId:inviteCode:issuedAtEpochMillis.
func (c *Codec) Encode(t Token) string {
	payload := fmt.Sprintf("%s:%s:%d", t.GroupID, t.InviteCode, t.IssuedAt.UnixMilli())
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}

// Decode unpacks and validates a token. Structural failures yield
// ErrMalformed; a token older than the TTL yields ErrExpired.
func (c *Codec) Decode(raw string) (Token, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Token{}, errors.Wrap(ErrMalformed, "empty token")
	}

	payload, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return Token{}, errors.Mark(errors.Wrap(err, "decode token"), ErrMalformed)
	}

	parts := strings.Split(string(payload), ":")
	if len(parts) != 3 {
		return Token{}, errors.Wrapf(ErrMalformed, "expected 3 segments, got %d", len(parts))
	}
	if parts[0] == "" || parts[1] == "" {
		return Token{}, errors.Wrap(ErrMalformed, "empty group id or invite code")
	}

	issuedMillis, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return Token{}, errors.Mark(errors.Wrap(err, "parse issue time"), ErrMalformed)
	}

	t := Token{
		GroupID:    parts[0],
		InviteCode: parts[1],
		IssuedAt:   time.UnixMilli(issuedMillis),
	}

	if c.now().Sub(t.IssuedAt) > c.ttl {
		return Token{}, errors.Wrapf(ErrExpired, "issued at %s", t.IssuedAt.UTC().Format(time.RFC3339))
	}

	return t, nil
}
