package invite

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/clubkit/clubkit/internal/domain/group"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewCode draws a random invite code of the fixed group length. Uniqueness
// across groups is enforced by the caller against live groups.
func NewCode() (string, error) {
	buf := make([]byte, group.InviteCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes for invite code: %w", err)
	}

	out := make([]byte, len(buf))
	for i, b := range buf {
		out[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(out), nil
}

// NormalizeCode maps hand-entered input onto canonical code form: trimmed
// and upper-cased.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
