package invite

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/clubkit/clubkit/internal/domain/group"
)

// ShareBuilder formats join links and share messages. Pure formatting; the
// produced token round-trips through Codec.Decode.
type ShareBuilder struct {
	origin string
	codec  *Codec
}

func NewShareBuilder(origin string, codec *Codec) ShareBuilder {
	return ShareBuilder{
		origin: strings.TrimRight(strings.TrimSpace(origin), "/"),
		codec:  codec,
	}
}

// Link builds <origin>/?join=<token>.
func (b ShareBuilder) Link(g group.Group) string {
	return b.origin + "/?join=" + url.QueryEscape(b.codec.Generate(g))
}

// Message builds the text a member pastes into a chat: the link plus the
// hand-enterable code as a fallback.
func (b ShareBuilder) Message(g group.Group) string {
	return fmt.Sprintf(
		"You're invited to join %s!\n\nTap to join: %s\n\nOr enter code %s in the app. The link is valid for 24 hours.",
		g.Name, b.Link(g), g.InviteCode,
	)
}
