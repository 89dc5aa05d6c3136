package backup

import (
	"sort"
	"time"

	"github.com/clubkit/clubkit/internal/domain/group"
	"github.com/clubkit/clubkit/internal/domain/match"
	"github.com/clubkit/clubkit/internal/domain/player"
	"github.com/clubkit/clubkit/internal/domain/user"
)

// Tier caps. The windowed tier keeps recent or still-relevant records; the
// minimal tier keeps just enough to recognize the installation.
const (
	windowedUserCap   = 50
	windowedGroupCap  = 20
	windowedPlayerCap = 200
	windowedMatchCap  = 200
	windowedMatchAge  = 30 * 24 * time.Hour
	minimalUserCap    = 5
	minimalGroupCap   = 5
)

// TierRule is one sizing tier: a named, pure reduction of the full payload.
// Tiers are evaluated in order and the first serialized result inside the
// byte budget is written.
type TierRule struct {
	Name  string
	Build func(now time.Time, full Data) Data
}

// DefaultTiers returns the descending tiers: everything, a recency window,
// then a minimal core.
func DefaultTiers() []TierRule {
	return []TierRule{
		{Name: "full", Build: buildFull},
		{Name: "windowed", Build: buildWindowed},
		{Name: "minimal", Build: buildMinimal},
	}
}

func buildFull(_ time.Time, full Data) Data {
	return full
}

func buildWindowed(now time.Time, full Data) Data {
	cutoff := now.Add(-windowedMatchAge)

	matches := make([]match.Match, 0, len(full.Matches))
	for _, m := range full.Matches {
		if m.ScheduledAt.After(cutoff) || !m.Finished() {
			matches = append(matches, m)
		}
	}
	if len(matches) > windowedMatchCap {
		matches = matches[:windowedMatchCap]
	}

	players := make([]player.Player, 0, len(full.Players))
	for _, p := range full.Players {
		if p.IsGroupMember {
			players = append(players, p)
		}
	}
	if len(players) > windowedPlayerCap {
		players = players[:windowedPlayerCap]
	}

	return Data{
		Users:    recentUsers(full.Users, windowedUserCap),
		Groups:   recentGroups(full.Groups, windowedGroupCap),
		Players:  players,
		Matches:  matches,
		Settings: full.Settings,
	}
}

func buildMinimal(_ time.Time, full Data) Data {
	return Data{
		Users:  recentUsers(full.Users, minimalUserCap),
		Groups: recentGroups(full.Groups, minimalGroupCap),
	}
}

func recentUsers(users []user.User, limit int) []user.User {
	out := make([]user.User, len(users))
	copy(out, users)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func recentGroups(groups []group.Group, limit int) []group.Group {
	out := make([]group.Group, len(groups))
	copy(out, groups)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
