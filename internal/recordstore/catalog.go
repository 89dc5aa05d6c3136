package recordstore

import (
	"strconv"

	"github.com/clubkit/clubkit/internal/domain/group"
	"github.com/clubkit/clubkit/internal/domain/invitation"
	"github.com/clubkit/clubkit/internal/domain/match"
	"github.com/clubkit/clubkit/internal/domain/player"
	"github.com/clubkit/clubkit/internal/domain/setting"
	"github.com/clubkit/clubkit/internal/domain/user"
)

const (
	CollectionUsers       = "users"
	CollectionGroups      = "groups"
	CollectionPlayers     = "players"
	CollectionMatches     = "matches"
	CollectionInvitations = "invitations"
	CollectionSettings    = "settings"
)

const (
	IndexGroupsByInviteCode = "byInviteCode"
	IndexGroupsByCreator    = "byCreatedBy"
	IndexPlayersByGroup     = "byGroup"
	IndexPlayersByMember    = "byGroupMember"
	IndexMatchesByGroup     = "byGroup"
	IndexMatchesByStatus    = "byStatus"
	IndexInvitationsByGroup = "byGroup"
	IndexInvitationsByState = "byStatus"
)

// Catalog declares every collection the store knows about. Migration is
// computed against this catalog: missing collections and indexes are created,
// stale indexes are rebuilt, and nothing outside the catalog is touched.
func Catalog() []CollectionSpec {
	return []CollectionSpec{
		{
			Name:   CollectionUsers,
			Decode: decodeAs[user.User],
		},
		{
			Name: CollectionGroups,
			Indexes: []IndexSpec{
				{Name: IndexGroupsByInviteCode, Keys: func(r Record) []string {
					g, ok := r.(group.Group)
					if !ok {
						return nil
					}
					return []string{g.InviteCode}
				}},
				{Name: IndexGroupsByCreator, Keys: func(r Record) []string {
					g, ok := r.(group.Group)
					if !ok {
						return nil
					}
					return []string{g.CreatedBy}
				}},
			},
			Decode: decodeAs[group.Group],
		},
		{
			Name: CollectionPlayers,
			Indexes: []IndexSpec{
				{Name: IndexPlayersByGroup, Keys: func(r Record) []string {
					p, ok := r.(player.Player)
					if !ok {
						return nil
					}
					return p.GroupIDs
				}},
				{Name: IndexPlayersByMember, Keys: func(r Record) []string {
					p, ok := r.(player.Player)
					if !ok {
						return nil
					}
					return []string{strconv.FormatBool(p.IsGroupMember)}
				}},
			},
			Decode: decodeAs[player.Player],
		},
		{
			Name: CollectionMatches,
			Indexes: []IndexSpec{
				{Name: IndexMatchesByGroup, Keys: func(r Record) []string {
					m, ok := r.(match.Match)
					if !ok {
						return nil
					}
					return []string{m.GroupID}
				}},
				{Name: IndexMatchesByStatus, Keys: func(r Record) []string {
					m, ok := r.(match.Match)
					if !ok {
						return nil
					}
					return []string{string(m.Status)}
				}},
			},
			Decode: decodeAs[match.Match],
		},
		{
			Name: CollectionInvitations,
			Indexes: []IndexSpec{
				{Name: IndexInvitationsByGroup, Keys: func(r Record) []string {
					i, ok := r.(invitation.Invitation)
					if !ok {
						return nil
					}
					return []string{i.GroupID}
				}},
				{Name: IndexInvitationsByState, Keys: func(r Record) []string {
					i, ok := r.(invitation.Invitation)
					if !ok {
						return nil
					}
					return []string{string(i.Status)}
				}},
			},
			Decode: decodeAs[invitation.Invitation],
		},
		{
			Name:   CollectionSettings,
			Decode: decodeAs[setting.Setting],
		},
	}
}
