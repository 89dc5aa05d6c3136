// Package integrity scans the record store for dangling references. The
// store never enforces foreign keys, so violations are reported as data and
// left for the caller to remediate.
package integrity

import (
	"context"
	"fmt"

	"github.com/clubkit/clubkit/internal/domain/group"
	"github.com/clubkit/clubkit/internal/domain/invitation"
	"github.com/clubkit/clubkit/internal/domain/match"
	"github.com/clubkit/clubkit/internal/domain/player"
	"github.com/clubkit/clubkit/internal/domain/user"
	"github.com/clubkit/clubkit/internal/recordstore"
)

// Issue is one dangling reference.
type Issue struct {
	Collection string `json:"collection"`
	RecordID   string `json:"recordId"`
	Field      string `json:"field"`
	MissingRef string `json:"missingRef,omitempty"`
	Message    string `json:"message"`
}

// Report is the outcome of one read-only pass over all collections.
type Report struct {
	Healthy bool           `json:"healthy"`
	Issues  []Issue        `json:"issues"`
	Stats   map[string]int `json:"stats"`
}

type Checker struct {
	store *recordstore.Store
}

func NewChecker(store *recordstore.Store) *Checker {
	return &Checker{store: store}
}

// Check never mutates and never fails on a violation; only storage errors
// surface as errors.
func (c *Checker) Check(ctx context.Context) (Report, error) {
	users, err := loadAll[user.User](ctx, c.store, recordstore.CollectionUsers)
	if err != nil {
		return Report{}, err
	}
	groups, err := loadAll[group.Group](ctx, c.store, recordstore.CollectionGroups)
	if err != nil {
		return Report{}, err
	}
	players, err := loadAll[player.Player](ctx, c.store, recordstore.CollectionPlayers)
	if err != nil {
		return Report{}, err
	}
	matches, err := loadAll[match.Match](ctx, c.store, recordstore.CollectionMatches)
	if err != nil {
		return Report{}, err
	}
	invitations, err := loadAll[invitation.Invitation](ctx, c.store, recordstore.CollectionInvitations)
	if err != nil {
		return Report{}, err
	}

	userIDs := make(map[string]struct{}, len(users))
	for _, u := range users {
		userIDs[u.ID] = struct{}{}
	}
	groupIDs := make(map[string]struct{}, len(groups))
	for _, g := range groups {
		groupIDs[g.ID] = struct{}{}
	}

	var issues []Issue

	for _, g := range groups {
		if _, ok := userIDs[g.CreatedBy]; !ok {
			issues = append(issues, Issue{
				Collection: recordstore.CollectionGroups,
				RecordID:   g.ID,
				Field:      "createdBy",
				MissingRef: g.CreatedBy,
				Message:    fmt.Sprintf("group %s was created by unknown user %s", g.ID, g.CreatedBy),
			})
		}
		for _, m := range g.Members {
			if _, ok := userIDs[m.UserID]; !ok {
				issues = append(issues, Issue{
					Collection: recordstore.CollectionGroups,
					RecordID:   g.ID,
					Field:      "members.userId",
					MissingRef: m.UserID,
					Message:    fmt.Sprintf("group %s has member referencing unknown user %s", g.ID, m.UserID),
				})
			}
		}
	}

	for _, p := range players {
		if p.IsGroupMember && len(p.GroupIDs) == 0 {
			issues = append(issues, Issue{
				Collection: recordstore.CollectionPlayers,
				RecordID:   p.ID,
				Field:      "groupIds",
				Message:    fmt.Sprintf("player %s is flagged as a group member but references no group", p.ID),
			})
		}
		for _, groupID := range p.GroupIDs {
			if _, ok := groupIDs[groupID]; !ok {
				issues = append(issues, Issue{
					Collection: recordstore.CollectionPlayers,
					RecordID:   p.ID,
					Field:      "groupIds",
					MissingRef: groupID,
					Message:    fmt.Sprintf("player %s references missing group %s", p.ID, groupID),
				})
			}
		}
	}

	for _, m := range matches {
		if _, ok := groupIDs[m.GroupID]; !ok {
			issues = append(issues, Issue{
				Collection: recordstore.CollectionMatches,
				RecordID:   m.ID,
				Field:      "groupId",
				MissingRef: m.GroupID,
				Message:    fmt.Sprintf("match %s references missing group %s", m.ID, m.GroupID),
			})
		}
	}

	for _, inv := range invitations {
		if _, ok := groupIDs[inv.GroupID]; !ok {
			issues = append(issues, Issue{
				Collection: recordstore.CollectionInvitations,
				RecordID:   inv.ID,
				Field:      "groupId",
				MissingRef: inv.GroupID,
				Message:    fmt.Sprintf("invitation %s references missing group %s", inv.ID, inv.GroupID),
			})
		}
	}

	stats, err := c.store.Counts(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("collect stats: %w", err)
	}

	return Report{
		Healthy: len(issues) == 0,
		Issues:  issues,
		Stats:   stats,
	}, nil
}

func loadAll[T any](ctx context.Context, store *recordstore.Store, collection string) ([]T, error) {
	recs, err := store.GetAll(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", collection, err)
	}
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		v, ok := rec.(T)
		if !ok {
			return nil, fmt.Errorf("unexpected record type %T in %s", rec, collection)
		}
		out = append(out, v)
	}
	return out, nil
}
