package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/clubkit/clubkit/internal/domain/group"
	"github.com/clubkit/clubkit/internal/domain/match"
	idgen "github.com/clubkit/clubkit/internal/platform/id"
	"github.com/clubkit/clubkit/internal/recordstore"
	"github.com/clubkit/clubkit/internal/replicate"
)

type CreateMatchInput struct {
	GroupID     string
	UserID      string
	HomeTeam    string
	AwayTeam    string
	Venue       string
	ScheduledAt time.Time
}

type MatchService struct {
	matchRepo  match.Repository
	groupRepo  group.Repository
	idGen      idgen.Generator
	replicator replicate.Replicator
	now        func() time.Time
}

func NewMatchService(
	matchRepo match.Repository,
	groupRepo group.Repository,
	idGen idgen.Generator,
	replicator replicate.Replicator,
) *MatchService {
	if replicator == nil {
		replicator = replicate.Noop{}
	}
	return &MatchService{
		matchRepo:  matchRepo,
		groupRepo:  groupRepo,
		idGen:      idGen,
		replicator: replicator,
		now:        time.Now,
	}
}

func (s *MatchService) CreateMatch(ctx context.Context, input CreateMatchInput) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "MatchService.CreateMatch")
	defer span.End()

	input.GroupID = strings.TrimSpace(input.GroupID)
	input.UserID = strings.TrimSpace(input.UserID)
	input.HomeTeam = strings.TrimSpace(input.HomeTeam)
	input.AwayTeam = strings.TrimSpace(input.AwayTeam)
	if input.GroupID == "" {
		return match.Match{}, fmt.Errorf("%w: group id is required", ErrInvalidInput)
	}
	if input.UserID == "" {
		return match.Match{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.HomeTeam == "" || input.AwayTeam == "" {
		return match.Match{}, fmt.Errorf("%w: both team names are required", ErrInvalidInput)
	}

	g, exists, err := s.groupRepo.GetByID(ctx, input.GroupID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get group by id: %w", err)
	}
	if !exists {
		return match.Match{}, fmt.Errorf("%w: group not found", ErrNotFound)
	}
	if !g.HasMember(input.UserID) {
		return match.Match{}, fmt.Errorf("%w: only group members can schedule matches", ErrUnauthorized)
	}

	matchID, err := s.idGen.NewID()
	if err != nil {
		return match.Match{}, fmt.Errorf("generate match id: %w", err)
	}

	scheduledAt := input.ScheduledAt
	if scheduledAt.IsZero() {
		scheduledAt = s.now().UTC()
	}

	m := match.Match{
		ID:          matchID,
		GroupID:     input.GroupID,
		HomeTeam:    input.HomeTeam,
		AwayTeam:    input.AwayTeam,
		Venue:       strings.TrimSpace(input.Venue),
		Status:      match.StatusScheduled,
		ScheduledAt: scheduledAt,
		CreatedBy:   input.UserID,
		CreatedAt:   s.now().UTC(),
	}

	if err := s.matchRepo.Put(ctx, m); err != nil {
		return match.Match{}, fmt.Errorf("create match: %w", err)
	}
	s.replicator.Replicate(ctx, recordstore.CollectionMatches, replicate.OpPut, m.ID, m)

	return m, nil
}

func (s *MatchService) GetMatch(ctx context.Context, matchID string) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "MatchService.GetMatch")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return match.Match{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	m, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get match by id: %w", err)
	}
	if !exists {
		return match.Match{}, fmt.Errorf("%w: match not found", ErrNotFound)
	}
	return m, nil
}

func (s *MatchService) ListMatches(ctx context.Context, groupID string, status match.Status) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "MatchService.ListMatches")
	defer span.End()

	groupID = strings.TrimSpace(groupID)

	var (
		matches []match.Match
		err     error
	)
	switch {
	case groupID != "":
		matches, err = s.matchRepo.ListByGroup(ctx, groupID)
	case status != "":
		matches, err = s.matchRepo.ListByStatus(ctx, status)
	default:
		matches, err = s.matchRepo.List(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	if groupID != "" && status != "" {
		filtered := matches[:0]
		for _, m := range matches {
			if m.Status == status {
				filtered = append(filtered, m)
			}
		}
		matches = filtered
	}
	return matches, nil
}

// UpdateStatus moves a match along its lifecycle. Terminal states accept a
// result string; reopening a finished match is not allowed.
func (s *MatchService) UpdateStatus(ctx context.Context, matchID string, status match.Status, result string) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "MatchService.UpdateStatus")
	defer span.End()

	m, err := s.GetMatch(ctx, matchID)
	if err != nil {
		return match.Match{}, err
	}
	if m.Finished() {
		return match.Match{}, fmt.Errorf("%w: match already finished", ErrInvalidInput)
	}

	m.Status = status
	if m.Finished() {
		m.Result = strings.TrimSpace(result)
	}
	if err := m.Validate(); err != nil {
		return match.Match{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.matchRepo.Put(ctx, m); err != nil {
		return match.Match{}, fmt.Errorf("update match status: %w", err)
	}
	s.replicator.Replicate(ctx, recordstore.CollectionMatches, replicate.OpPut, m.ID, m)

	return m, nil
}

func (s *MatchService) DeleteMatch(ctx context.Context, matchID string) error {
	ctx, span := startUsecaseSpan(ctx, "MatchService.DeleteMatch")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	if err := s.matchRepo.Delete(ctx, matchID); err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	s.replicator.Replicate(ctx, recordstore.CollectionMatches, replicate.OpDelete, matchID, nil)

	return nil
}
