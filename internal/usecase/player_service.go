package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/clubkit/clubkit/internal/domain/group"
	"github.com/clubkit/clubkit/internal/domain/player"
	idgen "github.com/clubkit/clubkit/internal/platform/id"
	"github.com/clubkit/clubkit/internal/recordstore"
	"github.com/clubkit/clubkit/internal/replicate"
)

type CreatePlayerInput struct {
	Name    string
	GroupID string
}

type PlayerService struct {
	playerRepo player.Repository
	groupRepo  group.Repository
	idGen      idgen.Generator
	replicator replicate.Replicator
	now        func() time.Time
}

func NewPlayerService(
	playerRepo player.Repository,
	groupRepo group.Repository,
	idGen idgen.Generator,
	replicator replicate.Replicator,
) *PlayerService {
	if replicator == nil {
		replicator = replicate.Noop{}
	}
	return &PlayerService{
		playerRepo: playerRepo,
		groupRepo:  groupRepo,
		idGen:      idGen,
		replicator: replicator,
		now:        time.Now,
	}
}

// CreatePlayer registers a player, optionally directly into a group. A
// guest player carries no group at all.
func (s *PlayerService) CreatePlayer(ctx context.Context, input CreatePlayerInput) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "PlayerService.CreatePlayer")
	defer span.End()

	input.Name = strings.TrimSpace(input.Name)
	input.GroupID = strings.TrimSpace(input.GroupID)
	if input.Name == "" {
		return player.Player{}, fmt.Errorf("%w: player name is required", ErrInvalidInput)
	}

	var groupIDs []string
	if input.GroupID != "" {
		_, exists, err := s.groupRepo.GetByID(ctx, input.GroupID)
		if err != nil {
			return player.Player{}, fmt.Errorf("get group by id: %w", err)
		}
		if !exists {
			return player.Player{}, fmt.Errorf("%w: group not found", ErrNotFound)
		}
		groupIDs = []string{input.GroupID}
	}

	playerID, err := s.idGen.NewID()
	if err != nil {
		return player.Player{}, fmt.Errorf("generate player id: %w", err)
	}

	p := player.Player{
		ID:            playerID,
		Name:          input.Name,
		IsGroupMember: len(groupIDs) > 0,
		GroupIDs:      groupIDs,
		CreatedAt:     s.now().UTC(),
	}

	if err := s.playerRepo.Put(ctx, p); err != nil {
		return player.Player{}, fmt.Errorf("create player: %w", err)
	}
	s.replicator.Replicate(ctx, recordstore.CollectionPlayers, replicate.OpPut, p.ID, p)

	return p, nil
}

func (s *PlayerService) GetPlayer(ctx context.Context, playerID string) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "PlayerService.GetPlayer")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return player.Player{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}

	p, exists, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return player.Player{}, fmt.Errorf("get player by id: %w", err)
	}
	if !exists {
		return player.Player{}, fmt.Errorf("%w: player not found", ErrNotFound)
	}
	return p, nil
}

func (s *PlayerService) ListPlayers(ctx context.Context, groupID string) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "PlayerService.ListPlayers")
	defer span.End()

	groupID = strings.TrimSpace(groupID)
	if groupID == "" {
		players, err := s.playerRepo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list players: %w", err)
		}
		return players, nil
	}

	players, err := s.playerRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list players by group: %w", err)
	}
	return players, nil
}

// AddToGroup links an existing player into a group and flips the member
// flag. Adding twice is a no-op.
func (s *PlayerService) AddToGroup(ctx context.Context, playerID, groupID string) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "PlayerService.AddToGroup")
	defer span.End()

	groupID = strings.TrimSpace(groupID)
	if groupID == "" {
		return player.Player{}, fmt.Errorf("%w: group id is required", ErrInvalidInput)
	}

	p, err := s.GetPlayer(ctx, playerID)
	if err != nil {
		return player.Player{}, err
	}
	if p.InGroup(groupID) {
		return p, nil
	}

	_, exists, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return player.Player{}, fmt.Errorf("get group by id: %w", err)
	}
	if !exists {
		return player.Player{}, fmt.Errorf("%w: group not found", ErrNotFound)
	}

	p.GroupIDs = append(p.GroupIDs, groupID)
	p.IsGroupMember = true

	if err := s.playerRepo.Put(ctx, p); err != nil {
		return player.Player{}, fmt.Errorf("add player to group: %w", err)
	}
	s.replicator.Replicate(ctx, recordstore.CollectionPlayers, replicate.OpPut, p.ID, p)

	return p, nil
}

// UpdateStats replaces the player's aggregate record wholesale. Incremental
// scoring belongs to the match calculator upstream of this service.
func (s *PlayerService) UpdateStats(ctx context.Context, playerID string, stats player.Stats) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "PlayerService.UpdateStats")
	defer span.End()

	p, err := s.GetPlayer(ctx, playerID)
	if err != nil {
		return player.Player{}, err
	}
	p.Stats = stats

	if err := s.playerRepo.Put(ctx, p); err != nil {
		return player.Player{}, fmt.Errorf("update player stats: %w", err)
	}
	s.replicator.Replicate(ctx, recordstore.CollectionPlayers, replicate.OpPut, p.ID, p)

	return p, nil
}

func (s *PlayerService) DeletePlayer(ctx context.Context, playerID string) error {
	ctx, span := startUsecaseSpan(ctx, "PlayerService.DeletePlayer")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}

	if err := s.playerRepo.Delete(ctx, playerID); err != nil {
		return fmt.Errorf("delete player: %w", err)
	}
	s.replicator.Replicate(ctx, recordstore.CollectionPlayers, replicate.OpDelete, playerID, nil)

	return nil
}
