package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/clubkit/clubkit/internal/domain/user"
	idgen "github.com/clubkit/clubkit/internal/platform/id"
	"github.com/clubkit/clubkit/internal/recordstore"
	"github.com/clubkit/clubkit/internal/replicate"
)

type CreateUserInput struct {
	Name  string
	Email string
	Phone string
}

type UserService struct {
	userRepo   user.Repository
	idGen      idgen.Generator
	replicator replicate.Replicator
	now        func() time.Time
}

func NewUserService(userRepo user.Repository, idGen idgen.Generator, replicator replicate.Replicator) *UserService {
	if replicator == nil {
		replicator = replicate.Noop{}
	}
	return &UserService{
		userRepo:   userRepo,
		idGen:      idGen,
		replicator: replicator,
		now:        time.Now,
	}
}

func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (user.User, error) {
	ctx, span := startUsecaseSpan(ctx, "UserService.CreateUser")
	defer span.End()

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return user.User{}, fmt.Errorf("%w: user name is required", ErrInvalidInput)
	}

	userID, err := s.idGen.NewID()
	if err != nil {
		return user.User{}, fmt.Errorf("generate user id: %w", err)
	}

	u := user.User{
		ID:        userID,
		Name:      input.Name,
		Email:     strings.TrimSpace(input.Email),
		Phone:     strings.TrimSpace(input.Phone),
		CreatedAt: s.now().UTC(),
	}

	if err := s.userRepo.Put(ctx, u); err != nil {
		return user.User{}, fmt.Errorf("create user: %w", err)
	}
	s.replicator.Replicate(ctx, recordstore.CollectionUsers, replicate.OpPut, u.ID, u)

	return u, nil
}

func (s *UserService) GetUser(ctx context.Context, userID string) (user.User, error) {
	ctx, span := startUsecaseSpan(ctx, "UserService.GetUser")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return user.User{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	u, exists, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return user.User{}, fmt.Errorf("get user by id: %w", err)
	}
	if !exists {
		return user.User{}, fmt.Errorf("%w: user not found", ErrNotFound)
	}
	return u, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]user.User, error) {
	ctx, span := startUsecaseSpan(ctx, "UserService.ListUsers")
	defer span.End()

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserService) UpdateUser(ctx context.Context, userID string, input CreateUserInput) (user.User, error) {
	ctx, span := startUsecaseSpan(ctx, "UserService.UpdateUser")
	defer span.End()

	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return user.User{}, err
	}

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return user.User{}, fmt.Errorf("%w: user name is required", ErrInvalidInput)
	}
	u.Name = input.Name
	u.Email = strings.TrimSpace(input.Email)
	u.Phone = strings.TrimSpace(input.Phone)

	if err := s.userRepo.Put(ctx, u); err != nil {
		return user.User{}, fmt.Errorf("update user: %w", err)
	}
	s.replicator.Replicate(ctx, recordstore.CollectionUsers, replicate.OpPut, u.ID, u)

	return u, nil
}

func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	ctx, span := startUsecaseSpan(ctx, "UserService.DeleteUser")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	s.replicator.Replicate(ctx, recordstore.CollectionUsers, replicate.OpDelete, userID, nil)

	return nil
}
