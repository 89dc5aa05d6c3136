package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/clubkit/clubkit/internal/backup"
	"github.com/clubkit/clubkit/internal/integrity"
	"github.com/clubkit/clubkit/internal/platform/logging"
	"github.com/clubkit/clubkit/internal/usecase"
)

type Handler struct {
	userService       *usecase.UserService
	groupService      *usecase.GroupService
	joinService       *usecase.JoinService
	playerService     *usecase.PlayerService
	matchService      *usecase.MatchService
	invitationService *usecase.InvitationService
	settingService    *usecase.SettingService
	checker           *integrity.Checker
	engine            *backup.Engine
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	userService *usecase.UserService,
	groupService *usecase.GroupService,
	joinService *usecase.JoinService,
	playerService *usecase.PlayerService,
	matchService *usecase.MatchService,
	invitationService *usecase.InvitationService,
	settingService *usecase.SettingService,
	checker *integrity.Checker,
	engine *backup.Engine,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		userService:       userService,
		groupService:      groupService,
		joinService:       joinService,
		playerService:     playerService,
		matchService:      matchService,
		invitationService: invitationService,
		settingService:    settingService,
		checker:           checker,
		engine:            engine,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type createUserRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone" validate:"omitempty,max=32"`
}

type createGroupRequest struct {
	UserID      string `json:"user_id" validate:"required"`
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

type updateGroupRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

type joinRequest struct {
	UserID     string `json:"user_id" validate:"required"`
	Token      string `json:"token" validate:"omitempty"`
	InviteCode string `json:"invite_code" validate:"omitempty,max=16"`
}

type createPlayerRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	GroupID string `json:"group_id" validate:"omitempty"`
}

type createMatchRequest struct {
	UserID      string    `json:"user_id" validate:"required"`
	HomeTeam    string    `json:"home_team" validate:"required,max=100"`
	AwayTeam    string    `json:"away_team" validate:"required,max=100"`
	Venue       string    `json:"venue" validate:"omitempty,max=200"`
	ScheduledAt time.Time `json:"scheduled_at" validate:"omitempty"`
}

type updateMatchStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=scheduled live completed abandoned"`
	Result string `json:"result" validate:"omitempty,max=200"`
}

type createInvitationRequest struct {
	InvitedBy   string `json:"invited_by" validate:"required"`
	InviteeName string `json:"invitee_name" validate:"omitempty,max=100"`
}
