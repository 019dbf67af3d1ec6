package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gloova-ai/gloova-backend/pkg/db/models"
	"github.com/gloova-ai/gloova-backend/pkg/enums"
	apperrors "github.com/gloova-ai/gloova-backend/pkg/errors"
	"github.com/gloova-ai/gloova-backend/pkg/pagination"
)

// Service defines notification list/read operations.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	MarkRead(ctx context.Context, profileID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, profileID uuid.UUID) (int64, error)
	Notify(ctx context.Context, profileID uuid.UUID, kind enums.NotificationType, title, message string) error
}

type service struct {
	repo Repository
}

// ListParams configures pagination for notifications.
type ListParams struct {
	ProfileID  uuid.UUID
	Limit      int
	Cursor     string
	UnreadOnly bool
}

// ListResult wraps returned notifications and the cursor for the next page.
type ListResult struct {
	Items  []models.Notification `json:"items"`
	Cursor string                `json:"cursor"`
}

// NewService wires notifications dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, apperrors.New(apperrors.CodeDependency, "notifications repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.ProfileID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "profile id required")
	}

	query := listNotificationsParams{
		ProfileID:  params.ProfileID,
		Limit:      params.Limit,
		UnreadOnly: params.UnreadOnly,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	items, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, err
	}

	result := &ListResult{Items: items}
	if next != nil {
		result.Cursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

func (s *service) MarkRead(ctx context.Context, profileID, notificationID uuid.UUID) error {
	if profileID == uuid.Nil {
		return apperrors.New(apperrors.CodeValidation, "profile id required")
	}
	if notificationID == uuid.Nil {
		return apperrors.New(apperrors.CodeValidation, "notification id required")
	}

	mark, err := s.repo.MarkRead(ctx, profileID, notificationID, time.Now().UTC())
	if err != nil {
		return err
	}
	if !mark.Found {
		return apperrors.New(apperrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, profileID uuid.UUID) (int64, error) {
	if profileID == uuid.Nil {
		return 0, apperrors.New(apperrors.CodeValidation, "profile id required")
	}
	return s.repo.MarkAllRead(ctx, profileID, time.Now().UTC())
}

func (s *service) Notify(ctx context.Context, profileID uuid.UUID, kind enums.NotificationType, title, message string) error {
	if profileID == uuid.Nil {
		return apperrors.New(apperrors.CodeValidation, "profile id required")
	}
	if !kind.IsValid() {
		return apperrors.New(apperrors.CodeValidation, "unknown notification type")
	}
	return s.repo.Create(ctx, &models.Notification{
		ID:        uuid.New(),
		ProfileID: profileID,
		Type:      kind,
		Title:     title,
		Message:   message,
	})
}
