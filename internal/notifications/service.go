package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jualbuku/bookmart-backend/pkg/db/models"
	"github.com/jualbuku/bookmart-backend/pkg/enums"
	pkgerrors "github.com/jualbuku/bookmart-backend/pkg/errors"
	"github.com/jualbuku/bookmart-backend/pkg/logger"
	"github.com/jualbuku/bookmart-backend/pkg/pagination"
	"gorm.io/gorm"
)

// livePublisher pushes notification payloads to connected clients. The
// durable row is the source of truth; the push is best effort.
type livePublisher interface {
	Publish(ctx context.Context, channel string, payload any) error
	NotificationChannel(userID string) string
}

// NotifyInput captures a single durable notification for a recipient.
type NotifyInput struct {
	UserID  uuid.UUID
	Type    enums.NotificationType
	Title   string
	Message string
}

// Service defines the in-app notification feed operations.
type Service interface {
	Notify(ctx context.Context, input NotifyInput) error
	List(ctx context.Context, userID uuid.UUID, params pagination.Params, unreadOnly bool) (*NotificationList, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type service struct {
	repo Repository
	pub  livePublisher
	logg *logger.Logger
	now  func() time.Time
}

// NewService builds the notifications service. The publisher is optional;
// without it notifications are durable-only.
func NewService(repo Repository, pub livePublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, pub: pub, logg: logg, now: time.Now}, nil
}

func (s *service) Notify(ctx context.Context, input NotifyInput) error {
	if input.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification recipient required")
	}
	if !input.Type.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid notification type").
			WithDetails(map[string]any{"type": string(input.Type)})
	}
	if strings.TrimSpace(input.Title) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification title required")
	}

	notification := &models.Notification{
		UserID:  input.UserID,
		Type:    input.Type,
		Title:   strings.TrimSpace(input.Title),
		Message: strings.TrimSpace(input.Message),
	}
	created, err := s.repo.Create(ctx, notification)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "storing notification")
	}

	s.publishLive(ctx, created)
	return nil
}

func (s *service) publishLive(ctx context.Context, notification *models.Notification) {
	if s.pub == nil {
		return
	}
	payload, err := json.Marshal(notification)
	if err != nil {
		return
	}
	channel := s.pub.NotificationChannel(notification.UserID.String())
	if err := s.pub.Publish(ctx, channel, payload); err != nil {
		// Durable row already exists; a dropped push is only a log line.
		s.logg.Warn(s.logg.WithField(ctx, "channel", channel), "notification push failed: "+err.Error())
	}
}

func (s *service) List(ctx context.Context, userID uuid.UUID, params pagination.Params, unreadOnly bool) (*NotificationList, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	list, err := s.repo.List(ctx, userID, params, unreadOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing notifications")
	}
	return list, nil
}

func (s *service) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting unread notifications")
	}
	return count, nil
}

// MarkRead is idempotent: marking an already-read notification succeeds
// without touching its original read timestamp.
func (s *service) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	affected, err := s.repo.MarkRead(ctx, userID, id, s.now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marking notification read")
	}
	if affected > 0 {
		return nil
	}

	// Distinguish "already read" (fine) from "not yours / missing".
	existing, err := s.repo.Find(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading notification")
	}
	if existing.UserID != userID {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	affected, err := s.repo.MarkAllRead(ctx, userID, s.now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marking notifications read")
	}
	return affected, nil
}

func (s *service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}
	affected, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting notification")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}
