package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jualbuku/bookmart-backend/pkg/db/models"
	"github.com/jualbuku/bookmart-backend/pkg/enums"
	pkgerrors "github.com/jualbuku/bookmart-backend/pkg/errors"
	"github.com/jualbuku/bookmart-backend/pkg/logger"
	"github.com/jualbuku/bookmart-backend/pkg/pagination"
	"gorm.io/gorm"
)

type fakeRepo struct {
	rows map[uuid.UUID]*models.Notification
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: map[uuid.UUID]*models.Notification{}}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	n.ID = uuid.New()
	n.CreatedAt = time.Now()
	f.rows[n.ID] = n
	return n, nil
}

func (f *fakeRepo) Find(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	if n, ok := f.rows[id]; ok {
		return n, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) List(ctx context.Context, userID uuid.UUID, params pagination.Params, unreadOnly bool) (*NotificationList, error) {
	list := &NotificationList{}
	for _, n := range f.rows {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.ReadAt != nil {
			continue
		}
		list.Notifications = append(list.Notifications, *n)
	}
	return list, nil
}

func (f *fakeRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	for _, n := range f.rows {
		if n.UserID == userID && n.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) MarkRead(ctx context.Context, userID, id uuid.UUID, at time.Time) (int64, error) {
	n, ok := f.rows[id]
	if !ok || n.UserID != userID || n.ReadAt != nil {
		return 0, nil
	}
	n.ReadAt = &at
	return 1, nil
}

func (f *fakeRepo) MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	var affected int64
	for _, n := range f.rows {
		if n.UserID == userID && n.ReadAt == nil {
			n.ReadAt = &at
			affected++
		}
	}
	return affected, nil
}

func (f *fakeRepo) Delete(ctx context.Context, userID, id uuid.UUID) (int64, error) {
	n, ok := f.rows[id]
	if !ok || n.UserID != userID {
		return 0, nil
	}
	delete(f.rows, id)
	return 1, nil
}

func (f *fakeRepo) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var affected int64
	for id, n := range f.rows {
		if n.ReadAt != nil && n.CreatedAt.Before(cutoff) {
			delete(f.rows, id)
			affected++
		}
	}
	return affected, nil
}

type fakePublisher struct {
	published map[string][]any
	err       error
}

func (f *fakePublisher) Publish(ctx context.Context, channel string, payload any) error {
	if f.err != nil {
		return f.err
	}
	if f.published == nil {
		f.published = map[string][]any{}
	}
	f.published[channel] = append(f.published[channel], payload)
	return nil
}

func (f *fakePublisher) NotificationChannel(userID string) string {
	return "bm:notify:" + userID
}

func newTestService(t *testing.T, repo Repository, pub livePublisher) Service {
	t.Helper()
	svc, err := NewService(repo, pub, logger.New(logger.Options{}))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if appErr.Code() != code {
		t.Fatalf("expected code %s, got %s", code, appErr.Code())
	}
}

func TestNotifyStoresAndPublishes(t *testing.T) {
	repo := newFakeRepo()
	pub := &fakePublisher{}
	svc := newTestService(t, repo, pub)
	userID := uuid.New()

	err := svc.Notify(context.Background(), NotifyInput{
		UserID:  userID,
		Type:    enums.NotificationTypeOrderUpdate,
		Title:   "Order paid",
		Message: "Order BM-123 was marked paid.",
	})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(repo.rows) != 1 {
		t.Fatalf("expected 1 stored notification, got %d", len(repo.rows))
	}
	channel := pub.NotificationChannel(userID.String())
	if len(pub.published[channel]) != 1 {
		t.Fatalf("expected 1 published payload, got %d", len(pub.published[channel]))
	}
}

func TestNotifySurvivesPublishFailure(t *testing.T) {
	repo := newFakeRepo()
	pub := &fakePublisher{err: context.DeadlineExceeded}
	svc := newTestService(t, repo, pub)

	err := svc.Notify(context.Background(), NotifyInput{
		UserID: uuid.New(),
		Type:   enums.NotificationTypeSystemAnnouncement,
		Title:  "Maintenance",
	})
	if err != nil {
		t.Fatalf("Notify should tolerate publish failure: %v", err)
	}
	if len(repo.rows) != 1 {
		t.Fatal("expected durable row despite publish failure")
	}
}

func TestNotifyValidation(t *testing.T) {
	svc := newTestService(t, newFakeRepo(), nil)
	ctx := context.Background()

	err := svc.Notify(ctx, NotifyInput{Type: enums.NotificationTypeOrderUpdate, Title: "x"})
	assertCode(t, err, pkgerrors.CodeValidation)

	err = svc.Notify(ctx, NotifyInput{UserID: uuid.New(), Type: "carrier_pigeon", Title: "x"})
	assertCode(t, err, pkgerrors.CodeValidation)

	err = svc.Notify(ctx, NotifyInput{UserID: uuid.New(), Type: enums.NotificationTypeOrderUpdate})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestMarkReadIsIdempotent(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo, nil)
	ctx := context.Background()
	userID := uuid.New()

	n, _ := repo.Create(ctx, &models.Notification{
		UserID: userID,
		Type:   enums.NotificationTypeOrderUpdate,
		Title:  "Order update",
	})

	if err := svc.MarkRead(ctx, userID, n.ID); err != nil {
		t.Fatalf("first MarkRead: %v", err)
	}
	first := *repo.rows[n.ID].ReadAt

	time.Sleep(5 * time.Millisecond)
	if err := svc.MarkRead(ctx, userID, n.ID); err != nil {
		t.Fatalf("second MarkRead: %v", err)
	}
	if !repo.rows[n.ID].ReadAt.Equal(first) {
		t.Fatal("second MarkRead must not advance the read timestamp")
	}
}

func TestMarkReadRejectsForeignNotification(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo, nil)
	ctx := context.Background()

	n, _ := repo.Create(ctx, &models.Notification{
		UserID: uuid.New(),
		Type:   enums.NotificationTypeOrderUpdate,
		Title:  "Order update",
	})

	err := svc.MarkRead(ctx, uuid.New(), n.ID)
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestMarkAllRead(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo, nil)
	ctx := context.Background()
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		repo.Create(ctx, &models.Notification{
			UserID: userID,
			Type:   enums.NotificationTypeOrderUpdate,
			Title:  "Order update",
		})
	}
	repo.Create(ctx, &models.Notification{
		UserID: uuid.New(),
		Type:   enums.NotificationTypeOrderUpdate,
		Title:  "Someone else's",
	})

	affected, err := svc.MarkAllRead(ctx, userID)
	if err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	if affected != 3 {
		t.Fatalf("expected 3 rows marked, got %d", affected)
	}

	count, err := svc.UnreadCount(ctx, userID)
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no unread rows, got %d", count)
	}
}

func TestDeleteScopedToOwner(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo, nil)
	ctx := context.Background()
	userID := uuid.New()

	n, _ := repo.Create(ctx, &models.Notification{
		UserID: userID,
		Type:   enums.NotificationTypeOrderUpdate,
		Title:  "Order update",
	})

	err := svc.Delete(ctx, uuid.New(), n.ID)
	assertCode(t, err, pkgerrors.CodeNotFound)

	if err := svc.Delete(ctx, userID, n.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(repo.rows) != 0 {
		t.Fatal("expected row deleted")
	}
}
