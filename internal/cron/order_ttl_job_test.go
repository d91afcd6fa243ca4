package cron

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jualbuku/bookmart-backend/pkg/db/models"
	pkgerrors "github.com/jualbuku/bookmart-backend/pkg/errors"
	"github.com/jualbuku/bookmart-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard})
}

type stubUnpaidReader struct {
	orders []models.Order
	cutoff time.Time
	err    error
}

func (s *stubUnpaidReader) FindUnpaidBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error) {
	s.cutoff = cutoff
	return s.orders, s.err
}

type stubCanceller struct {
	cancelled []uuid.UUID
	fail      map[uuid.UUID]error
}

func (s *stubCanceller) SystemCancel(ctx context.Context, orderID uuid.UUID, reason string) error {
	if err, ok := s.fail[orderID]; ok {
		return err
	}
	s.cancelled = append(s.cancelled, orderID)
	return nil
}

func TestOrderTTLJobCancelsStaleOrders(t *testing.T) {
	stale := []models.Order{{ID: uuid.New()}, {ID: uuid.New()}}
	reader := &stubUnpaidReader{orders: stale}
	canceller := &stubCanceller{}

	job, err := NewOrderTTLJob(OrderTTLJobParams{
		Logger:            testLogger(),
		UnpaidReader:      reader,
		Canceller:         canceller,
		CancelUnpaidAfter: 48 * time.Hour,
	})
	if err != nil {
		t.Fatalf("NewOrderTTLJob: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(canceller.cancelled) != 2 {
		t.Fatalf("expected 2 cancellations, got %d", len(canceller.cancelled))
	}
	if time.Until(reader.cutoff) > -47*time.Hour {
		t.Fatalf("expected cutoff roughly 48h in the past, got %s", reader.cutoff)
	}
}

func TestOrderTTLJobToleratesConcurrentTransitions(t *testing.T) {
	raced := uuid.New()
	kept := uuid.New()
	reader := &stubUnpaidReader{orders: []models.Order{{ID: raced}, {ID: kept}}}
	canceller := &stubCanceller{fail: map[uuid.UUID]error{
		raced: pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed concurrently"),
	}}

	job, err := NewOrderTTLJob(OrderTTLJobParams{
		Logger:       testLogger(),
		UnpaidReader: reader,
		Canceller:    canceller,
	})
	if err != nil {
		t.Fatalf("NewOrderTTLJob: %v", err)
	}

	// A lost race is not a job failure; the rest of the sweep continues.
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(canceller.cancelled) != 1 || canceller.cancelled[0] != kept {
		t.Fatal("expected the non-raced order to still be cancelled")
	}
}

func TestOrderTTLJobAggregatesFailures(t *testing.T) {
	broken := uuid.New()
	ok := uuid.New()
	reader := &stubUnpaidReader{orders: []models.Order{{ID: broken}, {ID: ok}}}
	canceller := &stubCanceller{fail: map[uuid.UUID]error{
		broken: errors.New("db down"),
	}}

	job, err := NewOrderTTLJob(OrderTTLJobParams{
		Logger:       testLogger(),
		UnpaidReader: reader,
		Canceller:    canceller,
	})
	if err != nil {
		t.Fatalf("NewOrderTTLJob: %v", err)
	}

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected aggregated error")
	}
	if len(canceller.cancelled) != 1 || canceller.cancelled[0] != ok {
		t.Fatal("a failing order must not stop the sweep")
	}
}

func TestNewOrderTTLJobValidation(t *testing.T) {
	if _, err := NewOrderTTLJob(OrderTTLJobParams{
		UnpaidReader: &stubUnpaidReader{}, Canceller: &stubCanceller{},
	}); err == nil {
		t.Fatal("expected error without logger")
	}
	if _, err := NewOrderTTLJob(OrderTTLJobParams{
		Logger: testLogger(), Canceller: &stubCanceller{},
	}); err == nil {
		t.Fatal("expected error without reader")
	}
}
