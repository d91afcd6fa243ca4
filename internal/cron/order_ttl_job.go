package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jualbuku/bookmart-backend/pkg/db/models"
	pkgerrors "github.com/jualbuku/bookmart-backend/pkg/errors"
	"github.com/jualbuku/bookmart-backend/pkg/logger"
	"go.uber.org/multierr"
)

const defaultCancelUnpaidAfter = 10 * 24 * time.Hour

// OrderTTLJobParams configure the unpaid order expiration job.
type OrderTTLJobParams struct {
	Logger            *logger.Logger
	UnpaidReader      unpaidOrderReader
	Canceller         orderCanceller
	CancelUnpaidAfter time.Duration
}

type unpaidOrderReader interface {
	FindUnpaidBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error)
}

type orderCanceller interface {
	SystemCancel(ctx context.Context, orderID uuid.UUID, reason string) error
}

// NewOrderTTLJob builds the cron job that cancels orders left unpaid past
// the configured window.
func NewOrderTTLJob(params OrderTTLJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.UnpaidReader == nil {
		return nil, fmt.Errorf("unpaid orders reader required")
	}
	if params.Canceller == nil {
		return nil, fmt.Errorf("order canceller required")
	}
	window := params.CancelUnpaidAfter
	if window <= 0 {
		window = defaultCancelUnpaidAfter
	}
	return &orderTTLJob{
		logg:      params.Logger,
		reader:    params.UnpaidReader,
		canceller: params.Canceller,
		window:    window,
		now:       time.Now,
	}, nil
}

type orderTTLJob struct {
	logg      *logger.Logger
	reader    unpaidOrderReader
	canceller orderCanceller
	window    time.Duration
	now       func() time.Time
}

func (j *orderTTLJob) Name() string { return "order-ttl" }

// Run cancels every order stuck in pending or awaiting_payment past the
// window. Each order is its own unit of work so one conflict does not stop
// the sweep.
func (j *orderTTLJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.window)
	stale, err := j.reader.FindUnpaidBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("query unpaid orders: %w", err)
	}

	var errs []error
	cancelled := 0
	for _, order := range stale {
		if err := j.canceller.SystemCancel(ctx, order.ID, "payment was not received in time"); err != nil {
			// A concurrent admin action may have moved the order already.
			if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeStateConflict {
				continue
			}
			errs = append(errs, fmt.Errorf("cancel order %s: %w", order.ID, err))
			continue
		}
		cancelled++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":    cutoff,
		"examined":  len(stale),
		"cancelled": cancelled,
	})
	j.logg.Info(logCtx, "unpaid order expiration loop complete")
	return multierr.Combine(errs...)
}
