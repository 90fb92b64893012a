package orders

import (
	"context"

	pkgerrors "github.com/jimmynenos/ordering-backend/pkg/errors"

	"github.com/jimmynenos/ordering-backend/internal/session"
	"github.com/jimmynenos/ordering-backend/pkg/logger"
	"github.com/jimmynenos/ordering-backend/pkg/metrics"
)

// Result pairs the locally confirmed order with the remote submission
// outcome. Submitted false never invalidates the order itself.
type Result struct {
	Order     *CompletedOrder
	Submitted bool
}

// Finalizer turns a session checkout into a CompletedOrder and hands it to
// the submitter. The session's cart is cleared before submission is even
// attempted; an unreachable order desk must not leave the conversation
// stuck with a cart that was already read back to the customer as placed.
type Finalizer struct {
	submitter Submitter
	logg      *logger.Logger
	metrics   *metrics.OrderingMetrics
}

func NewFinalizer(submitter Submitter, logg *logger.Logger, m *metrics.OrderingMetrics) (*Finalizer, error) {
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "finalizer requires a logger")
	}
	return &Finalizer{
		submitter: submitter,
		logg:      logg,
		metrics:   m,
	}, nil
}

// Finalize checks the session's checkout preconditions, snapshots and
// resets it, then submits. Precondition failures come back as errors with
// the session untouched; submission failures only flip Result.Submitted.
func (f *Finalizer) Finalize(ctx context.Context, sess *session.Session) (*Result, error) {
	checkout, err := sess.Checkout()
	if err != nil {
		return nil, err
	}

	order := newCompletedOrder(checkout)
	ctx = f.logg.WithOrderID(ctx, order.OrderID)

	submitted := false
	if f.submitter != nil {
		if err := f.submitter.Submit(ctx, order); err != nil {
			f.logg.Warn(f.logg.WithField(ctx, "submit_error", err.Error()),
				"order confirmed locally, remote submission failed")
		} else {
			submitted = true
		}
		f.metrics.IncSubmission(submitted)
	}

	f.logg.Info(f.logg.WithFields(ctx, map[string]any{
		"session_id": order.SessionID,
		"total":      order.Total.StringFixed(2),
		"lines":      len(order.Lines),
		"submitted":  submitted,
	}), "order finalized")

	return &Result{Order: order, Submitted: submitted}, nil
}
