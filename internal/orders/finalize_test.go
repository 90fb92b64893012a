package orders

import (
	"context"
	"io"
	"regexp"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jimmynenos/ordering-backend/internal/menu"
	"github.com/jimmynenos/ordering-backend/internal/session"
	pkgerrors "github.com/jimmynenos/ordering-backend/pkg/errors"
	"github.com/jimmynenos/ordering-backend/pkg/logger"
	"github.com/jimmynenos/ordering-backend/pkg/metrics"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{
		ServiceName: "test",
		Level:       zerolog.Disabled,
		Output:      io.Discard,
	})
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func colaItem() *menu.Item {
	return &menu.Item{
		ID:        "31",
		Name:      "Cola",
		Category:  "Drinks",
		BasePrice: price("12.00"),
	}
}

type staticResolver map[menu.ItemID]*menu.Item

func (r staticResolver) ItemByID(id menu.ItemID) *menu.Item {
	return r[id]
}

type stubSubmitter struct {
	err    error
	orders []*CompletedOrder
}

func (s *stubSubmitter) Submit(_ context.Context, order *CompletedOrder) error {
	s.orders = append(s.orders, order)
	return s.err
}

func readySession(t *testing.T) *session.Session {
	t.Helper()
	sess := session.New("sess-1", staticResolver{"31": colaItem()})
	_, err := sess.AddItem(colaItem(), "", 2, nil)
	require.NoError(t, err)
	sess.SetCustomer("Sam", "")
	return sess
}

func TestNewOrderID(t *testing.T) {
	pattern := regexp.MustCompile(`^order_[0-9a-f]{8}$`)
	assert.Regexp(t, pattern, NewOrderID())
	assert.NotEqual(t, NewOrderID(), NewOrderID())
}

func TestFinalizeHappyPath(t *testing.T) {
	submitter := &stubSubmitter{}
	finalizer, err := NewFinalizer(submitter, testLogger(), nil)
	require.NoError(t, err)

	sess := readySession(t)
	result, err := finalizer.Finalize(context.Background(), sess)
	require.NoError(t, err)

	assert.True(t, result.Submitted)
	assert.Equal(t, "Sam", result.Order.CustomerName)
	assert.Equal(t, DefaultPhone, result.Order.CustomerPhone)
	assert.True(t, result.Order.Total.Equal(price("24.00")))
	require.Len(t, result.Order.Lines, 1)
	require.Len(t, submitter.orders, 1)
	assert.Same(t, result.Order, submitter.orders[0])

	assert.Empty(t, sess.CartLines())
	assert.Empty(t, sess.CustomerName())
	assert.Equal(t, session.StateTakingOrder, sess.State())
}

func TestFinalizeKeepsPhoneWhenGiven(t *testing.T) {
	finalizer, err := NewFinalizer(&stubSubmitter{}, testLogger(), nil)
	require.NoError(t, err)

	sess := readySession(t)
	sess.SetCustomer("", "555-0100")

	result, err := finalizer.Finalize(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, "555-0100", result.Order.CustomerPhone)
}

func TestFinalizeClearsCartOnSubmitFailure(t *testing.T) {
	submitter := &stubSubmitter{err: pkgerrors.New(pkgerrors.CodeDependency, "order service unreachable")}
	finalizer, err := NewFinalizer(submitter, testLogger(), nil)
	require.NoError(t, err)

	sess := readySession(t)
	result, err := finalizer.Finalize(context.Background(), sess)
	require.NoError(t, err)

	assert.False(t, result.Submitted)
	assert.True(t, result.Order.Total.Equal(price("24.00")))
	assert.Empty(t, sess.CartLines())
	assert.Equal(t, session.StateTakingOrder, sess.State())
}

func TestFinalizePropagatesPreconditions(t *testing.T) {
	finalizer, err := NewFinalizer(&stubSubmitter{}, testLogger(), nil)
	require.NoError(t, err)

	sess := session.New("sess-1", staticResolver{})
	_, err = finalizer.Finalize(context.Background(), sess)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodePrecondition))
}

func TestFinalizeWithoutSubmitter(t *testing.T) {
	reg := prometheus.NewRegistry()
	finalizer, err := NewFinalizer(nil, testLogger(), metrics.NewOrderingMetrics(reg))
	require.NoError(t, err)

	sess := readySession(t)
	result, err := finalizer.Finalize(context.Background(), sess)
	require.NoError(t, err)
	assert.False(t, result.Submitted)
	assert.NotNil(t, result.Order)

	// Never attempted is not a failed submission.
	count, err := testutil.GatherAndCount(reg, "order_submissions_total")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestFinalizeCountsAttemptedSubmissions(t *testing.T) {
	reg := prometheus.NewRegistry()
	submitter := &stubSubmitter{err: pkgerrors.New(pkgerrors.CodeDependency, "order service unreachable")}
	finalizer, err := NewFinalizer(submitter, testLogger(), metrics.NewOrderingMetrics(reg))
	require.NoError(t, err)

	_, err = finalizer.Finalize(context.Background(), readySession(t))
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "order_submissions_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNewFinalizerRequiresLogger(t *testing.T) {
	_, err := NewFinalizer(&stubSubmitter{}, nil, nil)
	require.Error(t, err)
}
