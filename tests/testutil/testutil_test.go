package testutil

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techsolutions/pos/internal/domain/shared"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Test", 1)}
}

func TestNewMockDB(t *testing.T) {
	m := NewMockDB(t)
	require.NotNil(t, m.DB)

	m.Mock.ExpectExec(`DELETE FROM productos`).WillReturnResult(sqlmock.NewResult(0, 2))
	require.NoError(t, m.DB.Exec("DELETE FROM productos").Error)
	m.ExpectationsWereMet(t)
}

func TestEventRecorder(t *testing.T) {
	rec := NewEventRecorder("SaleCompleted", "SaleVoided")
	assert.Equal(t, []string{"SaleCompleted", "SaleVoided"}, rec.EventTypes())

	ctx := context.Background()
	require.NoError(t, rec.Handle(ctx, newTestEvent("SaleCompleted")))
	require.NoError(t, rec.Handle(ctx, newTestEvent("SaleVoided")))
	require.NoError(t, rec.Handle(ctx, newTestEvent("SaleCompleted")))

	assert.Equal(t, 3, rec.HandledCount())
	assert.Len(t, rec.OfType("SaleCompleted"), 2)
	assert.Len(t, rec.OfType("SaleVoided"), 1)

	rec.SetError(errors.New("boom"))
	assert.EqualError(t, rec.Handle(ctx, newTestEvent("SaleVoided")), "boom")

	rec.Reset()
	assert.Zero(t, rec.HandledCount())
	assert.NoError(t, rec.Handle(ctx, newTestEvent("SaleVoided")))
}

func TestContextWithTimeout(t *testing.T) {
	ctx := ContextWithTimeout(t, time.Minute)
	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, time.Second)
}

func TestRequireEventually(t *testing.T) {
	var calls atomic.Int32
	RequireEventually(t, func() bool {
		return calls.Add(1) >= 3
	}, time.Second, time.Millisecond)
	assert.GreaterOrEqual(t, calls.Load(), int32(3))
}

func TestAssertNever(t *testing.T) {
	AssertNever(t, func() bool { return false }, 20*time.Millisecond, 5*time.Millisecond)
}
