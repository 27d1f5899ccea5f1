package shared

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError_Is(t *testing.T) {
	wrapped := fmt.Errorf("load ticket: %w", ErrNotFound)
	assert.ErrorIs(t, wrapped, ErrNotFound)
	assert.NotErrorIs(t, wrapped, ErrInvalidState)

	custom := NewDomainError("NOT_FOUND", "ticket missing")
	assert.ErrorIs(t, custom, ErrNotFound)

	de, ok := IsDomainError(wrapped)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", de.Code)

	_, ok = IsDomainError(fmt.Errorf("plain"))
	assert.False(t, ok)
}

func TestFakeClock(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := NewFakeClock(start)
	assert.Equal(t, start, clock.Now())

	clock.Advance(time.Minute)
	assert.Equal(t, start.Add(time.Minute), clock.Now())
}

func TestBaseAggregateRoot(t *testing.T) {
	clock := NewFakeClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	root := NewBaseAggregateRoot(clock)

	assert.Equal(t, 1, root.GetVersion())
	assert.Equal(t, clock.Now(), root.CreatedAt)

	root.IncrementVersion()
	assert.Equal(t, 2, root.GetVersion())

	clock.Advance(time.Second)
	root.Touch(clock)
	assert.True(t, root.UpdatedAt.After(root.CreatedAt))

	evt := NewBaseDomainEvent("Test", "Ticket", root.ID, clock.Now())
	root.AddDomainEvent(&evt)
	assert.Len(t, root.GetDomainEvents(), 1)
	root.ClearDomainEvents()
	assert.Empty(t, root.GetDomainEvents())
}

func TestFilter_Offset(t *testing.T) {
	f := DefaultFilter()
	assert.Equal(t, 0, f.Offset())

	f.Page = 3
	assert.Equal(t, 40, f.Offset())
}
