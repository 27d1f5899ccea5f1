package ticket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTags(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []TagValue
	}{
		{"empty", "", nil},
		{"ordered", "Waiter:Sam\rTable:12", []TagValue{{Name: "Waiter", Value: "Sam"}, {Name: "Table", Value: "12"}}},
		{"colon in value", "Pickup:18:30", []TagValue{{Name: "Pickup", Value: "18:30"}}},
		{"no separator", "Waiter", nil},
		{"empty value", "Waiter:", nil},
		{"duplicate", "A:1\rA:2", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeTags(tt.data).Values())
		})
	}
}

func TestTagStore_RoundTrip(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := &TagStore{}
	require.NoError(t, store.Set("Guests", "4", now))
	require.NoError(t, store.Set("Note", "window seat", now))
	require.NoError(t, store.Set("Guests", "5", now))

	encoded := store.Encode()
	assert.Equal(t, "Guests:5\rNote:window seat", encoded)

	decoded := DecodeTags(encoded)
	assert.Equal(t, encoded, decoded.Encode())
	assert.Equal(t, "5", decoded.Get("Guests"))
	assert.Equal(t, "Guests: 5\rNote: window seat", decoded.Display())
}

func TestTagStore_Set(t *testing.T) {
	now := time.Now()
	store := &TagStore{}

	require.NoError(t, store.Set("A", "1", now))
	require.NoError(t, store.Set("A", "", now))
	assert.Equal(t, 0, store.Len())
	require.NoError(t, store.Set("Missing", "", now), "removing an absent tag is a no-op")

	assert.Error(t, store.Set("", "x", now))
	assert.Error(t, store.Set("a:b", "x", now))
	assert.Error(t, store.Set("a\rb", "x", now))
	assert.Error(t, store.Set("a", "x\ry", now))
}
