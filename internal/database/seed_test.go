package database

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-pms/internal/model"
	"github.com/iliyamo/hotel-pms/internal/repository/memory"
)

func TestSeedRoomsOnce(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	n, err := SeedRooms(ctx, store, log)
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	n, err = SeedRooms(ctx, store, log)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	rooms, err := store.ListRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 8)
	assert.Equal(t, "101", rooms[0].Number)
	assert.Equal(t, 1, rooms[3].Floor)
	assert.Equal(t, 2, rooms[4].Floor)
	assert.Equal(t, "Executive Suite", rooms[7].Type)
	assert.Equal(t, 7500.0, rooms[7].BasePrice)
	for _, r := range rooms {
		assert.Equal(t, model.RoomAvailable, r.Status)
		assert.Contains(t, r.Amenities, "WiFi")
	}
}
