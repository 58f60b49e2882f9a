package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/iliyamo/hotel-pms/internal/model"
)

// RoomInserter is the slice of repository.Store that seeding needs.
type RoomInserter interface {
	CountRooms(ctx context.Context) (int, error)
	InsertRoom(ctx context.Context, room model.Room) (model.Room, error)
}

var defaultAmenities = []string{"WiFi", "AC", "TV", "Mini Fridge", "Kitchenette"}

// DefaultRooms is the property's catalog: eight rooms, 101-104 on the
// first floor and 105-108 on the second.
func DefaultRooms() []model.Room {
	types := []struct {
		name  string
		price float64
	}{
		{"Deluxe", 3500}, {"Deluxe", 3500},
		{"Premium", 4500}, {"Premium", 4500},
		{"Suite", 6000}, {"Suite", 6000},
		{"Executive Suite", 7500}, {"Executive Suite", 7500},
	}
	rooms := make([]model.Room, 0, len(types))
	for i, t := range types {
		n := i + 1
		floor := 1
		if n > 4 {
			floor = 2
		}
		rooms = append(rooms, model.Room{
			Number:    fmt.Sprintf("10%d", n),
			Type:      t.name,
			BasePrice: t.price,
			Floor:     floor,
			Amenities: append([]string(nil), defaultAmenities...),
			Status:    model.RoomAvailable,
		})
	}
	return rooms
}

// SeedRooms inserts DefaultRooms into an empty store.  A store that
// already has rooms is left untouched, so seeding is safe on every start.
// It returns the number of rooms inserted.
func SeedRooms(ctx context.Context, store RoomInserter, log *slog.Logger) (int, error) {
	n, err := store.CountRooms(ctx)
	if err != nil {
		return 0, fmt.Errorf("count rooms: %w", err)
	}
	if n > 0 {
		log.Debug("room catalog already present", "rooms", n)
		return 0, nil
	}
	inserted := 0
	for _, r := range DefaultRooms() {
		if _, err := store.InsertRoom(ctx, r); err != nil {
			return inserted, fmt.Errorf("insert room %s: %w", r.Number, err)
		}
		inserted++
	}
	log.Info("seeded room catalog", "rooms", inserted)
	return inserted, nil
}
