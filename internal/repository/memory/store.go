// Package memory is an in-process implementation of repository.Store.
// It is the default backend for development and tests.
//
// Room and booking writes made inside a transaction are staged and only
// become visible to other readers when the transaction commits.  Guest
// inserts are the exception: they are applied to the shared state as
// soon as they are made, so that two transactions on different rooms
// cannot both create a guest for the same email.  A guest left behind by
// a rolled back booking is harmless because guests are never edited or
// deleted and carry no occupancy state.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/hotel-pms/internal/model"
	"github.com/iliyamo/hotel-pms/internal/repository"
)

// Store keeps all state in maps guarded by a single RWMutex.  The mutex
// protects memory safety only; room-level serialisation is the caller's
// job (see internal/lock).
type Store struct {
	mu sync.RWMutex

	rooms    map[uint64]model.Room
	guests   map[uint64]model.Guest
	emails   map[string]uint64
	bookings map[uint64]model.Booking

	nextRoom    uint64
	nextGuest   uint64
	nextBooking uint64

	now func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		rooms:    make(map[uint64]model.Room),
		guests:   make(map[uint64]model.Guest),
		emails:   make(map[string]uint64),
		bookings: make(map[uint64]model.Booking),
		now:      time.Now,
	}
}

var _ repository.Store = (*Store)(nil)

func (s *Store) ListRooms(ctx context.Context) ([]model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, r.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) GetRoom(ctx context.Context, id uint64) (model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[id]
	if !ok {
		return model.Room{}, repository.ErrNotFound
	}
	return r.Clone(), nil
}

func (s *Store) CountRooms(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms), nil
}

// InsertRoom assigns the next ID unless room.ID is already set.
func (s *Store) InsertRoom(ctx context.Context, room model.Room) (model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if room.ID == 0 {
		s.nextRoom++
		room.ID = s.nextRoom
	} else if room.ID > s.nextRoom {
		s.nextRoom = room.ID
	}
	if room.Status == "" {
		room.Status = model.RoomAvailable
	}
	room.Amenities = model.NormalizeAmenities(room.Amenities)
	s.rooms[room.ID] = room.Clone()
	return room, nil
}

func (s *Store) ListGuests(ctx context.Context) ([]model.Guest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Guest, 0, len(s.guests))
	for _, g := range s.guests {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) GetGuest(ctx context.Context, id uint64) (model.Guest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.guests[id]
	if !ok {
		return model.Guest{}, repository.ErrNotFound
	}
	return g, nil
}

func (s *Store) ListBookings(ctx context.Context) ([]model.Booking, error) {
	return s.filterBookings(func(model.Booking) bool { return true }), nil
}

func (s *Store) GetBooking(ctx context.Context, id uint64) (model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return model.Booking{}, repository.ErrNotFound
	}
	return b.Clone(), nil
}

func (s *Store) BookingsByGuest(ctx context.Context, guestID uint64) ([]model.Booking, error) {
	return s.filterBookings(func(b model.Booking) bool { return b.GuestID == guestID }), nil
}

func (s *Store) filterBookings(keep func(model.Booking) bool) []model.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Booking, 0)
	for _, b := range s.bookings {
		if keep(b) {
			out = append(out, b.Clone())
		}
	}
	sortBookings(out)
	return out
}

// Begin starts a transaction with empty staging areas.
func (s *Store) Begin(ctx context.Context) (repository.Tx, error) {
	return &tx{
		s:        s,
		rooms:    make(map[uint64]model.Room),
		bookings: make(map[uint64]model.Booking),
	}, nil
}

// insertGuest applies a guest directly to shared state; see package doc.
func (s *Store) insertGuest(g model.Guest) (model.Guest, error) {
	key := emailKey(g.Email)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.emails[key]; ok {
		return model.Guest{}, repository.ErrDuplicateEmail
	}
	s.nextGuest++
	g.ID = s.nextGuest
	if g.CreatedAt.IsZero() {
		g.CreatedAt = s.now().UTC()
	}
	s.guests[g.ID] = g
	s.emails[key] = g.ID
	return g, nil
}

func (s *Store) guestByEmail(email string) (model.Guest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emails[emailKey(email)]
	if !ok {
		return model.Guest{}, repository.ErrNotFound
	}
	return s.guests[id], nil
}

func (s *Store) allocBookingID() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextBooking++
	return s.nextBooking
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func sortBookings(bs []model.Booking) {
	sort.Slice(bs, func(i, j int) bool { return bs[i].ID < bs[j].ID })
}
