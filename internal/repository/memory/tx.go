package memory

import (
	"context"

	"github.com/iliyamo/hotel-pms/internal/model"
	"github.com/iliyamo/hotel-pms/internal/repository"
)

// tx stages room and booking writes.  Reads inside the transaction see
// the staged values layered over committed state.
type tx struct {
	s        *Store
	rooms    map[uint64]model.Room
	bookings map[uint64]model.Booking
	done     bool
}

func (t *tx) room(id uint64) (model.Room, error) {
	if r, ok := t.rooms[id]; ok {
		return r.Clone(), nil
	}
	t.s.mu.RLock()
	r, ok := t.s.rooms[id]
	t.s.mu.RUnlock()
	if !ok {
		return model.Room{}, repository.ErrNotFound
	}
	return r.Clone(), nil
}

func (t *tx) LockRoom(ctx context.Context, roomID uint64) (model.Room, error) {
	if t.done {
		return model.Room{}, repository.ErrTxDone
	}
	return t.room(roomID)
}

func (t *tx) SetRoomOccupancy(ctx context.Context, roomID uint64, status model.RoomStatus, guestID, bookingID *uint64) error {
	if t.done {
		return repository.ErrTxDone
	}
	r, err := t.room(roomID)
	if err != nil {
		return err
	}
	r.Status = status
	r.CurrentGuestID = guestID
	r.CurrentBookingID = bookingID
	t.rooms[roomID] = r.Clone()
	return nil
}

func (t *tx) SetRoomPrice(ctx context.Context, roomID uint64, price float64) error {
	if t.done {
		return repository.ErrTxDone
	}
	r, err := t.room(roomID)
	if err != nil {
		return err
	}
	r.BasePrice = price
	t.rooms[roomID] = r
	return nil
}

func (t *tx) GetBooking(ctx context.Context, id uint64) (model.Booking, error) {
	if t.done {
		return model.Booking{}, repository.ErrTxDone
	}
	if b, ok := t.bookings[id]; ok {
		return b.Clone(), nil
	}
	return t.s.GetBooking(ctx, id)
}

func (t *tx) BookingsByRoom(ctx context.Context, roomID uint64) ([]model.Booking, error) {
	if t.done {
		return nil, repository.ErrTxDone
	}
	merged := make(map[uint64]model.Booking)
	t.s.mu.RLock()
	for id, b := range t.s.bookings {
		if b.RoomID == roomID {
			merged[id] = b
		}
	}
	t.s.mu.RUnlock()
	for id, b := range t.bookings {
		if b.RoomID == roomID {
			merged[id] = b
		}
	}
	out := make([]model.Booking, 0, len(merged))
	for _, b := range merged {
		out = append(out, b.Clone())
	}
	sortBookings(out)
	return out, nil
}

func (t *tx) InsertBooking(ctx context.Context, b model.Booking) (model.Booking, error) {
	if t.done {
		return model.Booking{}, repository.ErrTxDone
	}
	if _, err := t.room(b.RoomID); err != nil {
		return model.Booking{}, err
	}
	b.ID = t.s.allocBookingID()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = t.s.now().UTC()
	}
	t.bookings[b.ID] = b.Clone()
	return b, nil
}

func (t *tx) UpdateBooking(ctx context.Context, b model.Booking) error {
	if t.done {
		return repository.ErrTxDone
	}
	cur, err := t.GetBooking(ctx, b.ID)
	if err != nil {
		return err
	}
	cur.Status = b.Status
	cur.CheckedInAt = b.CheckedInAt
	cur.CheckedOutAt = b.CheckedOutAt
	t.bookings[b.ID] = cur.Clone()
	return nil
}

func (t *tx) InsertGuest(ctx context.Context, g model.Guest) (model.Guest, error) {
	if t.done {
		return model.Guest{}, repository.ErrTxDone
	}
	return t.s.insertGuest(g)
}

func (t *tx) GuestByEmail(ctx context.Context, email string) (model.Guest, error) {
	if t.done {
		return model.Guest{}, repository.ErrTxDone
	}
	return t.s.guestByEmail(email)
}

// Commit publishes every staged write under one acquisition of the store
// mutex, so readers observe either none or all of them.
func (t *tx) Commit() error {
	if t.done {
		return repository.ErrTxDone
	}
	t.done = true
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for id, r := range t.rooms {
		t.s.rooms[id] = r
	}
	for id, b := range t.bookings {
		t.s.bookings[id] = b
	}
	return nil
}

func (t *tx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.rooms = nil
	t.bookings = nil
	return nil
}
