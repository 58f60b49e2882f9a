package pms

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/iliyamo/hotel-pms/internal/model"
	"github.com/iliyamo/hotel-pms/internal/repository"
)

func (s *Service) getRoom(ctx context.Context, id uint64) (model.Room, error) {
	r, err := s.store.GetRoom(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Room{}, ErrRoomNotFound
	}
	return r, err
}

// ListRooms returns the catalog in insertion order, each room joined
// with the guest currently holding it.
func (s *Service) ListRooms(ctx context.Context) ([]model.RoomView, error) {
	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	cat, err := s.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.RoomView, 0, len(rooms))
	for _, r := range rooms {
		cg, err := s.currentGuest(ctx, cat, r)
		if err != nil {
			return nil, err
		}
		out = append(out, model.RoomView{Room: r, CurrentGuest: cg})
	}
	return out, nil
}

// GetRoom returns one room joined with its current guest.
func (s *Service) GetRoom(ctx context.Context, id uint64) (model.RoomView, error) {
	r, err := s.getRoom(ctx, id)
	if err != nil {
		return model.RoomView{}, err
	}
	cat, err := s.loadCatalog(ctx)
	if err != nil {
		return model.RoomView{}, err
	}
	cg, err := s.currentGuest(ctx, cat, r)
	if err != nil {
		return model.RoomView{}, err
	}
	return model.RoomView{Room: r, CurrentGuest: cg}, nil
}

// GetRoomCurrentGuest returns who holds the room, or nil when it is
// vacant.
func (s *Service) GetRoomCurrentGuest(ctx context.Context, id uint64) (*model.CurrentGuest, error) {
	v, err := s.GetRoom(ctx, id)
	if err != nil {
		return nil, err
	}
	return v.CurrentGuest, nil
}

func (s *Service) currentGuest(ctx context.Context, cat *catalog, r model.Room) (*model.CurrentGuest, error) {
	if r.Status != model.RoomOccupied || r.CurrentBookingID == nil {
		return nil, nil
	}
	b, err := s.store.GetBooking(ctx, *r.CurrentBookingID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	cg := &model.CurrentGuest{
		GuestID:   b.GuestID,
		Name:      model.NotAvailable,
		Email:     model.NotAvailable,
		Phone:     model.NotAvailable,
		CheckIn:   b.CheckIn,
		CheckOut:  b.CheckOut,
		BookingID: b.ID,
	}
	if g, ok := cat.guests[b.GuestID]; ok {
		cg.Name, cg.Email, cg.Phone = g.Name, g.Email, g.Phone
	}
	return cg, nil
}

// GetAvailableRooms lists rooms that are not under maintenance and have
// no active booking overlapping [checkIn, checkOut).
func (s *Service) GetAvailableRooms(ctx context.Context, checkIn, checkOut model.Date) ([]model.Room, error) {
	if err := validateStay(checkIn, checkOut); err != nil {
		return nil, err
	}
	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	bookings, err := s.store.ListBookings(ctx)
	if err != nil {
		return nil, err
	}
	byRoom := make(map[uint64][]model.Booking)
	for _, b := range bookings {
		byRoom[b.RoomID] = append(byRoom[b.RoomID], b)
	}
	out := make([]model.Room, 0, len(rooms))
	for _, r := range rooms {
		if r.Status == model.RoomMaintenance {
			continue
		}
		if _, clash := firstConflict(byRoom[r.ID], checkIn, checkOut, 0); clash {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// RoomEdit is an administrative change to a room.  Nil fields are left
// alone.
type RoomEdit struct {
	Status    *model.RoomStatus
	BasePrice *float64
}

// EditRoom applies an administrative edit in one transaction.
//
// Setting Status bypasses the booking ledger: it can leave a room
// occupied with no active booking, or available while a guest is in
// house.  It exists for maintenance and manual repair only.  Setting a
// status other than occupied clears the current guest and booking;
// setting occupied keeps whatever references the room already has.
func (s *Service) EditRoom(ctx context.Context, id uint64, edit RoomEdit) (model.Room, error) {
	fields := map[string]string{}
	if edit.Status != nil && !edit.Status.Valid() {
		return model.Room{}, fmt.Errorf("%w: %q", ErrInvalidStatus, *edit.Status)
	}
	if edit.BasePrice != nil {
		p := *edit.BasePrice
		if math.IsNaN(p) || math.IsInf(p, 0) {
			fields["base_price"] = "must be a number"
		} else if p <= 0 {
			return model.Room{}, ErrInvalidPrice
		}
	}
	if len(fields) > 0 {
		return model.Room{}, &InputError{Fields: fields}
	}

	var result model.Room
	err := s.inRoom(ctx, id, func(u *unit) error {
		if edit.BasePrice != nil {
			if err := u.tx.SetRoomPrice(ctx, id, *edit.BasePrice); err != nil {
				return fmt.Errorf("set price of room %d: %w", id, err)
			}
			u.room.BasePrice = *edit.BasePrice
		}
		if edit.Status != nil {
			st := *edit.Status
			guestID, bookingID := u.room.CurrentGuestID, u.room.CurrentBookingID
			if st != model.RoomOccupied {
				guestID, bookingID = nil, nil
			}
			prev := u.room.Status
			if err := u.setOccupancy(ctx, st, guestID, bookingID); err != nil {
				return err
			}
			s.log.Warn("room status overridden outside booking ledger",
				"room_id", id, "from", string(prev), "to", string(st))
		}
		result = u.room
		return nil
	})
	if err != nil {
		return model.Room{}, err
	}
	return result, nil
}

// SetRoomPrice changes the nightly base price used for new bookings.
// Existing bookings keep the price they were created with.
func (s *Service) SetRoomPrice(ctx context.Context, id uint64, price float64) (model.Room, error) {
	return s.EditRoom(ctx, id, RoomEdit{BasePrice: &price})
}

// OverrideRoomStatus is the administrative status escape hatch; see
// EditRoom.
func (s *Service) OverrideRoomStatus(ctx context.Context, id uint64, status model.RoomStatus) (model.Room, error) {
	return s.EditRoom(ctx, id, RoomEdit{Status: &status})
}
