package pms

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/hotel-pms/internal/model"
	"github.com/iliyamo/hotel-pms/internal/queue"
	"github.com/iliyamo/hotel-pms/internal/repository"
)

// firstConflict returns the first active booking among bs that overlaps
// [in, out), skipping the booking with ID skip.
func firstConflict(bs []model.Booking, in, out model.Date, skip uint64) (model.Booking, bool) {
	for _, b := range bs {
		if b.ID == skip || !b.Status.Active() {
			continue
		}
		if b.Overlaps(in, out) {
			return b, true
		}
	}
	return model.Booking{}, false
}

func validateStay(in, out model.Date) error {
	fields := map[string]string{}
	if in.IsZero() {
		fields["check_in"] = "required (YYYY-MM-DD)"
	}
	if out.IsZero() {
		fields["check_out"] = "required (YYYY-MM-DD)"
	}
	if len(fields) > 0 {
		return &InputError{Fields: fields}
	}
	if !out.After(in) {
		return ErrInvalidDateRange
	}
	return nil
}

var checkGuest = validator.New()

func validateGuestInfo(g model.GuestInfo) error {
	fields := map[string]string{}
	if strings.TrimSpace(g.Name) == "" {
		fields["name"] = "required"
	}
	if e := strings.TrimSpace(g.Email); e == "" {
		fields["email"] = "required"
	} else if checkGuest.Var(e, "email") != nil {
		fields["email"] = "must be an email address"
	}
	if strings.TrimSpace(g.Phone) == "" {
		fields["phone"] = "required"
	}
	if len(fields) > 0 {
		return &InputError{Fields: fields}
	}
	return nil
}

// IsAvailable reports whether no active booking of the room overlaps
// [checkIn, checkOut).  The answer is advisory; CreateBooking repeats
// the check under the room lock.
func (s *Service) IsAvailable(ctx context.Context, roomID uint64, checkIn, checkOut model.Date) (bool, error) {
	if err := validateStay(checkIn, checkOut); err != nil {
		return false, err
	}
	if _, err := s.getRoom(ctx, roomID); err != nil {
		return false, err
	}
	bookings, err := s.store.ListBookings(ctx)
	if err != nil {
		return false, err
	}
	var mine []model.Booking
	for _, b := range bookings {
		if b.RoomID == roomID {
			mine = append(mine, b)
		}
	}
	_, clash := firstConflict(mine, checkIn, checkOut, 0)
	return !clash, nil
}

// CreateBooking books roomID for the guest over [checkIn, checkOut).
// The guest is created, or reused when the email is already known.  The
// price is the room's base price times the number of nights.  On
// success the room is marked occupied by the new booking.
func (s *Service) CreateBooking(ctx context.Context, roomID uint64, guest model.GuestInfo, checkIn, checkOut model.Date) (model.Booking, error) {
	if err := validateStay(checkIn, checkOut); err != nil {
		return model.Booking{}, err
	}
	if err := validateGuestInfo(guest); err != nil {
		return model.Booking{}, err
	}

	var created model.Booking
	err := s.inRoom(ctx, roomID, func(u *unit) error {
		if u.room.Status == model.RoomMaintenance {
			return &UnavailableError{RoomID: roomID}
		}
		existing, err := u.tx.BookingsByRoom(ctx, roomID)
		if err != nil {
			return fmt.Errorf("load bookings of room %d: %w", roomID, err)
		}
		if clash, ok := firstConflict(existing, checkIn, checkOut, 0); ok {
			return &UnavailableError{RoomID: roomID, BookingID: clash.ID}
		}

		g, err := s.ensureGuest(ctx, u.tx, guest)
		if err != nil {
			return err
		}

		nights := checkIn.DaysUntil(checkOut)
		b, err := u.tx.InsertBooking(ctx, model.Booking{
			RoomID:     roomID,
			GuestID:    g.ID,
			CheckIn:    checkIn,
			CheckOut:   checkOut,
			TotalPrice: u.room.BasePrice * float64(nights),
			Status:     model.BookingConfirmed,
			CreatedAt:  s.now(),
		})
		if err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}
		if err := u.occupy(ctx, b); err != nil {
			return err
		}
		u.emit(queue.NewBookingCreated(b, b.CreatedAt))
		created = b
		return nil
	})
	if err != nil {
		return model.Booking{}, err
	}
	return created, nil
}

// UpdateBookingStatus moves a booking through its lifecycle and applies
// the room side effects of the move in the same transaction.
//
//	confirmed  -> checked_in   room occupied by this booking
//	checked_in -> checked_out  room handed to today's arrival, or released
//	checked_in -> cancelled    same as checkout
//	confirmed  -> cancelled    room re-derived if this was its current booking
func (s *Service) UpdateBookingStatus(ctx context.Context, bookingID uint64, to model.BookingStatus) (model.Booking, error) {
	if !to.Valid() {
		return model.Booking{}, fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}
	// The room of a booking never changes, so a committed read is enough
	// to know which lock to take.
	current, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Booking{}, ErrBookingNotFound
		}
		return model.Booking{}, err
	}

	var updated model.Booking
	err = s.inRoom(ctx, current.RoomID, func(u *unit) error {
		b, err := u.tx.GetBooking(ctx, bookingID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrBookingNotFound
			}
			return err
		}
		updated, err = s.transition(ctx, u, b, to, "")
		return err
	})
	if err != nil {
		return model.Booking{}, err
	}
	return updated, nil
}

// transition applies one state machine edge inside u.  reason tags the
// resulting event (e.g. hand-off).
func (s *Service) transition(ctx context.Context, u *unit, b model.Booking, to model.BookingStatus, reason string) (model.Booking, error) {
	from := b.Status
	now := s.now()

	switch {
	case from == model.BookingConfirmed && to == model.BookingCheckedIn:
		b.Status = model.BookingCheckedIn
		b.CheckedInAt = &now
		if err := s.record(ctx, u, b, from, reason, now); err != nil {
			return b, err
		}
		if err := u.occupy(ctx, b); err != nil {
			return b, err
		}

	case from == model.BookingCheckedIn && (to == model.BookingCheckedOut || to == model.BookingCancelled):
		b.Status = to
		b.CheckedOutAt = &now
		if err := s.record(ctx, u, b, from, reason, now); err != nil {
			return b, err
		}
		if err := s.releaseOrHandOff(ctx, u, b); err != nil {
			return b, err
		}

	case from == model.BookingConfirmed && to == model.BookingCancelled:
		b.Status = model.BookingCancelled
		if err := s.record(ctx, u, b, from, reason, now); err != nil {
			return b, err
		}
		if u.room.CurrentBookingID != nil && *u.room.CurrentBookingID == b.ID {
			if err := s.rederive(ctx, u, b.ID); err != nil {
				return b, err
			}
		}

	default:
		return b, &TransitionError{BookingID: b.ID, From: from, To: to}
	}
	return b, nil
}

// record persists the new lifecycle fields of b and queues its event.
func (s *Service) record(ctx context.Context, u *unit, b model.Booking, from model.BookingStatus, reason string, at time.Time) error {
	if err := u.tx.UpdateBooking(ctx, b); err != nil {
		return fmt.Errorf("update booking %d: %w", b.ID, err)
	}
	u.emit(queue.NewStatusChanged(b, from, reason, at))
	return nil
}

// releaseOrHandOff runs after departed has left the room.  A single
// confirmed booking arriving today is checked in automatically.  With no
// such booking the room stays with any guest already checked in, and is
// released otherwise.  Several candidates mean the
// ledger already holds overlapping bookings and the departure is
// refused with a ConsistencyError.
func (s *Service) releaseOrHandOff(ctx context.Context, u *unit, departed model.Booking) error {
	today := s.Today()
	bookings, err := u.tx.BookingsByRoom(ctx, u.room.ID)
	if err != nil {
		return fmt.Errorf("load bookings of room %d: %w", u.room.ID, err)
	}

	var arrivals []model.Booking
	var inHouse *model.Booking
	for i, b := range bookings {
		if b.ID == departed.ID {
			continue
		}
		switch {
		case b.Status == model.BookingConfirmed && b.CheckIn.Equal(today):
			arrivals = append(arrivals, b)
		case b.Status == model.BookingCheckedIn:
			if inHouse == nil || b.ID > inHouse.ID {
				inHouse = &bookings[i]
			}
		}
	}

	switch len(arrivals) {
	case 0:
		if inHouse != nil {
			return u.occupy(ctx, *inHouse)
		}
		return u.release(ctx)
	case 1:
		_, err := s.transition(ctx, u, arrivals[0], model.BookingCheckedIn, queue.ReasonHandOff)
		return err
	default:
		ids := make([]uint64, len(arrivals))
		for i, b := range arrivals {
			ids[i] = b.ID
		}
		s.log.Error("ambiguous same-day hand-off", "room_id", u.room.ID, "date", today.String(), "booking_ids", ids)
		return &ConsistencyError{RoomID: u.room.ID, Date: today, BookingIDs: ids}
	}
}

// rederive points the room at the booking that should hold it once
// cancelled is gone: a checked-in booking if there is one, otherwise the
// most recently created confirmed booking.  With no active booking left
// the room is released.
func (s *Service) rederive(ctx context.Context, u *unit, cancelled uint64) error {
	bookings, err := u.tx.BookingsByRoom(ctx, u.room.ID)
	if err != nil {
		return fmt.Errorf("load bookings of room %d: %w", u.room.ID, err)
	}

	var holder *model.Booking
	for i := range bookings {
		b := &bookings[i]
		if b.ID == cancelled || !b.Status.Active() {
			continue
		}
		switch {
		case holder == nil:
			holder = b
		case b.Status == model.BookingCheckedIn && holder.Status != model.BookingCheckedIn:
			holder = b
		case b.Status == holder.Status && b.ID > holder.ID:
			holder = b
		}
	}
	if holder == nil {
		return u.release(ctx)
	}
	return u.occupy(ctx, *holder)
}
