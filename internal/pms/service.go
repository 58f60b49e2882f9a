// Package pms is the room, guest and booking consistency engine.  It
// owns every rule that keeps room occupancy in step with the booking
// ledger: overlap detection, the booking state machine, same-day guest
// hand-off and the read-side occupancy report.
//
// All mutations of a room run under a per-room lock and inside one store
// transaction, so the booking write and the room write commit together
// or not at all.  Reads are lock free and see committed state.
package pms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/iliyamo/hotel-pms/internal/clock"
	"github.com/iliyamo/hotel-pms/internal/lock"
	"github.com/iliyamo/hotel-pms/internal/model"
	"github.com/iliyamo/hotel-pms/internal/queue"
	"github.com/iliyamo/hotel-pms/internal/repository"
)

// Publisher receives lifecycle events after they have been committed.
type Publisher interface {
	Publish(ctx context.Context, ev queue.BookingEvent) error
}

// Options configures a Service.  Zero values pick sensible defaults:
// the real clock, an in-process locker, no event publishing, the default
// slog logger and UTC as the hotel time zone.
type Options struct {
	Clock     clock.Clock
	Locker    lock.Locker
	Publisher Publisher
	Logger    *slog.Logger

	// Location is the hotel's time zone; it decides what "today" is.
	Location *time.Location
	// PhoneCountryCode is stripped from phone numbers before matching
	// (e.g. "91").
	PhoneCountryCode string
	// Hotel is the static property description.  TotalRooms is filled in
	// from the catalog on every read.
	Hotel model.HotelInfo
}

// Service is the Booking Query/Command API.  It is safe for concurrent
// use.
type Service struct {
	store       repository.Store
	clock       clock.Clock
	locker      lock.Locker
	pub         Publisher
	log         *slog.Logger
	loc         *time.Location
	countryCode string
	hotel       model.HotelInfo
}

// New builds a Service over store.
func New(store repository.Store, opts Options) *Service {
	s := &Service{
		store:       store,
		clock:       opts.Clock,
		locker:      opts.Locker,
		pub:         opts.Publisher,
		log:         opts.Logger,
		loc:         opts.Location,
		countryCode: opts.PhoneCountryCode,
		hotel:       opts.Hotel,
	}
	if s.clock == nil {
		s.clock = clock.Real()
	}
	if s.locker == nil {
		s.locker = lock.NewKeyed()
	}
	if s.pub == nil {
		s.pub = queue.Discard{}
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	return s
}

// Today is the current calendar date in the hotel's time zone.
func (s *Service) Today() model.Date {
	return model.DateOf(s.clock.Now().In(s.loc))
}

func (s *Service) now() time.Time { return s.clock.Now().UTC() }

// unit is the state of one room-scoped mutation: the open transaction
// and the events to publish once it commits.
type unit struct {
	tx     repository.Tx
	room   model.Room
	events []queue.BookingEvent
}

func (u *unit) emit(ev queue.BookingEvent) { u.events = append(u.events, ev) }

func roomKey(id uint64) string { return "room:" + strconv.FormatUint(id, 10) }

// inRoom runs fn as the single critical section for roomID and then
// publishes the events fn collected.  Publishing happens after the room
// lock is released; a failed publish is logged and does not undo the
// committed change.
func (s *Service) inRoom(ctx context.Context, roomID uint64, fn func(u *unit) error) error {
	events, err := s.critical(ctx, roomID, fn)
	if err != nil {
		return err
	}
	for _, ev := range events {
		s.log.Info(ev.Type, "booking_id", ev.BookingID, "room_id", ev.RoomID, "guest_id", ev.GuestID,
			"from", string(ev.FromStatus), "to", string(ev.ToStatus), "reason", ev.Reason)
		if err := s.pub.Publish(ctx, ev); err != nil {
			s.log.Error("publish booking event", "event_id", ev.EventID, "type", ev.Type,
				"booking_id", ev.BookingID, "err", err)
		}
	}
	return nil
}

// critical takes the room lock, opens a transaction, loads the room with
// a row lock and commits only if fn succeeds.
func (s *Service) critical(ctx context.Context, roomID uint64, fn func(u *unit) error) ([]queue.BookingEvent, error) {
	release, err := s.locker.Lock(ctx, roomKey(roomID))
	if err != nil {
		return nil, fmt.Errorf("lock room %d: %w", roomID, err)
	}
	defer release()

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	room, err := tx.LockRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("load room %d: %w", roomID, err)
	}

	u := &unit{tx: tx, room: room}
	if err := fn(u); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit room %d: %w", roomID, err)
	}
	committed = true
	return u.events, nil
}

// setOccupancy writes all three occupancy fields and mirrors them on
// the unit's copy of the room.
func (u *unit) setOccupancy(ctx context.Context, status model.RoomStatus, guestID, bookingID *uint64) error {
	if err := u.tx.SetRoomOccupancy(ctx, u.room.ID, status, guestID, bookingID); err != nil {
		return fmt.Errorf("set occupancy of room %d: %w", u.room.ID, err)
	}
	u.room.Status = status
	u.room.CurrentGuestID = guestID
	u.room.CurrentBookingID = bookingID
	return nil
}

func (u *unit) occupy(ctx context.Context, b model.Booking) error {
	return u.setOccupancy(ctx, model.RoomOccupied, model.ID(b.GuestID), model.ID(b.ID))
}

func (u *unit) release(ctx context.Context) error {
	return u.setOccupancy(ctx, model.RoomAvailable, nil, nil)
}
