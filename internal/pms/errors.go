package pms

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/iliyamo/hotel-pms/internal/model"
)

// Sentinel errors.  Every error returned by Service satisfies errors.Is
// against at most one of these, or is an *InputError, or is a storage
// failure.
var (
	ErrInvalidDateRange  = errors.New("check_out must be after check_in")
	ErrRoomUnavailable   = errors.New("room is not available for the requested dates")
	ErrRoomNotFound      = errors.New("room not found")
	ErrGuestNotFound     = errors.New("guest not found")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrInvalidTransition = errors.New("invalid booking status transition")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidPrice      = errors.New("price must be greater than zero")
	ErrDataConsistency   = errors.New("data consistency error")
	ErrDuplicateEmail    = errors.New("guest email already exists")
)

// InputError reports malformed caller input, keyed by field name.
type InputError struct {
	Fields map[string]string
}

func (e *InputError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// IsInputError reports whether err wraps an *InputError.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}

// TransitionError is returned for a status change outside the booking
// state machine.
type TransitionError struct {
	BookingID uint64
	From      model.BookingStatus
	To        model.BookingStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("booking %d: cannot move from %s to %s", e.BookingID, e.From, e.To)
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// ConsistencyError is returned when more than one confirmed booking is
// due to arrive in a room on the day its occupant leaves.  Such a state
// can only come from an earlier invariant breach, so no booking is
// picked and the departure is refused.
type ConsistencyError struct {
	RoomID     uint64
	Date       model.Date
	BookingIDs []uint64
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("room %d has %d confirmed arrivals on %s (bookings %v)",
		e.RoomID, len(e.BookingIDs), e.Date, e.BookingIDs)
}

func (e *ConsistencyError) Is(target error) bool { return target == ErrDataConsistency }

// UnavailableError names the active booking that blocks a request.
type UnavailableError struct {
	RoomID    uint64
	BookingID uint64 // zero when the room is under maintenance
}

func (e *UnavailableError) Error() string {
	if e.BookingID == 0 {
		return fmt.Sprintf("room %d is under maintenance", e.RoomID)
	}
	return fmt.Sprintf("room %d is already booked by booking %d for overlapping dates", e.RoomID, e.BookingID)
}

func (e *UnavailableError) Is(target error) bool { return target == ErrRoomUnavailable }
