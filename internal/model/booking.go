package model

import (
	"strings"
	"time"
)

// BookingStatus is a state of the booking lifecycle.
type BookingStatus string

const (
	BookingConfirmed  BookingStatus = "confirmed"
	BookingCheckedIn  BookingStatus = "checked_in"
	BookingCheckedOut BookingStatus = "checked_out"
	BookingCancelled  BookingStatus = "cancelled"
)

// Valid reports whether s is one of the known booking states.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingConfirmed, BookingCheckedIn, BookingCheckedOut, BookingCancelled:
		return true
	}
	return false
}

// Active reports whether a booking in this state holds its room.
func (s BookingStatus) Active() bool {
	return s == BookingConfirmed || s == BookingCheckedIn
}

// Terminal reports whether no further transition is possible.
func (s BookingStatus) Terminal() bool {
	return s == BookingCheckedOut || s == BookingCancelled
}

// ParseBookingStatus normalises a caller supplied status string.
func ParseBookingStatus(s string) (BookingStatus, bool) {
	st := BookingStatus(strings.ToLower(strings.TrimSpace(s)))
	return st, st.Valid()
}

// Booking reserves one room for one guest over the half-open date range
// [CheckIn, CheckOut).  Bookings are never deleted; cancellation is a
// status.
//
// Fields:
//
//	ID           – primary key identifier.
//	RoomID       – reserved room.
//	GuestID      – guest the booking belongs to.
//	CheckIn      – first night of the stay.
//	CheckOut     – departure date; strictly after CheckIn.
//	TotalPrice   – base price times nights, fixed at creation.
//	Status       – confirmed, checked_in, checked_out or cancelled.
//	CreatedAt    – creation timestamp.
//	CheckedInAt  – when the guest was checked in (nil until then).
//	CheckedOutAt – when the stay ended, by checkout or late cancellation.
type Booking struct {
	ID           uint64        `json:"booking_id"`
	RoomID       uint64        `json:"room_id"`
	GuestID      uint64        `json:"guest_id"`
	CheckIn      Date          `json:"check_in"`
	CheckOut     Date          `json:"check_out"`
	TotalPrice   float64       `json:"total_price"`
	Status       BookingStatus `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	CheckedInAt  *time.Time    `json:"checked_in_at"`
	CheckedOutAt *time.Time    `json:"checked_out_at"`
}

// Nights is the number of nights covered by the booking.
func (b Booking) Nights() int { return b.CheckIn.DaysUntil(b.CheckOut) }

// Overlaps reports whether the booking's stay intersects [in, out).
// Touching endpoints do not overlap, which allows same-day turnover.
func (b Booking) Overlaps(in, out Date) bool {
	return Overlap(b.CheckIn, b.CheckOut, in, out)
}

// Overlap reports whether the half-open ranges [a0, a1) and [b0, b1)
// intersect.
func Overlap(a0, a1, b0, b1 Date) bool {
	return a0.Before(b1) && b0.Before(a1)
}

// Clone returns a deep copy of the booking.
func (b Booking) Clone() Booking {
	c := b
	c.CheckedInAt = cloneTime(b.CheckedInAt)
	c.CheckedOutAt = cloneTime(b.CheckedOutAt)
	return c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
