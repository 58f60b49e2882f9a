package model

import (
	"sort"
	"strings"
)

// RoomStatus is the occupancy state of a room.
type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomOccupied    RoomStatus = "occupied"
	RoomMaintenance RoomStatus = "maintenance"
)

// Valid reports whether s is one of the known room states.
func (s RoomStatus) Valid() bool {
	switch s {
	case RoomAvailable, RoomOccupied, RoomMaintenance:
		return true
	}
	return false
}

// ParseRoomStatus normalises a caller supplied status string.
func ParseRoomStatus(s string) (RoomStatus, bool) {
	st := RoomStatus(strings.ToLower(strings.TrimSpace(s)))
	return st, st.Valid()
}

// Room is a bookable unit in the hotel catalog.  The catalog itself is
// fixed; only the occupancy fields and the base price change over time.
//
// Fields:
//
//	ID               – stable identifier, never reassigned.
//	Number           – door number shown to guests (e.g. "101").
//	Type             – marketing category (Standard, Deluxe, Suite).
//	BasePrice        – nightly rate used to price new bookings.
//	Floor            – floor the room is on.
//	Amenities        – sorted, de-duplicated amenity names.
//	Status           – available, occupied or maintenance.
//	CurrentGuestID   – guest of the active booking; nil unless occupied.
//	CurrentBookingID – most recently activated booking; nil unless occupied.
type Room struct {
	ID               uint64     `json:"room_id"`
	Number           string     `json:"room_number"`
	Type             string     `json:"room_type"`
	BasePrice        float64    `json:"base_price"`
	Floor            int        `json:"floor"`
	Amenities        []string   `json:"amenities"`
	Status           RoomStatus `json:"status"`
	CurrentGuestID   *uint64    `json:"current_guest_id"`
	CurrentBookingID *uint64    `json:"current_booking_id"`
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (r Room) Clone() Room {
	c := r
	c.Amenities = append([]string(nil), r.Amenities...)
	c.CurrentGuestID = cloneID(r.CurrentGuestID)
	c.CurrentBookingID = cloneID(r.CurrentBookingID)
	return c
}

// NormalizeAmenities trims, de-duplicates and sorts amenity names so the
// list behaves like a set.
func NormalizeAmenities(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, a := range in {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// ID returns a pointer to a copy of id, for optional reference fields.
func ID(id uint64) *uint64 { return &id }

func cloneID(p *uint64) *uint64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
