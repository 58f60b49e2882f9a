package pms

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/hotel-pms/internal/model"
	"github.com/iliyamo/hotel-pms/internal/repository"
)

// catalog is a read-time snapshot of rooms and guests used to enrich
// bookings.  It is never cached between calls.
type catalog struct {
	rooms  map[uint64]model.Room
	guests map[uint64]model.Guest
}

func (s *Service) loadCatalog(ctx context.Context) (*catalog, error) {
	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	guests, err := s.store.ListGuests(ctx)
	if err != nil {
		return nil, err
	}
	c := &catalog{
		rooms:  make(map[uint64]model.Room, len(rooms)),
		guests: make(map[uint64]model.Guest, len(guests)),
	}
	for _, r := range rooms {
		c.rooms[r.ID] = r
	}
	for _, g := range guests {
		c.guests[g.ID] = g
	}
	return c, nil
}

// enrich joins room and guest display fields onto b.  Missing records
// show as "N/A".
func (c *catalog) enrich(b model.Booking) model.BookingView {
	v := model.BookingView{
		Booking:    b,
		Nights:     b.Nights(),
		RoomNumber: model.NotAvailable,
		RoomType:   model.NotAvailable,
		GuestName:  model.NotAvailable,
		GuestEmail: model.NotAvailable,
		GuestPhone: model.NotAvailable,
	}
	if r, ok := c.rooms[b.RoomID]; ok {
		v.RoomNumber, v.RoomType = r.Number, r.Type
	}
	if g, ok := c.guests[b.GuestID]; ok {
		v.GuestName, v.GuestEmail, v.GuestPhone = g.Name, g.Email, g.Phone
	}
	return v
}

func newGuest(info model.GuestInfo) model.Guest {
	return model.Guest{
		Name:    strings.TrimSpace(info.Name),
		Email:   strings.ToLower(strings.TrimSpace(info.Email)),
		Phone:   strings.TrimSpace(info.Phone),
		IDProof: strings.TrimSpace(info.IDProof),
	}
}

// createGuest inserts a new identity.  It fails with ErrDuplicateEmail
// when the email is taken.
func (s *Service) createGuest(ctx context.Context, tx repository.Tx, info model.GuestInfo) (model.Guest, error) {
	g := newGuest(info)
	g.CreatedAt = s.now()
	created, err := tx.InsertGuest(ctx, g)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return model.Guest{}, ErrDuplicateEmail
	}
	if err != nil {
		return model.Guest{}, fmt.Errorf("insert guest: %w", err)
	}
	return created, nil
}

// ensureGuest creates the guest or, when the email is already known,
// returns the existing record unchanged.  A returning guest therefore
// keeps one identity across bookings.
func (s *Service) ensureGuest(ctx context.Context, tx repository.Tx, info model.GuestInfo) (model.Guest, error) {
	g, err := s.createGuest(ctx, tx, info)
	if !errors.Is(err, ErrDuplicateEmail) {
		return g, err
	}
	existing, err := tx.GuestByEmail(ctx, info.Email)
	if err != nil {
		return model.Guest{}, fmt.Errorf("load guest by email: %w", err)
	}
	return existing, nil
}

// CreateGuest registers a guest outside of a booking.  It is idempotent
// by email: repeating the call returns the first guest.
func (s *Service) CreateGuest(ctx context.Context, info model.GuestInfo) (model.Guest, error) {
	if err := validateGuestInfo(info); err != nil {
		return model.Guest{}, err
	}
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return model.Guest{}, err
	}
	defer tx.Rollback()
	g, err := s.ensureGuest(ctx, tx, info)
	if err != nil {
		return model.Guest{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Guest{}, err
	}
	return g, nil
}

// ListGuests returns every guest with booking history.
func (s *Service) ListGuests(ctx context.Context) ([]model.GuestView, error) {
	guests, err := s.store.ListGuests(ctx)
	if err != nil {
		return nil, err
	}
	cat, err := s.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	bookings, err := s.store.ListBookings(ctx)
	if err != nil {
		return nil, err
	}
	byGuest := make(map[uint64][]model.Booking)
	for _, b := range bookings {
		byGuest[b.GuestID] = append(byGuest[b.GuestID], b)
	}
	out := make([]model.GuestView, 0, len(guests))
	for _, g := range guests {
		out = append(out, guestView(cat, g, byGuest[g.ID]))
	}
	return out, nil
}

// GetGuest returns one guest with booking history, current booking and
// current room.
func (s *Service) GetGuest(ctx context.Context, id uint64) (model.GuestView, error) {
	g, err := s.store.GetGuest(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.GuestView{}, ErrGuestNotFound
	}
	if err != nil {
		return model.GuestView{}, err
	}
	bookings, err := s.store.BookingsByGuest(ctx, id)
	if err != nil {
		return model.GuestView{}, err
	}
	cat, err := s.loadCatalog(ctx)
	if err != nil {
		return model.GuestView{}, err
	}
	return guestView(cat, g, bookings), nil
}

// guestView builds the enriched guest.  The current booking is the
// latest active one; a checked-in booking wins over a confirmed one.
func guestView(cat *catalog, g model.Guest, bookings []model.Booking) model.GuestView {
	v := model.GuestView{Guest: g, Bookings: make([]model.BookingView, 0, len(bookings))}
	for _, b := range bookings {
		bv := cat.enrich(b)
		v.Bookings = append(v.Bookings, bv)
		if !b.Status.Active() {
			continue
		}
		if v.CurrentBooking != nil && v.CurrentBooking.Status == model.BookingCheckedIn && b.Status != model.BookingCheckedIn {
			continue
		}
		cur := bv
		v.CurrentBooking = &cur
	}
	if v.CurrentBooking != nil {
		if r, ok := cat.rooms[v.CurrentBooking.RoomID]; ok {
			v.CurrentRoom = &model.RoomRef{RoomID: r.ID, RoomNumber: r.Number, RoomType: r.Type}
		}
	}
	return v
}

// ListCheckedInGuests returns one row per booking currently checked in.
func (s *Service) ListCheckedInGuests(ctx context.Context) ([]model.CheckedInGuest, error) {
	bookings, err := s.store.ListBookings(ctx)
	if err != nil {
		return nil, err
	}
	cat, err := s.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.CheckedInGuest, 0)
	for _, b := range bookings {
		if b.Status != model.BookingCheckedIn {
			continue
		}
		g, gok := cat.guests[b.GuestID]
		r, rok := cat.rooms[b.RoomID]
		if !gok || !rok {
			continue
		}
		out = append(out, model.CheckedInGuest{
			BookingID:   b.ID,
			GuestID:     g.ID,
			Name:        g.Name,
			Email:       g.Email,
			Phone:       g.Phone,
			RoomID:      r.ID,
			RoomNumber:  r.Number,
			RoomType:    r.Type,
			CheckIn:     b.CheckIn,
			CheckOut:    b.CheckOut,
			CheckedInAt: b.CheckedInAt,
		})
	}
	return out, nil
}
