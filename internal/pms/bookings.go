package pms

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/hotel-pms/internal/model"
	"github.com/iliyamo/hotel-pms/internal/repository"
)

// ListBookings returns every booking in creation order, enriched with
// room and guest display fields.
func (s *Service) ListBookings(ctx context.Context) ([]model.BookingView, error) {
	bookings, err := s.store.ListBookings(ctx)
	if err != nil {
		return nil, err
	}
	cat, err := s.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.BookingView, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, cat.enrich(b))
	}
	return out, nil
}

// GetBooking returns one enriched booking.
func (s *Service) GetBooking(ctx context.Context, id uint64) (model.BookingView, error) {
	b, err := s.store.GetBooking(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.BookingView{}, ErrBookingNotFound
	}
	if err != nil {
		return model.BookingView{}, err
	}
	cat, err := s.loadCatalog(ctx)
	if err != nil {
		return model.BookingView{}, err
	}
	return cat.enrich(b), nil
}

// NormalizePhone keeps the digits of raw and strips the country calling
// code, so "+91 98765-43210" and "9876543210" compare equal.  The code is
// stripped when written with a leading "+", or when the number is longer
// than a ten digit national number and starts with it.
func NormalizePhone(raw, countryCode string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if countryCode == "" {
		return digits
	}
	if strings.HasPrefix(strings.TrimSpace(raw), "+"+countryCode) {
		return strings.TrimPrefix(digits, countryCode)
	}
	if len(digits) > 10 && strings.HasPrefix(digits, countryCode) {
		return digits[len(countryCode):]
	}
	return digits
}

// FindActiveBookingByPhone returns the first confirmed or checked-in
// booking whose guest phone matches phone after normalisation.
func (s *Service) FindActiveBookingByPhone(ctx context.Context, phone string) (model.BookingView, error) {
	want := NormalizePhone(phone, s.countryCode)
	if want == "" {
		return model.BookingView{}, &InputError{Fields: map[string]string{"phone": "required"}}
	}
	bookings, err := s.store.ListBookings(ctx)
	if err != nil {
		return model.BookingView{}, err
	}
	cat, err := s.loadCatalog(ctx)
	if err != nil {
		return model.BookingView{}, err
	}
	for _, b := range bookings {
		if !b.Status.Active() {
			continue
		}
		g, ok := cat.guests[b.GuestID]
		if !ok || NormalizePhone(g.Phone, s.countryCode) != want {
			continue
		}
		return cat.enrich(b), nil
	}
	return model.BookingView{}, ErrBookingNotFound
}

// CheckInGuest checks in the guest arriving today: the confirmed booking
// with check_in equal to today whose guest matches name (case and
// surrounding space ignored) and phone.  The transition goes through the
// ledger like any other.
func (s *Service) CheckInGuest(ctx context.Context, name, phone string) (model.BookingView, error) {
	fields := map[string]string{}
	name = strings.TrimSpace(name)
	if name == "" {
		fields["name"] = "required"
	}
	want := NormalizePhone(phone, s.countryCode)
	if want == "" {
		fields["phone"] = "required"
	}
	if len(fields) > 0 {
		return model.BookingView{}, &InputError{Fields: fields}
	}

	bookings, err := s.store.ListBookings(ctx)
	if err != nil {
		return model.BookingView{}, err
	}
	cat, err := s.loadCatalog(ctx)
	if err != nil {
		return model.BookingView{}, err
	}
	today := s.Today()
	for _, b := range bookings {
		if b.Status != model.BookingConfirmed || !b.CheckIn.Equal(today) {
			continue
		}
		g, ok := cat.guests[b.GuestID]
		if !ok || !strings.EqualFold(strings.TrimSpace(g.Name), name) {
			continue
		}
		if NormalizePhone(g.Phone, s.countryCode) != want {
			continue
		}
		updated, err := s.UpdateBookingStatus(ctx, b.ID, model.BookingCheckedIn)
		if err != nil {
			return model.BookingView{}, err
		}
		return cat.enrich(updated), nil
	}
	return model.BookingView{}, ErrBookingNotFound
}
