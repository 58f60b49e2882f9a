package model

import "time"

// Guest is an identity record.  Guests are created once per unique
// email and are never edited or deleted; bookings point at them by ID.
//
// Fields:
//
//	ID        – primary key identifier.
//	Name      – full name as given at booking time.
//	Email     – unique, lower-cased contact email.
//	Phone     – contact phone number as entered.
//	IDProof   – optional identity document reference.
//	CreatedAt – when the identity was first recorded.
type Guest struct {
	ID        uint64    `json:"guest_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	IDProof   string    `json:"id_proof"`
	CreatedAt time.Time `json:"created_at"`
}

// GuestInfo is the identity data supplied with a booking request.
type GuestInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	IDProof string `json:"id_proof,omitempty"`
}
