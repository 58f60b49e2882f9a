package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema creates the three PMS tables.  Statements are idempotent so
// Migrate can run on every start.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS rooms (
		id                 BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		room_number        VARCHAR(16)     NOT NULL,
		room_type          VARCHAR(64)     NOT NULL,
		base_price         DECIMAL(10,2)   NOT NULL,
		floor              INT             NOT NULL DEFAULT 1,
		amenities          JSON            NULL,
		status             ENUM('available','occupied','maintenance') NOT NULL DEFAULT 'available',
		current_guest_id   BIGINT UNSIGNED NULL,
		current_booking_id BIGINT UNSIGNED NULL,
		UNIQUE KEY uq_rooms_number (room_number)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS guests (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name       VARCHAR(255)    NOT NULL,
		email      VARCHAR(255)    NOT NULL,
		phone      VARCHAR(32)     NOT NULL,
		id_proof   VARCHAR(128)    NULL,
		created_at DATETIME(6)     NOT NULL,
		UNIQUE KEY uq_guests_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS bookings (
		id             BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		room_id        BIGINT UNSIGNED NOT NULL,
		guest_id       BIGINT UNSIGNED NOT NULL,
		check_in       DATE            NOT NULL,
		check_out      DATE            NOT NULL,
		total_price    DECIMAL(12,2)   NOT NULL,
		status         ENUM('confirmed','checked_in','checked_out','cancelled') NOT NULL DEFAULT 'confirmed',
		created_at     DATETIME(6)     NOT NULL,
		checked_in_at  DATETIME(6)     NULL,
		checked_out_at DATETIME(6)     NULL,
		KEY idx_bookings_room_status (room_id, status),
		KEY idx_bookings_guest (guest_id),
		CONSTRAINT fk_bookings_room  FOREIGN KEY (room_id)  REFERENCES rooms (id),
		CONSTRAINT fk_bookings_guest FOREIGN KEY (guest_id) REFERENCES guests (id),
		CONSTRAINT chk_bookings_dates CHECK (check_out > check_in)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate applies the schema.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
