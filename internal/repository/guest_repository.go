package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/hotel-pms/internal/model"
)

// GuestRepo reads and writes the guests table.  Emails are stored
// lower-cased and carry a unique index.
type GuestRepo struct {
	db *sql.DB
}

// NewGuestRepo returns a GuestRepo bound to db.
func NewGuestRepo(db *sql.DB) *GuestRepo { return &GuestRepo{db: db} }

const guestColumns = `id, name, email, phone, id_proof, created_at`

const (
	qGuestList    = `SELECT ` + guestColumns + ` FROM guests ORDER BY id`
	qGuestByID    = `SELECT ` + guestColumns + ` FROM guests WHERE id = ?`
	qGuestByEmail = `SELECT ` + guestColumns + ` FROM guests WHERE email = ? LIMIT 1`
	qGuestInsert  = `INSERT INTO guests (name, email, phone, id_proof, created_at) VALUES (?, ?, ?, ?, ?)`
)

// mysqlDuplicateKey is ER_DUP_ENTRY.
const mysqlDuplicateKey = 1062

func (r *GuestRepo) List(ctx context.Context) ([]model.Guest, error) {
	rows, err := r.db.QueryContext(ctx, qGuestList)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Guest
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *GuestRepo) GetByID(ctx context.Context, id uint64) (model.Guest, error) {
	return getGuest(ctx, r.db, qGuestByID, id)
}

// GetByEmailTx looks a guest up by normalised email inside tx.
func (r *GuestRepo) GetByEmailTx(ctx context.Context, tx *sql.Tx, email string) (model.Guest, error) {
	return getGuest(ctx, tx, qGuestByEmail, normEmail(email))
}

// CreateTx inserts a guest.  A unique-key violation on email is reported
// as ErrDuplicateEmail; MySQL rolls back only the failed statement, so
// the transaction stays usable for the follow-up lookup.
func (r *GuestRepo) CreateTx(ctx context.Context, tx *sql.Tx, g model.Guest) (model.Guest, error) {
	g.Email = normEmail(g.Email)
	res, err := tx.ExecContext(ctx, qGuestInsert, g.Name, g.Email, g.Phone, g.IDProof, g.CreatedAt)
	if err != nil {
		if isDuplicate(err) {
			return model.Guest{}, ErrDuplicateEmail
		}
		return model.Guest{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Guest{}, err
	}
	g.ID = uint64(id)
	return g, nil
}

func getGuest(ctx context.Context, q querier, query string, arg any) (model.Guest, error) {
	g, err := scanGuest(q.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Guest{}, ErrNotFound
	}
	return g, err
}

func scanGuest(s rowScanner) (model.Guest, error) {
	var (
		g       model.Guest
		idProof sql.NullString
	)
	err := s.Scan(&g.ID, &g.Name, &g.Email, &g.Phone, &idProof, &g.CreatedAt)
	g.IDProof = idProof.String
	return g, err
}

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlDuplicateKey
	}
	return strings.Contains(err.Error(), "1062")
}

func normEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
