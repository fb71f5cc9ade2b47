package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sepehrvand/academy-booking/internal/model"
)

// BookingRepo provides read access to bookings.  Bookings are written only
// through the ledger transaction in SlotRepo.PromoteAndBook; once committed
// they are immutable from this service's point of view.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, reference, workshop_slot_id, workshop_template_id,
       parent_name, phone, student_name, student_count, COALESCE(note, ''), status, created_at`

// GetByReference returns a booking by its public UUID reference, or
// ErrBookingNotFound.
func (r *BookingRepo) GetByReference(ctx context.Context, reference string) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE reference = ?`
	b, err := scanBooking(r.db.QueryRowContext(ctx, q, reference))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

// ListBySlot returns every booking recorded against a slot, oldest first.
// Used by the admin API to show who holds the seats.
func (r *BookingRepo) ListBySlot(ctx context.Context, slotID uint64) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE workshop_slot_id = ? ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, q, slotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// insertBookingTx writes the booking row inside the ledger transaction and
// populates the generated ID and creation timestamp on the record.  It is
// unexported on purpose: a booking insert outside the capacity-checked
// transaction would be able to break the capacity invariant.
func insertBookingTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings
               (reference, workshop_slot_id, workshop_template_id, parent_name, phone, student_name, student_count, note, status)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q,
		b.Reference, b.WorkshopSlotID, b.WorkshopTemplateID,
		b.ParentName, b.Phone, b.StudentName, b.StudentCount, nullableNote(b.Note), b.Status,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	const sel = `SELECT created_at FROM bookings WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, b.ID).Scan(&b.CreatedAt)
}

func scanBooking(row rowScanner) (*model.Booking, error) {
	var b model.Booking
	if err := row.Scan(
		&b.ID, &b.Reference, &b.WorkshopSlotID, &b.WorkshopTemplateID,
		&b.ParentName, &b.Phone, &b.StudentName, &b.StudentCount, &b.Note, &b.Status, &b.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &b, nil
}

func nullableNote(note string) interface{} {
	if note == "" {
		return nil
	}
	return note
}
