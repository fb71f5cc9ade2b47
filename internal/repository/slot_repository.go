package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/sepehrvand/academy-booking/internal/model"
)

// maxBookAttempts bounds the retry loop around deadlocks and lock-wait
// timeouts during promotion.  Capacity exhaustion is never retried.
const maxBookAttempts = 3

// SlotRepo is the slot ledger: it owns the workshop_slots table, the unit
// of capacity truth.  Rows appear on demand (admin override or first
// booking) and are never deleted; cancellation is a status transition.  The
// unique key on (workshop_template_id, slot_date) makes promote-if-absent
// idempotent when concurrent callers race to create the same slot.
type SlotRepo struct {
	db  *sql.DB
	now func() time.Time

	// attempt runs one booking transaction; the retry loop in
	// PromoteAndBook calls it.  Overridable so retry behavior can be
	// tested without a database.
	attempt func(ctx context.Context, req BookRequest) (BookResult, error)
}

// NewSlotRepo returns a new SlotRepo bound to the given database.
func NewSlotRepo(db *sql.DB) *SlotRepo {
	r := &SlotRepo{db: db, now: time.Now}
	r.attempt = r.tryPromoteAndBook
	return r
}

// DB exposes the underlying handle for cross-repository transactions.
func (r *SlotRepo) DB() *sql.DB { return r.db }

const slotColumns = `id, workshop_template_id, DATE_FORMAT(slot_date, '%Y-%m-%d'),
       start_minute, end_minute, capacity, booked_count, status, created_at, updated_at`

// GetByID returns a single persisted slot or ErrSlotNotFound.
func (r *SlotRepo) GetByID(ctx context.Context, id uint64) (*model.WorkshopSlot, error) {
	const q = `SELECT ` + slotColumns + ` FROM workshop_slots WHERE id = ?`
	s, err := scanSlot(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	return s, nil
}

// ListByTemplateIDs returns every persisted slot belonging to the given
// templates on or after fromDate.  The expander merges these overrides into
// the virtual slot list.  Passing no IDs yields an empty slice.
func (r *SlotRepo) ListByTemplateIDs(ctx context.Context, templateIDs []uint64, fromDate string) ([]model.WorkshopSlot, error) {
	if len(templateIDs) == 0 {
		return []model.WorkshopSlot{}, nil
	}
	placeholders := make([]string, 0, len(templateIDs))
	args := make([]interface{}, 0, len(templateIDs)+1)
	for _, id := range templateIDs {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}
	args = append(args, fromDate)
	query := `SELECT ` + slotColumns + ` FROM workshop_slots
              WHERE workshop_template_id IN (` + strings.Join(placeholders, ",") + `)
                AND slot_date >= ?
              ORDER BY slot_date, start_minute`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.WorkshopSlot, 0)
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// Override promotes an occurrence with an administrator-chosen capacity, or
// adjusts the capacity of an already persisted slot.  The write runs in a
// transaction with the row locked so a concurrent booking cannot slip a
// seat in between the read and the update.  Shrinking capacity below the
// current booked count fails with ErrCapacityBelowBooked.
func (r *SlotRepo) Override(ctx context.Context, templateID uint64, date string, capacity uint32) (*model.WorkshopSlot, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	tpl, err := templateForShareTx(ctx, tx, templateID)
	if err != nil {
		return nil, err
	}
	// Past dates are allowed here (operational corrections), but the date
	// must still be one the recurrence pattern produces.
	if !tpl.OccursOn(date) {
		return nil, ErrNotAnOccurrence
	}
	if err := promoteTx(ctx, tx, tpl, date); err != nil {
		return nil, err
	}
	slot, err := slotForUpdateTx(ctx, tx, templateID, date)
	if err != nil {
		return nil, err
	}
	if capacity < slot.BookedCount {
		return nil, ErrCapacityBelowBooked
	}
	status := slot.Status
	if status != model.SlotCancelled {
		status = model.SlotAvailable
		if slot.BookedCount >= capacity {
			status = model.SlotFull
		}
	}
	const upd = `UPDATE workshop_slots SET capacity = ?, status = ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, upd, capacity, status, slot.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	slot.Capacity = capacity
	slot.Status = status
	return slot, nil
}

// Cancel transitions a slot to CANCELLED.  The row stays in place so
// existing bookings keep a valid parent; the expander will surface the slot
// as cancelled and the ledger will refuse further bookings against it.
func (r *SlotRepo) Cancel(ctx context.Context, id uint64) error {
	const q = `UPDATE workshop_slots SET status = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, q, model.SlotCancelled, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// BookRequest carries one booking attempt into the ledger transaction.  The
// slot is addressed by (TemplateID, Date); whether a persisted row already
// exists is irrelevant to the caller, which is the point of the promote-if-
// absent design.  Slot times and the default capacity are taken from the
// template row inside the transaction, never from client input.
type BookRequest struct {
	TemplateID uint64
	Date       string // "2006-01-02"
	Booking    model.Booking
}

// BookResult reports the committed outcome of a booking attempt.
type BookResult struct {
	Booking       model.Booking // with ID, Reference, SlotID and CreatedAt filled in
	TemplateTitle string
	Date          string
	StartTime     model.TimeOfDay
	EndTime       model.TimeOfDay
	BookedCount   uint32
	Capacity      uint32
	Promoted      bool // true when this call created the slot row
}

// PromoteAndBook performs the whole booking unit of work atomically:
// promote-if-absent, capacity check, booked-count increment and booking
// insert all commit together or not at all.  No caller can observe a slot
// whose booked count moved without a matching booking row.  Transient
// deadlocks during promotion are retried up to maxBookAttempts before
// surfacing ErrWriteConflict.  Contention is scoped to the one slot row;
// bookings against different slots never block each other.
func (r *SlotRepo) PromoteAndBook(ctx context.Context, req BookRequest) (BookResult, error) {
	var res BookResult
	var err error
	for i := 0; i < maxBookAttempts; i++ {
		res, err = r.attempt(ctx, req)
		if err == nil || !isRetryable(err) {
			return res, err
		}
	}
	return BookResult{}, ErrWriteConflict
}

func (r *SlotRepo) tryPromoteAndBook(ctx context.Context, req BookRequest) (BookResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return BookResult{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	tpl, err := templateForShareTx(ctx, tx, req.TemplateID)
	if err != nil {
		return BookResult{}, err
	}
	if !tpl.IsActive {
		return BookResult{}, ErrTemplateInactive
	}
	// The recurrence pattern is authoritative, not the client: a date the
	// template never runs on, or one already behind us, must not promote a
	// slot the expander would never list.  ISO dates compare as strings.
	today := r.now().UTC().Format(model.DateLayout)
	if req.Date < today || !tpl.OccursOn(req.Date) {
		return BookResult{}, ErrNotAnOccurrence
	}

	promoted, err := promoteIfAbsentTx(ctx, tx, tpl, req.Date)
	if err != nil {
		return BookResult{}, err
	}
	slot, err := slotForUpdateTx(ctx, tx, req.TemplateID, req.Date)
	if err != nil {
		return BookResult{}, err
	}
	if slot.Status == model.SlotCancelled {
		return BookResult{}, ErrSlotCancelled
	}
	if slot.BookedCount >= slot.Capacity {
		return BookResult{}, ErrSlotFull
	}

	newCount := slot.BookedCount + 1
	status := model.SlotAvailable
	if newCount >= slot.Capacity {
		status = model.SlotFull
	}
	const upd = `UPDATE workshop_slots SET booked_count = ?, status = ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, upd, newCount, status, slot.ID); err != nil {
		return BookResult{}, err
	}

	booking := req.Booking
	booking.WorkshopSlotID = slot.ID
	booking.WorkshopTemplateID = req.TemplateID
	booking.Status = model.BookingConfirmed
	if err := insertBookingTx(ctx, tx, &booking); err != nil {
		return BookResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return BookResult{}, err
	}
	committed = true
	return BookResult{
		Booking:       booking,
		TemplateTitle: tpl.Title,
		Date:          req.Date,
		StartTime:     slot.StartTime,
		EndTime:       slot.EndTime,
		BookedCount:   newCount,
		Capacity:      slot.Capacity,
		Promoted:      promoted,
	}, nil
}

// templateForShareTx reads the template under a shared lock.  A concurrent
// deactivation (an UPDATE) must wait for in-flight bookings, but bookings
// against different dates of the same template do not block each other,
// keeping contention scoped to the single slot row.
func templateForShareTx(ctx context.Context, tx *sql.Tx, templateID uint64) (*model.WorkshopTemplate, error) {
	const q = `SELECT id, title, recurrence_type,
                      COALESCE(DATE_FORMAT(one_time_date, '%Y-%m-%d'), ''), COALESCE(days_of_week, ''),
                      start_minute, duration_min, capacity_per_slot, is_active
               FROM workshop_templates WHERE id = ? FOR SHARE`
	var t model.WorkshopTemplate
	var days string
	var startMinute int
	var active int
	err := tx.QueryRowContext(ctx, q, templateID).Scan(
		&t.ID, &t.Title, &t.RecurrenceType, &t.OneTimeDate, &days,
		&startMinute, &t.DurationMin, &t.CapacityPerSlot, &active,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	t.StartTime = model.TimeOfDay(startMinute)
	t.IsActive = active != 0
	t.DaysOfWeek = parseDays(days)
	return &t, nil
}

// promoteIfAbsentTx creates the slot row with template defaults if it does
// not exist yet.  The unique key absorbs races: a concurrent insert turns
// this into a no-op and the caller adopts the existing row.  It reports
// whether this call created the row.
func promoteIfAbsentTx(ctx context.Context, tx *sql.Tx, tpl *model.WorkshopTemplate, date string) (bool, error) {
	const q = `INSERT INTO workshop_slots
               (workshop_template_id, slot_date, start_minute, end_minute, capacity, booked_count, status)
               VALUES (?, ?, ?, ?, ?, 0, ?)
               ON DUPLICATE KEY UPDATE id = id`
	result, err := tx.ExecContext(ctx, q,
		tpl.ID, date, int(tpl.StartTime), int(tpl.EndTime()), tpl.CapacityPerSlot, model.SlotAvailable,
	)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	// MySQL reports 1 affected row for a fresh insert, 0 for the no-op.
	return n == 1, nil
}

// promoteTx is promoteIfAbsentTx without the created/adopted distinction.
func promoteTx(ctx context.Context, tx *sql.Tx, tpl *model.WorkshopTemplate, date string) error {
	_, err := promoteIfAbsentTx(ctx, tx, tpl, date)
	return err
}

// slotForUpdateTx reads the authoritative slot state under a row lock.
func slotForUpdateTx(ctx context.Context, tx *sql.Tx, templateID uint64, date string) (*model.WorkshopSlot, error) {
	const q = `SELECT ` + slotColumns + ` FROM workshop_slots
               WHERE workshop_template_id = ? AND slot_date = ? FOR UPDATE`
	s, err := scanSlot(tx.QueryRowContext(ctx, q, templateID, date))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	return s, nil
}

// isRetryable recognizes MySQL deadlock (1213) and lock wait timeout (1205)
// errors, the two transient outcomes of colliding promotions.
func isRetryable(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1213 || myErr.Number == 1205
	}
	return false
}

func scanSlot(row rowScanner) (*model.WorkshopSlot, error) {
	var s model.WorkshopSlot
	var startMinute, endMinute int
	if err := row.Scan(
		&s.ID, &s.WorkshopTemplateID, &s.Date,
		&startMinute, &endMinute, &s.Capacity, &s.BookedCount, &s.Status, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	s.StartTime = model.TimeOfDay(startMinute)
	s.EndTime = model.TimeOfDay(endMinute)
	return &s, nil
}
