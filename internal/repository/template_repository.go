package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/sepehrvand/academy-booking/internal/model"
)

// TemplateRepo provides CRUD operations for workshop templates.  Templates
// are the read-only input of the recurrence expander; they are created and
// edited through the admin API and never hard deleted, only deactivated.
// All timestamp fields are stored in UTC.
type TemplateRepo struct {
	db *sql.DB
}

// NewTemplateRepo returns a new TemplateRepo bound to the given database.
func NewTemplateRepo(db *sql.DB) *TemplateRepo { return &TemplateRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions that
// span repositories.
func (r *TemplateRepo) DB() *sql.DB { return r.db }

const templateColumns = `id, title, recurrence_type,
       COALESCE(DATE_FORMAT(one_time_date, '%Y-%m-%d'), ''), COALESCE(days_of_week, ''),
       start_minute, duration_min, capacity_per_slot, is_active, created_at, updated_at`

// Create inserts a new template and populates the generated ID and
// timestamps on the provided record.
func (r *TemplateRepo) Create(ctx context.Context, t *model.WorkshopTemplate) error {
	const q = `INSERT INTO workshop_templates
               (title, recurrence_type, one_time_date, days_of_week, start_minute, duration_min, capacity_per_slot, is_active)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q,
		t.Title, t.RecurrenceType, nullableDate(t.OneTimeDate), nullableDays(t.DaysOfWeek),
		int(t.StartTime), t.DurationMin, t.CapacityPerSlot, t.IsActive,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	// Query back the row to populate timestamps and defaults.
	got, err := r.GetByID(ctx, t.ID)
	if err != nil {
		return err
	}
	*t = *got
	return nil
}

// GetByID returns a single template or ErrTemplateNotFound.
func (r *TemplateRepo) GetByID(ctx context.Context, id uint64) (*model.WorkshopTemplate, error) {
	const q = `SELECT ` + templateColumns + ` FROM workshop_templates WHERE id = ?`
	t, err := scanTemplate(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return t, nil
}

// ListAll returns every template, newest first.  Used by the admin API.
func (r *TemplateRepo) ListAll(ctx context.Context) ([]model.WorkshopTemplate, error) {
	const q = `SELECT ` + templateColumns + ` FROM workshop_templates ORDER BY created_at DESC, id DESC`
	return r.list(ctx, q)
}

// ListActive returns the templates the expander should consider.  Ordering
// by id keeps expansion input deterministic.
func (r *TemplateRepo) ListActive(ctx context.Context) ([]model.WorkshopTemplate, error) {
	const q = `SELECT ` + templateColumns + ` FROM workshop_templates WHERE is_active = 1 ORDER BY id`
	return r.list(ctx, q)
}

func (r *TemplateRepo) list(ctx context.Context, q string, args ...interface{}) ([]model.WorkshopTemplate, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.WorkshopTemplate, 0)
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// Update rewrites the mutable fields of a template.  It returns
// ErrTemplateNotFound when no row matches.
func (r *TemplateRepo) Update(ctx context.Context, t *model.WorkshopTemplate) error {
	const q = `UPDATE workshop_templates
               SET title = ?, recurrence_type = ?, one_time_date = ?, days_of_week = ?,
                   start_minute = ?, duration_min = ?, capacity_per_slot = ?, is_active = ?
               WHERE id = ?`
	result, err := r.db.ExecContext(ctx, q,
		t.Title, t.RecurrenceType, nullableDate(t.OneTimeDate), nullableDays(t.DaysOfWeek),
		int(t.StartTime), t.DurationMin, t.CapacityPerSlot, t.IsActive, t.ID,
	)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// RowsAffected is also 0 for a no-op update; confirm existence.
		if _, err := r.GetByID(ctx, t.ID); err != nil {
			return err
		}
	}
	return nil
}

// Deactivate flips is_active off.  Existing slots and bookings are
// untouched; the template simply stops producing occurrences.
func (r *TemplateRepo) Deactivate(ctx context.Context, id uint64) error {
	const q = `UPDATE workshop_templates SET is_active = 0 WHERE id = ?`
	result, err := r.db.ExecContext(ctx, q, id)
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

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTemplate(row rowScanner) (*model.WorkshopTemplate, error) {
	var t model.WorkshopTemplate
	var days string
	var startMinute int
	var active int
	if err := row.Scan(
		&t.ID, &t.Title, &t.RecurrenceType, &t.OneTimeDate, &days,
		&startMinute, &t.DurationMin, &t.CapacityPerSlot, &active, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	t.StartTime = model.TimeOfDay(startMinute)
	t.IsActive = active != 0
	t.DaysOfWeek = parseDays(days)
	return &t, nil
}

// parseDays decodes the "1,3,5" csv stored in days_of_week.  Malformed
// entries are dropped; the expander treats an empty set as unschedulable.
func parseDays(csv string) []int {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	days := make([]int, 0, len(parts))
	for _, p := range parts {
		if n, err := strconv.Atoi(strings.TrimSpace(p)); err == nil {
			days = append(days, n)
		}
	}
	return days
}

func encodeDays(days []int) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}

func nullableDays(days []int) interface{} {
	if len(days) == 0 {
		return nil
	}
	return encodeDays(days)
}

func nullableDate(date string) interface{} {
	if date == "" {
		return nil
	}
	return date
}
