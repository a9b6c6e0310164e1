package chronicles

import (
	"context"
	"database/sql"
	"errors"

	"github.com/keyxmakerx/worldatlas/internal/world"
)

// ChronicleRepository defines persistence operations for timeline events.
type ChronicleRepository interface {
	Create(ctx context.Context, e *world.ChronicleEntry) error
	FindByID(ctx context.Context, id string) (*world.ChronicleEntry, error)
	Update(ctx context.Context, e *world.ChronicleEntry) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]world.ChronicleEntry, error)
}

type chronicleRepo struct {
	db *sql.DB
}

// NewChronicleRepository creates a new MariaDB-backed chronicle repository.
func NewChronicleRepository(db *sql.DB) ChronicleRepository {
	return &chronicleRepo{db: db}
}

const entryCols = `id, title, date_label, summary, status, created_at, updated_at`

func scanEntry(scanner interface{ Scan(...any) error }) (*world.ChronicleEntry, error) {
	e := &world.ChronicleEntry{}
	err := scanner.Scan(&e.ID, &e.Title, &e.DateLabel, &e.Summary, &e.Status,
		&e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

func (r *chronicleRepo) Create(ctx context.Context, e *world.ChronicleEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO timeline_events (id, title, date_label, summary, status)
		 VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.Title, e.DateLabel, e.Summary, e.Status,
	)
	return err
}

func (r *chronicleRepo) FindByID(ctx context.Context, id string) (*world.ChronicleEntry, error) {
	return scanEntry(r.db.QueryRowContext(ctx,
		`SELECT `+entryCols+` FROM timeline_events WHERE id = ?`, id))
}

func (r *chronicleRepo) Update(ctx context.Context, e *world.ChronicleEntry) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE timeline_events SET title = ?, date_label = ?, summary = ?, status = ?
		 WHERE id = ?`,
		e.Title, e.DateLabel, e.Summary, e.Status, e.ID,
	)
	return err
}

func (r *chronicleRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM timeline_events WHERE id = ?`, id)
	return err
}

// List returns events in insertion order; date labels are free text and
// can't be sorted meaningfully.
func (r *chronicleRepo) List(ctx context.Context) ([]world.ChronicleEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+entryCols+` FROM timeline_events ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []world.ChronicleEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *e)
	}
	return result, rows.Err()
}
