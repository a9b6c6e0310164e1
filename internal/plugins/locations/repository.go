package locations

import (
	"context"
	"database/sql"
	"errors"

	"github.com/keyxmakerx/worldatlas/internal/world"
)

// LocationRepository defines persistence operations for locations.
type LocationRepository interface {
	Create(ctx context.Context, loc *world.Location) error
	FindByID(ctx context.Context, id string) (*world.Location, error)
	Update(ctx context.Context, loc *world.Location) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]world.Location, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// locationRepo is the MariaDB implementation of LocationRepository.
type locationRepo struct {
	db *sql.DB
}

// NewLocationRepository creates a new MariaDB-backed location repository.
func NewLocationRepository(db *sql.DB) LocationRepository {
	return &locationRepo{db: db}
}

const locationCols = `id, name, type, x, y, description, lore, image_url, status,
       created_at, updated_at`

// scanLocation reads a row into a Location. Returns nil, nil on no rows.
func scanLocation(scanner interface{ Scan(...any) error }) (*world.Location, error) {
	loc := &world.Location{}
	err := scanner.Scan(&loc.ID, &loc.Name, &loc.Type, &loc.X, &loc.Y,
		&loc.Description, &loc.Lore, &loc.ImageURL, &loc.Status,
		&loc.CreatedAt, &loc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return loc, err
}

func (r *locationRepo) Create(ctx context.Context, loc *world.Location) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO locations (id, name, type, x, y, description, lore, image_url, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		loc.ID, loc.Name, loc.Type, loc.X, loc.Y,
		loc.Description, loc.Lore, loc.ImageURL, loc.Status,
	)
	return err
}

func (r *locationRepo) FindByID(ctx context.Context, id string) (*world.Location, error) {
	return scanLocation(r.db.QueryRowContext(ctx,
		`SELECT `+locationCols+` FROM locations WHERE id = ?`, id))
}

func (r *locationRepo) Update(ctx context.Context, loc *world.Location) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE locations SET name = ?, type = ?, x = ?, y = ?, description = ?,
		        lore = ?, image_url = ?, status = ?
		 WHERE id = ?`,
		loc.Name, loc.Type, loc.X, loc.Y, loc.Description,
		loc.Lore, loc.ImageURL, loc.Status, loc.ID,
	)
	return err
}

// Delete removes a location. Character references are nulled by the
// ON DELETE SET NULL foreign keys.
func (r *locationRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM locations WHERE id = ?`, id)
	return err
}

// List returns every location ordered by name.
func (r *locationRepo) List(ctx context.Context) ([]world.Location, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+locationCols+` FROM locations ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []world.Location{}
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *loc)
	}
	return result, rows.Err()
}

func (r *locationRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM locations WHERE id = ?)`, id).Scan(&exists)
	return exists, err
}
