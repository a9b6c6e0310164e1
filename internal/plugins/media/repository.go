package media

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/keyxmakerx/worldatlas/internal/world"
)

// MediaRepository defines the data access contract for media records.
type MediaRepository interface {
	Create(ctx context.Context, file *MediaFile) error
	FindByID(ctx context.Context, id string) (*MediaFile, error)
	ListByEntity(ctx context.Context, entity world.Kind, entityID string) ([]MediaFile, error)
	Delete(ctx context.Context, id string) error
}

// mediaRepository implements MediaRepository with MariaDB queries.
type mediaRepository struct {
	db *sql.DB
}

// NewMediaRepository creates a new media repository.
func NewMediaRepository(db *sql.DB) MediaRepository {
	return &mediaRepository{db: db}
}

const mediaCols = `id, entity, entity_id, filename, thumbnail, original_name,
       mime_type, file_size, created_at`

func scanMedia(scanner interface{ Scan(...any) error }) (*MediaFile, error) {
	f := &MediaFile{}
	var thumb sql.NullString
	err := scanner.Scan(&f.ID, &f.Entity, &f.EntityID, &f.Filename, &thumb,
		&f.OriginalName, &f.MimeType, &f.FileSize, &f.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	f.Thumbnail = thumb.String
	return f, nil
}

// Create inserts a new media record.
func (r *mediaRepository) Create(ctx context.Context, file *MediaFile) error {
	var thumb sql.NullString
	if file.Thumbnail != "" {
		thumb = sql.NullString{String: file.Thumbnail, Valid: true}
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO media_files (id, entity, entity_id, filename, thumbnail,
		        original_name, mime_type, file_size, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		file.ID, file.Entity, file.EntityID, file.Filename, thumb,
		file.OriginalName, file.MimeType, file.FileSize, file.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting media file: %w", err)
	}
	return nil
}

// FindByID returns a media record, or nil when none exists.
func (r *mediaRepository) FindByID(ctx context.Context, id string) (*MediaFile, error) {
	return scanMedia(r.db.QueryRowContext(ctx,
		`SELECT `+mediaCols+` FROM media_files WHERE id = ?`, id))
}

// ListByEntity returns every image uploaded for one record, newest first.
func (r *mediaRepository) ListByEntity(ctx context.Context, entity world.Kind, entityID string) ([]MediaFile, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+mediaCols+` FROM media_files
		 WHERE entity = ? AND entity_id = ?
		 ORDER BY created_at DESC`, entity, entityID)
	if err != nil {
		return nil, fmt.Errorf("listing media files: %w", err)
	}
	defer rows.Close()

	var result []MediaFile
	for rows.Next() {
		f, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *f)
	}
	return result, rows.Err()
}

// Delete removes a media record.
func (r *mediaRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM media_files WHERE id = ?`, id)
	return err
}
