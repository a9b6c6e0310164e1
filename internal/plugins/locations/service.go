// Package locations serves the places pinned on the world map. Coordinates
// are percentages of the map image, so the service clamps them to 0-100.
package locations

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/keyxmakerx/worldatlas/internal/apperror"
	"github.com/keyxmakerx/worldatlas/internal/sanitize"
	"github.com/keyxmakerx/worldatlas/internal/world"
)

const (
	maxNameLength     = 200
	maxImageURLLength = 512
)

// LocationService defines business logic for locations.
type LocationService interface {
	Create(ctx context.Context, row world.LocationRow) (*world.Location, error)
	Get(ctx context.Context, id string) (*world.Location, error)
	Update(ctx context.Context, id string, row world.LocationRow) (*world.Location, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]world.Location, error)

	// Exists lets other plugins check location references.
	Exists(ctx context.Context, id string) (bool, error)
}

type locationService struct {
	repo LocationRepository
}

// NewLocationService creates a LocationService backed by the given repository.
func NewLocationService(repo LocationRepository) LocationService {
	return &locationService{repo: repo}
}

// Create validates the row and stores a new location with a fresh ID.
func (s *locationService) Create(ctx context.Context, row world.LocationRow) (*world.Location, error) {
	row, err := normalizeRow(row)
	if err != nil {
		return nil, err
	}

	loc := &world.Location{ID: uuid.NewString()}
	applyRow(loc, row)
	if err := s.repo.Create(ctx, loc); err != nil {
		return nil, fmt.Errorf("create location: %w", err)
	}
	return s.reread(ctx, loc)
}

// Get returns a location by ID, or a not-found error.
func (s *locationService) Get(ctx context.Context, id string) (*world.Location, error) {
	loc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get location: %w", err)
	}
	if loc == nil {
		return nil, apperror.NewNotFound("location not found")
	}
	return loc, nil
}

// Update replaces every editable field of an existing location.
func (s *locationService) Update(ctx context.Context, id string, row world.LocationRow) (*world.Location, error) {
	loc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	row, err = normalizeRow(row)
	if err != nil {
		return nil, err
	}

	applyRow(loc, row)
	if err := s.repo.Update(ctx, loc); err != nil {
		return nil, fmt.Errorf("update location: %w", err)
	}
	return s.reread(ctx, loc)
}

// Delete removes a location. Characters pointing at it keep existing with
// the reference cleared.
func (s *locationService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete location: %w", err)
	}
	return nil
}

func (s *locationService) List(ctx context.Context) ([]world.Location, error) {
	locs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	if locs == nil {
		locs = []world.Location{}
	}
	return locs, nil
}

func (s *locationService) Exists(ctx context.Context, id string) (bool, error) {
	ok, err := s.repo.Exists(ctx, id)
	if err != nil {
		return false, fmt.Errorf("check location: %w", err)
	}
	return ok, nil
}

// reread fetches the stored record so timestamps come from the database.
// Falls back to the in-memory value if the read fails.
func (s *locationService) reread(ctx context.Context, loc *world.Location) (*world.Location, error) {
	stored, err := s.repo.FindByID(ctx, loc.ID)
	if err != nil || stored == nil {
		return loc, nil
	}
	return stored, nil
}

// normalizeRow applies enum defaults, clamps coordinates, sanitizes text
// and validates the name and image URL.
func normalizeRow(row world.LocationRow) (world.LocationRow, error) {
	row.Name = sanitize.Text(row.Name)
	if row.Name == "" {
		return row, apperror.NewValidation("location name is required")
	}
	if utf8.RuneCountInString(row.Name) > maxNameLength {
		return row, apperror.NewValidation(fmt.Sprintf("location name must be at most %d characters", maxNameLength))
	}

	row.Type = row.Type.OrDefault()
	row.Status = row.Status.OrDefault()
	row.X = clampPercent(row.X)
	row.Y = clampPercent(row.Y)
	row.Description = sanitize.Text(row.Description)
	row.Lore = sanitize.Lore(row.Lore)

	imageURL, err := ValidateImageURL(row.ImageURL)
	if err != nil {
		return row, err
	}
	row.ImageURL = imageURL
	return row, nil
}

func applyRow(loc *world.Location, row world.LocationRow) {
	loc.Name = row.Name
	loc.Type = row.Type
	loc.X = row.X
	loc.Y = row.Y
	loc.Description = row.Description
	loc.Lore = row.Lore
	loc.ImageURL = row.ImageURL
	loc.Status = row.Status
}

func clampPercent(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}

// ValidateImageURL accepts "", an absolute http(s) URL, or a root-relative
// path. Shared with the characters plugin.
func ValidateImageURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	if len(raw) > maxImageURLLength {
		return "", apperror.NewValidation("image URL is too long")
	}
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
		return raw, nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", apperror.NewValidation("image URL must be an http(s) URL or a path")
	}
	return raw, nil
}
