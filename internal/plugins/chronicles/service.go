// Package chronicles serves the world timeline. Date labels are display
// text ("第三纪元·冬") and are stored as given.
package chronicles

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/keyxmakerx/worldatlas/internal/apperror"
	"github.com/keyxmakerx/worldatlas/internal/sanitize"
	"github.com/keyxmakerx/worldatlas/internal/world"
)

const maxTitleLength = 200

// ChronicleService defines business logic for timeline events.
type ChronicleService interface {
	Create(ctx context.Context, row world.TimelineRow) (*world.ChronicleEntry, error)
	Get(ctx context.Context, id string) (*world.ChronicleEntry, error)
	Update(ctx context.Context, id string, row world.TimelineRow) (*world.ChronicleEntry, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]world.ChronicleEntry, error)
}

type chronicleService struct {
	repo ChronicleRepository
}

// NewChronicleService creates a ChronicleService.
func NewChronicleService(repo ChronicleRepository) ChronicleService {
	return &chronicleService{repo: repo}
}

func (s *chronicleService) Create(ctx context.Context, row world.TimelineRow) (*world.ChronicleEntry, error) {
	row, err := normalizeRow(row)
	if err != nil {
		return nil, err
	}
	e := &world.ChronicleEntry{ID: uuid.NewString()}
	applyRow(e, row)
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("create chronicle entry: %w", err)
	}
	if stored, err := s.repo.FindByID(ctx, e.ID); err == nil && stored != nil {
		return stored, nil
	}
	return e, nil
}

func (s *chronicleService) Get(ctx context.Context, id string) (*world.ChronicleEntry, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get chronicle entry: %w", err)
	}
	if e == nil {
		return nil, apperror.NewNotFound("chronicle entry not found")
	}
	return e, nil
}

func (s *chronicleService) Update(ctx context.Context, id string, row world.TimelineRow) (*world.ChronicleEntry, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	row, err = normalizeRow(row)
	if err != nil {
		return nil, err
	}
	applyRow(e, row)
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, fmt.Errorf("update chronicle entry: %w", err)
	}
	if stored, err := s.repo.FindByID(ctx, e.ID); err == nil && stored != nil {
		return stored, nil
	}
	return e, nil
}

func (s *chronicleService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete chronicle entry: %w", err)
	}
	return nil
}

func (s *chronicleService) List(ctx context.Context) ([]world.ChronicleEntry, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list chronicle entries: %w", err)
	}
	if entries == nil {
		entries = []world.ChronicleEntry{}
	}
	return entries, nil
}

func normalizeRow(row world.TimelineRow) (world.TimelineRow, error) {
	row.Title = sanitize.Text(row.Title)
	if row.Title == "" {
		return row, apperror.NewValidation("chronicle title is required")
	}
	if utf8.RuneCountInString(row.Title) > maxTitleLength {
		return row, apperror.NewValidation(fmt.Sprintf("chronicle title must be at most %d characters", maxTitleLength))
	}
	row.DateLabel = sanitize.Text(row.DateLabel)
	if utf8.RuneCountInString(row.DateLabel) > maxTitleLength {
		return row, apperror.NewValidation("date label is too long")
	}
	row.Summary = sanitize.Lore(row.Summary)
	row.Status = row.Status.OrDefault()
	return row, nil
}

func applyRow(e *world.ChronicleEntry, row world.TimelineRow) {
	e.Title = row.Title
	e.DateLabel = row.DateLabel
	e.Summary = row.Summary
	e.Status = row.Status
}
