// Package characters serves the people of the setting. Stories and
// attributes are opaque JSON owned by the editors; the service stores them
// verbatim and only checks that location references point somewhere real.
package characters

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/keyxmakerx/worldatlas/internal/apperror"
	"github.com/keyxmakerx/worldatlas/internal/plugins/locations"
	"github.com/keyxmakerx/worldatlas/internal/sanitize"
	"github.com/keyxmakerx/worldatlas/internal/world"
)

const (
	maxNameLength  = 200
	maxShortLength = 200
)

// LocationLookup reports whether a location exists. Satisfied by
// locations.LocationService.
type LocationLookup interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// CharacterService defines business logic for characters.
type CharacterService interface {
	Create(ctx context.Context, row world.CharacterRow) (*world.Character, error)
	Get(ctx context.Context, id string) (*world.Character, error)
	Update(ctx context.Context, id string, row world.CharacterRow) (*world.Character, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]world.Character, error)
	Exists(ctx context.Context, id string) (bool, error)
}

type characterService struct {
	repo      CharacterRepository
	locations LocationLookup
}

// NewCharacterService creates a CharacterService.
func NewCharacterService(repo CharacterRepository, locations LocationLookup) CharacterService {
	return &characterService{repo: repo, locations: locations}
}

func (s *characterService) Create(ctx context.Context, row world.CharacterRow) (*world.Character, error) {
	row, err := s.normalizeRow(ctx, row)
	if err != nil {
		return nil, err
	}

	ch := &world.Character{ID: uuid.NewString()}
	applyRow(ch, row)
	if err := s.repo.Create(ctx, ch); err != nil {
		return nil, fmt.Errorf("create character: %w", err)
	}
	if stored, err := s.repo.FindByID(ctx, ch.ID); err == nil && stored != nil {
		return stored, nil
	}
	return ch, nil
}

func (s *characterService) Get(ctx context.Context, id string) (*world.Character, error) {
	ch, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get character: %w", err)
	}
	if ch == nil {
		return nil, apperror.NewNotFound("character not found")
	}
	return ch, nil
}

func (s *characterService) Update(ctx context.Context, id string, row world.CharacterRow) (*world.Character, error) {
	ch, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	row, err = s.normalizeRow(ctx, row)
	if err != nil {
		return nil, err
	}

	applyRow(ch, row)
	if err := s.repo.Update(ctx, ch); err != nil {
		return nil, fmt.Errorf("update character: %w", err)
	}
	if stored, err := s.repo.FindByID(ctx, ch.ID); err == nil && stored != nil {
		return stored, nil
	}
	return ch, nil
}

func (s *characterService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete character: %w", err)
	}
	return nil
}

func (s *characterService) List(ctx context.Context) ([]world.Character, error) {
	chars, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}
	if chars == nil {
		chars = []world.Character{}
	}
	return chars, nil
}

func (s *characterService) Exists(ctx context.Context, id string) (bool, error) {
	ok, err := s.repo.Exists(ctx, id)
	if err != nil {
		return false, fmt.Errorf("check character: %w", err)
	}
	return ok, nil
}

func (s *characterService) normalizeRow(ctx context.Context, row world.CharacterRow) (world.CharacterRow, error) {
	row.Name = sanitize.Text(row.Name)
	if row.Name == "" {
		return row, apperror.NewValidation("character name is required")
	}
	if utf8.RuneCountInString(row.Name) > maxNameLength {
		return row, apperror.NewValidation(fmt.Sprintf("character name must be at most %d characters", maxNameLength))
	}

	row.Title = sanitize.Text(row.Title)
	row.Faction = sanitize.Text(row.Faction)
	if utf8.RuneCountInString(row.Title) > maxShortLength || utf8.RuneCountInString(row.Faction) > maxShortLength {
		return row, apperror.NewValidation(fmt.Sprintf("title and faction must be at most %d characters", maxShortLength))
	}
	row.Description = sanitize.Text(row.Description)
	row.Lore = sanitize.Lore(row.Lore)
	row.Bio = sanitize.Lore(row.Bio)
	// The role-play prompt goes to the chat model, never to a browser.
	row.RPPrompt = strings.TrimSpace(row.RPPrompt)

	imageURL, err := locations.ValidateImageURL(row.ImageURL)
	if err != nil {
		return row, err
	}
	row.ImageURL = imageURL

	if row.Stories == nil {
		row.Stories = []any{}
	}
	if row.Attributes == nil {
		row.Attributes = map[string]any{}
	}
	row.DiscoveryStage = row.DiscoveryStage.OrDefault()

	if row.CurrentLocationID, err = s.checkLocation(ctx, row.CurrentLocationID, "current"); err != nil {
		return row, err
	}
	if row.HomeLocationID, err = s.checkLocation(ctx, row.HomeLocationID, "home"); err != nil {
		return row, err
	}
	return row, nil
}

// checkLocation normalizes an empty reference to nil and rejects IDs that
// don't name an existing location.
func (s *characterService) checkLocation(ctx context.Context, ref *string, label string) (*string, error) {
	id := strings.TrimSpace(world.Deref(ref))
	if id == "" {
		return nil, nil
	}
	ok, err := s.locations.Exists(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("check %s location: %w", label, err)
	}
	if !ok {
		return nil, apperror.NewValidation(fmt.Sprintf("%s location %q does not exist", label, id))
	}
	return &id, nil
}

func applyRow(ch *world.Character, row world.CharacterRow) {
	ch.Name = row.Name
	ch.Title = row.Title
	ch.Faction = row.Faction
	ch.Description = row.Description
	ch.Lore = row.Lore
	ch.Bio = row.Bio
	ch.RPPrompt = row.RPPrompt
	ch.ImageURL = row.ImageURL
	ch.Stories = row.Stories
	ch.Attributes = row.Attributes
	ch.CurrentLocationID = row.CurrentLocationID
	ch.HomeLocationID = row.HomeLocationID
	ch.DiscoveryStage = row.DiscoveryStage
}
