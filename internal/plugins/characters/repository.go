package characters

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/keyxmakerx/worldatlas/internal/world"
)

// CharacterRepository defines persistence operations for characters.
type CharacterRepository interface {
	Create(ctx context.Context, ch *world.Character) error
	FindByID(ctx context.Context, id string) (*world.Character, error)
	Update(ctx context.Context, ch *world.Character) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]world.Character, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// characterRepo is the MariaDB implementation of CharacterRepository.
type characterRepo struct {
	db *sql.DB
}

// NewCharacterRepository creates a new MariaDB-backed character repository.
func NewCharacterRepository(db *sql.DB) CharacterRepository {
	return &characterRepo{db: db}
}

const characterCols = `id, name, title, faction, description, lore, bio, rp_prompt,
       image_url, stories_json, attributes_json,
       current_location_id, home_location_id, discovery_stage,
       created_at, updated_at`

// scanCharacter reads a row into a Character, decoding the JSON columns.
func scanCharacter(scanner interface{ Scan(...any) error }) (*world.Character, error) {
	ch := &world.Character{}
	var storiesRaw, attrsRaw []byte
	var currentLoc, homeLoc sql.NullString
	err := scanner.Scan(&ch.ID, &ch.Name, &ch.Title, &ch.Faction, &ch.Description,
		&ch.Lore, &ch.Bio, &ch.RPPrompt, &ch.ImageURL, &storiesRaw, &attrsRaw,
		&currentLoc, &homeLoc, &ch.DiscoveryStage, &ch.CreatedAt, &ch.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := decodeJSON(storiesRaw, &ch.Stories); err != nil {
		return nil, fmt.Errorf("decoding stories of %s: %w", ch.ID, err)
	}
	if err := decodeJSON(attrsRaw, &ch.Attributes); err != nil {
		return nil, fmt.Errorf("decoding attributes of %s: %w", ch.ID, err)
	}
	if ch.Stories == nil {
		ch.Stories = []any{}
	}
	if ch.Attributes == nil {
		ch.Attributes = map[string]any{}
	}
	if currentLoc.Valid {
		ch.CurrentLocationID = &currentLoc.String
	}
	if homeLoc.Valid {
		ch.HomeLocationID = &homeLoc.String
	}
	return ch, nil
}

// decodeJSON keeps numbers as json.Number so large integers in opaque
// editor data round-trip unchanged.
func decodeJSON(raw []byte, v any) error {
	if len(raw) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}

func encodeJSONColumns(ch *world.Character) (stories, attrs []byte, err error) {
	s := ch.Stories
	if s == nil {
		s = []any{}
	}
	a := ch.Attributes
	if a == nil {
		a = map[string]any{}
	}
	if stories, err = json.Marshal(s); err != nil {
		return nil, nil, fmt.Errorf("encoding stories: %w", err)
	}
	if attrs, err = json.Marshal(a); err != nil {
		return nil, nil, fmt.Errorf("encoding attributes: %w", err)
	}
	return stories, attrs, nil
}

func (r *characterRepo) Create(ctx context.Context, ch *world.Character) error {
	stories, attrs, err := encodeJSONColumns(ch)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO characters (id, name, title, faction, description, lore, bio,
		        rp_prompt, image_url, stories_json, attributes_json,
		        current_location_id, home_location_id, discovery_stage)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ch.ID, ch.Name, ch.Title, ch.Faction, ch.Description, ch.Lore, ch.Bio,
		ch.RPPrompt, ch.ImageURL, stories, attrs,
		ch.CurrentLocationID, ch.HomeLocationID, ch.DiscoveryStage,
	)
	return err
}

func (r *characterRepo) FindByID(ctx context.Context, id string) (*world.Character, error) {
	return scanCharacter(r.db.QueryRowContext(ctx,
		`SELECT `+characterCols+` FROM characters WHERE id = ?`, id))
}

func (r *characterRepo) Update(ctx context.Context, ch *world.Character) error {
	stories, attrs, err := encodeJSONColumns(ch)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE characters SET name = ?, title = ?, faction = ?, description = ?,
		        lore = ?, bio = ?, rp_prompt = ?, image_url = ?,
		        stories_json = ?, attributes_json = ?,
		        current_location_id = ?, home_location_id = ?, discovery_stage = ?
		 WHERE id = ?`,
		ch.Name, ch.Title, ch.Faction, ch.Description,
		ch.Lore, ch.Bio, ch.RPPrompt, ch.ImageURL,
		stories, attrs,
		ch.CurrentLocationID, ch.HomeLocationID, ch.DiscoveryStage, ch.ID,
	)
	return err
}

func (r *characterRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM characters WHERE id = ?`, id)
	return err
}

// List returns every character ordered by name.
func (r *characterRepo) List(ctx context.Context) ([]world.Character, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+characterCols+` FROM characters ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []world.Character{}
	for rows.Next() {
		ch, err := scanCharacter(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ch)
	}
	return result, rows.Err()
}

func (r *characterRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM characters WHERE id = ?)`, id).Scan(&exists)
	return exists, err
}
