// Package world holds the shared domain types of the atlas: the three
// editable collections (locations, characters, chronicle entries), their
// closed enumerations, and the row payloads sent on create and update.
//
// Both the data service and its clients speak these types, so the JSON tags
// here are the wire format.
package world

import "time"

// Location is a place pinned on the world map at percentage coordinates.
type Location struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Type        Category       `json:"type"`
	X           float64        `json:"x"`
	Y           float64        `json:"y"`
	Description string         `json:"description"`
	Lore        string         `json:"lore"`
	ImageURL    string         `json:"image_url"`
	Status      LocationStatus `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// LocationRow is the create/update payload for a location.
type LocationRow struct {
	Name        string         `json:"name"`
	Type        Category       `json:"type"`
	X           float64        `json:"x"`
	Y           float64        `json:"y"`
	Description string         `json:"description"`
	Lore        string         `json:"lore"`
	ImageURL    string         `json:"image_url"`
	Status      LocationStatus `json:"status"`
}

// Character is a person of the setting. Stories and Attributes are opaque
// structured data owned by the editors; the service stores them verbatim.
type Character struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	Title             string         `json:"title"`
	Faction           string         `json:"faction"`
	Description       string         `json:"description"`
	Lore              string         `json:"lore"`
	Bio               string         `json:"bio"`
	RPPrompt          string         `json:"rp_prompt"`
	ImageURL          string         `json:"image_url"`
	Stories           []any          `json:"stories"`
	Attributes        map[string]any `json:"attributes"`
	CurrentLocationID *string        `json:"current_location_id"`
	HomeLocationID    *string        `json:"home_location_id"`
	DiscoveryStage    DiscoveryStage `json:"discovery_stage"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// CharacterRow is the create/update payload for a character.
type CharacterRow struct {
	Name              string         `json:"name"`
	Title             string         `json:"title"`
	Faction           string         `json:"faction"`
	Description       string         `json:"description"`
	Lore              string         `json:"lore"`
	Bio               string         `json:"bio"`
	RPPrompt          string         `json:"rp_prompt"`
	ImageURL          string         `json:"image_url"`
	Stories           []any          `json:"stories"`
	CurrentLocationID *string        `json:"current_location_id"`
	HomeLocationID    *string        `json:"home_location_id"`
	DiscoveryStage    DiscoveryStage `json:"discovery_stage"`
	Attributes        map[string]any `json:"attributes"`
}

// ChronicleEntry is one event on the world timeline. DateLabel is display
// text ("Third Age, winter"), never parsed as a calendar date.
type ChronicleEntry struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	DateLabel string          `json:"date_label"`
	Summary   string          `json:"summary"`
	Status    ChronicleStatus `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TimelineRow is the create/update payload for a chronicle entry.
type TimelineRow struct {
	Title     string          `json:"title"`
	DateLabel string          `json:"date_label"`
	Summary   string          `json:"summary"`
	Status    ChronicleStatus `json:"status"`
}

// ImageUpload is the body of an image upload. Base64 carries the raw file
// bytes without a data-URL prefix.
type ImageUpload struct {
	Entity      Kind   `json:"entity"`
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Base64      string `json:"base64"`
}

// ImageUploadResult is the response of an image upload.
type ImageUploadResult struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// MaxImageBytes is the size ceiling for uploaded images (2 MiB).
const MaxImageBytes = 2 * 1024 * 1024

// StringPtr returns nil for the empty string and a pointer to s otherwise.
// Used for the nullable location references on characters.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
