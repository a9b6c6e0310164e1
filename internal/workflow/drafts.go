package workflow

import (
	"html"

	"github.com/keyxmakerx/worldatlas/internal/world"
)

// LocationDraft is the editable form state of a location.
type LocationDraft struct {
	Name        string
	Type        world.Category
	X           float64
	Y           float64
	Description string
	Lore        string
	ImageURL    string
	Status      world.LocationStatus
}

// NewLocationDraft is the seed for a new location: centred on the map.
func NewLocationDraft() LocationDraft {
	return LocationDraft{
		Type:   world.DefaultCategory,
		X:      50,
		Y:      50,
		Status: world.DefaultLocationStatus,
	}
}

// LocationDraftOf hydrates a draft from a fetched record.
func LocationDraftOf(l world.Location) LocationDraft {
	return LocationDraft{
		Name:        l.Name,
		Type:        l.Type,
		X:           l.X,
		Y:           l.Y,
		Description: l.Description,
		Lore:        editableHTML(l.Lore),
		ImageURL:    l.ImageURL,
		Status:      l.Status,
	}
}

// Row maps the draft to the write payload, filling enum defaults.
func (d LocationDraft) Row() world.LocationRow {
	return world.LocationRow{
		Name:        d.Name,
		Type:        d.Type.OrDefault(),
		X:           d.X,
		Y:           d.Y,
		Description: d.Description,
		Lore:        d.Lore,
		ImageURL:    d.ImageURL,
		Status:      d.Status.OrDefault(),
	}
}

func (d LocationDraft) withImage(url string) LocationDraft {
	d.ImageURL = url
	return d
}

// CharacterDraft is the editable form state of a character. Stories and
// Attributes stay as raw text until the row is built.
type CharacterDraft struct {
	Name              string
	Title             string
	Faction           string
	Description       string
	Lore              string
	Bio               string
	RPPrompt          string
	ImageURL          string
	Stories           world.JSONText
	Attributes        world.JSONText
	CurrentLocationID string
	HomeLocationID    string
	DiscoveryStage    world.DiscoveryStage
}

// NewCharacterDraft seeds a new character at firstLocation ("" for none).
func NewCharacterDraft(firstLocation string) CharacterDraft {
	return CharacterDraft{
		Stories:           world.NewJSONText("[]"),
		Attributes:        world.NewJSONText("{}"),
		CurrentLocationID: firstLocation,
		DiscoveryStage:    world.DefaultDiscoveryStage,
	}
}

// CharacterDraftOf hydrates a draft from a fetched record, pretty-printing
// the structured fields for editing.
func CharacterDraftOf(c world.Character) CharacterDraft {
	return CharacterDraft{
		Name:              c.Name,
		Title:             c.Title,
		Faction:           c.Faction,
		Description:       c.Description,
		Lore:              editableHTML(c.Lore),
		Bio:               editableHTML(c.Bio),
		RPPrompt:          c.RPPrompt,
		ImageURL:          c.ImageURL,
		Stories:           world.JSONTextOf(c.Stories, "[]"),
		Attributes:        world.JSONTextOf(c.Attributes, "{}"),
		CurrentLocationID: world.Deref(c.CurrentLocationID),
		HomeLocationID:    world.Deref(c.HomeLocationID),
		DiscoveryStage:    c.DiscoveryStage,
	}
}

// Row maps the draft to the write payload. An empty current location falls
// back to firstLocation; the home location stays null when empty. Stories
// and attributes that do not parse to the right shape are sent as [] and {}.
func (d CharacterDraft) Row(firstLocation string) world.CharacterRow {
	stories, _ := d.Stories.List()
	attributes, _ := d.Attributes.Object()

	current := d.CurrentLocationID
	if current == "" {
		current = firstLocation
	}

	return world.CharacterRow{
		Name:              d.Name,
		Title:             d.Title,
		Faction:           d.Faction,
		Description:       d.Description,
		Lore:              d.Lore,
		Bio:               d.Bio,
		RPPrompt:          d.RPPrompt,
		ImageURL:          d.ImageURL,
		Stories:           stories,
		Attributes:        attributes,
		CurrentLocationID: world.StringPtr(current),
		HomeLocationID:    world.StringPtr(d.HomeLocationID),
		DiscoveryStage:    d.DiscoveryStage.OrDefault(),
	}
}

// editableHTML undoes the entity escaping the data service applies to
// long-form text, so "A &amp; B" is edited as "A & B". Tags are kept; the
// service escapes the text again on the next save.
func editableHTML(s string) string {
	return html.UnescapeString(s)
}

func (d CharacterDraft) withImage(url string) CharacterDraft {
	d.ImageURL = url
	return d
}

// ChronicleDraft is the editable form state of a chronicle entry.
type ChronicleDraft struct {
	Title     string
	DateLabel string
	Summary   string
	Status    world.ChronicleStatus
}

func NewChronicleDraft() ChronicleDraft {
	return ChronicleDraft{Status: world.DefaultChronicleStatus}
}

func ChronicleDraftOf(e world.ChronicleEntry) ChronicleDraft {
	return ChronicleDraft{
		Title:     e.Title,
		DateLabel: e.DateLabel,
		Summary:   e.Summary,
		Status:    e.Status,
	}
}

func (d ChronicleDraft) Row() world.TimelineRow {
	return world.TimelineRow{
		Title:     d.Title,
		DateLabel: d.DateLabel,
		Summary:   d.Summary,
		Status:    d.Status.OrDefault(),
	}
}
