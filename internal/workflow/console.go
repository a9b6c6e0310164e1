package workflow

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"

	"github.com/keyxmakerx/worldatlas/internal/session"
	"github.com/keyxmakerx/worldatlas/internal/world"
)

// Tab is one of the console's three collection tabs.
type Tab string

const (
	TabLocations  Tab = "locations"
	TabCharacters Tab = "characters"
	TabChronicles Tab = "timeline"
)

// Tabs lists the tabs in display order.
var Tabs = []Tab{TabLocations, TabCharacters, TabChronicles}

// Valid reports whether t names a tab.
func (t Tab) Valid() bool {
	return slices.Contains(Tabs, t)
}

// ErrNotFound is returned when selecting an id that is not in the loaded
// collection.
var ErrNotFound = errors.New("workflow: record not loaded")

// DataSource lists the admin view of every collection.
type DataSource interface {
	ListLocations(ctx context.Context) ([]world.Location, error)
	ListCharacters(ctx context.Context) ([]world.Character, error)
	ListTimeline(ctx context.Context) ([]world.ChronicleEntry, error)
}

// Backends groups the write side of the three collections.
type Backends struct {
	Locations  Backend[world.LocationRow]
	Characters Backend[world.CharacterRow]
	Timeline   Backend[world.TimelineRow]
}

// Console is the state of one admin console: the session guard, the three
// loaded collections, the active tab, one status line and an editor per
// collection. Every write reloads all three collections, since a location
// change shows up in the character location pickers.
type Console struct {
	Guard      *session.Guard
	Locations  *Editor[LocationDraft, world.LocationRow]
	Characters *Editor[CharacterDraft, world.CharacterRow]
	Chronicles *Editor[ChronicleDraft, world.TimelineRow]

	source DataSource

	mu         sync.RWMutex
	tab        Tab
	status     string
	loading    bool
	locations  []world.Location
	characters []world.Character
	entries    []world.ChronicleEntry
}

// NewConsole wires a console. The guard's verification hook triggers the
// initial reload.
func NewConsole(guard *session.Guard, source DataSource, uploader Uploader, b Backends) *Console {
	c := &Console{Guard: guard, source: source, tab: TabLocations}

	c.Locations = NewEditor(EditorConfig[LocationDraft, world.LocationRow]{
		Kind:      world.KindLocation,
		Backend:   b.Locations,
		ToRow:     LocationDraft.Row,
		Seed:      NewLocationDraft,
		Reload:    c.Reload,
		Status:    c.setStatus,
		WithImage: LocationDraft.withImage,
		Uploader:  uploader,
	})
	c.Characters = NewEditor(EditorConfig[CharacterDraft, world.CharacterRow]{
		Kind:    world.KindCharacter,
		Backend: b.Characters,
		ToRow: func(d CharacterDraft) world.CharacterRow {
			return d.Row(c.firstLocationID())
		},
		Seed: func() CharacterDraft {
			return NewCharacterDraft(c.firstLocationID())
		},
		Reload:    c.Reload,
		Status:    c.setStatus,
		WithImage: CharacterDraft.withImage,
		Uploader:  uploader,
	})
	c.Chronicles = NewEditor(EditorConfig[ChronicleDraft, world.TimelineRow]{
		Kind:    world.KindChronicle,
		Backend: b.Timeline,
		ToRow:   ChronicleDraft.Row,
		Seed:    NewChronicleDraft,
		Reload:  c.Reload,
		Status:  c.setStatus,
	})

	guard.OnVerified(func(ctx context.Context) {
		_ = c.Reload(ctx)
	})
	return c
}

// Init verifies a stored credential, loading the collections on success.
func (c *Console) Init(ctx context.Context) error {
	return c.Guard.Init(ctx)
}

// Login verifies token and loads the collections on success.
func (c *Console) Login(ctx context.Context, token string) error {
	return c.Guard.Login(ctx, token)
}

// Logout forgets the credential and every loaded record.
func (c *Console) Logout(ctx context.Context) error {
	err := c.Guard.Logout(ctx)
	c.mu.Lock()
	c.locations, c.characters, c.entries = nil, nil, nil
	c.status = ""
	c.mu.Unlock()
	c.resetEditors()
	return err
}

// Reload lists the three collections concurrently and replaces the local
// copies only when all three succeed.
func (c *Console) Reload(ctx context.Context) error {
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.loading = false
		c.mu.Unlock()
	}()

	var (
		locations  []world.Location
		characters []world.Character
		entries    []world.ChronicleEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		locations, err = c.source.ListLocations(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		characters, err = c.source.ListCharacters(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		entries, err = c.source.ListTimeline(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		c.setStatus(localize(msgLoadFailed, cause(err)))
		return fmt.Errorf("reloading collections: %w", err)
	}

	c.mu.Lock()
	c.locations, c.characters, c.entries = locations, characters, entries
	c.mu.Unlock()

	c.Locations.Refresh(func(id string) (LocationDraft, bool) {
		l, ok := findByID(locations, id, func(l world.Location) string { return l.ID })
		return LocationDraftOf(l), ok
	})
	c.Characters.Refresh(func(id string) (CharacterDraft, bool) {
		ch, ok := findByID(characters, id, func(ch world.Character) string { return ch.ID })
		return CharacterDraftOf(ch), ok
	})
	c.Chronicles.Refresh(func(id string) (ChronicleDraft, bool) {
		e, ok := findByID(entries, id, func(e world.ChronicleEntry) string { return e.ID })
		return ChronicleDraftOf(e), ok
	})
	return nil
}

// SwitchTab activates tab and silently discards every editor's draft.
func (c *Console) SwitchTab(tab Tab) {
	if !tab.Valid() {
		return
	}
	c.mu.Lock()
	c.tab = tab
	c.mu.Unlock()
	c.resetEditors()
}

// Select hydrates the editor of tab from the loaded record id.
func (c *Console) Select(tab Tab, id string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch tab {
	case TabLocations:
		l, ok := findByID(c.locations, id, func(l world.Location) string { return l.ID })
		if !ok {
			return ErrNotFound
		}
		c.Locations.Select(id, LocationDraftOf(l))
	case TabCharacters:
		ch, ok := findByID(c.characters, id, func(ch world.Character) string { return ch.ID })
		if !ok {
			return ErrNotFound
		}
		c.Characters.Select(id, CharacterDraftOf(ch))
	case TabChronicles:
		e, ok := findByID(c.entries, id, func(e world.ChronicleEntry) string { return e.ID })
		if !ok {
			return ErrNotFound
		}
		c.Chronicles.Select(id, ChronicleDraftOf(e))
	default:
		return ErrNotFound
	}
	return nil
}

// New puts the editor of tab into the Unselected state.
func (c *Console) New(tab Tab) {
	switch tab {
	case TabLocations:
		c.Locations.New()
	case TabCharacters:
		c.Characters.New()
	case TabChronicles:
		c.Chronicles.New()
	}
}

func (c *Console) resetEditors() {
	c.Locations.New()
	c.Characters.New()
	c.Chronicles.New()
}

func (c *Console) Tab() Tab {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tab
}

// Status returns the last operation's message.
func (c *Console) Status() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// Loading reports whether a reload is in flight.
func (c *Console) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

func (c *Console) setStatus(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = msg
}

// firstLocationID is the default current location of a character, taken
// from the list order of the data service.
func (c *Console) firstLocationID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.locations) == 0 {
		return ""
	}
	return c.locations[0].ID
}

// SortedLocations returns the loaded locations ordered by name.
func (c *Console) SortedLocations() []world.Location {
	c.mu.RLock()
	out := slices.Clone(c.locations)
	c.mu.RUnlock()
	col := newCollator()
	slices.SortStableFunc(out, func(a, b world.Location) int {
		return col.CompareString(a.Name, b.Name)
	})
	return out
}

// SortedCharacters returns the loaded characters ordered by name.
func (c *Console) SortedCharacters() []world.Character {
	c.mu.RLock()
	out := slices.Clone(c.characters)
	c.mu.RUnlock()
	col := newCollator()
	slices.SortStableFunc(out, func(a, b world.Character) int {
		return col.CompareString(a.Name, b.Name)
	})
	return out
}

// SortedChronicles returns the loaded chronicle entries ordered by title.
func (c *Console) SortedChronicles() []world.ChronicleEntry {
	c.mu.RLock()
	out := slices.Clone(c.entries)
	c.mu.RUnlock()
	col := newCollator()
	slices.SortStableFunc(out, func(a, b world.ChronicleEntry) int {
		return col.CompareString(a.Title, b.Title)
	})
	return out
}

// newCollator returns a zh-CN collator. Collators carry scratch buffers
// and are not shared between goroutines.
func newCollator() *collate.Collator {
	return collate.New(consoleLang)
}

func findByID[T any](items []T, id string, idOf func(T) string) (T, bool) {
	for _, it := range items {
		if idOf(it) == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}
