// Package workflow turns admin console drafts into writes against the data
// service and keeps the console's local state consistent with the server
// afterwards.
//
// Each collection gets one Editor. An Editor is either Unselected, holding a
// seeded draft for a new record, or Selected, holding the id of a persisted
// record and a draft hydrated from its last fetch. Ids are assigned only by
// a successful create and only once; every later save is an update.
package workflow

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/keyxmakerx/worldatlas/internal/world"
)

// Guidance errors. They are reported as status messages before any network
// call is made.
var (
	ErrNoSelection   = errors.New("workflow: record has no id yet")
	ErrNoFile        = errors.New("workflow: no image chosen")
	ErrImageTooLarge = errors.New("workflow: image exceeds size ceiling")
	ErrBusy          = errors.New("workflow: upload in progress")
)

// Backend performs the writes of one collection.
type Backend[R any] interface {
	Create(ctx context.Context, row R) (string, error)
	Update(ctx context.Context, id string, row R) error
	Delete(ctx context.Context, id string) error
}

// Uploader sends an image to the data service and returns its public URL.
type Uploader interface {
	UploadImage(ctx context.Context, req world.ImageUpload) (string, error)
}

// ImageFile is a local file chosen for upload. Size is what the browser
// reported; the content is still capped while reading.
type ImageFile struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

// EditorConfig wires an Editor to its collection.
type EditorConfig[D, R any] struct {
	Kind    world.Kind
	Backend Backend[R]

	// ToRow builds the write payload from a draft.
	ToRow func(D) R

	// Seed returns the draft of a new record.
	Seed func() D

	// Reload refreshes every collection after a successful write.
	Reload func(ctx context.Context) error

	// Status receives the localized result of each operation.
	Status func(msg string)

	// WithImage merges an uploaded image URL into a draft. Nil disables
	// image attachment for the collection.
	WithImage func(D, string) D
	Uploader  Uploader

	// MaxImageBytes defaults to world.MaxImageBytes.
	MaxImageBytes int64
}

// Editor is the editing state machine of one collection.
type Editor[D, R any] struct {
	cfg EditorConfig[D, R]

	// opMu serializes writes so a second save never races the create that
	// assigns the id.
	opMu sync.Mutex

	mu       sync.Mutex
	selected string
	draft    D
	busy     bool
}

// NewEditor creates an Editor in the Unselected state.
func NewEditor[D, R any](cfg EditorConfig[D, R]) *Editor[D, R] {
	if cfg.MaxImageBytes <= 0 {
		cfg.MaxImageBytes = world.MaxImageBytes
	}
	if cfg.Status == nil {
		cfg.Status = func(string) {}
	}
	e := &Editor[D, R]{cfg: cfg}
	e.draft = e.seed()
	return e
}

func (e *Editor[D, R]) seed() D {
	if e.cfg.Seed == nil {
		var zero D
		return zero
	}
	return e.cfg.Seed()
}

// Kind returns the collection this editor writes to.
func (e *Editor[D, R]) Kind() world.Kind { return e.cfg.Kind }

// Selected returns the id of the selected record, or "" when creating.
func (e *Editor[D, R]) Selected() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selected
}

// Draft returns a copy of the current draft.
func (e *Editor[D, R]) Draft() D {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft
}

// Busy reports whether an upload sequence is running. Upload and delete
// controls are disabled while it is set.
func (e *Editor[D, R]) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.busy
}

// SetDraft replaces the draft with form edits. The selection is unchanged.
func (e *Editor[D, R]) SetDraft(d D) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft = d
}

// Select moves to Selected(id) with a draft hydrated from the record. Any
// unsaved edits are discarded.
func (e *Editor[D, R]) Select(id string, d D) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selected = id
	e.draft = d
}

// New moves to Unselected with a freshly seeded draft.
func (e *Editor[D, R]) New() {
	d := e.seed()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selected = ""
	e.draft = d
}

// Refresh re-hydrates the draft of the selected record after a reload.
// lookup reports false when the record is no longer listed, in which case
// the editor is left alone.
func (e *Editor[D, R]) Refresh(lookup func(id string) (D, bool)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.selected == "" {
		return
	}
	if d, ok := lookup(e.selected); ok {
		e.draft = d
	}
}

// Save writes the draft, or override when non-nil. An unselected editor
// creates the record and adopts the returned id; a selected one updates it.
// On failure the draft and selection are left as they were.
func (e *Editor[D, R]) Save(ctx context.Context, override *D) error {
	e.opMu.Lock()
	defer e.opMu.Unlock()
	return e.save(ctx, override)
}

// save requires opMu.
func (e *Editor[D, R]) save(ctx context.Context, override *D) error {
	e.mu.Lock()
	id := e.selected
	d := e.draft
	e.mu.Unlock()
	if override != nil {
		d = *override
	}
	row := e.cfg.ToRow(d)

	if id != "" {
		if err := e.cfg.Backend.Update(ctx, id, row); err != nil {
			e.cfg.Status(localize(msgSaveFailed, cause(err)))
			return fmt.Errorf("updating %s %s: %w", e.cfg.Kind, id, err)
		}
	} else {
		newID, err := e.cfg.Backend.Create(ctx, row)
		if err != nil {
			e.cfg.Status(localize(msgSaveFailed, cause(err)))
			return fmt.Errorf("creating %s: %w", e.cfg.Kind, err)
		}
		if newID != "" {
			e.mu.Lock()
			e.selected = newID
			e.mu.Unlock()
		}
	}

	e.cfg.Status(localize(msgSaved))
	e.reload(ctx)
	return nil
}

// Delete removes the selected record. Without a selection it does nothing.
func (e *Editor[D, R]) Delete(ctx context.Context) error {
	e.mu.Lock()
	id, busy := e.selected, e.busy
	e.mu.Unlock()
	if id == "" {
		return nil
	}
	if busy {
		e.cfg.Status(localize(msgUploadBusy))
		return ErrBusy
	}

	e.opMu.Lock()
	defer e.opMu.Unlock()

	if err := e.cfg.Backend.Delete(ctx, id); err != nil {
		e.cfg.Status(localize(msgDeleteFailed, cause(err)))
		return fmt.Errorf("deleting %s %s: %w", e.cfg.Kind, id, err)
	}

	d := e.seed()
	e.mu.Lock()
	e.selected = ""
	e.draft = d
	e.mu.Unlock()

	e.cfg.Status(localize(msgDeleted))
	e.reload(ctx)
	return nil
}

// AttachImage uploads f for the selected record, merges the returned URL
// into the current draft and saves it. The save is issued only after the
// upload has succeeded.
func (e *Editor[D, R]) AttachImage(ctx context.Context, f ImageFile) error {
	if e.cfg.WithImage == nil || e.cfg.Uploader == nil {
		return fmt.Errorf("workflow: %s records have no image", e.cfg.Kind)
	}

	e.mu.Lock()
	id := e.selected
	e.mu.Unlock()
	if id == "" {
		e.cfg.Status(localize(msgSaveFirst))
		return ErrNoSelection
	}
	if f.Content == nil {
		e.cfg.Status(localize(msgChooseImage))
		return ErrNoFile
	}
	if f.Size > e.cfg.MaxImageBytes {
		e.cfg.Status(localize(msgImageTooLarge))
		return ErrImageTooLarge
	}

	e.mu.Lock()
	if e.busy {
		e.mu.Unlock()
		e.cfg.Status(localize(msgUploadBusy))
		return ErrBusy
	}
	e.busy = true
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.busy = false
		e.mu.Unlock()
	}()

	data, err := io.ReadAll(io.LimitReader(f.Content, e.cfg.MaxImageBytes+1))
	if err != nil {
		e.cfg.Status(localize(msgUploadFailed, cause(err)))
		return fmt.Errorf("reading image: %w", err)
	}
	if len(data) == 0 {
		e.cfg.Status(localize(msgChooseImage))
		return ErrNoFile
	}
	if int64(len(data)) > e.cfg.MaxImageBytes {
		e.cfg.Status(localize(msgImageTooLarge))
		return ErrImageTooLarge
	}

	e.opMu.Lock()
	defer e.opMu.Unlock()

	url, err := e.cfg.Uploader.UploadImage(ctx, world.ImageUpload{
		Entity:      e.cfg.Kind,
		ID:          id,
		Filename:    f.Name,
		ContentType: f.ContentType,
		Base64:      base64.StdEncoding.EncodeToString(data),
	})
	if err != nil {
		e.cfg.Status(localize(msgUploadFailed, cause(err)))
		return fmt.Errorf("uploading image for %s %s: %w", e.cfg.Kind, id, err)
	}

	// Merge into whatever the draft holds now, not the last fetch.
	e.mu.Lock()
	merged := e.cfg.WithImage(e.draft, url)
	e.draft = merged
	e.mu.Unlock()

	return e.save(ctx, &merged)
}

func (e *Editor[D, R]) reload(ctx context.Context) {
	if e.cfg.Reload == nil {
		return
	}
	if err := e.cfg.Reload(ctx); err != nil {
		slog.Warn("reload after write failed",
			slog.String("kind", string(e.cfg.Kind)),
			slog.Any("error", err),
		)
	}
}
