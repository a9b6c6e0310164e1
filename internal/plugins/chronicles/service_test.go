package chronicles

import (
	"context"
	"errors"
	"testing"

	"github.com/keyxmakerx/worldatlas/internal/apperror"
	"github.com/keyxmakerx/worldatlas/internal/world"
)

type mockChronicleRepo struct {
	createFn   func(ctx context.Context, e *world.ChronicleEntry) error
	findByIDFn func(ctx context.Context, id string) (*world.ChronicleEntry, error)
	updateFn   func(ctx context.Context, e *world.ChronicleEntry) error
	deleteFn   func(ctx context.Context, id string) error
	listFn     func(ctx context.Context) ([]world.ChronicleEntry, error)
}

func (m *mockChronicleRepo) Create(ctx context.Context, e *world.ChronicleEntry) error {
	if m.createFn != nil {
		return m.createFn(ctx, e)
	}
	return nil
}

func (m *mockChronicleRepo) FindByID(ctx context.Context, id string) (*world.ChronicleEntry, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockChronicleRepo) Update(ctx context.Context, e *world.ChronicleEntry) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, e)
	}
	return nil
}

func (m *mockChronicleRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockChronicleRepo) List(ctx context.Context) ([]world.ChronicleEntry, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func assertAppError(t *testing.T, err error, expectedCode int) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.Code != expectedCode {
		t.Errorf("expected status code %d, got %d (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

func TestCreate_DefaultStatus(t *testing.T) {
	svc := NewChronicleService(&mockChronicleRepo{})
	e, err := svc.Create(context.Background(), world.TimelineRow{Title: "星陨之夜", DateLabel: "第三纪元·冬"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Status != world.ChroniclePending {
		t.Errorf("expected pending, got %q", e.Status)
	}
	if e.DateLabel != "第三纪元·冬" {
		t.Errorf("date label altered: %q", e.DateLabel)
	}
	if e.ID == "" {
		t.Error("expected generated ID")
	}
}

func TestCreate_MissingTitle(t *testing.T) {
	svc := NewChronicleService(&mockChronicleRepo{})
	_, err := svc.Create(context.Background(), world.TimelineRow{DateLabel: "x"})
	assertAppError(t, err, 422)
}

func TestUpdate_KeepsID(t *testing.T) {
	var updated *world.ChronicleEntry
	repo := &mockChronicleRepo{
		findByIDFn: func(_ context.Context, id string) (*world.ChronicleEntry, error) {
			return &world.ChronicleEntry{ID: id, Title: "Old", Status: world.ChronicleActive}, nil
		},
		updateFn: func(_ context.Context, e *world.ChronicleEntry) error {
			updated = e
			return nil
		},
	}
	_, err := NewChronicleService(repo).Update(context.Background(), "ev-1", world.TimelineRow{
		Title:  "New",
		Status: world.ChronicleCompleted,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.ID != "ev-1" || updated.Title != "New" || updated.Status != world.ChronicleCompleted {
		t.Errorf("unexpected update %+v", updated)
	}
}

func TestDelete_NotFound(t *testing.T) {
	err := NewChronicleService(&mockChronicleRepo{}).Delete(context.Background(), "missing")
	assertAppError(t, err, 404)
}
