package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/keyxmakerx/worldatlas/internal/apperror"
	"github.com/keyxmakerx/worldatlas/internal/world"
)

// --- Mocks ---

type mockMediaRepo struct {
	createFn   func(ctx context.Context, file *MediaFile) error
	findByIDFn func(ctx context.Context, id string) (*MediaFile, error)
}

func (m *mockMediaRepo) Create(ctx context.Context, file *MediaFile) error {
	if m.createFn != nil {
		return m.createFn(ctx, file)
	}
	return nil
}

func (m *mockMediaRepo) FindByID(ctx context.Context, id string) (*MediaFile, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockMediaRepo) ListByEntity(context.Context, world.Kind, string) ([]MediaFile, error) {
	return nil, nil
}

func (m *mockMediaRepo) Delete(context.Context, string) error {
	return nil
}

func allTargets(context.Context, world.Kind, string) (bool, error) { return true, nil }

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

// pngBytes renders a solid w x h PNG.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 40, G: 120, B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// --- Upload Tests ---

func TestUpload_StoresFileAndThumbnail(t *testing.T) {
	root := t.TempDir()
	var stored *MediaFile
	repo := &mockMediaRepo{
		createFn: func(_ context.Context, f *MediaFile) error {
			stored = f
			return nil
		},
	}
	svc := NewMediaService(repo, allTargets, root, world.MaxImageBytes)

	file, err := svc.Upload(context.Background(), UploadInput{
		Entity:       world.KindLocation,
		EntityID:     "loc-1",
		OriginalName: "grove.png",
		MimeType:     "image/png",
		FileBytes:    pngBytes(t, 600, 300),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored == nil || stored.ID != file.ID {
		t.Fatal("expected record to be saved")
	}
	if filepath.Dir(file.Filename) != filepath.Join("location", "loc-1") {
		t.Errorf("unexpected storage dir %q", file.Filename)
	}
	if _, err := os.Stat(svc.FilePath(file)); err != nil {
		t.Errorf("original not written: %v", err)
	}
	if file.Thumbnail == "" {
		t.Fatal("expected a thumbnail for a 600px image")
	}
	f, err := os.Open(filepath.Join(root, file.Thumbnail))
	if err != nil {
		t.Fatalf("thumbnail not written: %v", err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decoding thumbnail: %v", err)
	}
	if cfg.Width != ThumbnailSize || cfg.Height != ThumbnailSize/2 {
		t.Errorf("expected %dx%d thumbnail, got %dx%d", ThumbnailSize, ThumbnailSize/2, cfg.Width, cfg.Height)
	}
}

func TestUpload_SmallImageHasNoThumbnail(t *testing.T) {
	svc := NewMediaService(&mockMediaRepo{}, allTargets, t.TempDir(), world.MaxImageBytes)
	file, err := svc.Upload(context.Background(), UploadInput{
		Entity:    world.KindCharacter,
		EntityID:  "ch-1",
		MimeType:  "image/png",
		FileBytes: pngBytes(t, 64, 64),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if file.Thumbnail != "" {
		t.Errorf("expected no thumbnail, got %q", file.Thumbnail)
	}
	if svc.ThumbnailPath(file) != svc.FilePath(file) {
		t.Error("thumbnail path should fall back to the original")
	}
}

func TestUpload_Rejections(t *testing.T) {
	valid := pngBytes(t, 8, 8)
	tests := []struct {
		name  string
		input UploadInput
		max   int64
		code  int
	}{
		{"chronicle target", UploadInput{Entity: world.KindChronicle, EntityID: "ev-1", MimeType: "image/png", FileBytes: valid}, world.MaxImageBytes, 400},
		{"missing id", UploadInput{Entity: world.KindLocation, MimeType: "image/png", FileBytes: valid}, world.MaxImageBytes, 400},
		{"too large", UploadInput{Entity: world.KindLocation, EntityID: "loc-1", MimeType: "image/png", FileBytes: valid}, 16, 413},
		{"bad mime", UploadInput{Entity: world.KindLocation, EntityID: "loc-1", MimeType: "image/svg+xml", FileBytes: valid}, world.MaxImageBytes, 400},
		{"spoofed type", UploadInput{Entity: world.KindLocation, EntityID: "loc-1", MimeType: "image/jpeg", FileBytes: valid}, world.MaxImageBytes, 400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewMediaService(&mockMediaRepo{}, allTargets, t.TempDir(), tt.max)
			_, err := svc.Upload(context.Background(), tt.input)
			assertAppError(t, err, tt.code)
		})
	}
}

func TestUpload_UnknownTarget(t *testing.T) {
	none := func(context.Context, world.Kind, string) (bool, error) { return false, nil }
	svc := NewMediaService(&mockMediaRepo{}, none, t.TempDir(), world.MaxImageBytes)
	_, err := svc.Upload(context.Background(), UploadInput{
		Entity:    world.KindCharacter,
		EntityID:  "ch-404",
		MimeType:  "image/png",
		FileBytes: pngBytes(t, 8, 8),
	})
	assertAppError(t, err, 404)
}

func TestUpload_RepoFailureRemovesFile(t *testing.T) {
	root := t.TempDir()
	repo := &mockMediaRepo{
		createFn: func(context.Context, *MediaFile) error { return errors.New("db down") },
	}
	svc := NewMediaService(repo, allTargets, root, world.MaxImageBytes)
	_, err := svc.Upload(context.Background(), UploadInput{
		Entity:    world.KindLocation,
		EntityID:  "loc-1",
		MimeType:  "image/png",
		FileBytes: pngBytes(t, 8, 8),
	})
	assertAppError(t, err, 500)

	entries, _ := os.ReadDir(filepath.Join(root, "location", "loc-1"))
	if len(entries) != 0 {
		t.Errorf("expected orphaned file to be removed, found %d entries", len(entries))
	}
}

func TestGetByID_NotFound(t *testing.T) {
	svc := NewMediaService(&mockMediaRepo{}, allTargets, t.TempDir(), world.MaxImageBytes)
	_, err := svc.GetByID(context.Background(), "nope")
	assertAppError(t, err, 404)
}

// --- Payload decoding ---

func TestDecodePayload(t *testing.T) {
	raw := []byte{0x89, 'P', 'N', 'G', 1, 2, 3}
	std := base64.StdEncoding.EncodeToString(raw)

	tests := []struct {
		name, in string
	}{
		{"standard", std},
		{"data url", "data:image/png;base64," + std},
		{"unpadded", base64.RawStdEncoding.EncodeToString(raw)},
	}
	for _, tt := range tests {
		got, err := decodePayload(tt.in)
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
			continue
		}
		if !bytes.Equal(got, raw) {
			t.Errorf("%s: got %v, want %v", tt.name, got, raw)
		}
	}

	if _, err := decodePayload("not base64!!"); err == nil {
		t.Error("expected error for invalid payload")
	}
}
