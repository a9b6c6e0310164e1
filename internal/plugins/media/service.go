package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/image/draw"

	// Register the WebP decoder for thumbnails.
	_ "golang.org/x/image/webp"

	"github.com/keyxmakerx/worldatlas/internal/apperror"
	"github.com/keyxmakerx/worldatlas/internal/world"
)

// TargetLookup reports whether the record an image is attached to exists.
type TargetLookup func(ctx context.Context, entity world.Kind, id string) (bool, error)

// MediaService handles business logic for media file operations.
type MediaService interface {
	Upload(ctx context.Context, input UploadInput) (*MediaFile, error)
	GetByID(ctx context.Context, id string) (*MediaFile, error)
	ListByEntity(ctx context.Context, entity world.Kind, entityID string) ([]MediaFile, error)
	FilePath(file *MediaFile) string
	ThumbnailPath(file *MediaFile) string
}

// mediaService implements MediaService.
type mediaService struct {
	repo      MediaRepository
	targets   TargetLookup
	mediaPath string // Root directory for file storage.
	maxSize   int64  // Maximum decoded file size in bytes.
}

// NewMediaService creates a new media service.
func NewMediaService(repo MediaRepository, targets TargetLookup, mediaPath string, maxSize int64) MediaService {
	return &mediaService{
		repo:      repo,
		targets:   targets,
		mediaPath: mediaPath,
		maxSize:   maxSize,
	}
}

// Upload validates, stores, and records a new image.
func (s *mediaService) Upload(ctx context.Context, input UploadInput) (*MediaFile, error) {
	if input.Entity != world.KindLocation && input.Entity != world.KindCharacter {
		return nil, apperror.NewBadRequest("images can only be attached to locations and characters")
	}
	if input.EntityID == "" {
		return nil, apperror.NewBadRequest("entity id is required")
	}
	if len(input.FileBytes) == 0 {
		return nil, apperror.NewBadRequest("file is empty")
	}
	if int64(len(input.FileBytes)) > s.maxSize {
		return nil, apperror.NewTooLarge(fmt.Sprintf("file too large; maximum size is %d MB", s.maxSize/(1024*1024)))
	}
	if !AllowedMimeTypes[input.MimeType] {
		return nil, apperror.NewBadRequest("unsupported file type: " + input.MimeType)
	}
	if !validateMagicBytes(input.FileBytes, input.MimeType) {
		return nil, apperror.NewBadRequest("file content does not match declared type")
	}

	exists, err := s.targets(ctx, input.Entity, input.EntityID)
	if err != nil {
		return nil, fmt.Errorf("checking upload target: %w", err)
	}
	if !exists {
		return nil, apperror.NewNotFound(fmt.Sprintf("%s not found", input.Entity))
	}

	id := uuid.NewString()
	relDir := filepath.Join(string(input.Entity), filepath.Base(input.EntityID))
	dir := filepath.Join(s.mediaPath, relDir)
	ext := MimeToExtension[input.MimeType]
	filename := id + ext

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("creating media directory: %w", err))
	}
	fullPath := filepath.Join(dir, filename)
	if err := os.WriteFile(fullPath, input.FileBytes, 0644); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("writing media file: %w", err))
	}

	file := &MediaFile{
		ID:           id,
		Entity:       input.Entity,
		EntityID:     input.EntityID,
		Filename:     filepath.Join(relDir, filename),
		OriginalName: filepath.Base(input.OriginalName),
		MimeType:     input.MimeType,
		FileSize:     int64(len(input.FileBytes)),
		CreatedAt:    time.Now().UTC(),
	}

	// GIFs keep their animation; no thumbnail.
	if input.MimeType != "image/gif" {
		thumb, err := generateThumbnail(input.FileBytes, dir, id, ext, ThumbnailSize)
		if err != nil {
			slog.Debug("thumbnail skipped", slog.String("file_id", id), slog.Any("error", err))
		} else {
			file.Thumbnail = filepath.Join(relDir, thumb)
		}
	}

	if err := s.repo.Create(ctx, file); err != nil {
		os.Remove(fullPath)
		if file.Thumbnail != "" {
			os.Remove(filepath.Join(s.mediaPath, file.Thumbnail))
		}
		return nil, apperror.NewInternal(fmt.Errorf("saving media record: %w", err))
	}

	slog.Info("image uploaded",
		slog.String("id", id),
		slog.String("entity", string(input.Entity)),
		slog.String("entity_id", input.EntityID),
		slog.String("mime_type", input.MimeType),
		slog.Int64("size", file.FileSize),
	)
	return file, nil
}

// GetByID retrieves a media file by ID.
func (s *mediaService) GetByID(ctx context.Context, id string) (*MediaFile, error) {
	file, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get media file: %w", err)
	}
	if file == nil {
		return nil, apperror.NewNotFound("media file not found")
	}
	return file, nil
}

// ListByEntity returns the upload history of one record.
func (s *mediaService) ListByEntity(ctx context.Context, entity world.Kind, entityID string) ([]MediaFile, error) {
	files, err := s.repo.ListByEntity(ctx, entity, entityID)
	if err != nil {
		return nil, err
	}
	if files == nil {
		files = []MediaFile{}
	}
	return files, nil
}

// FilePath returns the absolute path to a media file on disk.
func (s *mediaService) FilePath(file *MediaFile) string {
	return filepath.Join(s.mediaPath, file.Filename)
}

// ThumbnailPath returns the thumbnail path, or the original when the image
// was too small to need one.
func (s *mediaService) ThumbnailPath(file *MediaFile) string {
	if file.Thumbnail != "" {
		return filepath.Join(s.mediaPath, file.Thumbnail)
	}
	return s.FilePath(file)
}

// generateThumbnail writes a copy scaled so its longest edge is maxDim.
func generateThumbnail(data []byte, dir, id, ext string, maxDim int) (string, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decoding image: %w", err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxDim && h <= maxDim {
		return "", fmt.Errorf("image already smaller than %d", maxDim)
	}

	newW, newH := maxDim, maxDim
	if w > h {
		newH = max(1, h*maxDim/w)
	} else {
		newW = max(1, w*maxDim/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	// WebP has no encoder in x/image; those thumbnails are written as JPEG.
	thumbExt := ext
	if ext == ".webp" {
		thumbExt = ".jpg"
	}
	thumbFilename := fmt.Sprintf("%s_%d%s", id, maxDim, thumbExt)
	thumbPath := filepath.Join(dir, thumbFilename)

	f, err := os.Create(thumbPath)
	if err != nil {
		return "", fmt.Errorf("creating thumbnail file: %w", err)
	}
	defer f.Close()

	switch thumbExt {
	case ".png":
		err = png.Encode(f, dst)
	case ".gif":
		err = gif.Encode(f, dst, nil)
	default:
		err = jpeg.Encode(f, dst, &jpeg.Options{Quality: 85})
	}
	if err != nil {
		os.Remove(thumbPath)
		return "", fmt.Errorf("encoding thumbnail: %w", err)
	}
	return thumbFilename, nil
}

// validateMagicBytes checks that the content's signature matches the
// declared MIME type.
func validateMagicBytes(data []byte, declaredMIME string) bool {
	if len(data) < 4 {
		return false
	}
	switch declaredMIME {
	case "image/jpeg":
		return data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF
	case "image/png":
		return len(data) >= 8 && bytes.Equal(data[:8], []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A})
	case "image/gif":
		return len(data) >= 6 && string(data[:3]) == "GIF"
	case "image/webp":
		return len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WEBP"
	default:
		return false
	}
}
