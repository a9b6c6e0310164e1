// Package media stores the images attached to locations and characters.
// Uploads arrive as base64 JSON, land on the local filesystem under
// <media path>/<entity>/<entity id>/, and are served back at /media/:id.
package media

import (
	"path/filepath"
	"time"

	"github.com/keyxmakerx/worldatlas/internal/world"
)

// MediaFile represents an uploaded image stored on disk.
type MediaFile struct {
	ID           string     `json:"id"`
	Entity       world.Kind `json:"entity"`
	EntityID     string     `json:"entity_id"`
	Filename     string     `json:"filename"`            // Path relative to the media root.
	Thumbnail    string     `json:"thumbnail,omitempty"` // Relative path of the 300px copy, if any.
	OriginalName string     `json:"original_name"`
	MimeType     string     `json:"mime_type"`
	FileSize     int64      `json:"file_size"`
	CreatedAt    time.Time  `json:"created_at"`
}

// UploadInput holds the decoded input for storing an image.
type UploadInput struct {
	Entity       world.Kind
	EntityID     string
	OriginalName string
	MimeType     string
	FileBytes    []byte
}

// --- MIME Type Validation ---

// AllowedMimeTypes defines which MIME types are accepted for upload.
var AllowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// MimeToExtension maps MIME types to file extensions.
var MimeToExtension = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Extension returns the file extension for this media file.
func (f *MediaFile) Extension() string {
	if ext, ok := MimeToExtension[f.MimeType]; ok {
		return ext
	}
	return filepath.Ext(f.OriginalName)
}

// ThumbnailSize is the longest edge of generated thumbnails, in pixels.
const ThumbnailSize = 300
