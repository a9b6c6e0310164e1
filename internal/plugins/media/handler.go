package media

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/worldatlas/internal/apperror"
	"github.com/keyxmakerx/worldatlas/internal/world"
)

// Handler handles HTTP requests for media operations.
type Handler struct {
	service       MediaService
	publicBaseURL string
}

// NewHandler creates a new media handler. publicBaseURL prefixes the URLs
// handed back to editors, so stored image references are absolute.
func NewHandler(service MediaService, publicBaseURL string) *Handler {
	return &Handler{service: service, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}
}

// Upload accepts a base64 image for a location or character and returns
// its public URL.
// POST /api/admin/images
func (h *Handler) Upload(c echo.Context) error {
	var req world.ImageUpload
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	data, err := decodePayload(req.Base64)
	if err != nil {
		return apperror.NewBadRequest("image payload is not valid base64")
	}

	mimeType := strings.ToLower(strings.TrimSpace(req.ContentType))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	file, err := h.service.Upload(c.Request().Context(), UploadInput{
		Entity:       req.Entity,
		EntityID:     strings.TrimSpace(req.ID),
		OriginalName: req.Filename,
		MimeType:     mimeType,
		FileBytes:    data,
	})
	if err != nil {
		return err
	}

	res := world.ImageUploadResult{URL: h.publicBaseURL + "/media/" + file.ID}
	if file.Thumbnail != "" {
		res.ThumbnailURL = res.URL + "/thumb"
	}
	return c.JSON(http.StatusCreated, res)
}

// History lists the images uploaded for one record.
// GET /api/admin/images/:entity/:id
func (h *Handler) History(c echo.Context) error {
	entity := world.Kind(c.Param("entity"))
	if !entity.Valid() {
		return apperror.NewBadRequest("unknown entity kind")
	}
	files, err := h.service.ListByEntity(c.Request().Context(), entity, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, files)
}

// Serve serves an image.
// GET /media/:id
func (h *Handler) Serve(c echo.Context) error {
	file, err := h.service.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	// UUID-based filenames never change.
	c.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	c.Response().Header().Set("Content-Type", file.MimeType)
	return c.File(h.service.FilePath(file))
}

// ServeThumbnail serves the 300px copy of an image.
// GET /media/:id/thumb
func (h *Handler) ServeThumbnail(c echo.Context) error {
	file, err := h.service.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	return c.File(h.service.ThumbnailPath(file))
}

// decodePayload decodes standard base64, tolerating a data-URL prefix and
// missing padding.
func decodePayload(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if strings.HasPrefix(payload, "data:") {
		if _, rest, ok := strings.Cut(payload, ","); ok {
			payload = rest
		}
	}
	if data, err := base64.StdEncoding.DecodeString(payload); err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
}
