// Package upload serves the image upload endpoint: multipart file in,
// public object URL out. Only common image extensions are accepted.
package upload

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/cvbuilder/core/logger"
	"github.com/dmitrymomot/cvbuilder/core/response"
)

// maxUploadSize caps the multipart request body.
const maxUploadSize = 10 << 20 // 10 MiB

// allowedExtensions is the image extension allowlist.
var allowedExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".webp": true, ".tiff": true, ".svg": true,
}

// Uploader stores an object and returns its public URL; satisfied by
// *s3.Storage.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// Handler serves image uploads.
type Handler struct {
	storage Uploader
	log     *slog.Logger
}

// NewHandler creates the upload HTTP handler.
func NewHandler(storage Uploader, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{storage: storage, log: log}
}

type uploadResponse struct {
	ImageURL string `json:"image_url"`
	Filename string `json:"filename"`
}

// ServeHTTP handles POST with a multipart "file" field.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		response.RenderError(w, response.ErrBadRequest.WithDetail("file field is required"))
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		response.RenderError(w, response.ErrBadRequest.
			WithDetail("Only image files are allowed: "+extensionList()))
		return
	}

	contentType := mime.TypeByExtension(ext)
	key := fmt.Sprintf("uploads/%s%s", uuid.New().String(), ext)

	url, err := h.storage.Upload(r.Context(), key, contentType, file)
	if err != nil {
		h.log.ErrorContext(r.Context(), "image upload failed", logger.Error(err),
			slog.String("filename", header.Filename))
		response.RenderError(w, response.ErrInternalServerError.WithDetail("failed to store file"))
		return
	}

	response.JSON(w, http.StatusOK, uploadResponse{
		ImageURL: url,
		Filename: header.Filename,
	})
}

func extensionList() string {
	exts := make([]string, 0, len(allowedExtensions))
	for ext := range allowedExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return strings.Join(exts, ", ")
}
