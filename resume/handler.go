package resume

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/cvbuilder/auth"
	"github.com/dmitrymomot/cvbuilder/core/logger"
	"github.com/dmitrymomot/cvbuilder/core/response"
)

const detailNotFound = "Resume not found or you don't have permission to access it"

// Purger invalidates cached responses; satisfied by *cache.Cache.
type Purger interface {
	PurgePattern(ctx context.Context, substring string) error
}

// Handler serves the resume CRUD endpoints.
type Handler struct {
	repo   Repository
	purger Purger
	log    *slog.Logger
}

// NewHandler creates the resume HTTP handler.
func NewHandler(repo Repository, purger Purger, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{repo: repo, purger: purger, log: log}
}

// Routes mounts the resume endpoints on the given router. The caller is
// expected to have the auth middleware and, for GETs, the cache
// middleware already applied.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/save", h.save)
	r.Get("/all", h.all)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.del)
}

// CacheScope derives the per-user cache scope tag for the caching
// middleware, matching the tag purged after mutations.
func CacheScope(r *http.Request) string {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return ""
	}
	return userScope(id.UserID)
}

func userScope(userID int64) string {
	return fmt.Sprintf("user_%d", userID)
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		response.RenderError(w, response.ErrUnauthorized)
		return
	}

	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Name == nil || *in.Name == "" || in.TemplateID == nil {
		response.RenderError(w, response.ErrBadRequest.WithDetail("name and template_id are required"))
		return
	}

	created, err := h.repo.Create(r.Context(), id.UserID, in)
	if err != nil {
		h.internalError(w, r, "failed to create resume", err)
		return
	}

	h.purgeUser(r.Context(), id.UserID)
	response.JSON(w, http.StatusCreated, created)
}

func (h *Handler) all(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		response.RenderError(w, response.ErrUnauthorized)
		return
	}

	resumes, err := h.repo.ListByUser(r.Context(), id.UserID)
	if err != nil {
		h.internalError(w, r, "failed to fetch resumes", err)
		return
	}

	response.JSON(w, http.StatusOK, resumes)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, resumeID, ok := h.identityAndID(w, r)
	if !ok {
		return
	}

	res, err := h.repo.Get(r.Context(), id.UserID, resumeID)
	if errors.Is(err, ErrNotFound) {
		response.RenderError(w, response.ErrNotFound.WithDetail(detailNotFound))
		return
	}
	if err != nil {
		h.internalError(w, r, "failed to fetch resume", err)
		return
	}

	response.JSON(w, http.StatusOK, res)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, resumeID, ok := h.identityAndID(w, r)
	if !ok {
		return
	}

	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.RenderError(w, response.ErrBadRequest.WithDetail("invalid request body"))
		return
	}

	updated, err := h.repo.Update(r.Context(), id.UserID, resumeID, in)
	if errors.Is(err, ErrNotFound) {
		response.RenderError(w, response.ErrNotFound.WithDetail(detailNotFound))
		return
	}
	if err != nil {
		h.internalError(w, r, "failed to update resume", err)
		return
	}

	h.purgeUser(r.Context(), id.UserID)
	response.JSON(w, http.StatusOK, updated)
}

func (h *Handler) del(w http.ResponseWriter, r *http.Request) {
	id, resumeID, ok := h.identityAndID(w, r)
	if !ok {
		return
	}

	err := h.repo.Delete(r.Context(), id.UserID, resumeID)
	if errors.Is(err, ErrNotFound) {
		response.RenderError(w, response.ErrNotFound.WithDetail(detailNotFound))
		return
	}
	if err != nil {
		h.internalError(w, r, "failed to delete resume", err)
		return
	}

	h.purgeUser(r.Context(), id.UserID)
	response.JSON(w, http.StatusOK, map[string]string{"message": "Resume deleted successfully"})
}

// identityAndID extracts the caller identity and the {id} route param,
// rendering the error response itself when either is missing.
func (h *Handler) identityAndID(w http.ResponseWriter, r *http.Request) (auth.Identity, int64, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		response.RenderError(w, response.ErrUnauthorized)
		return auth.Identity{}, 0, false
	}

	resumeID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.RenderError(w, response.ErrBadRequest.WithDetail("invalid resume id"))
		return auth.Identity{}, 0, false
	}
	return id, resumeID, true
}

// purgeUser drops the user's cached reads after a mutation. Best
// effort: a failed purge is logged, the mutation already succeeded.
func (h *Handler) purgeUser(ctx context.Context, userID int64) {
	if h.purger == nil {
		return
	}
	if err := h.purger.PurgePattern(ctx, userScope(userID)); err != nil {
		h.log.WarnContext(ctx, "cache purge failed", logger.Error(err),
			slog.Int64("user_id", userID))
	}
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.log.ErrorContext(r.Context(), msg, logger.Error(err))
	response.RenderError(w, response.ErrInternalServerError.WithDetail(msg))
}
