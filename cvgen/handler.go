package cvgen

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/cvbuilder/core/logger"
	"github.com/dmitrymomot/cvbuilder/core/response"
)

// Handler serves the content generation endpoints.
type Handler struct {
	gen *Generator
	log *slog.Logger
}

// NewHandler creates the cvgen HTTP handler.
func NewHandler(gen *Generator, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{gen: gen, log: log}
}

// Routes mounts the generation endpoints on the given router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/work-experience", h.workExperience)
	r.Post("/skills", h.skills)
	r.Post("/summary", h.summary)
}

type workExperienceRequest struct {
	JobTitle   string `json:"job_title"`
	Company    string `json:"company"`
	Location   string `json:"location"`
	Role       string `json:"role"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	DocumentID string `json:"document_id"`
}

type workExperienceResponse struct {
	Points []string `json:"points"`
}

func (h *Handler) workExperience(w http.ResponseWriter, r *http.Request) {
	var req workExperienceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.JobTitle == "" || req.Company == "" {
		response.RenderError(w, response.ErrBadRequest.WithDetail("job_title and company are required"))
		return
	}

	points, err := h.gen.GenerateWorkExperience(r.Context(), ExperienceParams{
		JobTitle:   req.JobTitle,
		Company:    req.Company,
		Location:   req.Location,
		Role:       req.Role,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		DocumentID: req.DocumentID,
	})
	if err != nil {
		h.internalError(w, r, "work experience generation failed", err)
		return
	}

	response.JSON(w, http.StatusOK, workExperienceResponse{Points: points})
}

type skillsRequest struct {
	Experience []WorkExperience `json:"experience"`
	DocumentID string           `json:"document_id"`
}

type skillsResponse struct {
	Skills []string `json:"skills"`
}

func (h *Handler) skills(w http.ResponseWriter, r *http.Request) {
	var req skillsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RenderError(w, response.ErrBadRequest.WithDetail("invalid request body"))
		return
	}

	skills, err := h.gen.GenerateSkills(r.Context(), SkillsParams{
		Experience: req.Experience,
		DocumentID: req.DocumentID,
	})
	if err != nil {
		h.internalError(w, r, "skills generation failed", err)
		return
	}

	response.JSON(w, http.StatusOK, skillsResponse{Skills: skills})
}

type summaryRequest struct {
	Name       string           `json:"name"`
	Skills     []string         `json:"skills"`
	Experience []WorkExperience `json:"experience"`
}

type summaryResponse struct {
	Suggestions []string `json:"suggestions"`
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	var req summaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		response.RenderError(w, response.ErrBadRequest.WithDetail("name is required"))
		return
	}

	text, err := h.gen.GenerateSummary(r.Context(), SummaryParams{
		Name:       req.Name,
		Skills:     req.Skills,
		Experience: req.Experience,
	})
	if err != nil {
		h.internalError(w, r, "summary generation failed", err)
		return
	}

	response.JSON(w, http.StatusOK, summaryResponse{Suggestions: []string{text}})
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.log.ErrorContext(r.Context(), msg, logger.Error(err))
	response.RenderError(w, response.ErrInternalServerError.WithDetail(msg))
}
