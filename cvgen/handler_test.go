package cvgen_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cvbuilder/cvgen"
)

func newTestRouter(t *testing.T, backend *fakeOpenAI) http.Handler {
	t.Helper()
	h := cvgen.NewHandler(newTestGenerator(t, backend), nil)
	r := chi.NewRouter()
	r.Route("/api/cv-gen", h.Routes)
	return r
}

func TestHandlers(t *testing.T) {
	t.Parallel()

	t.Run("work experience returns points", func(t *testing.T) {
		t.Parallel()
		backend := newFakeOpenAI(t, `["Owned the on-call rotation"]`)
		router := newTestRouter(t, backend)

		req := httptest.NewRequest(http.MethodPost, "/api/cv-gen/work-experience",
			strings.NewReader(`{"job_title":"SRE","company":"Acme","start_date":"2020","end_date":"2023"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"points":["Owned the on-call rotation"]}`, rec.Body.String())
	})

	t.Run("work experience validates input", func(t *testing.T) {
		t.Parallel()
		backend := newFakeOpenAI(t, `[]`)
		router := newTestRouter(t, backend)

		req := httptest.NewRequest(http.MethodPost, "/api/cv-gen/work-experience",
			strings.NewReader(`{"company":"Acme"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("skills returns list", func(t *testing.T) {
		t.Parallel()
		backend := newFakeOpenAI(t, `["Go", "Postgres"]`)
		router := newTestRouter(t, backend)

		req := httptest.NewRequest(http.MethodPost, "/api/cv-gen/skills",
			strings.NewReader(`{"experience":[{"title":"Dev","company":"Acme","duration":"2y"}]}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"skills":["Go","Postgres"]}`, rec.Body.String())
	})

	t.Run("summary wraps text in suggestions", func(t *testing.T) {
		t.Parallel()
		backend := newFakeOpenAI(t, "An accomplished engineer.")
		router := newTestRouter(t, backend)

		req := httptest.NewRequest(http.MethodPost, "/api/cv-gen/summary",
			strings.NewReader(`{"name":"Jane","skills":["Go"]}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"suggestions":["An accomplished engineer."]}`, rec.Body.String())
	})
}
