package cvgen_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cvbuilder/core/dialog"
	"github.com/dmitrymomot/cvbuilder/core/kv"
	"github.com/dmitrymomot/cvbuilder/cvgen"
)

// chatMessage mirrors the wire shape of a chat completion message.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// fakeOpenAI serves canned chat completions and records the message
// lists it receives.
type fakeOpenAI struct {
	mu       sync.Mutex
	reply    string
	requests [][]chatMessage
	srv      *httptest.Server
}

func newFakeOpenAI(t *testing.T, reply string) *fakeOpenAI {
	t.Helper()
	f := &fakeOpenAI{reply: reply}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []chatMessage `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		f.mu.Lock()
		f.requests = append(f.requests, req.Messages)
		reply := f.reply
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"model":  "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": reply},
			}},
		})
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeOpenAI) setReply(reply string) {
	f.mu.Lock()
	f.reply = reply
	f.mu.Unlock()
}

func (f *fakeOpenAI) lastMessages() []chatMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil
	}
	return f.requests[len(f.requests)-1]
}

func newTestGenerator(t *testing.T, backend *fakeOpenAI, opts ...cvgen.GeneratorOption) *cvgen.Generator {
	t.Helper()
	opts = append(opts, cvgen.WithClientOptions(option.WithBaseURL(backend.srv.URL)))
	gen, err := cvgen.NewGenerator("test-key", opts...)
	require.NoError(t, err)
	return gen
}

func TestGenerator(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("requires api key", func(t *testing.T) {
		t.Parallel()
		_, err := cvgen.NewGenerator("")
		assert.ErrorIs(t, err, cvgen.ErrMissingAPIKey)
	})

	t.Run("work experience parses json reply", func(t *testing.T) {
		t.Parallel()
		backend := newFakeOpenAI(t, `["Led the platform team", "Reduced deploy time by half"]`)
		gen := newTestGenerator(t, backend)

		points, err := gen.GenerateWorkExperience(ctx, cvgen.ExperienceParams{
			JobTitle: "Platform Engineer",
			Company:  "Acme",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"Led the platform team", "Reduced deploy time by half"}, points)

		msgs := backend.lastMessages()
		require.Len(t, msgs, 2)
		assert.Equal(t, "system", msgs[0].Role)
		assert.Contains(t, msgs[1].Content, "Platform Engineer")
		assert.Contains(t, msgs[1].Content, "Acme")
	})

	t.Run("malformed reply degrades through the parser instead of failing", func(t *testing.T) {
		t.Parallel()
		backend := newFakeOpenAI(t, "- Python\n- Go\n")
		gen := newTestGenerator(t, backend)

		skills, err := gen.GenerateSkills(ctx, cvgen.SkillsParams{})
		require.NoError(t, err)
		assert.Equal(t, []string{"Python", "Go"}, skills)
	})

	t.Run("skills prompt carries the experience", func(t *testing.T) {
		t.Parallel()
		backend := newFakeOpenAI(t, `["Kubernetes"]`)
		gen := newTestGenerator(t, backend)

		_, err := gen.GenerateSkills(ctx, cvgen.SkillsParams{
			Experience: []cvgen.WorkExperience{
				{Title: "SRE", Company: "Acme", Duration: "2020-2023"},
			},
		})
		require.NoError(t, err)

		msgs := backend.lastMessages()
		require.NotEmpty(t, msgs)
		assert.Contains(t, msgs[len(msgs)-1].Content, "SRE at Acme (2020-2023)")
	})

	t.Run("summary returns raw text", func(t *testing.T) {
		t.Parallel()
		backend := newFakeOpenAI(t, "A seasoned engineer with a decade of experience.")
		gen := newTestGenerator(t, backend)

		text, err := gen.GenerateSummary(ctx, cvgen.SummaryParams{
			Name:   "Jane",
			Skills: []string{"Go", "Kubernetes"},
		})
		require.NoError(t, err)
		assert.Equal(t, "A seasoned engineer with a decade of experience.", text)
	})

	t.Run("dialog continuity threads prior exchange into follow-up", func(t *testing.T) {
		t.Parallel()
		backend := newFakeOpenAI(t, `["Built out the data pipeline"]`)
		store := dialog.New(kv.NewMemory())
		gen := newTestGenerator(t, backend, cvgen.WithDialogStore(store))

		_, err := gen.GenerateWorkExperience(ctx, cvgen.ExperienceParams{
			JobTitle:   "Data Engineer",
			Company:    "Acme",
			DocumentID: "doc-1",
		})
		require.NoError(t, err)

		backend.setReply(`["Airflow", "Spark"]`)
		_, err = gen.GenerateSkills(ctx, cvgen.SkillsParams{DocumentID: "doc-1"})
		require.NoError(t, err)

		msgs := backend.lastMessages()
		// system + prior user + prior assistant + new user prompt
		require.Len(t, msgs, 4)
		assert.Equal(t, "user", msgs[1].Role)
		assert.Contains(t, msgs[1].Content, "Data Engineer")
		assert.Equal(t, "assistant", msgs[2].Role)
		assert.Contains(t, msgs[2].Content, "Built out the data pipeline")
	})

	t.Run("documents keep separate dialogs", func(t *testing.T) {
		t.Parallel()
		backend := newFakeOpenAI(t, `["Point"]`)
		store := dialog.New(kv.NewMemory())
		gen := newTestGenerator(t, backend, cvgen.WithDialogStore(store))

		_, err := gen.GenerateWorkExperience(ctx, cvgen.ExperienceParams{
			JobTitle: "Chef", Company: "Bistro", DocumentID: "doc-a",
		})
		require.NoError(t, err)

		_, err = gen.GenerateSkills(ctx, cvgen.SkillsParams{DocumentID: "doc-b"})
		require.NoError(t, err)

		msgs := backend.lastMessages()
		require.Len(t, msgs, 2, "doc-b must not see doc-a history")
	})

	t.Run("unavailable dialog store does not fail generation", func(t *testing.T) {
		t.Parallel()
		backend := newFakeOpenAI(t, `["Point"]`)
		store := dialog.New(kv.NewUnavailable())
		gen := newTestGenerator(t, backend, cvgen.WithDialogStore(store))

		points, err := gen.GenerateWorkExperience(ctx, cvgen.ExperienceParams{
			JobTitle: "Chef", Company: "Bistro", DocumentID: "doc-1",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"Point"}, points)
	})
}
