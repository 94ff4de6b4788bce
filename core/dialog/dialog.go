// Package dialog stores short-lived, size-bounded conversation history
// per document, giving the content generator continuity across
// sequential calls without unbounded growth.
//
// Each document's history lives in the shared key-value store under
// "context:{documentID}" as a JSON array capped at the N most recent
// messages (oldest dropped first). Every write resets the TTL, so the
// history tracks an active editing session and evaporates shortly after
// it ends.
//
// The read-modify-write sequence is not atomic: concurrent appends for
// the same document may race and one may be lost (last-write-wins on
// the whole array). Editing sessions are sequential and single-user, so
// this is accepted. Store failures follow the fail-empty policy: reads
// degrade to an empty history, writes surface an error the caller is
// expected to log and ignore.
package dialog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/dmitrymomot/cvbuilder/core/kv"
)

const keyPrefix = "context:"

// Message is one conversation turn.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ModelMessage is the projection submitted to the language model API.
type ModelMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Store keeps bounded per-document conversation history.
type Store struct {
	kv          kv.Store
	maxMessages int
	ttl         time.Duration
	log         *slog.Logger
	now         func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithMaxMessages caps the history length (default 6).
func WithMaxMessages(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxMessages = n
		}
	}
}

// WithTTL sets the history expiry, refreshed on every write (default 180s).
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithLogger sets the logger for degraded reads.
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock overrides the time source used for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Store over the given key-value backend.
func New(backend kv.Store, opts ...Option) *Store {
	s := &Store{
		kv:          backend,
		maxMessages: 6,
		ttl:         180 * time.Second,
		log:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddMessage appends a turn to the document's history, truncates to the
// most recent maxMessages entries, and writes the whole array back with
// a fresh TTL. A store failure is returned; the generation flow logs it
// and continues without persisted context.
func (s *Store) AddMessage(ctx context.Context, documentID, role, content string) error {
	history := s.History(ctx, documentID)
	history = append(history, Message{
		Role:      role,
		Content:   content,
		Timestamp: s.now(),
	})
	if len(history) > s.maxMessages {
		history = history[len(history)-s.maxMessages:]
	}

	raw, err := json.Marshal(history)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, keyPrefix+documentID, string(raw), s.ttl)
}

// History returns the stored turns in original order, or an empty slice
// when the document has no history, the history expired, or the store
// is unreachable.
func (s *Store) History(ctx context.Context, documentID string) []Message {
	raw, err := s.kv.Get(ctx, keyPrefix+documentID)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			s.log.Debug("dialog read failed, treating as empty",
				slog.String("document_id", documentID), slog.Any("error", err))
		}
		return nil
	}

	var history []Message
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		return nil
	}
	return history
}

// ModelMessages projects the history to {role, content} pairs suitable
// for direct submission to the model's conversation API.
func (s *Store) ModelMessages(ctx context.Context, documentID string) []ModelMessage {
	history := s.History(ctx, documentID)
	if len(history) == 0 {
		return nil
	}
	out := make([]ModelMessage, len(history))
	for i, m := range history {
		out[i] = ModelMessage{Role: m.Role, Content: m.Content}
	}
	return out
}

// Clear removes the document's history.
func (s *Store) Clear(ctx context.Context, documentID string) error {
	return s.kv.Delete(ctx, keyPrefix+documentID)
}
