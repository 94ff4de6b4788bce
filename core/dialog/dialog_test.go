package dialog_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cvbuilder/core/dialog"
	"github.com/dmitrymomot/cvbuilder/core/kv"
)

func TestAddMessageAndHistory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := dialog.New(kv.NewMemory())

	require.NoError(t, store.AddMessage(ctx, "doc-1", "user", "draft my summary"))
	require.NoError(t, store.AddMessage(ctx, "doc-1", "assistant", "here it is"))

	history := store.History(ctx, "doc-1")
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "draft my summary", history[0].Content)
	assert.Equal(t, "assistant", history[1].Role)
	assert.False(t, history[0].Timestamp.IsZero())
}

func TestHistoryCapDropsOldestFirst(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := dialog.New(kv.NewMemory(), dialog.WithMaxMessages(6))

	for i := 1; i <= 7; i++ {
		require.NoError(t, store.AddMessage(ctx, "doc-1", "user", fmt.Sprintf("message %d", i)))
	}

	history := store.History(ctx, "doc-1")
	require.Len(t, history, 6)
	assert.Equal(t, "message 2", history[0].Content, "oldest message must be dropped")
	assert.Equal(t, "message 7", history[5].Content)
	for i := 1; i < len(history); i++ {
		assert.True(t, history[i-1].Timestamp.Before(history[i].Timestamp) ||
			history[i-1].Timestamp.Equal(history[i].Timestamp),
			"relative order must be preserved")
	}
}

func TestWriteRefreshesTTL(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Now()
	backend := kv.NewMemory(kv.WithClock(func() time.Time { return now }))
	store := dialog.New(backend, dialog.WithTTL(3*time.Minute))

	require.NoError(t, store.AddMessage(ctx, "doc-1", "user", "first"))

	// Two minutes later the history is still alive; a new write resets
	// the clock, unlike the rate counter.
	now = now.Add(2 * time.Minute)
	require.NoError(t, store.AddMessage(ctx, "doc-1", "user", "second"))

	now = now.Add(2 * time.Minute)
	history := store.History(ctx, "doc-1")
	assert.Len(t, history, 2, "TTL must be refreshed by the second write")

	now = now.Add(4 * time.Minute)
	assert.Empty(t, store.History(ctx, "doc-1"), "history expires after the refreshed TTL")
}

func TestModelMessagesProjection(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := dialog.New(kv.NewMemory())

	require.NoError(t, store.AddMessage(ctx, "doc-1", "system", "you are a cv expert"))
	require.NoError(t, store.AddMessage(ctx, "doc-1", "user", "generate skills"))

	msgs := store.ModelMessages(ctx, "doc-1")
	require.Len(t, msgs, 2)
	assert.Equal(t, dialog.ModelMessage{Role: "system", Content: "you are a cv expert"}, msgs[0])
	assert.Equal(t, dialog.ModelMessage{Role: "user", Content: "generate skills"}, msgs[1])
}

func TestClear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := dialog.New(kv.NewMemory())

	require.NoError(t, store.AddMessage(ctx, "doc-1", "user", "hello"))
	require.NoError(t, store.Clear(ctx, "doc-1"))
	assert.Empty(t, store.History(ctx, "doc-1"))
}

func TestUnavailableStoreFailsEmpty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := dialog.New(kv.NewUnavailable())

	assert.Empty(t, store.History(ctx, "doc-1"), "reads degrade to empty")
	assert.Empty(t, store.ModelMessages(ctx, "doc-1"))

	// Writes surface the failure for the caller to log and drop.
	assert.ErrorIs(t, store.AddMessage(ctx, "doc-1", "user", "hello"), kv.ErrUnavailable)
}

func TestDocumentsAreIsolated(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := dialog.New(kv.NewMemory())

	require.NoError(t, store.AddMessage(ctx, "doc-1", "user", "first doc"))
	require.NoError(t, store.AddMessage(ctx, "doc-2", "user", "second doc"))

	assert.Len(t, store.History(ctx, "doc-1"), 1)
	assert.Len(t, store.History(ctx, "doc-2"), 1)
	assert.Equal(t, "first doc", store.History(ctx, "doc-1")[0].Content)
}
