package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/repotree/internal/core/domain"
)

func TestTokenStore_Lifecycle(t *testing.T) {
	store := NewTokenStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "https://gitlab.example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.Save(ctx, "https://gitlab.example.com/", "abc"))
	require.NoError(t, store.Save(ctx, "https://github.example.com", "def"))

	token, err := store.Get(ctx, "https://gitlab.example.com")
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	urls, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://github.example.com", "https://gitlab.example.com"}, urls)

	require.NoError(t, store.Delete(ctx, "https://gitlab.example.com"))
	assert.ErrorIs(t, store.Delete(ctx, "https://gitlab.example.com"), domain.ErrNotFound)
}

func TestTokenStore_SaveRequiresURL(t *testing.T) {
	err := NewTokenStore().Save(context.Background(), "", "abc")
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestRunStore_ListNewestFirst(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveRun(ctx, domain.RunSummary{RunID: "old", StartedAt: base}))
	require.NoError(t, store.SaveRun(ctx, domain.RunSummary{RunID: "new", StartedAt: base.Add(time.Hour)}))
	assert.Error(t, store.SaveRun(ctx, domain.RunSummary{RunID: "old", StartedAt: base}))

	runs, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "new", runs[0].RunID)

	runs, err = store.ListRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "new", runs[0].RunID)
}
