package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdelorme/sillage/internal/common"
	"github.com/jdelorme/sillage/internal/models"
)

func newTestStorage(t *testing.T) *watchlistStorage {
	t.Helper()
	store, err := NewStore(common.NewSilentLogger(), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewWatchlistStorage(store, common.NewSilentLogger())
}

func TestWatchlistStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("get missing watchlist", func(t *testing.T) {
		s := newTestStorage(t)
		_, err := s.GetWatchlist(ctx, "default")
		assert.Error(t, err)
	})

	t.Run("save and get round trip", func(t *testing.T) {
		s := newTestStorage(t)
		wl := &models.Watchlist{
			Name: "default",
			Items: []models.WatchlistItem{
				{Symbol: "ORA.PA", Name: "Orange", AddedAt: time.Now()},
			},
		}

		require.NoError(t, s.SaveWatchlist(ctx, wl))
		assert.Equal(t, 1, wl.Version)
		assert.False(t, wl.CreatedAt.IsZero())
		assert.False(t, wl.UpdatedAt.IsZero())

		got, err := s.GetWatchlist(ctx, "default")
		require.NoError(t, err)
		assert.Equal(t, "default", got.Name)
		require.Len(t, got.Items, 1)
		assert.Equal(t, "ORA.PA", got.Items[0].Symbol)
	})

	t.Run("resave increments version and preserves CreatedAt", func(t *testing.T) {
		s := newTestStorage(t)
		wl := &models.Watchlist{Name: "default"}
		require.NoError(t, s.SaveWatchlist(ctx, wl))
		created := wl.CreatedAt

		wl.Items = append(wl.Items, models.WatchlistItem{Symbol: "VOD.L"})
		require.NoError(t, s.SaveWatchlist(ctx, wl))

		got, err := s.GetWatchlist(ctx, "default")
		require.NoError(t, err)
		assert.Equal(t, 2, got.Version)
		assert.WithinDuration(t, created, got.CreatedAt, time.Second)
	})

	t.Run("delete", func(t *testing.T) {
		s := newTestStorage(t)
		require.NoError(t, s.SaveWatchlist(ctx, &models.Watchlist{Name: "default"}))

		require.NoError(t, s.DeleteWatchlist(ctx, "default"))
		_, err := s.GetWatchlist(ctx, "default")
		assert.Error(t, err)
	})

	t.Run("delete missing is a no-op", func(t *testing.T) {
		s := newTestStorage(t)
		assert.NoError(t, s.DeleteWatchlist(ctx, "never-saved"))
	})
}
