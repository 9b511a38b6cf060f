package watchlist

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdelorme/sillage/internal/common"
	"github.com/jdelorme/sillage/internal/interfaces"
	"github.com/jdelorme/sillage/internal/models"
)

// memStore is an in-memory WatchlistStore for exercising the service
// without a database.
type memStore struct {
	lists   map[string]models.Watchlist
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{lists: map[string]models.Watchlist{}}
}

func (m *memStore) GetWatchlist(ctx context.Context, name string) (*models.Watchlist, error) {
	wl, ok := m.lists[name]
	if !ok {
		return nil, errors.New("watchlist not found")
	}
	out := wl
	return &out, nil
}

func (m *memStore) SaveWatchlist(ctx context.Context, wl *models.Watchlist) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.lists[wl.Name] = *wl
	return nil
}

func (m *memStore) DeleteWatchlist(ctx context.Context, name string) error {
	delete(m.lists, name)
	return nil
}

type memManager struct {
	store *memStore
}

func (m *memManager) WatchlistStore() interfaces.WatchlistStore { return m.store }
func (m *memManager) Close() error                              { return nil }

func newTestService() (*Service, *memStore) {
	store := newMemStore()
	return NewService(&memManager{store: store}, common.NewSilentLogger()), store
}

func TestGetWatchlist(t *testing.T) {
	t.Run("seeds defaults on first access", func(t *testing.T) {
		svc, store := newTestService()

		wl, err := svc.GetWatchlist(context.Background())
		require.NoError(t, err)

		require.Len(t, wl.Items, 4)
		assert.Equal(t, "ORA.PA", wl.Items[0].Symbol)
		assert.Equal(t, "VOD.L", wl.Items[1].Symbol)
		assert.False(t, wl.Items[0].AddedAt.IsZero())

		_, ok := store.lists[DefaultName]
		assert.True(t, ok, "seeded list is persisted")
	})

	t.Run("returns the stored list once seeded", func(t *testing.T) {
		svc, _ := newTestService()

		first, err := svc.GetWatchlist(context.Background())
		require.NoError(t, err)
		_, err = svc.RemoveItem(context.Background(), "VOD.L")
		require.NoError(t, err)

		second, err := svc.GetWatchlist(context.Background())
		require.NoError(t, err)
		assert.Len(t, second.Items, len(first.Items)-1, "defaults are not re-seeded")
	})
}

func TestAddOrUpdateItem(t *testing.T) {
	t.Run("adds a new symbol", func(t *testing.T) {
		svc, _ := newTestService()

		wl, err := svc.AddOrUpdateItem(context.Background(), &models.WatchlistItem{Symbol: "san.pa", Name: "Sanofi"})
		require.NoError(t, err)

		item, idx := wl.FindBySymbol("SAN.PA")
		require.GreaterOrEqual(t, idx, 0)
		assert.Equal(t, "SAN.PA", item.Symbol, "symbol is normalized")
		assert.Equal(t, "Sanofi", item.Name)
		assert.False(t, item.AddedAt.IsZero())
	})

	t.Run("update preserves AddedAt", func(t *testing.T) {
		svc, _ := newTestService()

		wl, err := svc.GetWatchlist(context.Background())
		require.NoError(t, err)
		original, _ := wl.FindBySymbol("ORA.PA")
		addedAt := original.AddedAt

		updated, err := svc.AddOrUpdateItem(context.Background(), &models.WatchlistItem{Symbol: "ORA.PA", Name: "Orange S.A."})
		require.NoError(t, err)

		item, _ := updated.FindBySymbol("ORA.PA")
		assert.Equal(t, "Orange S.A.", item.Name)
		assert.Equal(t, addedAt, item.AddedAt)
		assert.Len(t, updated.Items, 4, "upsert does not duplicate")
	})

	t.Run("blank symbol", func(t *testing.T) {
		svc, _ := newTestService()
		_, err := svc.AddOrUpdateItem(context.Background(), &models.WatchlistItem{Symbol: "  "})
		assert.Error(t, err)
	})

	t.Run("save failure propagates", func(t *testing.T) {
		svc, store := newTestService()
		_, err := svc.GetWatchlist(context.Background())
		require.NoError(t, err)

		store.saveErr = errors.New("disk full")
		_, err = svc.AddOrUpdateItem(context.Background(), &models.WatchlistItem{Symbol: "SAN.PA"})
		assert.Error(t, err)
	})
}

func TestRemoveItem(t *testing.T) {
	t.Run("removes by symbol, case-insensitive", func(t *testing.T) {
		svc, _ := newTestService()

		wl, err := svc.RemoveItem(context.Background(), "vod.l")
		require.NoError(t, err)

		_, idx := wl.FindBySymbol("VOD.L")
		assert.Equal(t, -1, idx)
		assert.Len(t, wl.Items, 3)
	})

	t.Run("unknown symbol errors", func(t *testing.T) {
		svc, _ := newTestService()
		_, err := svc.RemoveItem(context.Background(), "NOPE")
		assert.Error(t, err)
	})
}
