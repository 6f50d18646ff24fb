package cart

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"veggi-storefront/internal/domain"
	"veggi-storefront/internal/repository/storage"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type failingRepo struct {
	getErr   error
	setErr   error
	setCalls int
}

func (f *failingRepo) Get(context.Context, string) ([]byte, error) {
	return nil, f.getErr
}

func (f *failingRepo) Set(context.Context, string, []byte) error {
	f.setCalls++
	return f.setErr
}

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	return zap.New(core), logs
}

func TestStore_TotalIsComputedFresh(t *testing.T) {
	ctx := context.Background()
	s := New(storage.NewMemory(), nil)
	s.Add(ctx, item("p1", 100), 2)
	s.Add(ctx, item("p2", 50), 1)

	assert.True(t, decimal.NewFromInt(250).Equal(s.Total()))
	assert.Equal(t, 3, s.Count())

	s.UpdateQuantity(ctx, "p2", 3)
	assert.True(t, decimal.NewFromInt(350).Equal(s.Total()))
}

func TestStore_DecimalPrices(t *testing.T) {
	ctx := context.Background()
	s := New(nil, nil)
	s.Add(ctx, domain.CartLineItem{ID: "p1", Price: decimal.RequireFromString("19.99")}, 3)
	assert.Equal(t, "59.97", s.Total().StringFixed(2))
}

func TestStore_PersistsEveryMutation(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemory()
	s := New(repo, nil)

	s.Add(ctx, item("p1", 100), 2)
	raw, err := repo.Get(ctx, StorageKey)
	require.NoError(t, err)
	var stored []domain.CartLineItem
	require.NoError(t, json.Unmarshal(raw, &stored))
	require.Len(t, stored, 1)
	assert.Equal(t, 2, stored[0].Quantity)

	s.Remove(ctx, "p1")
	raw, err = repo.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestStore_LoadReplaysStoredItems(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemory()
	first := New(repo, nil)
	first.Add(ctx, item("p1", 100), 2)
	first.Add(ctx, item("p2", 50), 1)

	second := New(repo, nil)
	second.Load(ctx)

	items := second.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "p1", items[0].ID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.True(t, decimal.NewFromInt(250).Equal(second.Total()))
}

func TestStore_ClearThenReloadIsEmpty(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemory()
	s := New(repo, nil)
	s.Add(ctx, item("p1", 100), 1)
	s.Clear(ctx)

	reloaded := New(repo, nil)
	assert.NotPanics(t, func() { reloaded.Load(ctx) })
	assert.Empty(t, reloaded.Items())
	assert.True(t, reloaded.Persistent())
}

func TestStore_LoadFromEmptyStorage(t *testing.T) {
	s := New(storage.NewMemory(), nil)
	s.Load(context.Background())
	assert.Zero(t, s.Len())
	assert.True(t, s.Persistent())
}

func TestStore_LoadCorruptPayloadLogsAndStartsEmpty(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemory()
	require.NoError(t, repo.Set(ctx, StorageKey, []byte(`[{"id":"p1","quantity":`)))
	logger, logs := observedLogger()

	s := New(repo, logger)
	s.Load(ctx)

	assert.Empty(t, s.Items())
	assert.Equal(t, 1, logs.FilterMessage("failed to load cart from storage").Len())

	s.Add(ctx, item("p2", 10), 1)
	raw, err := repo.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"p2"`)
}

func TestStore_LoadSkipsInvalidEntries(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemory()
	require.NoError(t, repo.Set(ctx, StorageKey, []byte(`[{"id":"p1","price":10,"quantity":0},{"id":"p2","price":5,"quantity":2}]`)))

	s := New(repo, nil)
	s.Load(ctx)
	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "p2", items[0].ID)
}

func TestStore_ReadFailureFallsBackToMemory(t *testing.T) {
	ctx := context.Background()
	repo := &failingRepo{getErr: errors.New("connection refused")}
	logger, logs := observedLogger()

	s := New(repo, logger)
	s.Load(ctx)
	assert.False(t, s.Persistent())

	s.Add(ctx, item("p1", 10), 1)
	assert.Zero(t, repo.setCalls)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 1, logs.FilterMessage("cart storage unavailable, continuing in memory").Len())
}

func TestStore_WriteFailureFallsBackToMemory(t *testing.T) {
	ctx := context.Background()
	repo := &failingRepo{getErr: storage.ErrNotFound, setErr: errors.New("disk full")}

	s := New(repo, nil)
	s.Load(ctx)
	require.True(t, s.Persistent())

	s.Add(ctx, item("p1", 10), 1)
	s.Add(ctx, item("p1", 10), 1)

	assert.Equal(t, 1, repo.setCalls)
	assert.False(t, s.Persistent())
	assert.Equal(t, 2, s.Count())
}

func TestStore_ItemsReturnsCopy(t *testing.T) {
	s := New(nil, nil)
	s.Add(context.Background(), item("p1", 10), 1)
	items := s.Items()
	items[0].Quantity = 99
	assert.Equal(t, 1, s.Count())
}

// ctxRepo fails like a network backend once the caller's context is done.
type ctxRepo struct {
	storage.Repository
}

func (r ctxRepo) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.Repository.Get(ctx, key)
}

func (r ctxRepo) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.Repository.Set(ctx, key, value)
}

func TestStore_CanceledRequestStillPersists(t *testing.T) {
	repo := ctxRepo{storage.NewMemory()}
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(repo, nil)
	s.Load(canceled)
	require.True(t, s.Persistent())

	s.Add(canceled, item("p1", 10), 1)
	assert.True(t, s.Persistent())

	s.Add(context.Background(), item("p2", 20), 2)
	assert.True(t, s.Persistent())

	raw, err := repo.Get(context.Background(), StorageKey)
	require.NoError(t, err)
	var stored []domain.CartLineItem
	require.NoError(t, json.Unmarshal(raw, &stored))
	require.Len(t, stored, 2)
	assert.Equal(t, "p1", stored[0].ID)
	assert.Equal(t, "p2", stored[1].ID)

	reloaded := New(repo, nil)
	reloaded.Load(canceled)
	assert.Equal(t, 3, reloaded.Count())
	assert.True(t, reloaded.Persistent())
}
