package usecases

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"maya-shopify-sync/internal/domain/model"
)

type fakeCatalog struct {
	products []model.SourceProduct
	err      error
}

func (f *fakeCatalog) FetchAllProducts(context.Context) ([]model.SourceProduct, error) {
	return f.products, f.err
}

// fakeStore is an in-memory destination keyed by SKU.
type fakeStore struct {
	mu       sync.Mutex
	nextID   int64
	bySku    map[string]model.ProductHandle
	titles   map[int64]string
	creates  atomic.Int32
	updates  atomic.Int32
	failSku  map[string]error
	jitter   bool
	indexLag bool
	inflight atomic.Int32
	peak     atomic.Int32
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		bySku:   make(map[string]model.ProductHandle),
		titles:  make(map[int64]string),
		failSku: make(map[string]error),
	}
}

func (f *fakeStore) enter() func() {
	n := f.inflight.Add(1)
	for {
		peak := f.peak.Load()
		if n <= peak || f.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	if f.jitter {
		time.Sleep(time.Duration(rand.IntN(3)) * time.Millisecond)
	}
	return func() { f.inflight.Add(-1) }
}

func (f *fakeStore) FindBySku(_ context.Context, sku string) (*model.ProductHandle, error) {
	defer f.enter()()
	f.mu.Lock()
	defer f.mu.Unlock()
	handle, ok := f.bySku[sku]
	if !ok || f.indexLag {
		return nil, nil
	}
	return &handle, nil
}

func (f *fakeStore) Create(_ context.Context, p model.DestinationProduct) (model.ProductHandle, error) {
	defer f.enter()()
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failSku[p.SKU()]; err != nil {
		return model.ProductHandle{}, err
	}
	f.nextID++
	handle := model.ProductHandle{ProductID: f.nextID, VariantID: f.nextID * 10}
	f.bySku[p.SKU()] = handle
	f.titles[handle.ProductID] = p.Title
	f.creates.Add(1)
	return handle, nil
}

func (f *fakeStore) Update(_ context.Context, h model.ProductHandle, p model.DestinationProduct) (model.ProductHandle, error) {
	defer f.enter()()
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failSku[p.SKU()]; err != nil {
		return model.ProductHandle{}, err
	}
	f.titles[h.ProductID] = p.Title
	f.updates.Add(1)
	return h, nil
}

func catalog(n int) []model.SourceProduct {
	products := make([]model.SourceProduct, 0, n)
	for i := range n {
		products = append(products, model.SourceProduct{
			ID:           fmt.Sprintf("SKU-%03d", i),
			Name:         fmt.Sprintf("Plan %d", i),
			DataQuotaMB:  "1024",
			ValidityDays: "7",
			RRPUSD:       "4.5",
		})
	}
	return products
}

func TestSyncProducts_ResultsFollowSourceOrder(t *testing.T) {
	store := newFakeStore()
	store.jitter = true
	products := catalog(40)

	svc := NewSyncProducts(&fakeCatalog{products: products}, store, nil, zap.NewNop(), WithConcurrency(4))
	summary, err := svc.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, summary.Results, len(products))
	for i, r := range summary.Results {
		assert.Equal(t, products[i].ID, r.SourceID)
		assert.Equal(t, model.OutcomeCreated, r.Outcome)
		assert.NotZero(t, r.DestinationID)
	}
	assert.Equal(t, 40, summary.Total)
	assert.Equal(t, 40, summary.Created)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", summary.RunID.String())
	assert.LessOrEqual(t, store.peak.Load(), int32(4))
}

func TestSyncProducts_IsIdempotent(t *testing.T) {
	store := newFakeStore()
	svc := NewSyncProducts(&fakeCatalog{products: catalog(10)}, store, nil, zap.NewNop())

	first, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, first.Created)
	assert.Equal(t, 0, first.Updated)

	second, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 10, second.Updated)

	assert.Equal(t, int32(10), store.creates.Load())
	assert.Len(t, store.bySku, 10)
	for i := range first.Results {
		assert.Equal(t, first.Results[i].DestinationID, second.Results[i].DestinationID)
	}
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestSyncProducts_IsolatesItemFailures(t *testing.T) {
	store := newFakeStore()
	store.failSku["SKU-002"] = &model.ValidationError{StatusCode: 422, Payload: []byte(`{"errors":{"title":["can't be blank"]}}`)}
	store.failSku["SKU-004"] = fmt.Errorf("%w: shopify create product: 503", model.ErrDestinationUnavailable)

	svc := NewSyncProducts(&fakeCatalog{products: catalog(6)}, store, nil, zap.NewNop())
	summary, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 6, summary.Total)
	assert.Equal(t, 4, summary.Created)
	assert.Equal(t, 2, summary.Failed)

	assert.Equal(t, model.OutcomeFailed, summary.Results[2].Outcome)
	assert.Contains(t, summary.Results[2].Error, "can't be blank")
	assert.Zero(t, summary.Results[2].DestinationID)
	assert.Equal(t, model.OutcomeFailed, summary.Results[4].Outcome)
	assert.Contains(t, summary.Results[4].Error, model.ErrDestinationUnavailable.Error())
	assert.Equal(t, model.OutcomeCreated, summary.Results[5].Outcome)
}

func TestSyncProducts_UpstreamFailureIsFatal(t *testing.T) {
	tests := []error{
		fmt.Errorf("%w: status 401", model.ErrUpstreamAuth),
		fmt.Errorf("%w: status 503", model.ErrUpstreamUnavailable),
	}
	for _, upstreamErr := range tests {
		store := newFakeStore()
		svc := NewSyncProducts(&fakeCatalog{err: upstreamErr}, store, nil, zap.NewNop())

		summary, err := svc.Run(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, upstreamErr)
		assert.True(t, model.IsFatal(err))
		assert.Empty(t, summary.Results)
		assert.NotNil(t, summary.Results)
		assert.Zero(t, store.creates.Load())
	}
}

func TestSyncProducts_DuplicateSkusNeverCreateTwice(t *testing.T) {
	store := newFakeStore()
	store.jitter = true
	products := []model.SourceProduct{
		{ID: "DUP", Name: "First", DataQuotaMB: "1024", ValidityDays: "7", RRPUSD: "1"},
		{ID: "DUP", Name: "Second", DataQuotaMB: "2048", ValidityDays: "7", RRPUSD: "2"},
		{ID: "OTHER", Name: "Other", DataQuotaMB: "1024", ValidityDays: "7", RRPUSD: "1"},
	}

	svc := NewSyncProducts(&fakeCatalog{products: products}, store, nil, zap.NewNop(), WithConcurrency(8))
	summary, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(2), store.creates.Load())
	assert.Equal(t, 2, summary.Created)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, summary.Results[0].DestinationID, summary.Results[1].DestinationID)
}

func TestSyncProducts_EmptyCatalog(t *testing.T) {
	svc := NewSyncProducts(&fakeCatalog{}, newFakeStore(), nil, zap.NewNop())
	summary, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.Total)
	assert.NotNil(t, summary.Results)
}

func TestSyncProducts_MissingSkuFails(t *testing.T) {
	store := newFakeStore()
	svc := NewSyncProducts(&fakeCatalog{products: []model.SourceProduct{{ID: " "}}}, store, nil, zap.NewNop())

	summary, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Zero(t, store.creates.Load())
}

func TestSyncProducts_DuplicateSkusWithLaggingSearchIndex(t *testing.T) {
	store := newFakeStore()
	store.indexLag = true
	products := []model.SourceProduct{
		{ID: "DUP", Name: "First", DataQuotaMB: "1024", ValidityDays: "7", RRPUSD: "1"},
		{ID: "DUP", Name: "Second", DataQuotaMB: "2048", ValidityDays: "7", RRPUSD: "2"},
		{ID: "DUP", Name: "Third", DataQuotaMB: "3072", ValidityDays: "7", RRPUSD: "3"},
	}

	svc := NewSyncProducts(&fakeCatalog{products: products}, store, nil, zap.NewNop(), WithConcurrency(4))
	summary, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(1), store.creates.Load())
	assert.Equal(t, int32(2), store.updates.Load())
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 2, summary.Updated)
	for _, r := range summary.Results {
		assert.Equal(t, summary.Results[0].DestinationID, r.DestinationID)
	}
}

func TestSkuRegistry_RemembersHandles(t *testing.T) {
	skus := newSkuRegistry()

	entry := skus.acquire("a")
	assert.Nil(t, entry.known())
	entry.remember(model.ProductHandle{ProductID: 7, VariantID: 70})
	entry.unlock()

	done := make(chan *model.ProductHandle)
	go func() {
		e := skus.acquire("a")
		defer e.unlock()
		done <- e.known()
	}()
	got := <-done
	require.NotNil(t, got)
	assert.Equal(t, int64(7), got.ProductID)

	other := skus.acquire("b")
	defer other.unlock()
	assert.Nil(t, other.known())
}
