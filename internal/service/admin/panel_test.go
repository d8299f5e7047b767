package admin

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ougirez/zstats/internal/domain"
	"github.com/ougirez/zstats/internal/pkg/constants"
	"github.com/ougirez/zstats/internal/pkg/store"
	"github.com/ougirez/zstats/internal/pkg/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newRecordPanel(seed ...*domain.Record) (*Panel[domain.Record], *memstore.Repository[domain.Record, *domain.Record]) {
	repo := memstore.NewRepository[domain.Record, *domain.Record](seed...)
	return NewPanel[domain.Record]("Record", repo, validator.New()), repo
}

func validRecord() *domain.Record {
	return &domain.Record{
		Dataset:  constants.DatasetHealth,
		Year:     2023,
		Region:   "Lusaka",
		Measures: domain.Measures{"cases": 12},
	}
}

// blockingRepo holds List and Upsert until release is closed.
type blockingRepo struct {
	store.Repository[domain.Record]
	entered chan struct{}
	release chan struct{}
	lists   int32
	once    sync.Once
}

func newBlockingRepo(inner store.Repository[domain.Record]) *blockingRepo {
	return &blockingRepo{
		Repository: inner,
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
	}
}

func (b *blockingRepo) wait() {
	b.once.Do(func() { close(b.entered) })
	<-b.release
}

func (b *blockingRepo) List(ctx context.Context, opts store.ListOpts) ([]*domain.Record, error) {
	atomic.AddInt32(&b.lists, 1)
	b.wait()
	return b.Repository.List(ctx, opts)
}

func (b *blockingRepo) Upsert(ctx context.Context, item *domain.Record) (*domain.Record, error) {
	b.wait()
	return b.Repository.Upsert(ctx, item)
}

func TestPanelListIsCached(t *testing.T) {
	panel, repo := newRecordPanel(validRecord())
	ctx := context.Background()

	first, err := panel.List(ctx, store.ListOpts{})
	require.NoError(t, err)
	require.Len(t, first, 1)

	_, err = panel.List(ctx, store.ListOpts{})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.Calls(memstore.OpList))

	_, err = panel.List(ctx, store.ListOpts{Column: "region", Value: "Lusaka"})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.Calls(memstore.OpList))

	_, err = panel.Refresh(ctx, store.ListOpts{})
	require.NoError(t, err)
	assert.Equal(t, 3, repo.Calls(memstore.OpList))
}

func TestPanelConcurrentListsShareOneFetch(t *testing.T) {
	inner := memstore.NewRepository[domain.Record, *domain.Record](validRecord())
	repo := newBlockingRepo(inner)
	panel := NewPanel[domain.Record]("Record", repo, validator.New())
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([][]*domain.Record, 5)
	errs := make([]error, 5)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], errs[0] = panel.List(ctx, store.ListOpts{})
	}()
	<-repo.entered

	for i := 1; i < 5; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = panel.List(ctx, store.ListOpts{})
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(repo.release)
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Len(t, results[i], 1)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&repo.lists))
}

func TestPanelListSurvivesFirstCallerCancel(t *testing.T) {
	inner := memstore.NewRepository[domain.Record, *domain.Record](validRecord())
	repo := newBlockingRepo(inner)
	panel := NewPanel[domain.Record]("Record", repo, validator.New())

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := panel.List(firstCtx, store.ListOpts{})
		firstErr <- err
	}()
	<-repo.entered

	var (
		wg     sync.WaitGroup
		second []*domain.Record
		err    error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		second, err = panel.List(context.Background(), store.ListOpts{})
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-firstErr, constants.ErrFetchFailed)

	close(repo.release)
	wg.Wait()
	require.NoError(t, err)
	assert.Len(t, second, 1)
	assert.Equal(t, int32(1), atomic.LoadInt32(&repo.lists))
}

func TestPanelListFailure(t *testing.T) {
	panel, repo := newRecordPanel()
	repo.FailNext(memstore.OpList, errors.New("connection reset"))

	_, err := panel.List(context.Background(), store.ListOpts{})
	assert.ErrorIs(t, err, constants.ErrFetchFailed)

	items, err := panel.List(context.Background(), store.ListOpts{})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestPanelUpsertValidatesBeforeCalling(t *testing.T) {
	panel, repo := newRecordPanel()

	invalid := validRecord()
	invalid.Year = 0
	invalid.Measures = nil

	_, err := panel.Upsert(context.Background(), invalid)
	require.ErrorIs(t, err, constants.ErrValidation)
	assert.Contains(t, err.Error(), "Year")
	assert.Equal(t, 0, repo.Calls(memstore.OpUpsert))
}

func TestPanelUpsertInvalidatesCache(t *testing.T) {
	panel, repo := newRecordPanel()
	ctx := context.Background()

	items, err := panel.List(ctx, store.ListOpts{})
	require.NoError(t, err)
	require.Empty(t, items)

	resp, err := panel.Upsert(ctx, validRecord())
	require.NoError(t, err)
	assert.Equal(t, "Record created", resp.Notice.Message)
	require.NotNil(t, resp.Item)

	items, err = panel.List(ctx, store.ListOpts{})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 2, repo.Calls(memstore.OpList))

	updated := *items[0]
	updated.Region = "Southern"
	resp, err = panel.Upsert(ctx, &updated)
	require.NoError(t, err)
	assert.Equal(t, "Record updated", resp.Notice.Message)
}

func TestPanelUpsertFailureKeepsCache(t *testing.T) {
	panel, repo := newRecordPanel(validRecord())
	ctx := context.Background()

	_, err := panel.List(ctx, store.ListOpts{})
	require.NoError(t, err)

	repo.FailNext(memstore.OpUpsert, errors.New("permission denied"))
	_, err = panel.Upsert(ctx, validRecord())
	assert.ErrorIs(t, err, constants.ErrMutationFailed)

	_, err = panel.List(ctx, store.ListOpts{})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.Calls(memstore.OpList))
}

func TestPanelDelete(t *testing.T) {
	seed := validRecord()
	seed.ID = "rec-1"
	panel, repo := newRecordPanel(seed)
	ctx := context.Background()

	_, err := panel.Delete(ctx, "rec-1", false)
	assert.ErrorIs(t, err, constants.ErrConfirmationRequired)
	assert.Equal(t, 0, repo.Calls(memstore.OpDelete))

	_, err = panel.Delete(ctx, "", true)
	assert.ErrorIs(t, err, constants.ErrValidation)

	resp, err := panel.Delete(ctx, "rec-1", true)
	require.NoError(t, err)
	assert.Equal(t, "Record deleted", resp.Notice.Message)

	_, err = panel.Delete(ctx, "rec-1", true)
	assert.ErrorIs(t, err, constants.ErrDBNotFound)
}

func TestPanelRejectsDuplicateSubmission(t *testing.T) {
	inner := memstore.NewRepository[domain.Record, *domain.Record]()
	repo := newBlockingRepo(inner)
	panel := NewPanel[domain.Record]("Record", repo, validator.New())
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := panel.Upsert(ctx, validRecord())
		done <- err
	}()
	<-repo.entered

	_, err := panel.Upsert(ctx, validRecord())
	assert.ErrorIs(t, err, constants.ErrRequestInFlight)

	close(repo.release)
	require.NoError(t, <-done)

	_, err = panel.Upsert(ctx, validRecord())
	assert.NoError(t, err)
}

func TestPanelConcurrentDistinctCreates(t *testing.T) {
	inner := memstore.NewRepository[domain.Record, *domain.Record]()
	repo := newBlockingRepo(inner)
	panel := NewPanel[domain.Record]("Record", repo, validator.New())
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := panel.Upsert(ctx, validRecord())
		done <- err
	}()
	<-repo.entered

	other := validRecord()
	other.Region = "Southern"
	second := make(chan error, 1)
	go func() {
		_, err := panel.Upsert(ctx, other)
		second <- err
	}()
	time.Sleep(20 * time.Millisecond)

	close(repo.release)
	require.NoError(t, <-done)
	require.NoError(t, <-second)

	items, err := inner.List(ctx, store.ListOpts{})
	require.NoError(t, err)
	assert.Len(t, items, 2)
}
