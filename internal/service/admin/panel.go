package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/ougirez/zstats/internal/domain"
	"github.com/ougirez/zstats/internal/pkg/constants"
	"github.com/ougirez/zstats/internal/pkg/logger"
	"github.com/ougirez/zstats/internal/pkg/store"
	"golang.org/x/sync/singleflight"
)

const listTimeout = 30 * time.Second

// Panel is the list/edit/delete flow of one admin table. The listed rows are
// cached per filter until a mutation succeeds.
type Panel[T any] struct {
	name     string
	repo     store.Repository[T]
	validate *validator.Validate

	group singleflight.Group

	cacheMx sync.RWMutex
	cache   map[string][]*T
	// gen растёт при каждой инвалидации
	gen uint64

	inflightMx sync.Mutex
	inflight   map[string]struct{}
}

func NewPanel[T any](name string, repo store.Repository[T], validate *validator.Validate) *Panel[T] {
	return &Panel[T]{
		name:     name,
		repo:     repo,
		validate: validate,
		cache:    make(map[string][]*T),
		inflight: make(map[string]struct{}),
	}
}

func (p *Panel[T]) Name() string {
	return p.name
}

// List returns the cached rows for opts, fetching them once when missing.
// Concurrent fetches of the same filter share one call.
func (p *Panel[T]) List(ctx context.Context, opts store.ListOpts) ([]*T, error) {
	key := opts.Key()

	p.cacheMx.RLock()
	cached, ok := p.cache[key]
	gen := p.gen
	p.cacheMx.RUnlock()
	if ok {
		return cached, nil
	}

	ch := p.group.DoChan(key, func() (interface{}, error) {
		// общая выборка не зависит от отмены запроса, который её начал
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), listTimeout)
		defer cancel()

		items, err := p.repo.List(fetchCtx, opts)
		if err != nil {
			return nil, err
		}

		p.cacheMx.Lock()
		if p.gen == gen {
			p.cache[key] = items
		}
		p.cacheMx.Unlock()

		return items, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, coded(ctx.Err(), constants.ErrFetchFailed)
	}
	if res.Err != nil {
		logger.Errorf(ctx, "%s: list: %s", p.name, res.Err.Error())
		return nil, coded(res.Err, constants.ErrFetchFailed)
	}

	return res.Val.([]*T), nil
}

// Refresh drops the cache and lists again.
func (p *Panel[T]) Refresh(ctx context.Context, opts store.ListOpts) ([]*T, error) {
	p.invalidate()
	return p.List(ctx, opts)
}

func (p *Panel[T]) Upsert(ctx context.Context, item *T) (*domain.MutationResponse[T], error) {
	if err := p.Validate(ctx, item); err != nil {
		return nil, err
	}

	id := ""
	if e, ok := interface{}(item).(domain.Entity); ok {
		id = e.GetID()
	}

	release, err := p.acquire(upsertKey(id, item))
	if err != nil {
		return nil, err
	}
	defer release()

	saved, err := p.repo.Upsert(ctx, item)
	if err != nil {
		logger.Errorf(ctx, "%s: upsert: %s", p.name, err.Error())
		return nil, coded(err, constants.ErrMutationFailed)
	}

	p.invalidate()

	verb := "updated"
	if id == "" {
		verb = "created"
	}

	return &domain.MutationResponse[T]{
		Notice: domain.Notice{Message: fmt.Sprintf("%s %s", p.name, verb)},
		Item:   saved,
	}, nil
}

func (p *Panel[T]) Delete(ctx context.Context, id string, confirmed bool) (*domain.MutationResponse[T], error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", constants.ErrValidation)
	}
	if !confirmed {
		return nil, constants.ErrConfirmationRequired
	}

	release, err := p.acquire("delete:" + id)
	if err != nil {
		return nil, err
	}
	defer release()

	if err = p.repo.Delete(ctx, id); err != nil {
		logger.Errorf(ctx, "%s: delete %s: %s", p.name, id, err.Error())
		return nil, coded(err, constants.ErrMutationFailed)
	}

	p.invalidate()

	return &domain.MutationResponse[T]{
		Notice: domain.Notice{Message: fmt.Sprintf("%s deleted", p.name)},
	}, nil
}

// Validate checks item against its validate tags.
func (p *Panel[T]) Validate(ctx context.Context, item *T) error {
	if item == nil {
		return fmt.Errorf("%w: empty %s", constants.ErrValidation, p.name)
	}

	if err := p.validate.StructCtx(ctx, item); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", constants.ErrValidation, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %s", constants.ErrValidation, err.Error())
	}

	return nil
}

// upsertKey guards edits per id and creates per submitted content, so only a
// repeated submission of the same form is rejected.
func upsertKey[T any](id string, item *T) string {
	if id != "" {
		return "upsert:" + id
	}

	body, err := sonic.ConfigStd.Marshal(item)
	if err != nil {
		return "create:"
	}
	return "create:" + uuid.NewSHA1(uuid.NameSpaceOID, body).String()
}

func (p *Panel[T]) acquire(action string) (func(), error) {
	p.inflightMx.Lock()
	defer p.inflightMx.Unlock()

	if _, busy := p.inflight[action]; busy {
		return nil, constants.ErrRequestInFlight
	}
	p.inflight[action] = struct{}{}

	return func() {
		p.inflightMx.Lock()
		delete(p.inflight, action)
		p.inflightMx.Unlock()
	}, nil
}

func (p *Panel[T]) invalidate() {
	p.cacheMx.Lock()
	p.cache = make(map[string][]*T)
	p.gen++
	p.cacheMx.Unlock()
}

// coded keeps coded errors as they are and wraps the rest into fallback.
func coded(err error, fallback *constants.CodedError) error {
	var ce *constants.CodedError
	if errors.As(err, &ce) {
		return err
	}
	return fmt.Errorf("%w: %s", fallback, err.Error())
}
