// Package memstore keeps store data in memory. It backs tests and the
// server's --memory mode.
package memstore

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"
	"github.com/ougirez/zstats/internal/domain"
	"github.com/ougirez/zstats/internal/pkg/constants"
	"github.com/ougirez/zstats/internal/pkg/store"
)

type Op string

const (
	OpList   Op = "list"
	OpUpsert Op = "upsert"
	OpDelete Op = "delete"
)

type entity[T any] interface {
	*T
	domain.Entity
}

// Repository is an in-memory store.Repository keeping insertion order.
type Repository[T any, PT entity[T]] struct {
	mu    sync.Mutex
	ids   []string
	items map[string]T
	fail  map[Op]error
	calls map[Op]int
}

var _ store.Repository[domain.Media] = (*Repository[domain.Media, *domain.Media])(nil)

func NewRepository[T any, PT entity[T]](seed ...*T) *Repository[T, PT] {
	r := &Repository[T, PT]{
		items: make(map[string]T),
		fail:  make(map[Op]error),
		calls: make(map[Op]int),
	}
	for _, item := range seed {
		r.put(item)
	}
	return r
}

// FailNext makes the next call of op return err.
func (r *Repository[T, PT]) FailNext(op Op, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail[op] = err
}

// Calls reports how many times op was invoked.
func (r *Repository[T, PT]) Calls(op Op) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[op]
}

func (r *Repository[T, PT]) begin(op Op) error {
	r.calls[op]++
	if err, ok := r.fail[op]; ok {
		delete(r.fail, op)
		return err
	}
	return nil
}

func (r *Repository[T, PT]) List(_ context.Context, opts store.ListOpts) ([]*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.begin(OpList); err != nil {
		return nil, err
	}

	out := make([]*T, 0, len(r.ids))
	for _, id := range r.ids {
		item := r.items[id]
		if opts.Column != "" {
			ok, err := columnEquals(&item, opts.Column, opts.Value)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		out = append(out, &item)
	}

	return out, nil
}

func (r *Repository[T, PT]) Upsert(_ context.Context, item *T) (*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.begin(OpUpsert); err != nil {
		return nil, err
	}

	saved := r.put(item)
	return &saved, nil
}

func (r *Repository[T, PT]) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.begin(OpDelete); err != nil {
		return err
	}

	if _, ok := r.items[id]; !ok {
		return constants.ErrDBNotFound
	}
	delete(r.items, id)
	for i, existing := range r.ids {
		if existing == id {
			r.ids = append(r.ids[:i], r.ids[i+1:]...)
			break
		}
	}

	return nil
}

func (r *Repository[T, PT]) put(item *T) T {
	e := PT(item)
	if e.GetID() == "" {
		e.SetID(uuid.NewString())
	}
	if _, ok := r.items[e.GetID()]; !ok {
		r.ids = append(r.ids, e.GetID())
	}
	r.items[e.GetID()] = *item
	return *item
}

// columnEquals compares the struct field tagged db:"column" with value.
func columnEquals(item interface{}, column string, value interface{}) (bool, error) {
	v := reflect.ValueOf(item).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).Tag.Get("db") != column {
			continue
		}
		return fmt.Sprint(v.Field(i).Interface()) == fmt.Sprint(value), nil
	}
	return false, fmt.Errorf("%w: unknown column %q", constants.ErrBadRequest, column)
}
