package store

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/ougirez/zstats/internal/domain"
	"github.com/ougirez/zstats/internal/pkg/constants"
	"github.com/ougirez/zstats/internal/pkg/store/xpgx"
)

// ListOpts narrows a list fetch by equality on one column.
type ListOpts struct {
	Column string
	Value  interface{}
}

func (o ListOpts) Key() string {
	if o.Column == "" {
		return ""
	}
	return fmt.Sprintf("%s=%v", o.Column, o.Value)
}

// Repository is the CRUD capability an admin panel works against.
type Repository[T any] interface {
	List(ctx context.Context, opts ListOpts) ([]*T, error)
	Upsert(ctx context.Context, item *T) (*T, error)
	Delete(ctx context.Context, id string) error
}

type entity[T any] interface {
	*T
	domain.Entity
}

// tableRepository implements Repository over one table keyed by a text id.
type tableRepository[T any, PT entity[T]] struct {
	pool      Pool
	table     string
	columns   []string
	orderBy   string
	filterBy  map[string]struct{}
	rowValues func(item *T) (map[string]interface{}, error)
}

func newTableRepository[T any, PT entity[T]](
	pool Pool,
	table string,
	columns []string,
	orderBy string,
	rowValues func(item *T) (map[string]interface{}, error),
	filterBy ...string,
) *tableRepository[T, PT] {
	allowed := make(map[string]struct{}, len(filterBy))
	for _, c := range filterBy {
		allowed[c] = struct{}{}
	}

	return &tableRepository[T, PT]{
		pool:      pool,
		table:     table,
		columns:   columns,
		orderBy:   orderBy,
		filterBy:  allowed,
		rowValues: rowValues,
	}
}

func (r *tableRepository[T, PT]) listQuery(opts ListOpts) (sq.SelectBuilder, error) {
	query := builder().Select(r.columns...).
		From(r.table).
		OrderBy(r.orderBy)

	if opts.Column != "" {
		if _, ok := r.filterBy[opts.Column]; !ok {
			return query, fmt.Errorf("%w: cannot filter %s by %q", constants.ErrBadRequest, r.table, opts.Column)
		}
		query = query.Where(sq.Eq{opts.Column: opts.Value})
	}

	return query, nil
}

func (r *tableRepository[T, PT]) List(ctx context.Context, opts ListOpts) ([]*T, error) {
	query, err := r.listQuery(opts)
	if err != nil {
		return nil, err
	}

	selected, err := xpgx.Selectx[T](ctx, r.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}

	return selected, nil
}

func (r *tableRepository[T, PT]) upsertQuery(item *T) (sq.InsertBuilder, error) {
	e := PT(item)
	if e.GetID() == "" {
		e.SetID(uuid.NewString())
	}

	values, err := r.rowValues(item)
	if err != nil {
		return sq.InsertBuilder{}, err
	}
	values["id"] = e.GetID()

	updates := make([]string, 0, len(values))
	for _, c := range r.columns {
		if _, ok := values[c]; ok && c != "id" {
			updates = append(updates, fmt.Sprintf("%s=excluded.%s", c, c))
		}
	}
	if hasColumn(r.columns, "updated_at") {
		updates = append(updates, "updated_at=now()")
	}

	return builder().Insert(r.table).
		SetMap(values).
		Suffix(fmt.Sprintf("on conflict (id) do update set %s returning %s",
			strings.Join(updates, ", "), strings.Join(r.columns, ", "))), nil
}

func (r *tableRepository[T, PT]) Upsert(ctx context.Context, item *T) (*T, error) {
	query, err := r.upsertQuery(item)
	if err != nil {
		return nil, err
	}

	saved, err := xpgx.Getx[T](ctx, r.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}

	return saved, nil
}

func (r *tableRepository[T, PT]) Delete(ctx context.Context, id string) error {
	query := builder().Delete(r.table).Where(sq.Eq{"id": id})

	tag, err := xpgx.Execx(ctx, r.pool, query)
	if err != nil {
		return wrapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return constants.ErrDBNotFound
	}

	return nil
}

func hasColumn(columns []string, name string) bool {
	for _, c := range columns {
		if c == name {
			return true
		}
	}
	return false
}
