package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/ougirez/zstats/internal/domain"
	"github.com/ougirez/zstats/internal/pkg/logger"
	"github.com/ougirez/zstats/internal/pkg/store/xpgx"
)

var (
	recordColumns = []string{
		"id", "dataset", "year", "period", "region", "category", "sub_category",
		"labels", "attributes", "measures", "source", "origin", "created_at", "updated_at",
	}
	recordFilterColumns = []string{"dataset", "year", "region", "category", "sub_category", "source", "origin"}
)

type ListRecordsOpts struct {
	Dataset string
	ListOpts
}

func recordValues(r *domain.Record) (map[string]interface{}, error) {
	measures, err := jsonb(r.Measures)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal measures: %w", err)
	}
	attributes, err := jsonb(r.Attributes)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal attributes: %w", err)
	}

	labels := r.Labels
	if labels == nil {
		labels = []string{}
	}

	return map[string]interface{}{
		"dataset":      r.Dataset,
		"year":         r.Year,
		"period":       r.Period,
		"region":       r.Region,
		"category":     r.Category,
		"sub_category": r.SubCategory,
		"labels":       labels,
		"attributes":   attributes,
		"measures":     measures,
		"source":       r.Source,
		"origin":       r.Origin,
	}, nil
}

func (s *store) listRecordsQuery(opts ListRecordsOpts) (sq.SelectBuilder, error) {
	query, err := s.records.listQuery(opts.ListOpts)
	if err != nil {
		return query, err
	}

	if opts.Dataset != "" {
		query = query.Where(sq.Eq{"dataset": opts.Dataset})
	}

	return query, nil
}

func (s *store) ListRecords(ctx context.Context, opts ListRecordsOpts) ([]*domain.Record, error) {
	query, err := s.listRecordsQuery(opts)
	if err != nil {
		return nil, err
	}

	selected, err := xpgx.Selectx[domain.Record](ctx, s.pool, query)
	if err != nil {
		logger.Errorf(ctx, "ListRecords, dataset-%s: %s", opts.Dataset, err.Error())
		return nil, wrapErr(err)
	}

	return selected, nil
}

// ReplaceImported swaps every record one importer produced for a dataset with
// the given set in a single transaction. Hand-entered records stay. An empty
// set removes the importer's records.
func (s *store) ReplaceImported(ctx context.Context, dataset, origin string, records []*domain.Record) (int, error) {
	del, insert, err := replaceImportedQueries(dataset, origin, records)
	if err != nil {
		return 0, err
	}

	err = xpgx.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := xpgx.Execx(ctx, tx, del); err != nil {
			return fmt.Errorf("delete old records: %w", err)
		}

		if insert == nil {
			return nil
		}
		if _, err := xpgx.Execx(ctx, tx, insert); err != nil {
			return fmt.Errorf("insert records: %w", err)
		}

		return nil
	})
	if err != nil {
		logger.Errorf(ctx, "ReplaceImported, dataset-%s, origin-%s: %s", dataset, origin, err.Error())
		return 0, err
	}

	return len(records), nil
}

// replaceImportedQueries builds the delete of the importer's old records and
// the insert of the new ones. insert is nil when records is empty.
func replaceImportedQueries(dataset, origin string, records []*domain.Record) (sq.DeleteBuilder, sq.Sqlizer, error) {
	del := builder().Delete(tableRecords).Where(sq.Eq{"dataset": dataset, "origin": origin})
	if len(records) == 0 {
		return del, nil, nil
	}

	insert := builder().Insert(tableRecords).
		Columns("id", "dataset", "year", "period", "region", "category", "sub_category",
			"labels", "attributes", "measures", "source", "origin")

	for _, r := range records {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		r.Dataset = dataset
		r.Origin = origin

		v, err := recordValues(r)
		if err != nil {
			return del, nil, err
		}

		insert = insert.Values(r.ID, v["dataset"], v["year"], v["period"], v["region"], v["category"],
			v["sub_category"], v["labels"], v["attributes"], v["measures"], v["source"], v["origin"])
	}

	return del, insert, nil
}
