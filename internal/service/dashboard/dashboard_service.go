package dashboard

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ougirez/zstats/internal/domain"
	"github.com/ougirez/zstats/internal/pkg/config"
	"github.com/ougirez/zstats/internal/pkg/constants"
	"github.com/ougirez/zstats/internal/pkg/logger"
	"github.com/ougirez/zstats/internal/pkg/stats"
	"github.com/ougirez/zstats/internal/pkg/store"
	"golang.org/x/sync/errgroup"
)

// searchFields lists the fields free-text search looks at, per dataset.
// Datasets missing here use the filter defaults.
var searchFields = map[string][]string{
	constants.DatasetCDF: {domain.FieldConstituency, domain.FieldCategory, domain.FieldSubCategory},
}

type Service struct {
	store   store.Store
	domains config.Domains
}

func NewService(st store.Store, domains config.Domains) *Service {
	return &Service{store: st, domains: domains}
}

// QueryRequest describes one filter -> aggregate -> series run.
type QueryRequest struct {
	Dataset string `param:"dataset" validate:"required"`
	domain.FilterCriteria

	GroupBy []string `query:"group_by"`
	Reducer string   `query:"reducer" validate:"omitempty,oneof=sum avg average first top topn top_n count max min"`
	Measure string   `query:"measure"`
	N       int      `query:"n" validate:"gte=0"`
	XAxis   string   `query:"x"`
	Series  []string `query:"series"`
	// Fill applies the configured year and region domains to the grouping.
	Fill  bool   `query:"fill"`
	Sort  string `query:"sort" validate:"omitempty,oneof=key desc asc"`
	Limit int    `query:"limit" validate:"gte=0"`
}

type FilterOptions struct {
	Regions    []string `json:"regions"`
	Categories []string `json:"categories"`
	Years      []string `json:"years"`
}

type QueryResponse struct {
	Rows    []domain.AggregatedRow `json:"rows"`
	XAxis   string                 `json:"x_axis"`
	Series  []string               `json:"series"`
	Points  []stats.Point          `json:"points"`
	Total   float64                `json:"total"`
	Matched int                    `json:"matched"`
	Options FilterOptions          `json:"options"`
}

// Chart is a ready-to-plot wide dataset.
type Chart struct {
	XAxis  string        `json:"x_axis"`
	Series []string      `json:"series"`
	Points []stats.Point `json:"points"`
}

type DatasetSummary struct {
	Dataset string             `json:"dataset"`
	Records int                `json:"records"`
	Years   []string           `json:"years"`
	Regions []string           `json:"regions"`
	Totals  map[string]float64 `json:"totals"`
}

// Records returns every record of a dataset. Fetch failures surface as
// ErrFetchFailed with no partial data.
func (s *Service) Records(ctx context.Context, dataset string) ([]domain.Record, error) {
	selected, err := s.store.ListRecords(ctx, store.ListRecordsOpts{Dataset: dataset})
	if err != nil {
		logger.Errorf(ctx, "store.ListRecords, dataset-%s: %s", dataset, err.Error())
		return nil, fmt.Errorf("%w: %s", constants.ErrFetchFailed, dataset)
	}

	records := make([]domain.Record, 0, len(selected))
	for _, r := range selected {
		records = append(records, *r)
	}

	return records, nil
}

// Select returns the records of a dataset matching criteria.
func (s *Service) Select(ctx context.Context, dataset string, criteria domain.FilterCriteria) ([]domain.Record, error) {
	records, err := s.Records(ctx, dataset)
	if err != nil {
		return nil, err
	}
	return filter(dataset, records, criteria), nil
}

func filter(dataset string, records []domain.Record, criteria domain.FilterCriteria) []domain.Record {
	if fields, ok := searchFields[dataset]; ok {
		return stats.Filter(records, criteria, stats.WithSearchFields(fields...))
	}
	return stats.Filter(records, criteria)
}

func (s *Service) Query(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	reducer, err := stats.ParseReducer(req.Reducer, req.Measure, req.N)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", constants.ErrValidation, err.Error())
	}

	xAxis := req.XAxis
	if xAxis == "" && len(req.GroupBy) > 0 {
		xAxis = req.GroupBy[0]
	}
	if xAxis != "" && !contains(req.GroupBy, xAxis) {
		return nil, fmt.Errorf("%w: x axis %q is not a group-by field", constants.ErrValidation, xAxis)
	}

	records, err := s.Records(ctx, req.Dataset)
	if err != nil {
		return nil, err
	}

	filtered := filter(req.Dataset, records, req.FilterCriteria)

	opts := []stats.AggregateOption{stats.WithLimit(req.Limit)}
	switch req.Sort {
	case "desc":
		opts = append(opts, stats.WithSort(stats.SortValueDesc))
	case "asc":
		opts = append(opts, stats.WithSort(stats.SortValueAsc))
	}
	if req.Fill {
		opts = append(opts, s.domainOptions(req.Dataset, req.GroupBy)...)
	}

	rows := stats.Aggregate(filtered, req.GroupBy, reducer, opts...)

	series := req.Series
	if len(series) == 0 {
		series = []string{reducer.SeriesName()}
	}

	resp := &QueryResponse{
		Rows:    rows,
		XAxis:   xAxis,
		Series:  series,
		Points:  stats.ToSeries(rows, xAxis, series),
		Matched: len(filtered),
		Options: FilterOptions{
			Regions:    stats.Distinct(records, domain.FieldRegion),
			Categories: stats.Distinct(records, domain.FieldCategory),
			Years:      stats.Distinct(records, domain.FieldYear),
		},
	}
	if req.Measure != "" {
		resp.Total = stats.Total(filtered, req.Measure)
	}

	return resp, nil
}

func (s *Service) domainOptions(dataset string, groupBy []string) []stats.AggregateOption {
	opts := make([]stats.AggregateOption, 0, 2)
	for _, field := range groupBy {
		switch field {
		case domain.FieldYear:
			opts = append(opts, stats.WithYearDomain(s.domains.Years...))
		case domain.FieldRegion:
			opts = append(opts, stats.WithDomain(domain.FieldRegion, s.regionDomain(dataset)...))
		}
	}
	return opts
}

func (s *Service) regionDomain(dataset string) []string {
	if dataset == constants.DatasetCropProduction {
		return s.domains.CropRegions
	}
	return s.domains.Provinces
}

// YearlyTrend is the production line chart of the crop dashboard: one line
// per crop over the configured years, or a single "production" line when a
// crop is selected.
func (s *Service) YearlyTrend(ctx context.Context, criteria domain.FilterCriteria, measure string) (*Chart, error) {
	records, err := s.Records(ctx, constants.DatasetCropProduction)
	if err != nil {
		return nil, err
	}
	filtered := filter(constants.DatasetCropProduction, records, criteria)

	years := stats.WithYearDomain(s.domains.Years...)
	if isAll(criteria.Category) {
		rows := stats.Aggregate(filtered, []string{domain.FieldYear, domain.FieldCategory}, stats.Sum(measure),
			years, stats.WithDomain(domain.FieldCategory, s.domains.Crops...))
		return &Chart{
			XAxis:  domain.FieldYear,
			Series: s.domains.Crops,
			Points: stats.ToSeries(rows, domain.FieldYear, s.domains.Crops),
		}, nil
	}

	rows := stats.Aggregate(filtered, []string{domain.FieldYear}, stats.Sum(measure), years)
	return &Chart{
		XAxis:  domain.FieldYear,
		Series: []string{measure},
		Points: stats.ToSeries(rows, domain.FieldYear, []string{measure}),
	}, nil
}

// RegionalBreakdown is the average production per crop region bar chart: one
// bar per crop when neither crop nor year is selected, a single averaged
// bar otherwise.
func (s *Service) RegionalBreakdown(ctx context.Context, criteria domain.FilterCriteria, measure string) (*Chart, error) {
	records, err := s.Records(ctx, constants.DatasetCropProduction)
	if err != nil {
		return nil, err
	}
	filtered := filter(constants.DatasetCropProduction, records, criteria)

	regions := stats.WithDomain(domain.FieldRegion, s.domains.CropRegions...)
	if isAll(criteria.Category) && criteria.Year == 0 {
		rows := stats.Aggregate(filtered, []string{domain.FieldRegion, domain.FieldCategory}, stats.Average(measure),
			regions, stats.WithDomain(domain.FieldCategory, s.domains.Crops...))
		return &Chart{
			XAxis:  domain.FieldRegion,
			Series: s.domains.Crops,
			Points: stats.ToSeries(rows, domain.FieldRegion, s.domains.Crops),
		}, nil
	}

	rows := stats.Aggregate(filtered, []string{domain.FieldRegion}, stats.Average(measure), regions)
	return &Chart{
		XAxis:  domain.FieldRegion,
		Series: []string{measure},
		Points: stats.ToSeries(rows, domain.FieldRegion, []string{measure}),
	}, nil
}

// Overview summarises several datasets, fetched concurrently.
func (s *Service) Overview(ctx context.Context, datasets ...string) ([]DatasetSummary, error) {
	summaries := make([]DatasetSummary, len(datasets))
	mx := sync.Mutex{}

	eg, egCtx := errgroup.WithContext(ctx)
	for i, dataset := range datasets {
		i, dataset := i, dataset
		eg.Go(func() error {
			records, err := s.Records(egCtx, dataset)
			if err != nil {
				return err
			}

			summary := summarize(dataset, records)

			mx.Lock()
			defer mx.Unlock()
			summaries[i] = summary
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return summaries, nil
}

func summarize(dataset string, records []domain.Record) DatasetSummary {
	measures := make(map[string]struct{})
	for _, r := range records {
		for m := range r.Measures {
			measures[m] = struct{}{}
		}
	}

	names := make([]string, 0, len(measures))
	for m := range measures {
		names = append(names, m)
	}
	sort.Strings(names)

	totals := make(map[string]float64, len(names))
	for _, m := range names {
		totals[m] = stats.Total(records, m)
	}

	return DatasetSummary{
		Dataset: dataset,
		Records: len(records),
		Years:   stats.Distinct(records, domain.FieldYear),
		Regions: stats.Distinct(records, domain.FieldRegion),
		Totals:  totals,
	}
}

func isAll(v string) bool {
	return v == "" || v == constants.ValueAll
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
