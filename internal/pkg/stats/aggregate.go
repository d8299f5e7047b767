package stats

import (
	"sort"
	"strconv"
	"strings"

	"github.com/ougirez/zstats/internal/domain"
)

// keySep joins group-by values into the internal composite key.
const keySep = "\x1f"

type SortOrder int

const (
	// SortKey orders rows by group key, or by the supplied domain order.
	SortKey SortOrder = iota
	SortValueDesc
	SortValueAsc
)

type AggregateOption func(*aggregateConfig)

type aggregateConfig struct {
	domains map[string]map[string]int
	ordered map[string][]string
	sort    SortOrder
	limit   int
}

// WithDomain fixes the values and ordering of a group-by field. Records with a
// value outside the domain are dropped. When every group-by field has a domain,
// missing combinations are filled with zero-valued rows.
func WithDomain(field string, values ...string) AggregateOption {
	return func(c *aggregateConfig) {
		idx := make(map[string]int, len(values))
		uniq := make([]string, 0, len(values))
		for _, v := range values {
			if _, ok := idx[v]; ok {
				continue
			}
			idx[v] = len(uniq)
			uniq = append(uniq, v)
		}
		c.domains[field] = idx
		c.ordered[field] = uniq
	}
}

func WithYearDomain(years ...domain.Year) AggregateOption {
	values := make([]string, 0, len(years))
	for _, y := range years {
		values = append(values, strconv.Itoa(y))
	}
	return WithDomain(domain.FieldYear, values...)
}

func WithSort(order SortOrder) AggregateOption {
	return func(c *aggregateConfig) {
		c.sort = order
	}
}

func WithLimit(n int) AggregateOption {
	return func(c *aggregateConfig) {
		c.limit = n
	}
}

type group struct {
	keys []string
	acc  accumulator
}

// Aggregate groups records by the groupBy fields and reduces each group.
// Records missing a group-by field or the reduced measure are skipped.
func Aggregate(records []domain.Record, groupBy []string, reducer Reducer, opts ...AggregateOption) []domain.AggregatedRow {
	cfg := aggregateConfig{
		domains: make(map[string]map[string]int),
		ordered: make(map[string][]string),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	groups := make(map[string]*group)
	for i := range records {
		rec := &records[i]

		keys, ok := cfg.groupKeys(rec, groupBy)
		if !ok {
			continue
		}

		var v float64
		if reducer.needsMeasure() {
			if v, ok = rec.Measure(reducer.Measure); !ok {
				continue
			}
		}

		ck := strings.Join(keys, keySep)
		g, ok := groups[ck]
		if !ok {
			g = &group{keys: keys}
			groups[ck] = g
		}
		g.acc.add(reducer.Kind, *rec, v)
	}

	if cfg.fillable(groupBy) {
		cfg.fill(groupBy, groups)
	}

	rows := make([]domain.AggregatedRow, 0, len(groups))
	keyed := make([][]string, 0, len(groups))
	for _, g := range groups {
		keyed = append(keyed, g.keys)
	}
	sort.Slice(keyed, func(i, j int) bool {
		return cfg.less(groupBy, keyed[i], keyed[j])
	})

	series := reducer.SeriesName()
	for _, keys := range keyed {
		g := groups[strings.Join(keys, keySep)]
		value, kept := g.acc.result(reducer)

		row := domain.AggregatedRow{
			Keys:    make(map[string]string, len(groupBy)),
			Values:  map[string]float64{series: value},
			Measure: series,
			Count:   g.acc.count,
			Records: kept,
		}
		for i, field := range groupBy {
			row.Keys[field] = keys[i]
		}
		rows = append(rows, row)
	}

	switch cfg.sort {
	case SortValueDesc:
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Value() > rows[j].Value() })
	case SortValueAsc:
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Value() < rows[j].Value() })
	}

	if cfg.limit > 0 && len(rows) > cfg.limit {
		rows = rows[:cfg.limit]
	}

	return rows
}

func (c *aggregateConfig) groupKeys(rec *domain.Record, groupBy []string) ([]string, bool) {
	keys := make([]string, len(groupBy))
	for i, field := range groupBy {
		v, ok := rec.Field(field)
		if !ok {
			return nil, false
		}
		if dom, ok := c.domains[field]; ok {
			if _, in := dom[v]; !in {
				return nil, false
			}
		}
		keys[i] = v
	}
	return keys, true
}

func (c *aggregateConfig) fillable(groupBy []string) bool {
	if len(groupBy) == 0 {
		return false
	}
	for _, field := range groupBy {
		if _, ok := c.domains[field]; !ok {
			return false
		}
	}
	return true
}

// fill adds an empty group for every domain combination with no records.
func (c *aggregateConfig) fill(groupBy []string, groups map[string]*group) {
	var walk func(depth int, prefix []string)
	walk = func(depth int, prefix []string) {
		if depth == len(groupBy) {
			ck := strings.Join(prefix, keySep)
			if _, ok := groups[ck]; !ok {
				groups[ck] = &group{keys: append([]string(nil), prefix...)}
			}
			return
		}
		for _, v := range c.ordered[groupBy[depth]] {
			walk(depth+1, append(prefix, v))
		}
	}
	walk(0, make([]string, 0, len(groupBy)))
}

func (c *aggregateConfig) less(groupBy []string, a, b []string) bool {
	for i, field := range groupBy {
		if a[i] == b[i] {
			continue
		}
		if dom, ok := c.domains[field]; ok {
			return dom[a[i]] < dom[b[i]]
		}
		return naturalLess(a[i], b[i])
	}
	return false
}

// naturalLess compares numerically when both values are numbers.
func naturalLess(a, b string) bool {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		return fa < fb
	}
	return a < b
}

// Total sums a measure over records that carry it.
func Total(records []domain.Record, measure string) float64 {
	var total float64
	for i := range records {
		if v, ok := records[i].Measure(measure); ok {
			total += v
		}
	}
	return total
}

// Distinct returns the distinct non-empty values of a field in ascending order.
func Distinct(records []domain.Record, field string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for i := range records {
		v, ok := records[i].Field(field)
		if !ok {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return naturalLess(out[i], out[j]) })
	return out
}
