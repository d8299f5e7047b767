package stats

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ougirez/zstats/internal/domain"
)

type ReducerKind int

const (
	ReduceSum ReducerKind = iota
	ReduceAverage
	ReduceFirst
	ReduceTopN
	ReduceCount
	ReduceMax
	ReduceMin
)

// Reducer describes how the records of one group collapse into a value.
type Reducer struct {
	Kind    ReducerKind
	Measure string
	N       int
	Name    string
}

func Sum(measure string) Reducer     { return Reducer{Kind: ReduceSum, Measure: measure} }
func Average(measure string) Reducer { return Reducer{Kind: ReduceAverage, Measure: measure} }
func Max(measure string) Reducer     { return Reducer{Kind: ReduceMax, Measure: measure} }
func Min(measure string) Reducer     { return Reducer{Kind: ReduceMin, Measure: measure} }
func Count() Reducer                 { return Reducer{Kind: ReduceCount} }

// First keeps the value of the first record of each group, in input order.
func First(measure string) Reducer {
	return Reducer{Kind: ReduceFirst, Measure: measure}
}

// TopN keeps the n records with the largest measure per group. Ties keep
// input order. The group value is the sum over the kept records.
func TopN(measure string, n int) Reducer {
	if n < 1 {
		n = 1
	}
	return Reducer{Kind: ReduceTopN, Measure: measure, N: n}
}

// As renames the output series.
func (r Reducer) As(name string) Reducer {
	r.Name = name
	return r
}

func (r Reducer) SeriesName() string {
	switch {
	case r.Name != "":
		return r.Name
	case r.Kind == ReduceCount:
		return "count"
	default:
		return r.Measure
	}
}

func (r Reducer) needsMeasure() bool {
	return r.Kind != ReduceCount
}

// ParseReducer builds a Reducer from its wire name.
func ParseReducer(kind, measure string, n int) (Reducer, error) {
	var r Reducer
	switch strings.ToLower(kind) {
	case "", "sum":
		r = Sum(measure)
	case "avg", "average":
		r = Average(measure)
	case "first":
		r = First(measure)
	case "top", "topn", "top_n":
		r = TopN(measure, n)
	case "count":
		return Count(), nil
	case "max":
		r = Max(measure)
	case "min":
		r = Min(measure)
	default:
		return Reducer{}, fmt.Errorf("unknown reducer %q", kind)
	}

	if measure == "" {
		return Reducer{}, fmt.Errorf("reducer %q needs a measure", kind)
	}

	return r, nil
}

type contribution struct {
	record domain.Record
	value  float64
}

type accumulator struct {
	sum      float64
	count    int
	first    float64
	max, min float64
	kept     []contribution
}

func (a *accumulator) add(kind ReducerKind, rec domain.Record, v float64) {
	if a.count == 0 {
		a.first, a.max, a.min = v, v, v
	}
	a.count++
	a.sum += v
	if v > a.max {
		a.max = v
	}
	if v < a.min {
		a.min = v
	}
	if kind == ReduceTopN {
		a.kept = append(a.kept, contribution{record: rec, value: v})
	}
}

func (a *accumulator) result(r Reducer) (float64, []domain.Record) {
	if a.count == 0 {
		return 0, nil
	}

	switch r.Kind {
	case ReduceAverage:
		return a.sum / float64(a.count), nil
	case ReduceFirst:
		return a.first, nil
	case ReduceCount:
		return float64(a.count), nil
	case ReduceMax:
		return a.max, nil
	case ReduceMin:
		return a.min, nil
	case ReduceTopN:
		sort.SliceStable(a.kept, func(i, j int) bool {
			return a.kept[i].value > a.kept[j].value
		})
		n := r.N
		if n > len(a.kept) {
			n = len(a.kept)
		}

		var total float64
		records := make([]domain.Record, 0, n)
		for _, c := range a.kept[:n] {
			total += c.value
			records = append(records, c.record)
		}
		return total, records
	default:
		return a.sum, nil
	}
}
