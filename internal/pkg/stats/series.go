package stats

import (
	"github.com/bytedance/sonic"
	"github.com/ougirez/zstats/internal/domain"
)

// Point is one x-axis position of a wide chart dataset.
type Point struct {
	XField string
	X      string
	Values map[string]float64
}

// MarshalJSON flattens the point into {"<xField>": x, "<series>": value, ...}.
func (p Point) MarshalJSON() ([]byte, error) {
	flat := make(map[string]interface{}, len(p.Values)+1)
	for k, v := range p.Values {
		flat[k] = v
	}
	flat[p.XField] = p.X
	return sonic.ConfigStd.Marshal(flat)
}

// ToSeries reshapes aggregated rows into one point per distinct x value, in
// first-appearance order. A series name is read from the row values or, when
// it equals another group key of the row, from the row's primary value.
// Series with no data stay 0.
func ToSeries(rows []domain.AggregatedRow, xAxisField string, seriesFields []string) []Point {
	index := make(map[string]int)
	points := make([]Point, 0)

	for _, row := range rows {
		x, ok := row.Keys[xAxisField]
		if !ok {
			continue
		}

		i, seen := index[x]
		if !seen {
			p := Point{XField: xAxisField, X: x, Values: make(map[string]float64, len(seriesFields))}
			for _, s := range seriesFields {
				p.Values[s] = 0
			}
			i = len(points)
			index[x] = i
			points = append(points, p)
		}

		for _, s := range seriesFields {
			if v, ok := row.Values[s]; ok {
				points[i].Values[s] = v
				continue
			}
			if pivotKey(row, xAxisField, s) {
				points[i].Values[s] = row.Value()
			}
		}
	}

	return points
}

func pivotKey(row domain.AggregatedRow, xAxisField, series string) bool {
	for field, v := range row.Keys {
		if field != xAxisField && v == series {
			return true
		}
	}
	return false
}
