package stats

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ougirez/zstats/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToSeriesSingleSeriesRoundTrip(t *testing.T) {
	rows := Aggregate(cropRecords(), []string{domain.FieldYear}, Sum("production"))

	points := ToSeries(rows, domain.FieldYear, []string{"production"})

	require.Len(t, points, len(rows))
	for i, row := range rows {
		assert.Equal(t, row.Keys[domain.FieldYear], points[i].X)
		assert.Equal(t, row.Values["production"], points[i].Values["production"])
	}
}

func TestToSeriesPivotsSecondaryKey(t *testing.T) {
	rows := Aggregate(cropRecords(), []string{domain.FieldYear, domain.FieldCategory}, Sum("production"),
		WithYearDomain(2021, 2022, 2023))

	points := ToSeries(rows, domain.FieldYear, []string{"Maize", "Soybeans", "Wheat"})

	want := []map[string]float64{
		{"Maize": 0, "Soybeans": 0, "Wheat": 90},
		{"Maize": 2100, "Soybeans": 320, "Wheat": 0},
		{"Maize": 2150, "Soybeans": 350, "Wheat": 120},
	}
	require.Len(t, points, 3)
	got := make([]map[string]float64, 0, len(points))
	for _, p := range points {
		got = append(got, p.Values)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("series mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"2021", "2022", "2023"}, []string{points[0].X, points[1].X, points[2].X})
}

func TestToSeriesLengthIsDistinctX(t *testing.T) {
	rows := Aggregate(cropRecords(), []string{domain.FieldRegion, domain.FieldCategory}, Average("production"))

	points := ToSeries(rows, domain.FieldRegion, []string{"Maize"})

	assert.Len(t, points, len(Distinct(cropRecords(), domain.FieldRegion)))
	assert.Equal(t, 0.0, points[0].Values["Maize"])
	assert.Equal(t, 1025.0, points[1].Values["Maize"])
	assert.Equal(t, 1100.0, points[2].Values["Maize"])
}

func TestToSeriesMissingSeriesIsZero(t *testing.T) {
	rows := []domain.AggregatedRow{
		{Keys: map[string]string{"region": "Lusaka"}, Values: map[string]float64{"current": 800}, Measure: "current"},
	}

	points := ToSeries(rows, "region", []string{"current", "previous"})

	require.Len(t, points, 1)
	assert.Equal(t, map[string]float64{"current": 800, "previous": 0}, points[0].Values)
}

func TestToSeriesEmpty(t *testing.T) {
	assert.Empty(t, ToSeries(nil, "year", []string{"a"}))
}

func TestPointMarshalJSON(t *testing.T) {
	p := Point{XField: "year", X: "2023", Values: map[string]float64{"Maize": 1200, "Wheat": 0}}

	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, map[string]interface{}{"year": "2023", "Maize": 1200.0, "Wheat": 0.0}, decoded)
}
