package stats

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ougirez/zstats/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterCropCategory(t *testing.T) {
	records := []domain.Record{
		{Year: 2023, Category: "Maize", Region: "Southern", Measures: production(1200000)},
		{Year: 2023, Category: "Wheat", Region: "Central", Measures: production(90000)},
	}

	got := Filter(records, domain.FilterCriteria{Category: "Maize", Region: "all"})

	require.Len(t, got, 1)
	assert.Equal(t, "Southern", got[0].Region)
	assert.Equal(t, 1200000.0, got[0].Measures["production"])
}

func TestFilterEmptyInput(t *testing.T) {
	got := Filter(nil, domain.FilterCriteria{Region: "Lusaka", SearchText: "x"})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFilterAllMeansNoConstraint(t *testing.T) {
	records := cropRecords()

	for _, c := range []domain.FilterCriteria{
		{Region: "all", Category: "all"},
		{},
	} {
		assert.Len(t, Filter(records, c), len(records))
	}
}

func TestFilterIsCaseSensitiveForEquality(t *testing.T) {
	got := Filter(cropRecords(), domain.FilterCriteria{Region: "southern"})
	assert.Empty(t, got)
}

func TestFilterSearchIsCaseInsensitive(t *testing.T) {
	got := Filter(cropRecords(), domain.FilterCriteria{SearchText: "SOY"})
	require.Len(t, got, 2)
	for _, r := range got {
		assert.Equal(t, "Soybeans", r.Category)
	}
}

func TestFilterNestedLabelPassesWholeRecord(t *testing.T) {
	got := Filter(provinceRecords(), domain.FilterCriteria{SearchText: "cassava"})

	require.Len(t, got, 2)
	assert.Equal(t, "Lusaka", got[0].Region)
	assert.Equal(t, []string{"Maize", "Cassava"}, got[0].Labels)
	assert.Equal(t, "Western", got[1].Region)
}

func TestFilterCustomSearchFields(t *testing.T) {
	records := []domain.Record{
		{Year: 2023, Category: "Bursaries", Attributes: map[string]string{"constituency": "Katuba"}, Measures: domain.Measures{"amount": 1}},
		{Year: 2023, Category: "Projects", Attributes: map[string]string{"constituency": "Keembe"}, Measures: domain.Measures{"amount": 2}},
	}

	got := Filter(records, domain.FilterCriteria{SearchText: "kat"})
	assert.Empty(t, got)

	got = Filter(records, domain.FilterCriteria{SearchText: "kat"}, WithSearchFields("constituency", domain.FieldCategory))
	require.Len(t, got, 1)
	assert.Equal(t, "Bursaries", got[0].Category)
}

func TestFilterYearAndAttributes(t *testing.T) {
	records := []domain.Record{
		{Year: 2022, Attributes: map[string]string{"constituency": "Katuba"}, Measures: domain.Measures{"amount": 1}},
		{Year: 2023, Attributes: map[string]string{"constituency": "Katuba"}, Measures: domain.Measures{"amount": 2}},
		{Year: 2023, Attributes: map[string]string{"constituency": "Keembe"}, Measures: domain.Measures{"amount": 3}},
	}

	got := Filter(records, domain.FilterCriteria{Year: 2023, Attributes: map[string]string{"constituency": "Katuba"}})
	require.Len(t, got, 1)
	assert.Equal(t, 2.0, got[0].Measures["amount"])
}

func TestFilterIsIdempotent(t *testing.T) {
	criteria := []domain.FilterCriteria{
		{},
		{Region: "Eastern"},
		{Category: "Maize", SearchText: "south"},
		{SearchText: "e"},
		{Region: "Nowhere"},
	}

	for _, c := range criteria {
		once := Filter(cropRecords(), c)
		twice := Filter(once, c)
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Errorf("criteria %+v: second pass differs (-once +twice):\n%s", c, diff)
		}
	}
}

func TestFilterSearchNeverGrowsResult(t *testing.T) {
	base := domain.FilterCriteria{Region: "all", Category: "Maize"}
	without := Filter(cropRecords(), base)

	for _, q := range []string{"a", "east", "maize", "zzz"} {
		with := base
		with.SearchText = q
		assert.LessOrEqual(t, len(Filter(cropRecords(), with)), len(without), q)
	}
}

func TestFilterPreservesOrderAndInput(t *testing.T) {
	records := cropRecords()
	before := cropRecords()

	got := Filter(records, domain.FilterCriteria{Region: "Eastern"})

	require.Len(t, got, 3)
	assert.Equal(t, []int{2023, 2022, 2022}, []int{got[0].Year, got[1].Year, got[2].Year})
	assert.Equal(t, before, records)
}
