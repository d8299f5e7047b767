package stats

import "github.com/ougirez/zstats/internal/domain"

func rec(year int, region, category string, measures domain.Measures) domain.Record {
	return domain.Record{Year: year, Region: region, Category: category, Measures: measures}
}

func production(v float64) domain.Measures {
	return domain.Measures{"production": v}
}

// cropRecords mirrors the per-region crop production table.
func cropRecords() []domain.Record {
	return []domain.Record{
		rec(2023, "Southern", "Maize", production(1200)),
		rec(2023, "Eastern", "Maize", production(950)),
		rec(2022, "Eastern", "Maize", production(1100)),
		rec(2022, "Southern", "Maize", production(1000)),
		rec(2023, "Central", "Soybeans", production(350)),
		rec(2022, "Eastern", "Soybeans", production(320)),
		rec(2023, "Southern", "Wheat", production(120)),
		rec(2021, "Central", "Wheat", production(90)),
	}
}

func provinceRecords() []domain.Record {
	return []domain.Record{
		{Year: 2023, Region: "Lusaka", Labels: []string{"Maize", "Cassava"}, Measures: domain.Measures{"farms": 10}},
		{Year: 2023, Region: "Northern", Labels: []string{"Rice", "Millet"}, Measures: domain.Measures{"farms": 7}},
		{Year: 2023, Region: "Western", Labels: []string{"Cassava"}, Measures: domain.Measures{"farms": 3}},
	}
}
