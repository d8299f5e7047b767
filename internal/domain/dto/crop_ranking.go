package dto

import (
	"sync"

	"github.com/ougirez/zstats/internal/domain"
	"github.com/shopspring/decimal"
)

// RegionProduction is one ranked region of a crop ranking row.
type RegionProduction struct {
	Rank       int
	Region     string
	Production decimal.Decimal
}

// CropRankingRow is one row of the "top five producing regions" table.
type CropRankingRow struct {
	Year    domain.Year
	Crop    string
	Source  string
	Regions []RegionProduction
}

func (r *CropRankingRow) Total() decimal.Decimal {
	total := decimal.Zero
	for _, p := range r.Regions {
		total = total.Add(p.Production)
	}
	return total
}

type cropYear struct {
	crop string
	year domain.Year
}

// CropTotals accumulates national production per crop and year across
// concurrently parsed tables.
type CropTotals struct {
	totals map[cropYear]decimal.Decimal
	mx     sync.Mutex
}

func NewCropTotals() *CropTotals {
	return &CropTotals{totals: make(map[cropYear]decimal.Decimal)}
}

func (c *CropTotals) Put(row *CropRankingRow) {
	c.mx.Lock()
	defer c.mx.Unlock()

	key := cropYear{crop: row.Crop, year: row.Year}
	c.totals[key] = c.totals[key].Add(row.Total())
}

func (c *CropTotals) Get(crop string, year domain.Year) decimal.Decimal {
	c.mx.Lock()
	defer c.mx.Unlock()

	return c.totals[cropYear{crop: crop, year: year}]
}

// Sum returns the production of every crop and year together.
func (c *CropTotals) Sum() decimal.Decimal {
	c.mx.Lock()
	defer c.mx.Unlock()

	sum := decimal.Zero
	for _, v := range c.totals {
		sum = sum.Add(v)
	}
	return sum
}
