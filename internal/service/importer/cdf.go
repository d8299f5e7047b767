package importer

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bytedance/sonic"
	"github.com/ougirez/zstats/internal/domain"
	"github.com/ougirez/zstats/internal/domain/dto"
	"github.com/ougirez/zstats/internal/pkg/constants"
	"github.com/ougirez/zstats/internal/pkg/logger"
	"github.com/shopspring/decimal"
)

const (
	MeasureAmount         = "amount"
	AttributeConstituency = domain.FieldConstituency
	sourceCDF             = "Constituency Development Fund"
)

// исправления написания подкатегорий, применяются по порядку
var subCategoryFixes = [][2]string{
	{"secondary boarding", "Secondary Boarding School"},
	{"skills development", "Skills Development"},
	{"secondary school", "Secondary School"},
	{"development", "Development"},
	{"n/a", "N/A"},
}

func (s *Service) ImportCDF(ctx context.Context, url string) (*ImportResult, error) {
	body, err := s.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	records, total, err := ParseCDF(body, s.cfg.CDFProvinces, s.cfg.CDFYear)
	if err != nil {
		return nil, fmt.Errorf("ParseCDF: %w", err)
	}

	s.mx.Lock()
	defer s.mx.Unlock()

	n, err := s.store.ReplaceImported(ctx, constants.DatasetCDF, OriginCDF, records)
	if err != nil {
		return nil, fmt.Errorf("store.ReplaceImported: %w", err)
	}

	logger.Infof(ctx, "imported %d cdf allocations, total %s", n, total.StringFixed(2))

	return &ImportResult{
		Dataset: constants.DatasetCDF,
		Origin:  OriginCDF,
		Records: n,
		Total:   total,
	}, nil
}

// ParseCDF decodes a CDF payload into records of dataset cdf. Constituencies
// missing from provinces keep an empty region; the lookup ignores case.
func ParseCDF(body []byte, provinces map[string]string, year domain.Year) ([]*domain.Record, decimal.Decimal, error) {
	byName := make(map[string]string, len(provinces))
	for name, province := range provinces {
		byName[strings.ToLower(strings.TrimSpace(name))] = province
	}

	var payload dto.CDFPayload
	if err := sonic.Unmarshal(body, &payload); err != nil {
		return nil, decimal.Zero, fmt.Errorf("sonic.Unmarshal: %w", err)
	}

	total := decimal.Zero
	records := make([]*domain.Record, 0, len(payload.Data))
	for i, row := range payload.Data {
		amount, err := ParseAmount(string(row.Amount))
		if err != nil {
			return nil, decimal.Zero, fmt.Errorf("row %d, amount %q: %w", i, row.Amount, err)
		}
		total = total.Add(amount)

		constituency := strings.TrimSpace(row.Constituency)
		records = append(records, &domain.Record{
			Dataset:     constants.DatasetCDF,
			Year:        year,
			Region:      byName[strings.ToLower(constituency)],
			Category:    NormalizeCategory(row.Category),
			SubCategory: NormalizeSubCategory(row.SubCategory),
			Attributes:  map[string]string{AttributeConstituency: constituency},
			Measures:    domain.Measures{MeasureAmount: amount.InexactFloat64()},
			Source:      sourceCDF,
		})
	}

	return records, total, nil
}

// NormalizeCategory capitalises the category and fixes the known
// misspellings of "Bursaries".
func NormalizeCategory(c string) string {
	c = strings.ToLower(strings.TrimSpace(c))
	c = strings.ReplaceAll(c, "busaries", "bursaries")
	c = strings.ReplaceAll(c, "burseries", "bursaries")

	r, size := utf8.DecodeRuneInString(c)
	if r == utf8.RuneError {
		return c
	}
	return string(unicode.ToUpper(r)) + c[size:]
}

func NormalizeSubCategory(s string) string {
	s = strings.TrimSpace(s)
	for _, fix := range subCategoryFixes {
		s = strings.ReplaceAll(s, fix[0], fix[1])
	}
	return s
}

// ParseAmount keeps digits and dots only, so "K 1,250,000.50" reads as
// 1250000.50. Blank and "0" are zero.
func ParseAmount(a string) (decimal.Decimal, error) {
	a = strings.TrimSpace(a)
	if a == "" || a == "0" {
		return decimal.Zero, nil
	}

	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, a)
	if cleaned == "" {
		return decimal.Zero, nil
	}

	return decimal.NewFromString(cleaned)
}
