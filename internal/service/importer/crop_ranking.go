package importer

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ougirez/zstats/internal/domain"
	"github.com/ougirez/zstats/internal/domain/dto"
	"github.com/ougirez/zstats/internal/pkg/constants"
	"github.com/ougirez/zstats/internal/pkg/logger"
)

const (
	MeasureProduction = "production"
	AttributeRank     = "rank"
)

type cropTableLayout struct {
	year, crop, source int
	// regions holds the column of each ranked region; production follows it.
	regions []int
}

func (s *Service) ImportCropRanking(ctx context.Context, url string) (*ImportResult, error) {
	body, err := s.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("goquery.NewDocumentFromReader: %w", err)
	}

	rows, err := ParseCropRanking(doc)
	if err != nil {
		return nil, fmt.Errorf("ParseCropRanking: %w", err)
	}

	totals := dto.NewCropTotals()
	for _, row := range rows {
		totals.Put(row)
	}

	records := CropRankingRecords(rows)

	s.mx.Lock()
	defer s.mx.Unlock()

	n, err := s.store.ReplaceImported(ctx, constants.DatasetCropProduction, OriginCropRanking, records)
	if err != nil {
		return nil, fmt.Errorf("store.ReplaceImported: %w", err)
	}

	logger.Infof(ctx, "imported %d crop ranking rows as %d records", len(rows), n)

	return &ImportResult{
		Dataset: constants.DatasetCropProduction,
		Origin:  OriginCropRanking,
		Records: n,
		Total:   totals.Sum(),
	}, nil
}

// ParseCropRanking reads the first table of doc laid out as
// "Year, Crop, Top Region, Production MT, 2ND Best Region, 2nd Production Mt, ..., Source".
func ParseCropRanking(doc *goquery.Document) ([]*dto.CropRankingRow, error) {
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("no table found")
	}

	headerRow := table.Find("thead tr").First()
	if headerRow.Length() == 0 {
		headerRow = table.Find("tr").First()
	}

	headers := make([]string, 0, 13)
	headerRow.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		headers = append(headers, strings.ToLower(strings.TrimSpace(cell.Text())))
	})

	layout, err := newCropTableLayout(headers)
	if err != nil {
		return nil, err
	}

	rows := make([]*dto.CropRankingRow, 0, 16)
	table.Find("tr").EachWithBreak(func(i int, tr *goquery.Selection) bool {
		if tr.IsSelection(headerRow) {
			// скипаем
			return true
		}

		cells := make([]string, 0, len(headers))
		tr.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		if len(cells) == 0 {
			return true
		}

		row, parseErr := layout.parse(cells)
		if parseErr != nil {
			err = fmt.Errorf("row %d: %w", i, parseErr)
			return false
		}
		rows = append(rows, row)

		return true
	})
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func newCropTableLayout(headers []string) (*cropTableLayout, error) {
	l := &cropTableLayout{year: -1, crop: -1, source: -1}
	for i, h := range headers {
		switch {
		case h == "year":
			l.year = i
		case h == "crop":
			l.crop = i
		case h == "source":
			l.source = i
		case strings.Contains(h, "region"):
			l.regions = append(l.regions, i)
		}
	}

	if l.year < 0 || l.crop < 0 || len(l.regions) == 0 {
		return nil, fmt.Errorf("unexpected header %q", headers)
	}
	for _, r := range l.regions {
		if r+1 >= len(headers) || !strings.Contains(headers[r+1], "production") {
			return nil, fmt.Errorf("region column %q is not followed by production", headers[r])
		}
	}

	return l, nil
}

func (l *cropTableLayout) parse(cells []string) (*dto.CropRankingRow, error) {
	at := func(i int) string {
		if i < 0 || i >= len(cells) {
			return ""
		}
		return cells[i]
	}

	year, err := strconv.Atoi(at(l.year))
	if err != nil {
		return nil, fmt.Errorf("failed to parse year: %w", err)
	}

	row := &dto.CropRankingRow{
		Year:    year,
		Crop:    at(l.crop),
		Source:  at(l.source),
		Regions: make([]dto.RegionProduction, 0, len(l.regions)),
	}

	for rank, col := range l.regions {
		region := at(col)
		if region == "" {
			continue
		}

		production, err := ParseAmount(at(col + 1))
		if err != nil {
			return nil, fmt.Errorf("failed to parse production of %s: %w", region, err)
		}

		row.Regions = append(row.Regions, dto.RegionProduction{
			Rank:       rank + 1,
			Region:     region,
			Production: production,
		})
	}

	return row, nil
}

// CropRankingRecords expands each ranking row into one record per region.
func CropRankingRecords(rows []*dto.CropRankingRow) []*domain.Record {
	records := make([]*domain.Record, 0, len(rows)*5)
	for _, row := range rows {
		for _, p := range row.Regions {
			records = append(records, &domain.Record{
				Dataset:    constants.DatasetCropProduction,
				Year:       row.Year,
				Region:     p.Region,
				Category:   row.Crop,
				Labels:     []string{row.Crop},
				Attributes: map[string]string{AttributeRank: strconv.Itoa(p.Rank)},
				Measures:   domain.Measures{MeasureProduction: p.Production.InexactFloat64()},
				Source:     row.Source,
			})
		}
	}
	return records
}
