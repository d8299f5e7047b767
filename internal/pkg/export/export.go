// Package export writes filtered records as CSV or XLSX tables.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/ougirez/zstats/internal/domain"
	"github.com/ougirez/zstats/internal/pkg/constants"
	"github.com/xuri/excelize/v2"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const sheetName = "Records"

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatCSV, "":
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", constants.ErrUnsupportedFormat, s)
}

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

func (f Format) FileName(dataset string) string {
	return fmt.Sprintf("%s.%s", dataset, f)
}

// Table is the flat tabular form shared by both writers.
type Table struct {
	Header   []string
	Measures []string
	Rows     [][]interface{}
}

var fixedColumns = []string{"year", "period", "region", "category", "sub_category"}

// NewTable lays out records with one column per measure seen in any record.
func NewTable(records []domain.Record) Table {
	seen := make(map[string]struct{})
	for _, r := range records {
		for m := range r.Measures {
			seen[m] = struct{}{}
		}
	}
	measures := make([]string, 0, len(seen))
	for m := range seen {
		measures = append(measures, m)
	}
	sort.Strings(measures)

	header := make([]string, 0, len(fixedColumns)+len(measures)+1)
	header = append(header, fixedColumns...)
	header = append(header, measures...)
	header = append(header, "source")

	rows := make([][]interface{}, 0, len(records))
	for _, r := range records {
		row := []interface{}{r.Year, r.Period, r.Region, r.Category, r.SubCategory}
		for _, m := range measures {
			if v, ok := r.Measures[m]; ok {
				row = append(row, v)
			} else {
				row = append(row, nil)
			}
		}
		row = append(row, r.Source)
		rows = append(rows, row)
	}

	return Table{Header: header, Measures: measures, Rows: rows}
}

func Write(w io.Writer, format Format, records []domain.Record) error {
	table := NewTable(records)
	switch format {
	case FormatCSV:
		return writeCSV(w, table)
	case FormatXLSX:
		return writeXLSX(w, table)
	}
	return fmt.Errorf("%w: %q", constants.ErrUnsupportedFormat, format)
}

func writeCSV(w io.Writer, table Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(table.Header); err != nil {
		return err
	}

	line := make([]string, len(table.Header))
	for _, row := range table.Rows {
		for i, v := range row {
			line[i] = cell(v)
		}
		if err := cw.Write(line); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func cell(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case string:
		return v
	}
	return fmt.Sprint(v)
}

func writeXLSX(w io.Writer, table Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	if err := f.SetSheetRow(sheetName, "A1", &table.Header); err != nil {
		return err
	}

	for i, row := range table.Rows {
		start, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := row
		if err = f.SetSheetRow(sheetName, start, &row); err != nil {
			return err
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	_, err := f.WriteTo(w)
	return err
}
