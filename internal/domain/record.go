package domain

import (
	"strconv"
	"time"
)

type Year = int

// Measures are the named numeric values of one observation.
type Measures map[string]float64

// Record is one observation of a dataset: a temporal key, optional region and
// category, and one or more numeric measures. Origin names the importer that
// produced the record and is empty for records entered by hand.
type Record struct {
	ID          string            `db:"id" json:"id"`
	Dataset     string            `db:"dataset" json:"dataset" validate:"required"`
	Year        Year              `db:"year" json:"year" validate:"required,gte=1900,lte=2100"`
	Period      string            `db:"period" json:"period,omitempty"`
	Region      string            `db:"region" json:"region,omitempty"`
	Category    string            `db:"category" json:"category,omitempty"`
	SubCategory string            `db:"sub_category" json:"sub_category,omitempty"`
	Labels      []string          `db:"labels" json:"labels,omitempty"`
	Attributes  map[string]string `db:"attributes" json:"attributes,omitempty"`
	Measures    Measures          `db:"measures" json:"measures" validate:"required,min=1"`
	Source      string            `db:"source" json:"source,omitempty"`
	Origin      string            `db:"origin" json:"origin,omitempty"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time         `db:"updated_at" json:"updated_at"`
}

// Поля записи, доступные по имени.
const (
	FieldYear        = "year"
	FieldPeriod      = "period"
	FieldRegion      = "region"
	FieldCategory    = "category"
	FieldSubCategory = "sub_category"
	FieldSource      = "source"
	FieldLabels      = "labels"

	// FieldConstituency is an attribute of CDF records.
	FieldConstituency = "constituency"
)

// Field returns the textual value of a named field. Unknown names are looked
// up in Attributes. The second result is false when the field is absent.
func (r *Record) Field(name string) (string, bool) {
	switch name {
	case FieldYear:
		return strconv.Itoa(r.Year), true
	case FieldPeriod:
		return r.Period, r.Period != ""
	case FieldRegion:
		return r.Region, r.Region != ""
	case FieldCategory:
		return r.Category, r.Category != ""
	case FieldSubCategory:
		return r.SubCategory, r.SubCategory != ""
	case FieldSource:
		return r.Source, r.Source != ""
	}

	v, ok := r.Attributes[name]
	return v, ok && v != ""
}

// Measure returns a named measure and whether the record carries it.
func (r *Record) Measure(name string) (float64, bool) {
	v, ok := r.Measures[name]
	return v, ok
}

func (r *Record) GetID() string   { return r.ID }
func (r *Record) SetID(id string) { r.ID = id }

// FilterCriteria is the transient selection state of one dashboard.
// Region and Category accept "all" (or empty) for no constraint, Year 0 means
// every year.
type FilterCriteria struct {
	Region     string            `json:"region" query:"region"`
	Category   string            `json:"category" query:"category"`
	SearchText string            `json:"search_text" query:"q"`
	Year       Year              `json:"year,omitempty" query:"year"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// AggregatedRow is one group produced by the aggregator.
type AggregatedRow struct {
	// Keys holds the group-by field values, one entry per group-by field.
	Keys map[string]string `json:"keys"`
	// Values maps series name to reduced value.
	Values map[string]float64 `json:"values"`
	// Measure names the primary series of Values.
	Measure string `json:"measure"`
	// Count is the number of contributing records, 0 for default-filled rows.
	Count int `json:"count"`
	// Records holds the kept records of a top-N reduction.
	Records []Record `json:"records,omitempty"`
}

// Value returns the primary series value.
func (r AggregatedRow) Value() float64 {
	return r.Values[r.Measure]
}

// Entity is anything stored under a text identifier.
type Entity interface {
	GetID() string
	SetID(id string)
}
