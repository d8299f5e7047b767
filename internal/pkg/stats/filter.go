package stats

import (
	"strings"

	"github.com/ougirez/zstats/internal/domain"
	"github.com/ougirez/zstats/internal/pkg/constants"
)

var defaultSearchFields = []string{domain.FieldRegion, domain.FieldCategory, domain.FieldLabels}

type FilterOption func(*filterConfig)

type filterConfig struct {
	searchFields []string
}

// WithSearchFields sets the fields free-text search looks at. Use
// domain.FieldLabels to include the nested label list.
func WithSearchFields(fields ...string) FilterOption {
	return func(c *filterConfig) {
		c.searchFields = fields
	}
}

// Filter returns the records matching every constraint of criteria, in input order.
// The input slice is never modified.
func Filter(records []domain.Record, criteria domain.FilterCriteria, opts ...FilterOption) []domain.Record {
	cfg := filterConfig{searchFields: defaultSearchFields}
	for _, opt := range opts {
		opt(&cfg)
	}

	needle := strings.ToLower(criteria.SearchText)

	out := make([]domain.Record, 0, len(records))
	for i := range records {
		if matches(&records[i], criteria, needle, cfg.searchFields) {
			out = append(out, records[i])
		}
	}

	return out
}

func isAll(v string) bool {
	return v == "" || v == constants.ValueAll
}

func matches(r *domain.Record, c domain.FilterCriteria, needle string, searchFields []string) bool {
	if !isAll(c.Region) && r.Region != c.Region {
		return false
	}
	if !isAll(c.Category) && r.Category != c.Category {
		return false
	}
	if c.Year != 0 && r.Year != c.Year {
		return false
	}
	for k, v := range c.Attributes {
		if !isAll(v) && r.Attributes[k] != v {
			return false
		}
	}

	if needle == "" {
		return true
	}

	for _, field := range searchFields {
		if field == domain.FieldLabels {
			// совпадение по любому вложенному элементу пропускает всю запись
			for _, label := range r.Labels {
				if strings.Contains(strings.ToLower(label), needle) {
					return true
				}
			}
			continue
		}

		if v, ok := r.Field(field); ok && strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}

	return false
}
