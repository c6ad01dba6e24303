// Package query turns operator-chosen filters, search, sort and page window
// into SQL for the work_orders table.
package query

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/workorders-tracker/constants"
	"github.com/joseph-ayodele/workorders-tracker/internal/common"
	"github.com/joseph-ayodele/workorders-tracker/internal/entity"
)

const MaxPageSize = 1000

// FilterFields are the columns that accept an equality filter, with the Go
// type their value must have.
var FilterFields = map[string]string{
	entity.ColHours:        "number",
	entity.ColSignedByBoth: "boolean",
	entity.ColCustomerSign: "boolean",
	entity.ColWCDPSign:     "boolean",
}

// SearchFields are matched by the free-text search, any one suffices.
var SearchFields = []string{entity.ColWorkOrderNumber, entity.ColJobNumber, entity.ColDescription}

// Query describes one read of the store. A zero Page means no window: every
// matching row is returned.
type Query struct {
	Filters   map[string]any
	Search    string
	SortBy    string
	Ascending bool
	Page      int
	PageSize  int
}

// HasWindow reports whether the query is paginated.
func (q Query) HasWindow() bool { return q.Page > 0 }

// Offset is the index of the first row of the window.
func (q Query) Offset() int {
	if !q.HasWindow() {
		return 0
	}
	return (q.Page - 1) * q.PageSize
}

// Unbounded returns a copy of q without its page window.
func (q Query) Unbounded() Query {
	q.Page, q.PageSize = 0, 0
	return q
}

// Normalize resolves sort labels to columns and trims the search term.
func (q Query) Normalize() Query {
	if c, ok := constants.CanonicalizeSort(q.SortBy); ok {
		q.SortBy = string(c)
	}
	q.Search = strings.TrimSpace(q.Search)
	return q
}

// Validate rejects unknown filter or sort fields, wrongly typed filter values
// and malformed windows.
func (q Query) Validate() error {
	q = q.Normalize()
	v := common.NewValidator()

	for _, name := range sortedKeys(q.Filters) {
		kind, ok := FilterFields[name]
		if !ok {
			v.Field("filter", name, common.OneOf(sortedKeys(FilterFields)...))
			continue
		}
		v.Field(name, q.Filters[name], typeRule(kind))
	}

	v.Field("sort_by", q.SortBy, common.OneOf(constants.SortColumnsAsStrings()...))

	if q.Page != 0 || q.PageSize != 0 {
		v.Field("page", q.Page, common.IntRange(1, 1<<31-1))
		v.Field("page_size", q.PageSize, common.IntRange(1, MaxPageSize))
	}
	return v.Err()
}

func typeRule(kind string) common.ValidationRule {
	return func(fieldName string, value any) *common.ValidationError {
		switch value.(type) {
		case float64:
			if kind == "number" {
				return nil
			}
		case bool:
			if kind == "boolean" {
				return nil
			}
		}
		return &common.ValidationError{Field: fieldName, Value: value, Message: "must be a " + kind}
	}
}

// TotalPages is ceil(count/pageSize) and never less than 1.
func TotalPages(count, pageSize int) int {
	if pageSize <= 0 || count <= 0 {
		return 1
	}
	return (count + pageSize - 1) / pageSize
}

// ParseFilters converts transport values into typed filter values. "", "All"
// and "any" drop the filter; "Yes"/"No" and true/false set sign filters; hours
// takes a number.
func ParseFilters(values map[string]string) (map[string]any, error) {
	out := make(map[string]any, len(values))
	for _, name := range sortedKeys(values) {
		raw := strings.TrimSpace(values[name])
		if raw == "" || strings.EqualFold(raw, "all") || strings.EqualFold(raw, "any") {
			continue
		}
		kind, ok := FilterFields[name]
		if !ok {
			return nil, common.InvalidInputf("unknown filter %q", name)
		}
		switch kind {
		case "number":
			f, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, common.InvalidInputf("filter %s: %q is not a number", name, raw)
			}
			out[name] = f
		case "boolean":
			b, err := parseBool(raw)
			if err != nil {
				return nil, common.InvalidInputf("filter %s: %v", name, err)
			}
			out[name] = b
		}
	}
	return out, nil
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "yes", "y", "true", "1":
		return true, nil
	case "no", "n", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("%q is not yes/no", raw)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
