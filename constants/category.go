package constants

import (
	"strings"
)

// SortColumn is a store column a query may be ordered by.
type SortColumn string

const (
	SortCreatedAt       SortColumn = "created_at"
	SortTotalAmountDue  SortColumn = "total_amount_due"
	SortDate            SortColumn = "date"
	SortJobNumber       SortColumn = "job_number"
	SortHours           SortColumn = "hours"
	SortWorkOrderNumber SortColumn = "work_order_number"
)

var allSortColumns = []SortColumn{
	SortCreatedAt,
	SortTotalAmountDue,
	SortDate,
	SortJobNumber,
	SortHours,
	SortWorkOrderNumber,
}

// SortLabels maps the display names offered to operators onto store columns.
var SortLabels = map[string]SortColumn{
	"Created At":       SortCreatedAt,
	"Total Amount Due": SortTotalAmountDue,
	"Date":             SortDate,
	"Job Number":       SortJobNumber,
	"Hours":            SortHours,
}

func SortColumnsAsStrings() []string {
	result := make([]string, len(allSortColumns))
	for i, c := range allSortColumns {
		result[i] = string(c)
	}
	return result
}

// CanonicalizeSort resolves a column name or display label to a sort column.
// Empty input resolves to created_at.
func CanonicalizeSort(input string) (SortColumn, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return SortCreatedAt, true
	}

	if c, ok := SortLabels[trimmed]; ok {
		return c, true
	}

	normalized := strings.ToLower(strings.ReplaceAll(trimmed, " ", "_"))
	for _, c := range allSortColumns {
		if normalized == string(c) {
			return c, true
		}
	}

	return SortCreatedAt, false
}

// PageSizes are the page sizes offered by the viewers.
var PageSizes = []int{10, 20, 50, 100}
