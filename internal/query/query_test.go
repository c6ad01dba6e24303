package query

import (
	"errors"
	"strings"
	"testing"

	"entgo.io/ent/dialect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/workorders-tracker/internal/common"
)

var cols = []string{"id", "work_order_number", "hours", "created_at"}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 1, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 2, TotalPages(15, 10))
	assert.Equal(t, 15, TotalPages(15, 1))
	assert.Equal(t, 1, TotalPages(5, 0))
}

func TestBuild_FilterOrderIndependence(t *testing.T) {
	a := Query{Filters: map[string]any{}, Search: "pump"}
	a.Filters["wcdp_sign"] = true
	a.Filters["hours"] = 4.0
	a.Filters["signed_by_both"] = false

	b := Query{Filters: map[string]any{}, Search: "pump"}
	b.Filters["signed_by_both"] = false
	b.Filters["hours"] = 4.0
	b.Filters["wcdp_sign"] = true

	for i := 0; i < 20; i++ {
		sa := Build(dialect.SQLite, "work_orders", cols, a)
		sb := Build(dialect.SQLite, "work_orders", cols, b)
		require.Equal(t, sa, sb)
	}
}

func TestBuild_Shape(t *testing.T) {
	q := Query{
		Filters:  map[string]any{"signed_by_both": true, "hours": 2.0},
		Search:   "WO-1",
		SortBy:   "total_amount_due",
		Page:     3,
		PageSize: 20,
	}
	st := Build(dialect.Postgres, "work_orders", cols, q)

	assert.Contains(t, st.Select, `FROM "work_orders"`)
	assert.Contains(t, st.Select, "ILIKE")
	assert.Contains(t, st.Select, "ORDER BY")
	assert.Contains(t, st.Select, "DESC")
	assert.Contains(t, st.Select, "LIMIT 20")
	assert.Contains(t, st.Select, "OFFSET 40")
	// boolean equality renders as a bare column, without a bind argument
	assert.Contains(t, st.Select, `"hours" = $1 AND "signed_by_both" AND (`)
	assert.Contains(t, st.SelectArgs, 2.0)
	assert.NotContains(t, st.SelectArgs, true)
	assert.True(t, hasFoldedArg(st.SelectArgs, "%wo-1%"), "%v", st.SelectArgs)

	assert.Contains(t, st.Count, "COUNT(*)")
	assert.NotContains(t, st.Count, "ORDER BY")
	assert.NotContains(t, st.Count, "LIMIT")
	assert.Equal(t, st.SelectArgs, st.CountArgs)
}

func TestBuild_FalseSignFilter(t *testing.T) {
	q := Query{Filters: map[string]any{"customer_sign": false, "wcdp_sign": true}}
	st := Build(dialect.Postgres, "work_orders", cols, q)

	assert.Contains(t, st.Select, `NOT "customer_sign"`)
	assert.Contains(t, st.Select, `AND "wcdp_sign"`)
	assert.NotContains(t, st.Select, `NOT "wcdp_sign"`)
	assert.Empty(t, st.SelectArgs)
	assert.Contains(t, st.Count, `NOT "customer_sign"`)
}

func hasFoldedArg(args []any, want string) bool {
	for _, a := range args {
		if s, ok := a.(string); ok && strings.ToLower(s) == want {
			return true
		}
	}
	return false
}

func TestBuild_UnboundedHasNoWindow(t *testing.T) {
	q := Query{SortBy: "date", Ascending: true, Page: 2, PageSize: 10}.Unbounded()
	st := Build(dialect.SQLite, "work_orders", cols, q)

	assert.NotContains(t, st.Select, "LIMIT")
	assert.NotContains(t, st.Select, "OFFSET")
	assert.NotContains(t, st.Select, "WHERE")
	assert.Contains(t, st.Select, "ASC")
	assert.Empty(t, st.SelectArgs)
}

func TestValidate(t *testing.T) {
	ok := []Query{
		{},
		{SortBy: "Total Amount Due"},
		{SortBy: "hours", Page: 1, PageSize: 1000},
		{Filters: map[string]any{"hours": 3.0, "customer_sign": false}},
	}
	for _, q := range ok {
		assert.NoError(t, q.Validate(), "%+v", q)
	}

	bad := map[string]Query{
		"unknown sort":    {SortBy: "colour"},
		"unknown filter":  {Filters: map[string]any{"description": "x"}},
		"wrong type":      {Filters: map[string]any{"hours": "three"}},
		"page zero":       {Page: 0, PageSize: 10},
		"page size large": {Page: 1, PageSize: 1001},
		"negative page":   {Page: -1, PageSize: 10},
	}
	for name, q := range bad {
		err := q.Validate()
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, common.ErrInvalidInput), name)
	}
}

func TestParseFilters(t *testing.T) {
	got, err := ParseFilters(map[string]string{
		"hours":          "4.5",
		"signed_by_both": "Yes",
		"customer_sign":  "false",
		"wcdp_sign":      "All",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"hours": 4.5, "signed_by_both": true, "customer_sign": false}, got)

	_, err = ParseFilters(map[string]string{"hours": "lots"})
	require.Error(t, err)
	_, err = ParseFilters(map[string]string{"colour": "red"})
	require.Error(t, err)
	_, err = ParseFilters(map[string]string{"wcdp_sign": "maybe"})
	require.True(t, strings.Contains(err.Error(), "maybe"))
}

func TestNormalize(t *testing.T) {
	q := Query{SortBy: "Job Number", Search: "  pump "}.Normalize()
	assert.Equal(t, "job_number", q.SortBy)
	assert.Equal(t, "pump", q.Search)
	assert.Equal(t, "created_at", Query{}.Normalize().SortBy)
}
