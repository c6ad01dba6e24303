package query

import (
	"entgo.io/ent/dialect/sql"
)

// Statement is a rendered select plus the matching count.
type Statement struct {
	Select     string
	SelectArgs []any
	Count      string
	CountArgs  []any
}

// Build renders q for the given ent dialect. Filters are applied in sorted
// key order so equal queries render equal SQL. Search is case-insensitive.
// The count statement ignores order and window.
func Build(dialect, table string, columns []string, q Query) Statement {
	b := sql.Dialect(dialect)

	sel := b.Select(columns...).From(b.Table(table))
	if p := predicate(q); p != nil {
		sel.Where(p)
	}
	sel.OrderBy(order(q.SortBy, q.Ascending)...)
	if q.HasWindow() {
		sel.Limit(q.PageSize).Offset(q.Offset())
	}

	cnt := b.Select(sql.Count("*")).From(b.Table(table))
	if p := predicate(q); p != nil {
		cnt.Where(p)
	}

	var st Statement
	st.Select, st.SelectArgs = sel.Query()
	st.Count, st.CountArgs = cnt.Query()
	return st
}

func predicate(q Query) *sql.Predicate {
	var preds []*sql.Predicate
	for _, name := range sortedKeys(q.Filters) {
		preds = append(preds, sql.EQ(name, q.Filters[name]))
	}
	if q.Search != "" {
		anyOf := make([]*sql.Predicate, 0, len(SearchFields))
		for _, col := range SearchFields {
			anyOf = append(anyOf, sql.ContainsFold(col, q.Search))
		}
		preds = append(preds, sql.Or(anyOf...))
	}
	switch len(preds) {
	case 0:
		return nil
	case 1:
		return preds[0]
	default:
		return sql.And(preds...)
	}
}

// order sorts by the requested column with id as a stable tie-breaker.
func order(sortBy string, ascending bool) []string {
	if sortBy == "" {
		sortBy = "created_at"
	}
	if ascending {
		return []string{sql.Asc(sortBy), sql.Asc("id")}
	}
	return []string{sql.Desc(sortBy), sql.Desc("id")}
}
