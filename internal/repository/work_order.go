package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/workorders-tracker/internal/common"
	"github.com/joseph-ayodele/workorders-tracker/internal/entity"
	"github.com/joseph-ayodele/workorders-tracker/internal/query"
)

// insertChunk bounds rows per INSERT so sqlite stays under its variable limit.
const insertChunk = 500

// Page is one window of query results and the total matching count.
type Page struct {
	Data  []entity.StoredWorkOrder `json:"data"`
	Count int                      `json:"count"`
}

type WorkOrderRepository interface {
	Insert(ctx context.Context, records []entity.WorkOrder) (int, error)
	Query(ctx context.Context, q query.Query) (Page, error)
	QueryAll(ctx context.Context, q query.Query) (Page, error)
	DistinctValues(ctx context.Context, field string) ([]any, error)
}

type workOrderRepository struct {
	db     *DB
	now    func() time.Time
	logger *slog.Logger
}

func NewWorkOrderRepository(db *DB, logger *slog.Logger) WorkOrderRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &workOrderRepository{db: db, now: time.Now, logger: logger}
}

// Insert stores records in one transaction. filename is not stored. A numeric
// field that cannot be read as a number fails the whole call.
func (r *workOrderRepository) Insert(ctx context.Context, records []entity.WorkOrder) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	cols := columnNames()
	rows := make([][]any, 0, len(records))
	createdAt := r.now().UTC()
	for i, rec := range records {
		row, err := insertRow(rec, createdAt)
		if err != nil {
			return 0, common.InvalidInputf("record %d (%s): %v", i+1, rec.Filename, err)
		}
		rows = append(rows, row)
	}

	tx, err := r.db.Driver.Tx(ctx)
	if err != nil {
		return 0, common.StoreError("begin insert", err)
	}
	for start := 0; start < len(rows); start += insertChunk {
		end := min(start+insertChunk, len(rows))
		ins := entsql.Dialect(r.db.Dialect).Insert(WorkOrdersTableName).Columns(cols...)
		for _, row := range rows[start:end] {
			ins.Values(row...)
		}
		stmt, args := ins.Query()
		if err := tx.Exec(ctx, stmt, args, nil); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				r.logger.Error("repository.insert.rollback_failed", "error", rbErr)
			}
			r.logger.Error("repository.insert.failed", "records", len(records), "error", err)
			return 0, common.StoreError("insert work orders", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, common.StoreError("commit work orders", err)
	}

	r.logger.Info("repository.insert.ok", "records", len(records))
	return len(records), nil
}

func insertRow(rec entity.WorkOrder, createdAt time.Time) ([]any, error) {
	hours, err := numeric(entity.ColHours, rec.Hours)
	if err != nil {
		return nil, err
	}
	amount, err := numeric(entity.ColTotalAmountDue, rec.TotalAmountDue)
	if err != nil {
		return nil, err
	}
	return []any{
		uuid.New(),
		nullString(rec.WorkOrderNumber),
		nullString(rec.JobNumber),
		nullString(rec.Description),
		nullString(rec.Date),
		hours,
		amount,
		nullBool(rec.SignedByBoth),
		nullBool(rec.CustomerSign),
		nullBool(rec.WCDPSign),
		createdAt,
	}, nil
}

func numeric(name string, v entity.Value) (sql.NullFloat64, error) {
	if v.IsNull() {
		return sql.NullFloat64{}, nil
	}
	f, ok := v.Float()
	if !ok {
		return sql.NullFloat64{}, fmt.Errorf("%s %q is not a number", name, v.Text())
	}
	return sql.NullFloat64{Float64: f, Valid: true}, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

// Query returns one window and the count of all matching rows. A window past
// the last row yields no data and no error.
func (r *workOrderRepository) Query(ctx context.Context, q query.Query) (Page, error) {
	q = q.Normalize()
	if err := q.Validate(); err != nil {
		return Page{}, err
	}
	st := query.Build(r.db.Dialect, WorkOrdersTableName, columnNames(), q)

	count, err := r.count(ctx, st.Count, st.CountArgs)
	if err != nil {
		return Page{}, err
	}
	data, err := r.selectRows(ctx, st.Select, st.SelectArgs)
	if err != nil {
		return Page{}, err
	}
	for i := range data {
		data[i].SerialNo = q.Offset() + i + 1
	}

	r.logger.Debug("repository.query.ok", "count", count, "returned", len(data), "page", q.Page, "page_size", q.PageSize)
	return Page{Data: data, Count: count}, nil
}

// QueryAll ignores any window on q and returns every matching row.
func (r *workOrderRepository) QueryAll(ctx context.Context, q query.Query) (Page, error) {
	return r.Query(ctx, q.Unbounded())
}

func (r *workOrderRepository) count(ctx context.Context, stmt string, args []any) (int, error) {
	rows := &entsql.Rows{}
	if err := r.db.Driver.Query(ctx, stmt, args, rows); err != nil {
		return 0, common.StoreError("count work orders", err)
	}
	defer rows.Close()

	var n int
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, common.StoreError("count work orders", err)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, common.StoreError("count work orders", err)
	}
	return n, nil
}

func (r *workOrderRepository) selectRows(ctx context.Context, stmt string, args []any) ([]entity.StoredWorkOrder, error) {
	rows := &entsql.Rows{}
	if err := r.db.Driver.Query(ctx, stmt, args, rows); err != nil {
		return nil, common.StoreError("query work orders", err)
	}
	defer rows.Close()

	out := []entity.StoredWorkOrder{}
	for rows.Next() {
		var (
			rec                                    entity.StoredWorkOrder
			id                                     string
			woNumber, jobNumber, description, date sql.NullString
			hours, amount                          sql.NullFloat64
			signedByBoth, customerSign, wcdpSign   sql.NullBool
			createdAt                              any
		)
		if err := rows.Scan(&id, &woNumber, &jobNumber, &description, &date, &hours, &amount,
			&signedByBoth, &customerSign, &wcdpSign, &createdAt); err != nil {
			return nil, common.StoreError("scan work order", err)
		}

		parsedID, err := uuid.Parse(id)
		if err != nil {
			return nil, common.StoreError("scan work order id", err)
		}
		ts, err := toTime(createdAt)
		if err != nil {
			return nil, common.StoreError("scan work order created_at", err)
		}

		rec.ID = parsedID
		rec.CreatedAt = ts
		rec.WorkOrderNumber = strPtr(woNumber)
		rec.JobNumber = strPtr(jobNumber)
		rec.Description = strPtr(description)
		rec.Date = strPtr(date)
		rec.Hours = floatValue(hours)
		rec.TotalAmountDue = floatValue(amount)
		rec.SignedByBoth = boolPtr(signedByBoth)
		rec.CustomerSign = boolPtr(customerSign)
		rec.WCDPSign = boolPtr(wcdpSign)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, common.StoreError("query work orders", err)
	}
	return out, nil
}

// DistinctValues returns the non-null values stored in field, ascending.
func (r *workOrderRepository) DistinctValues(ctx context.Context, field string) ([]any, error) {
	if !distinctField(field) {
		return nil, common.InvalidInputf("distinct values are not available for %q", field)
	}

	b := entsql.Dialect(r.db.Dialect)
	stmt, args := b.Select(field).Distinct().
		From(b.Table(WorkOrdersTableName)).
		Where(entsql.NotNull(field)).
		OrderBy(entsql.Asc(field)).
		Query()

	rows := &entsql.Rows{}
	if err := r.db.Driver.Query(ctx, stmt, args, rows); err != nil {
		return nil, common.StoreError("distinct "+field, err)
	}
	defer rows.Close()

	values := []any{}
	for rows.Next() {
		v, err := scanDistinct(rows, field)
		if err != nil {
			return nil, common.StoreError("distinct "+field, err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, common.StoreError("distinct "+field, err)
	}
	return values, nil
}

func distinctField(field string) bool {
	for _, name := range entity.FieldNames {
		if name == field {
			return true
		}
	}
	return false
}

func scanDistinct(rows *entsql.Rows, field string) (any, error) {
	switch field {
	case entity.ColHours, entity.ColTotalAmountDue:
		var f float64
		err := rows.Scan(&f)
		return f, err
	case entity.ColSignedByBoth, entity.ColCustomerSign, entity.ColWCDPSign:
		var b bool
		err := rows.Scan(&b)
		return b, err
	default:
		var s string
		err := rows.Scan(&s)
		return s, err
	}
}

func strPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func boolPtr(b sql.NullBool) *bool {
	if !b.Valid {
		return nil
	}
	return &b.Bool
}

func floatValue(f sql.NullFloat64) entity.Value {
	if !f.Valid {
		return entity.Null()
	}
	return entity.Number(f.Float64)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// toTime accepts what the drivers return for a timestamp column.
func toTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		return parseTime(t)
	case []byte:
		return parseTime(string(t))
	default:
		return time.Time{}, fmt.Errorf("unexpected timestamp type %T", v)
	}
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
