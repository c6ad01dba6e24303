package repository

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/workorders-tracker/internal/common"
	"github.com/joseph-ayodele/workorders-tracker/internal/entity"
	"github.com/joseph-ayodele/workorders-tracker/internal/query"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := "sqlite://" + filepath.Join(t.TempDir(), "workorders.db")
	db, err := Open(context.Background(), Config{DSN: dsn, DialTimeout: 5 * time.Second}, nil)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Migrate(context.Background()))
	return db
}

func order(number string, amount float64, signed bool) entity.WorkOrder {
	return entity.WorkOrder{
		Fields: entity.Fields{
			WorkOrderNumber: entity.Ptr(number),
			JobNumber:       entity.Ptr("J-" + number),
			Description:     entity.Ptr("Pump service"),
			Date:            entity.Ptr("01-02-2024"),
			Hours:           entity.String("2 hrs"),
			TotalAmountDue:  entity.Number(amount),
			SignedByBoth:    entity.Ptr(signed),
			CustomerSign:    entity.Ptr(true),
			WCDPSign:        entity.Ptr(signed),
		},
		Filename: number + ".png",
	}
}

func seedFifteen(t *testing.T, repo WorkOrderRepository) {
	t.Helper()
	var records []entity.WorkOrder
	for i := 1; i <= 15; i++ {
		records = append(records, order(fmt.Sprintf("WO-1%02d", i), float64(i), true))
	}
	records = append(records,
		order("WO-200", 100, false),
		order("XX-300", 200, true),
	)
	records[len(records)-1].Description = entity.Ptr("Boiler")
	n, err := repo.Insert(context.Background(), records)
	require.NoError(t, err)
	require.Equal(t, 17, n)
}

func TestQuery_SecondPageOfFifteen(t *testing.T) {
	repo := NewWorkOrderRepository(openTestDB(t), nil)
	seedFifteen(t, repo)

	q := query.Query{
		Filters:  map[string]any{entity.ColSignedByBoth: true},
		Search:   "wo-1",
		SortBy:   entity.ColTotalAmountDue,
		Page:     2,
		PageSize: 10,
	}
	page, err := repo.Query(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, 15, page.Count)
	assert.Equal(t, 2, query.TotalPages(page.Count, q.PageSize))
	require.Len(t, page.Data, 5)
	// descending by amount: page 2 holds amounts 5..1
	for i, rec := range page.Data {
		amount, ok := rec.TotalAmountDue.Float()
		require.True(t, ok)
		assert.Equal(t, float64(5-i), amount)
		assert.Equal(t, 11+i, rec.SerialNo)
		assert.NotEqual(t, [16]byte{}, [16]byte(rec.ID))
		assert.False(t, rec.CreatedAt.IsZero())
	}
}

func TestQuery_BeyondLastPageIsEmpty(t *testing.T) {
	repo := NewWorkOrderRepository(openTestDB(t), nil)
	seedFifteen(t, repo)

	page, err := repo.Query(context.Background(), query.Query{Page: 9, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 17, page.Count)
	assert.Empty(t, page.Data)
	assert.NotNil(t, page.Data)
}

func TestQuery_SearchIsCaseInsensitiveAcrossFields(t *testing.T) {
	repo := NewWorkOrderRepository(openTestDB(t), nil)
	seedFifteen(t, repo)

	page, err := repo.QueryAll(context.Background(), query.Query{Search: "BOILER"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "XX-300", *page.Data[0].WorkOrderNumber)

	page, err = repo.QueryAll(context.Background(), query.Query{Search: "j-wo-200"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
}

func TestQueryAll_IgnoresWindowAndSortsAscending(t *testing.T) {
	repo := NewWorkOrderRepository(openTestDB(t), nil)
	seedFifteen(t, repo)

	page, err := repo.QueryAll(context.Background(), query.Query{SortBy: "Total Amount Due", Ascending: true, Page: 1, PageSize: 3})
	require.NoError(t, err)
	require.Len(t, page.Data, 17)
	assert.Equal(t, 17, page.Count)
	first, _ := page.Data[0].TotalAmountDue.Float()
	last, _ := page.Data[16].TotalAmountDue.Float()
	assert.Equal(t, 1.0, first)
	assert.Equal(t, 200.0, last)
}

func TestInsert_StoresCoercedValuesAndNulls(t *testing.T) {
	repo := NewWorkOrderRepository(openTestDB(t), nil)

	rec := entity.WorkOrder{
		Fields: entity.Fields{
			WorkOrderNumber: entity.Ptr("WO-9"),
			Hours:           entity.String("3.5 hrs"),
			TotalAmountDue:  entity.String("$1,250.00"),
		},
		Filename: "scan.pdf - Page 1",
	}
	_, err := repo.Insert(context.Background(), []entity.WorkOrder{rec})
	require.NoError(t, err)

	page, err := repo.QueryAll(context.Background(), query.Query{})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	got := page.Data[0]
	assert.Equal(t, entity.Number(3.5), got.Hours)
	assert.Equal(t, entity.Number(1250), got.TotalAmountDue)
	assert.Nil(t, got.JobNumber)
	assert.Nil(t, got.SignedByBoth)
}

func TestInsert_NonNumericFailsWholeBatch(t *testing.T) {
	repo := NewWorkOrderRepository(openTestDB(t), nil)

	good := order("WO-1", 1, true)
	bad := order("WO-2", 2, true)
	bad.Hours = entity.String("illegible")

	_, err := repo.Insert(context.Background(), []entity.WorkOrder{good, bad})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidInput))

	page, err := repo.QueryAll(context.Background(), query.Query{})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
}

func TestDistinctValues(t *testing.T) {
	repo := NewWorkOrderRepository(openTestDB(t), nil)
	records := []entity.WorkOrder{order("A", 1, true), order("B", 2, false), order("C", 3, true)}
	records[0].Hours = entity.Number(4)
	records[1].Hours = entity.Number(1.5)
	records[2].Hours = entity.Null()
	_, err := repo.Insert(context.Background(), records)
	require.NoError(t, err)

	hours, err := repo.DistinctValues(context.Background(), entity.ColHours)
	require.NoError(t, err)
	assert.Equal(t, []any{1.5, 4.0}, hours)

	signed, err := repo.DistinctValues(context.Background(), entity.ColSignedByBoth)
	require.NoError(t, err)
	assert.Equal(t, []any{false, true}, signed)

	_, err = repo.DistinctValues(context.Background(), "id; DROP TABLE work_orders")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidInput))
}

func TestQuery_StoreErrorIsSurfaced(t *testing.T) {
	db := openTestDB(t)
	repo := NewWorkOrderRepository(db, nil)
	_, err := db.sqlDB.Exec("DROP TABLE work_orders")
	require.NoError(t, err)

	_, err = repo.Query(context.Background(), query.Query{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrDatabase))
	assert.Contains(t, common.PublicMessage(err), "work_orders")
}

func TestGateway_Disabled(t *testing.T) {
	g := NewGateway(nil)
	assert.False(t, g.Available())
	assert.NotEmpty(t, g.Warning())

	_, err := g.Insert(context.Background(), []entity.WorkOrder{order("A", 1, true)})
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
	_, err = g.Query(context.Background(), query.Query{})
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
	_, err = g.QueryAll(context.Background(), query.Query{})
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
	_, err = g.DistinctValues(context.Background(), entity.ColHours)
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
}

func TestGateway_Enabled(t *testing.T) {
	g := NewGateway(NewWorkOrderRepository(openTestDB(t), nil))
	assert.True(t, g.Available())
	assert.Empty(t, g.Warning())

	n, err := g.Insert(context.Background(), []entity.WorkOrder{order("A", 1, true)})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestOpen_RejectsUnknownScheme(t *testing.T) {
	_, err := Open(context.Background(), Config{DSN: "mysql://u:secret@h/db"}, nil)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret")
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "file:/tmp/x.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite", sqliteDSN("sqlite:///tmp/x.db"))
	assert.Equal(t, "file:x.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite", sqliteDSN("file:x.db?mode=rwc"))
}
