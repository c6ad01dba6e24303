package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/workorders-tracker/internal/entity"
)

func sampleRecords() []entity.WorkOrder {
	return []entity.WorkOrder{
		{
			Fields: entity.Fields{
				WorkOrderNumber: entity.Ptr("WO-1"),
				JobNumber:       entity.Ptr("4471"),
				Description:     entity.Ptr("Replace valve"),
				Date:            entity.Ptr("01-02-2024"),
				Hours:           entity.Number(3.5),
				TotalAmountDue:  entity.String("$1,200.00"),
				SignedByBoth:    entity.Ptr(true),
				CustomerSign:    entity.Ptr(true),
				WCDPSign:        entity.Ptr(false),
			},
			Filename: "scan.pdf - Page 1",
		},
		{
			Fields: entity.Fields{
				WorkOrderNumber: entity.Ptr("WO-2"),
				TotalAmountDue:  entity.Number(80),
			},
			Filename: "b.png",
		},
	}
}

func TestOrderColumns(t *testing.T) {
	got := OrderColumns([]string{"created_at", "hours", "extra", "work_order_number", "id", "filename"})
	assert.Equal(t, []string{"work_order_number", "hours", "filename", "created_at", "extra", "id"}, got)

	assert.Equal(t, entity.PreferredColumns, OrderColumns(entity.PreferredColumns))
	assert.Empty(t, OrderColumns(nil))
}

func TestWriteRecords_RoundTrip(t *testing.T) {
	records := sampleRecords()
	data, err := NewService(nil).WriteRecords(records)
	require.NoError(t, err)

	got, err := ReadRecords(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestWriteRecords_EmptyStringIsNotNull(t *testing.T) {
	rec := entity.WorkOrder{Filename: "blank.png"}
	rec.WorkOrderNumber = entity.Ptr("WO-9")
	rec.Description = entity.Ptr("")
	data, err := NewService(nil).WriteRecords([]entity.WorkOrder{rec})
	require.NoError(t, err)

	got, err := ReadRecords(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Description)
	assert.Equal(t, "", *got[0].Description)
	assert.Nil(t, got[0].JobNumber)
	assert.Equal(t, rec, got[0])
}

func TestWriteRecords_SheetLayout(t *testing.T) {
	data, err := NewService(nil).WriteRecords(sampleRecords())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, entity.PreferredColumns, rows[0])

	typ, err := f.GetCellType(SheetName, "E2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, typ, "hours is numeric")
	typ, err = f.GetCellType(SheetName, "G2")
	require.NoError(t, err)
	assert.Equal(t, excelize.CellTypeBool, typ)

	// empty cells for nulls
	v, err := f.GetCellValue(SheetName, "B3")
	require.NoError(t, err)
	assert.Equal(t, "", v)
}

func TestWriteStored_AppendsStoreColumns(t *testing.T) {
	id := uuid.New()
	rows := []entity.StoredWorkOrder{{
		ID:        id,
		Fields:    sampleRecords()[0].Fields,
		CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}}
	data, err := NewService(nil).WriteStored(rows)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	got, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, got, 2)
	want := append(append([]string{}, entity.FieldNames...), "id", "created_at")
	assert.Equal(t, want, got[0])
	assert.Equal(t, id.String(), got[1][9])
	assert.Equal(t, "2024-03-01T12:00:00Z", got[1][10])

	back, err := ReadRecords(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, back, 1)
	assert.Equal(t, "WO-1", *back[0].WorkOrderNumber)
	assert.Equal(t, "", back[0].Filename)
}

func TestWriteRecords_Empty(t *testing.T) {
	data, err := NewService(nil).WriteRecords(nil)
	require.NoError(t, err)

	got, err := ReadRecords(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadRecords_RejectsNonXLSX(t *testing.T) {
	_, err := ReadRecords(bytes.NewReader([]byte("not a workbook")))
	require.Error(t, err)
}
