package export

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/workorders-tracker/internal/entity"
)

const (
	SheetName     = "Work Orders"
	BatchFileName = "extracted_work_orders.xlsx"
	StoreFileName = "work_orders_export.xlsx"
	ContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Row is anything that can report a cell value per column name.
type Row interface {
	Column(name string) (any, bool)
}

// Service produces XLSX bytes for batch and store exports.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// OrderColumns puts the preferred columns first, keeping only those present,
// then appends unrecognized columns in their given order.
func OrderColumns(present []string) []string {
	out := make([]string, 0, len(present))
	for _, c := range entity.PreferredColumns {
		if slices.Contains(present, c) {
			out = append(out, c)
		}
	}
	for _, c := range present {
		if !slices.Contains(entity.PreferredColumns, c) && !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out
}

// WriteRecords exports a batch, filename included.
func (s *Service) WriteRecords(records []entity.WorkOrder) ([]byte, error) {
	rows := make([]Row, len(records))
	for i, r := range records {
		rows[i] = r
	}
	return s.write(OrderColumns(entity.PreferredColumns), rows)
}

// WriteStored exports persisted rows with their id and created_at.
func (s *Service) WriteStored(records []entity.StoredWorkOrder) ([]byte, error) {
	rows := make([]Row, len(records))
	for i, r := range records {
		rows[i] = r
	}
	present := append(slices.Clone(entity.FieldNames), entity.ColID, entity.ColCreatedAt)
	return s.write(OrderColumns(present), rows)
}

func (s *Service) write(columns []string, rows []Row) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("export.xlsx.close_error", "error", err)
		}
	}()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for i, h := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellStr(SheetName, cell, h); err != nil {
			return nil, err
		}
	}

	for r, row := range rows {
		for c, name := range columns {
			v, _ := row.Column(name)
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := setCell(f, cell, v); err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", r+1, name, err)
			}
		}
	}

	_ = f.SetColWidth(SheetName, "A", "B", 18)
	_ = f.SetColWidth(SheetName, "C", "C", 48)
	_ = f.SetColWidth(SheetName, "D", "I", 14)
	if len(columns) > 9 {
		last, _ := excelize.ColumnNumberToName(len(columns))
		_ = f.SetColWidth(SheetName, "J", last, 28)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(rows),
		"columns", len(columns),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// setCell writes numbers as numeric cells and booleans as boolean cells; nil
// leaves the cell unset. An empty string is still written as a text cell so it
// reads back as "" rather than null.
func setCell(f *excelize.File, cell string, v any) error {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return f.SetCellStr(SheetName, cell, t)
	case float64:
		return f.SetCellFloat(SheetName, cell, t, -1, 64)
	case bool:
		return f.SetCellBool(SheetName, cell, t)
	default:
		return f.SetCellValue(SheetName, cell, t)
	}
}

// ReadRecords reads the first sheet of an export back into records. Columns
// are matched by header name; unknown columns are ignored. Unset cells read
// as null and empty text cells as "".
func ReadRecords(r io.Reader) ([]entity.WorkOrder, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return []entity.WorkOrder{}, nil
	}

	header := rows[0]
	out := make([]entity.WorkOrder, 0, len(rows)-1)
	for i, row := range rows[1:] {
		excelRow := i + 2
		fields := make(map[string]json.RawMessage, len(header))
		filename := ""
		for c, name := range header {
			raw := ""
			if c < len(row) {
				raw = row[c]
			}
			if name == entity.ColFilename {
				filename = raw
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, excelRow)
			typ, err := f.GetCellType(sheet, cell)
			if err != nil {
				return nil, fmt.Errorf("cell %s: %w", cell, err)
			}
			fields[name] = cellJSON(raw, typ)
		}
		out = append(out, entity.FromFields(fields, filename))
	}
	return out, nil
}

func cellJSON(raw string, typ excelize.CellType) json.RawMessage {
	if raw == "" {
		if typ == excelize.CellTypeSharedString || typ == excelize.CellTypeInlineString {
			return json.RawMessage(`""`)
		}
		return json.RawMessage("null")
	}
	switch typ {
	case excelize.CellTypeBool:
		if raw == "1" || strings.EqualFold(raw, "true") {
			return json.RawMessage("true")
		}
		return json.RawMessage("false")
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return json.RawMessage(strconv.FormatFloat(f, 'f', -1, 64))
		}
	}
	b, _ := json.Marshal(raw)
	return b
}
