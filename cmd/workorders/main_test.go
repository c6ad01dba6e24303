package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/workorders-tracker/constants"
	"github.com/joseph-ayodele/workorders-tracker/internal/common"
	"github.com/joseph-ayodele/workorders-tracker/internal/entity"
	"github.com/joseph-ayodele/workorders-tracker/internal/pipeline"
)

func TestParseFilterFlags(t *testing.T) {
	got, err := parseFilterFlags([]string{"hours=2", " signed_by_both = Yes"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"hours": "2", "signed_by_both": "Yes"}, got)

	_, err = parseFilterFlags([]string{"hours"})
	require.ErrorIs(t, err, common.ErrInvalidInput)
	_, err = parseFilterFlags([]string{"=2"})
	require.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestFormatCell(t *testing.T) {
	assert.Equal(t, "", formatCell(nil))
	assert.Equal(t, "2.5", formatCell(2.5))
	assert.Equal(t, "1250", formatCell(1250.0))
	assert.Equal(t, "Yes", formatCell(true))
	assert.Equal(t, "No", formatCell(false))
	assert.Equal(t, "WO-1", formatCell("WO-1"))
}

func TestPrintRecordsAndFailures(t *testing.T) {
	var buf bytes.Buffer
	printRecords(&buf, []entity.WorkOrder{{
		Fields: entity.Fields{
			WorkOrderNumber: entity.Ptr("WO-1"),
			Hours:           entity.String("2 hrs"),
			SignedByBoth:    entity.Ptr(true),
		},
		Filename: "scan.pdf - Page 2",
	}})
	printFailures(&buf, []pipeline.Failure{{Name: "bad.pdf", Page: 3, Stage: constants.StageExtraction, Error: "timeout"}})

	out := buf.String()
	assert.Contains(t, out, "work_order_number")
	assert.Contains(t, out, "WO-1")
	assert.Contains(t, out, "2 hrs")
	assert.Contains(t, out, "scan.pdf - Page 2")
	assert.Contains(t, out, "1 item(s) failed")
	assert.Contains(t, out, "bad.pdf")
	assert.Contains(t, out, "timeout")
}

func TestSchemaCommand(t *testing.T) {
	var buf bytes.Buffer
	schemaCmd.SetOut(&buf)
	require.NoError(t, schemaCmd.RunE(schemaCmd, nil))
	assert.Contains(t, buf.String(), "CREATE TABLE IF NOT EXISTS work_orders")
}
