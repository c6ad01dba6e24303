package entity

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FromFields copies the decoded reply fields into a WorkOrder and stamps the
// provenance. Missing keys become null. Values are taken as asserted: no range,
// format or consistency checks are applied. A value of an unexpected JSON type
// is converted where its meaning is clear and nulled otherwise; it never
// affects the other fields.
func FromFields(fields map[string]json.RawMessage, provenance string) WorkOrder {
	wo := WorkOrder{Filename: provenance}

	wo.WorkOrderNumber = textField(fields[ColWorkOrderNumber])
	wo.JobNumber = textField(fields[ColJobNumber])
	wo.Description = textField(fields[ColDescription])
	wo.Date = textField(fields[ColDate])

	wo.Hours = valueField(fields[ColHours])
	wo.TotalAmountDue = valueField(fields[ColTotalAmountDue])

	wo.SignedByBoth = boolField(fields[ColSignedByBoth])
	wo.CustomerSign = boolField(fields[ColCustomerSign])
	wo.WCDPSign = boolField(fields[ColWCDPSign])

	return wo
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// textField keeps strings as-is and number or boolean literals as their
// source text. Arrays of scalars are joined one per line; objects keep their
// compact JSON text.
func textField(raw json.RawMessage) *string {
	if isNull(raw) {
		return nil
	}
	raw = bytes.TrimSpace(raw)
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		return &s
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil
		}
		lines := make([]string, 0, len(items))
		for _, item := range items {
			if s := textField(item); s != nil {
				lines = append(lines, *s)
			}
		}
		if len(lines) == 0 {
			return nil
		}
		s := strings.Join(lines, "\n")
		return &s
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return nil
		}
		s := buf.String()
		return &s
	}
}

// valueField keeps strings and numbers; any other type is null.
func valueField(raw json.RawMessage) Value {
	if isNull(raw) {
		return Null()
	}
	var v Value
	if err := v.UnmarshalJSON(raw); err != nil {
		return Null()
	}
	return v
}

// boolField keeps booleans and reads yes/no style strings and 0/1 numbers;
// anything else is null.
func boolField(raw json.RawMessage) *bool {
	if isNull(raw) {
		return nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return &b
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return parseSign(s)
	}
	if f, err := strconv.ParseFloat(string(bytes.TrimSpace(raw)), 64); err == nil {
		if f == 0 || f == 1 {
			b = f == 1
			return &b
		}
	}
	return nil
}

func parseSign(s string) *bool {
	var b bool
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "signed", "1":
		b = true
	case "no", "n", "false", "unsigned", "not signed", "0":
		b = false
	default:
		return nil
	}
	return &b
}
