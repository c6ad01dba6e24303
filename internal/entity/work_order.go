package entity

import (
	"time"

	"github.com/google/uuid"
)

// Column names shared by the model reply, the store and the spreadsheets.
const (
	ColWorkOrderNumber = "work_order_number"
	ColJobNumber       = "job_number"
	ColDescription     = "description"
	ColDate            = "date"
	ColHours           = "hours"
	ColTotalAmountDue  = "total_amount_due"
	ColSignedByBoth    = "signed_by_both"
	ColCustomerSign    = "customer_sign"
	ColWCDPSign        = "wcdp_sign"
	ColFilename        = "filename"
	ColID              = "id"
	ColCreatedAt       = "created_at"
)

// FieldNames lists the nine fields requested from the model, in reply order.
var FieldNames = []string{
	ColWorkOrderNumber,
	ColJobNumber,
	ColDescription,
	ColDate,
	ColHours,
	ColTotalAmountDue,
	ColSignedByBoth,
	ColCustomerSign,
	ColWCDPSign,
}

// PreferredColumns is the column order used by every tabular output.
var PreferredColumns = append(append([]string{}, FieldNames...), ColFilename)

// Fields holds the nine extracted values. Every field serializes, absent ones as null.
type Fields struct {
	WorkOrderNumber *string `json:"work_order_number"`
	JobNumber       *string `json:"job_number"`
	Description     *string `json:"description"`
	Date            *string `json:"date"`
	Hours           Value   `json:"hours"`
	TotalAmountDue  Value   `json:"total_amount_due"`
	SignedByBoth    *bool   `json:"signed_by_both"`
	CustomerSign    *bool   `json:"customer_sign"`
	WCDPSign        *bool   `json:"wcdp_sign"`
}

// WorkOrder is one extracted record plus the upload (and page) it came from.
type WorkOrder struct {
	Fields
	Filename string `json:"filename"`
}

// StoredWorkOrder is a persisted record. The store never keeps filename.
type StoredWorkOrder struct {
	ID uuid.UUID `json:"id"`
	Fields
	CreatedAt time.Time `json:"created_at"`
	SerialNo  int       `json:"serial_no,omitempty"`
}

// Column returns the cell value of a named field: nil, string, float64 or bool.
// ok is false for unknown names.
func (f Fields) Column(name string) (any, bool) {
	switch name {
	case ColWorkOrderNumber:
		return strOrNil(f.WorkOrderNumber), true
	case ColJobNumber:
		return strOrNil(f.JobNumber), true
	case ColDescription:
		return strOrNil(f.Description), true
	case ColDate:
		return strOrNil(f.Date), true
	case ColHours:
		return f.Hours.Any(), true
	case ColTotalAmountDue:
		return f.TotalAmountDue.Any(), true
	case ColSignedByBoth:
		return boolOrNil(f.SignedByBoth), true
	case ColCustomerSign:
		return boolOrNil(f.CustomerSign), true
	case ColWCDPSign:
		return boolOrNil(f.WCDPSign), true
	default:
		return nil, false
	}
}

// Column extends Fields.Column with filename.
func (w WorkOrder) Column(name string) (any, bool) {
	if name == ColFilename {
		return w.Filename, true
	}
	return w.Fields.Column(name)
}

// Column extends Fields.Column with id and created_at.
func (s StoredWorkOrder) Column(name string) (any, bool) {
	switch name {
	case ColID:
		return s.ID.String(), true
	case ColCreatedAt:
		return s.CreatedAt.UTC().Format(time.RFC3339), true
	default:
		return s.Fields.Column(name)
	}
}

func strOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func boolOrNil(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}

func Ptr[T any](v T) *T { return &v }
