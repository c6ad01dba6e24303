package repository

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	"github.com/joseph-ayodele/workorders-tracker/internal/entity"
)

const (
	// WorkOrdersTableName is the store table holding persisted records.
	WorkOrdersTableName = "work_orders"
	textSize            = 2147483647
)

var (
	// WorkOrdersColumns holds the columns for the "work_orders" table.
	WorkOrdersColumns = []*schema.Column{
		{Name: entity.ColID, Type: field.TypeUUID},
		{Name: entity.ColWorkOrderNumber, Type: field.TypeString, Size: textSize, Nullable: true},
		{Name: entity.ColJobNumber, Type: field.TypeString, Size: textSize, Nullable: true},
		{Name: entity.ColDescription, Type: field.TypeString, Size: textSize, Nullable: true},
		{Name: entity.ColDate, Type: field.TypeString, Size: textSize, Nullable: true},
		{Name: entity.ColHours, Type: field.TypeFloat64, Nullable: true},
		{Name: entity.ColTotalAmountDue, Type: field.TypeFloat64, Nullable: true},
		{Name: entity.ColSignedByBoth, Type: field.TypeBool, Nullable: true},
		{Name: entity.ColCustomerSign, Type: field.TypeBool, Nullable: true},
		{Name: entity.ColWCDPSign, Type: field.TypeBool, Nullable: true},
		{Name: entity.ColCreatedAt, Type: field.TypeTime},
	}
	// WorkOrdersTable holds the schema information for the "work_orders" table.
	WorkOrdersTable = &schema.Table{
		Name:       WorkOrdersTableName,
		Columns:    WorkOrdersColumns,
		PrimaryKey: []*schema.Column{WorkOrdersColumns[0]},
		Indexes: []*schema.Index{
			{Name: "workorder_created_at", Columns: []*schema.Column{WorkOrdersColumns[10]}},
		},
	}
)

// columnNames lists the stored columns in select order.
func columnNames() []string {
	names := make([]string, len(WorkOrdersColumns))
	for i, c := range WorkOrdersColumns {
		names[i] = c.Name
	}
	return names
}

// SchemaSQL is the DDL an operator can run by hand on Postgres to enable the
// record store.
const SchemaSQL = `CREATE TABLE IF NOT EXISTS work_orders (
    id UUID PRIMARY KEY,
    work_order_number TEXT,
    job_number TEXT,
    description TEXT,
    date TEXT,
    hours DOUBLE PRECISION,
    total_amount_due DOUBLE PRECISION,
    signed_by_both BOOLEAN,
    customer_sign BOOLEAN,
    wcdp_sign BOOLEAN,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS workorder_created_at ON work_orders (created_at);`

// Migrate creates or updates the work_orders table.
func (db *DB) Migrate(ctx context.Context) error {
	m, err := schema.NewMigrate(db.Driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Create(ctx, WorkOrdersTable); err != nil {
		return fmt.Errorf("migrate %s: %w", WorkOrdersTableName, err)
	}
	db.logger.Info("schema migrated", "table", WorkOrdersTableName, "dialect", db.Dialect)
	return nil
}
