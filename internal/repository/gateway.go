package repository

import (
	"context"

	"github.com/joseph-ayodele/workorders-tracker/internal/common"
	"github.com/joseph-ayodele/workorders-tracker/internal/entity"
	"github.com/joseph-ayodele/workorders-tracker/internal/query"
)

// StoreDisabledWarning is shown once when no record store is configured.
const StoreDisabledWarning = "Record store is not configured: set DB_URL to enable saving and browsing work orders. " +
	"Create the work_orders table with the SQL below (or run `workorders migrate`)."

// Gateway fronts an optional WorkOrderRepository. Without one every call
// returns common.ErrStoreUnavailable and nothing touches a database.
type Gateway struct {
	repo WorkOrderRepository
}

// NewGateway wraps repo; a nil repo yields a disabled gateway.
func NewGateway(repo WorkOrderRepository) *Gateway {
	return &Gateway{repo: repo}
}

// Available reports whether persistence features are enabled.
func (g *Gateway) Available() bool {
	return g != nil && g.repo != nil
}

// Warning returns the configuration warning for a disabled gateway, or "".
func (g *Gateway) Warning() string {
	if g.Available() {
		return ""
	}
	return StoreDisabledWarning
}

func (g *Gateway) Insert(ctx context.Context, records []entity.WorkOrder) (int, error) {
	if !g.Available() {
		return 0, common.ErrStoreUnavailable
	}
	return g.repo.Insert(ctx, records)
}

func (g *Gateway) Query(ctx context.Context, q query.Query) (Page, error) {
	if !g.Available() {
		return Page{}, common.ErrStoreUnavailable
	}
	return g.repo.Query(ctx, q)
}

func (g *Gateway) QueryAll(ctx context.Context, q query.Query) (Page, error) {
	if !g.Available() {
		return Page{}, common.ErrStoreUnavailable
	}
	return g.repo.QueryAll(ctx, q)
}

func (g *Gateway) DistinctValues(ctx context.Context, field string) ([]any, error) {
	if !g.Available() {
		return nil, common.ErrStoreUnavailable
	}
	return g.repo.DistinctValues(ctx, field)
}
