package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/workorders-tracker/constants"
	"github.com/joseph-ayodele/workorders-tracker/internal/common"
	"github.com/joseph-ayodele/workorders-tracker/internal/entity"
	"github.com/joseph-ayodele/workorders-tracker/internal/export"
	"github.com/joseph-ayodele/workorders-tracker/internal/query"
	"github.com/joseph-ayodele/workorders-tracker/internal/repository"
)

const defaultPageSize = 20

type pageResponse struct {
	Data         []entity.StoredWorkOrder `json:"data"`
	Count        int                      `json:"count"`
	Page         int                      `json:"page"`
	PageSize     int                      `json:"page_size"`
	TotalPages   int                      `json:"total_pages"`
	PageRecords  int                      `json:"page_records"`
	SignedOnPage int                      `json:"signed_on_page"`
}

func (s *Server) getConfig(c *gin.Context) {
	body := gin.H{
		"store_enabled": s.gateway.Available(),
		"sort_options":  constants.SortLabels,
		"page_sizes":    constants.PageSizes,
		"filters":       query.FilterFields,
	}
	if !s.gateway.Available() {
		body["warning"] = s.gateway.Warning()
		body["schema_sql"] = repository.SchemaSQL
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) listWorkOrders(c *gin.Context) {
	q, err := parseQuery(c, true)
	if err != nil {
		s.writeError(c, err)
		return
	}
	page, err := s.gateway.Query(c.Request.Context(), q)
	if err != nil {
		s.writeError(c, err)
		return
	}

	if page.Data == nil {
		page.Data = []entity.StoredWorkOrder{}
	}
	signed := 0
	for _, r := range page.Data {
		if r.SignedByBoth != nil && *r.SignedByBoth {
			signed++
		}
	}
	c.JSON(http.StatusOK, pageResponse{
		Data:         page.Data,
		Count:        page.Count,
		Page:         q.Page,
		PageSize:     q.PageSize,
		TotalPages:   query.TotalPages(page.Count, q.PageSize),
		PageRecords:  len(page.Data),
		SignedOnPage: signed,
	})
}

// exportWorkOrders writes every row matching the filters, ignoring any page window.
func (s *Server) exportWorkOrders(c *gin.Context) {
	q, err := parseQuery(c, false)
	if err != nil {
		s.writeError(c, err)
		return
	}
	page, err := s.gateway.QueryAll(c.Request.Context(), q)
	if err != nil {
		s.writeError(c, err)
		return
	}
	data, err := s.exporter.WriteStored(page.Data)
	if err != nil {
		s.writeError(c, err)
		return
	}
	attachment(c, export.StoreFileName, data)
}

func (s *Server) distinctValues(c *gin.Context) {
	values, err := s.gateway.DistinctValues(c.Request.Context(), c.Param("field"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	if values == nil {
		values = []any{}
	}
	c.JSON(http.StatusOK, gin.H{"values": values})
}

// parseQuery reads search, filters, sort and (when windowed) page parameters.
func parseQuery(c *gin.Context, windowed bool) (query.Query, error) {
	raw := make(map[string]string, len(query.FilterFields))
	for name := range query.FilterFields {
		if v, ok := c.GetQuery(name); ok {
			raw[name] = v
		}
	}
	filters, err := query.ParseFilters(raw)
	if err != nil {
		return query.Query{}, err
	}

	q := query.Query{
		Filters: filters,
		Search:  c.Query("search"),
		SortBy:  c.Query("sort_by"),
	}
	switch strings.ToLower(c.DefaultQuery("order", "desc")) {
	case "asc", "ascending":
		q.Ascending = true
	case "desc", "descending":
	default:
		return query.Query{}, common.InvalidInputf("order must be asc or desc")
	}

	if windowed {
		if q.Page, err = intParam(c, "page", 1); err != nil {
			return query.Query{}, err
		}
		if q.PageSize, err = intParam(c, "page_size", defaultPageSize); err != nil {
			return query.Query{}, err
		}
	}
	return q, nil
}

func intParam(c *gin.Context, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, common.InvalidInputf("%s must be an integer", name)
	}
	return n, nil
}
