package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/workorders-tracker/internal/common"
	"github.com/joseph-ayodele/workorders-tracker/internal/query"
)

var (
	querySearch   string
	queryFilters  []string
	querySortBy   string
	queryAsc      bool
	queryPage     int
	queryPageSize int
	queryExport   string
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Browse saved work orders",
	Example: `  workorders query --search WO-1 --filter signed_by_both=Yes --sort-by "Total Amount Due" --page 2
  workorders query --filter hours=2 --export work_orders_export.xlsx`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := parseFilterFlags(queryFilters)
		if err != nil {
			return err
		}
		filters, err := query.ParseFilters(raw)
		if err != nil {
			return err
		}
		q := query.Query{
			Filters:   filters,
			Search:    querySearch,
			SortBy:    querySortBy,
			Ascending: queryAsc,
			Page:      queryPage,
			PageSize:  queryPageSize,
		}

		app, err := openStore(cmd, false)
		if err != nil {
			return err
		}
		defer app.Close()
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		if queryExport != "" {
			page, err := app.Gateway.QueryAll(ctx, q)
			if err != nil {
				return err
			}
			data, err := app.Exporter.WriteStored(page.Data)
			if err != nil {
				return err
			}
			if err := os.WriteFile(queryExport, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", queryExport, err)
			}
			fmt.Fprintf(out, "Wrote %d record(s) to %s\n", page.Count, queryExport)
			return nil
		}

		page, err := app.Gateway.Query(ctx, q)
		if err != nil {
			return err
		}
		if page.Count == 0 {
			fmt.Fprintln(out, "No work orders found.")
			return nil
		}
		printStored(out, page.Data)
		fmt.Fprintf(out, "Page %d of %d (%d record(s))\n", q.Page, query.TotalPages(page.Count, q.PageSize), page.Count)
		return nil
	},
}

// parseFilterFlags splits repeated name=value flags.
func parseFilterFlags(flags []string) (map[string]string, error) {
	out := make(map[string]string, len(flags))
	for _, f := range flags {
		name, value, ok := strings.Cut(f, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, common.InvalidInputf("filter %q must look like name=value", f)
		}
		out[name] = strings.TrimSpace(value)
	}
	return out, nil
}

func init() {
	queryCmd.Flags().StringVarP(&querySearch, "search", "s", "", "case-insensitive substring of work order number, job number or description")
	queryCmd.Flags().StringArrayVarP(&queryFilters, "filter", "f", nil, "exact-match filter name=value (hours, signed_by_both, customer_sign, wcdp_sign); repeatable")
	queryCmd.Flags().StringVar(&querySortBy, "sort-by", "Created At", "sort column or label")
	queryCmd.Flags().BoolVar(&queryAsc, "asc", false, "sort ascending")
	queryCmd.Flags().IntVar(&queryPage, "page", 1, "page number, starting at 1")
	queryCmd.Flags().IntVar(&queryPageSize, "page-size", 20, "rows per page")
	queryCmd.Flags().StringVar(&queryExport, "export", "", "write every matching row to this .xlsx file instead of printing a page")
}
