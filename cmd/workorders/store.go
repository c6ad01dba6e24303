package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/workorders-tracker/internal/repository"
)

var distinctCmd = &cobra.Command{
	Use:   "distinct FIELD",
	Short: "List the distinct stored values of a field",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openStore(cmd, false)
		if err != nil {
			return err
		}
		defer app.Close()

		values, err := app.Gateway.DistinctValues(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		for _, v := range values {
			fmt.Fprintln(cmd.OutOrStdout(), formatCell(v))
		}
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the work_orders table in the record store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openStore(cmd, true)
		if err != nil {
			return err
		}
		defer app.Close()
		fmt.Fprintf(cmd.OutOrStdout(), "%s table is ready\n", repository.WorkOrdersTableName)
		return nil
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the SQL that creates the work_orders table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), repository.SchemaSQL)
		return nil
	},
}
