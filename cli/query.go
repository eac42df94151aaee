package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sliops/kqlframe/handler"
)

func queryCmd(a *app) *cobra.Command {
	var (
		target handler.Target
		query  string
		file   string
		params paramsValue
		out    outputFlags
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a query and print its primary result",
		Example: `  kqlframe query --endpoint outputs --query 'T | where Name == N | take 10' --param N=abc
  kqlframe query --cluster https://help.kusto.windows.net/ --database Samples --file query.kql --format table`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if file != "" {
				b, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("os.ReadFile: %w", err)
				}
				query = string(b)
			}
			if query == "" {
				return errors.New("a query is required")
			}

			h, err := a.handler(cmd)
			if err != nil {
				return err
			}

			table, err := h.Query(cmd.Context(), target, query, params.params...)
			if err != nil {
				return err
			}

			o, err := out.output(cmd.OutOrStdout(), a.log)
			if err != nil {
				return err
			}
			return o.Write(table)
		},
	}

	cmd.Flags().StringVarP(&target.Endpoint, "endpoint", "e", "", "name of a configured endpoint")
	cmd.Flags().StringVar(&target.Cluster, "cluster", "", "cluster url")
	cmd.Flags().StringVar(&target.Database, "database", "", "database name")
	cmd.Flags().StringVarP(&query, "query", "q", "", "query text")
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the query text from a file")
	cmd.Flags().Var(&params, "param", "query parameter, repeatable")
	out.register(cmd, false)

	cmd.MarkFlagsMutuallyExclusive("endpoint", "cluster")
	cmd.MarkFlagsMutuallyExclusive("endpoint", "database")
	cmd.MarkFlagsRequiredTogether("cluster", "database")
	cmd.MarkFlagsMutuallyExclusive("query", "file")

	return cmd
}
