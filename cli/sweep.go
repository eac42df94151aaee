package cli

import (
	"io"

	"github.com/spf13/cobra"
)

func sparseSweepCmd(a *app) *cobra.Command {
	var (
		quiet bool
		out   outputFlags
	)

	cmd := &cobra.Command{
		Use:   "sparse-sweep",
		Short: "Count false and true positive incidents per sparse rate bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// without --output the result goes to the configured file
			if !cmd.Flags().Changed("output") {
				out.path = a.cfg.Sweep.Output
			}

			h, err := a.handler(cmd)
			if err != nil {
				return err
			}

			var progress io.Writer
			if !quiet {
				progress = cmd.ErrOrStderr()
			}

			table, err := h.SparseSweep(cmd.Context(), progress)
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

	cmd.Flags().BoolVar(&quiet, "quiet", false, "do not render a progress bar")
	out.register(cmd, true)

	return cmd
}
