package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sliops/kqlframe/sli"
)

func rawDataCmd(a *app) *cobra.Command {
	var (
		start    string
		end      string
		lookback time.Duration
		req      sli.RawDataRequest
		out      outputFlags
	)

	cmd := &cobra.Command{
		Use:   "raw-data",
		Short: "Load the raw signal data of an SLI in one location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error

			req.End = time.Now().UTC()
			if end != "" {
				req.End, err = time.Parse(time.RFC3339, end)
				if err != nil {
					return fmt.Errorf("--end: %w", err)
				}
			}
			req.Start = req.End.Add(-lookback)
			if start != "" {
				req.Start, err = time.Parse(time.RFC3339, start)
				if err != nil {
					return fmt.Errorf("--start: %w", err)
				}
			}

			h, err := a.handler(cmd)
			if err != nil {
				return err
			}

			table, err := h.RawData(cmd.Context(), &req)
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

	cmd.Flags().StringVar(&start, "start", "", "start of the time range (RFC3339), defaults to end minus lookback")
	cmd.Flags().StringVar(&end, "end", "", "end of the time range (RFC3339), defaults to now")
	cmd.Flags().DurationVar(&lookback, "lookback", 10*24*time.Hour, "length of the time range when no start is given")
	cmd.Flags().StringVar(&req.LocationID, "location", "", "location id, e.g. eastus")
	cmd.Flags().StringVar(&req.SLOGroup, "slo-group", "", "SLO group name")
	cmd.Flags().StringVar(&req.SLISignal, "sli-signal", "", "SLI signal name")
	cmd.Flags().StringVar(&req.ServiceID, "service-id", "", "service tree id")
	out.register(cmd, false)

	for _, name := range []string{"location", "slo-group", "sli-signal", "service-id"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}
