package cli

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

// Execute runs the command line and returns the process exit code.
func Execute() int {
	return execute(newApp(), os.Args[1:], os.Stdout, os.Stderr)
}

func execute(a *app, args []string, stdout, stderr io.Writer) int {
	cmd := rootCmd(a)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		a.logger().WithError(err).Error("command failed")
		return 1
	}
	return 0
}

func rootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "kqlframe",
		Short:         "kqlframe runs Kusto queries and returns their results as tables.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default is kqlframe.yaml in . or $HOME/.config/kqlframe)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level, overrides the config file")

	cmd.AddCommand(
		endpointsCmd(a),
		queryCmd(a),
		rawDataCmd(a),
		sparseSweepCmd(a),
	)

	return cmd
}
