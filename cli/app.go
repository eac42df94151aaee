package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sliops/kqlframe/config"
	"github.com/sliops/kqlframe/core"
	"github.com/sliops/kqlframe/handler"
	"github.com/sliops/kqlframe/logging"
	"github.com/sliops/kqlframe/output"
)

// app holds the state shared by all commands. It is filled in by the
// persistent pre run of the root command.
type app struct {
	configPath string
	logLevel   string

	cfg *config.Config
	log *logrus.Logger
	h   *handler.Handler

	// newHandler is replaced in tests.
	newHandler func(cfg *config.Config, log logrus.FieldLogger, prompt func(string)) (*handler.Handler, error)
}

func newApp() *app {
	return &app{
		newHandler: handler.New,
	}
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("logging.New: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	a.cfg = cfg
	a.log = log
	return nil
}

// handler creates the handler on first use, so commands that only read the
// config never authenticate.
func (a *app) handler(cmd *cobra.Command) (*handler.Handler, error) {
	if a.h != nil {
		return a.h, nil
	}

	stderr := cmd.ErrOrStderr()
	prompt := func(message string) {
		fmt.Fprintln(stderr, message)
	}

	h, err := a.newHandler(a.cfg, a.log, prompt)
	if err != nil {
		return nil, err
	}
	a.h = h
	return h, nil
}

// logger returns the configured logger, or a stderr logger when the
// configuration could not be loaded.
func (a *app) logger() logrus.FieldLogger {
	if a.log != nil {
		return a.log
	}
	l := logrus.New()
	l.SetOutput(os.Stderr)
	return l
}

type outputFlags struct {
	format string
	index  bool
	path   string
}

func (f *outputFlags) register(cmd *cobra.Command, index bool) {
	cmd.Flags().StringVar(&f.format, "format", "csv", "output format: csv, json or table")
	cmd.Flags().BoolVar(&f.index, "index", index, "add a leading row index column")
	cmd.Flags().StringVarP(&f.path, "output", "o", "", "write the result to a file instead of stdout")
}

func (f *outputFlags) output(stdout io.Writer, log logrus.FieldLogger) (output.Output, error) {
	formatter, err := output.FormatterByName(f.format)
	if err != nil {
		return nil, err
	}
	opts := &core.FormatterOptions{Index: f.index}

	if f.path == "" || f.path == "-" {
		return output.NewWriter(stdout, formatter, opts), nil
	}
	return output.NewFile(f.path, formatter, opts, log), nil
}
