package sli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/sirupsen/logrus"

	"github.com/sliops/kqlframe/core"
)

const (
	PrefixFalsePositive = "FP"
	PrefixTruePositive  = "TP"

	countColumn = "count_"
)

var SweepColumns = []string{"low_sparse_rate", "high_sparse_rate", "fp_count", "tp_count"}

var sweepTemplate = parseTemplate("sparse_sweep", `let Durations = cluster({{ string .SourceCluster }}).database({{ string .SourceDatabase }}).{{ identifier .DurationTable }}
    | where sparse_rate >= LowSparseRate_Param and sparse_rate < HighSparseRate_Param;
let Incidents = cluster({{ string .SourceCluster }}).database({{ string .SourceDatabase }}).{{ identifier .IncidentTable }}
    | where DetectionClassification startswith Classification_Param;
Durations
| join kind=leftouter (Incidents) on $left.AnomalyIncidentId == $right.IncidentId
| summarize count()
`)

// SweepSettings describe the tables and the sparse rate buckets of a sweep.
type SweepSettings struct {
	SourceCluster  string
	SourceDatabase string
	DurationTable  string
	IncidentTable  string
	From           int
	To             int
	Step           int
}

// SparseRateSweep counts false and true positive incidents per sparse rate bucket.
type SparseRateSweep struct {
	querier  Querier
	settings SweepSettings
	log      logrus.FieldLogger
	progress io.Writer
}

type SweepOption func(*SparseRateSweep)

// SweepWithProgress renders a progress bar to w.
func SweepWithProgress(w io.Writer) SweepOption {
	return func(s *SparseRateSweep) {
		s.progress = w
	}
}

func NewSparseRateSweep(querier Querier, settings SweepSettings, log logrus.FieldLogger, opts ...SweepOption) (*SparseRateSweep, error) {
	if settings.SourceCluster == "" || settings.SourceDatabase == "" {
		return nil, errors.New("source cluster and database are required")
	}
	if settings.Step < 1 {
		return nil, fmt.Errorf("step must be positive, got %d", settings.Step)
	}
	if settings.From >= settings.To {
		return nil, fmt.Errorf("empty sparse rate range: %d ... %d", settings.From, settings.To)
	}

	s := &SparseRateSweep{
		querier:  querier,
		settings: settings,
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Query returns the query text shared by every bucket and classification.
func (s *SparseRateSweep) Query() (string, error) {
	return render(sweepTemplate, s.settings)
}

// Buckets returns the lower bounds of all buckets.
func (s *SparseRateSweep) Buckets() []int {
	var out []int
	for low := s.settings.From; low < s.settings.To; low += s.settings.Step {
		out = append(out, low)
	}
	return out
}

func bucketParams(low, high int, prefix string) []core.QueryParam {
	return []core.QueryParam{
		core.Param("LowSparseRate_Param", int64(low)),
		core.Param("HighSparseRate_Param", int64(high)),
		core.Param("Classification_Param", prefix),
	}
}

func (s *SparseRateSweep) count(ctx context.Context, query string, params []core.QueryParam) (any, error) {
	table, err := s.querier.ExecuteAsTable(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("querier.ExecuteAsTable: %w", err)
	}

	val, err := table.Value(countColumn, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: count result: %w", core.ErrConversion, err)
	}
	return val, nil
}

// Run executes the false and true positive query of every bucket in order and
// returns one row per bucket.
func (s *SparseRateSweep) Run(ctx context.Context) (*core.Table, error) {
	query, err := s.Query()
	if err != nil {
		return nil, err
	}

	buckets := s.Buckets()
	out := core.NewTable(SweepColumns...)

	tracker, stop := s.startProgress(len(buckets))
	defer stop()

	for _, low := range buckets {
		high := low + s.settings.Step

		fp, err := s.count(ctx, query, bucketParams(low, high, PrefixFalsePositive))
		if err != nil {
			tracker.MarkAsErrored()
			return nil, fmt.Errorf("bucket %d ... %d (%s): %w", low, high, PrefixFalsePositive, err)
		}

		tp, err := s.count(ctx, query, bucketParams(low, high, PrefixTruePositive))
		if err != nil {
			tracker.MarkAsErrored()
			return nil, fmt.Errorf("bucket %d ... %d (%s): %w", low, high, PrefixTruePositive, err)
		}

		if err := out.AppendRow(low, high, fp, tp); err != nil {
			return nil, err
		}

		s.log.WithFields(logrus.Fields{
			"low":      low,
			"high":     high,
			"fp_count": fp,
			"tp_count": tp,
		}).Debug("bucket done")

		tracker.Increment(1)
	}

	tracker.MarkAsDone()
	return out, nil
}

// startProgress returns a tracker and a function that waits for the final render.
// Without a progress writer the tracker is only counted, never rendered.
func (s *SparseRateSweep) startProgress(total int) (*progress.Tracker, func()) {
	tracker := &progress.Tracker{
		Message: "sparse rate buckets",
		Total:   int64(total),
		Units:   progress.UnitsDefault,
	}

	if s.progress == nil {
		return tracker, func() {}
	}

	pw := progress.NewWriter()
	pw.SetOutputWriter(s.progress)
	pw.SetAutoStop(true)
	pw.SetTrackerLength(25)
	pw.SetUpdateFrequency(100 * time.Millisecond)
	pw.AppendTracker(tracker)

	rendered := make(chan struct{})
	go func() {
		defer close(rendered)
		pw.Render()
	}()

	// Render returns on its own once the tracker is finished (auto stop)
	return tracker, func() {
		if !tracker.IsDone() {
			tracker.MarkAsErrored()
		}
		<-rendered
	}
}
