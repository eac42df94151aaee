package sli_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sliops/kqlframe/core"
	"github.com/sliops/kqlframe/core/builders"
	"github.com/sliops/kqlframe/core/mock"
	"github.com/sliops/kqlframe/sli"
)

func sweepSettings() sli.SweepSettings {
	return sli.SweepSettings{
		SourceCluster:  "https://slivdevoutput00usw3.westus3.kusto.windows.net/",
		SourceDatabase: "outputs",
		DurationTable:  "SLISustainedDuration_v2",
		IncidentTable:  "BrainAllIncident",
		From:           0,
		To:             100,
		Step:           10,
	}
}

func paramValue(params []core.QueryParam, name string) any {
	for _, p := range params {
		if p.Name == name {
			return p.Value
		}
	}
	return nil
}

// countResponder answers low/10 false positives and 100+low/10 true positives.
func countResponder(query string, params []core.QueryParam) (*core.Response, error) {
	low := paramValue(params, "LowSparseRate_Param").(int64)

	count := low / 10
	if paramValue(params, "Classification_Param") == sli.PrefixTruePositive {
		count += 100
	}

	table := builders.NewResultTableBuilder().
		WithColumnNames("count_").
		WithRow(count).
		Build()
	return builders.NewResponse(table), nil
}

func TestSparseRateSweep_Run(t *testing.T) {
	r := require.New(t)

	adapter := mock.NewAdapter(mock.AdapterWithResponder(countResponder))
	client, err := core.Dial("https://slivdevoutput00usw3.westus3.kusto.windows.net/", "outputs", adapter)
	r.NoError(err)

	sweep, err := sli.NewSparseRateSweep(client, sweepSettings(), discardLogger())
	r.NoError(err)
	r.Equal([]int{0, 10, 20, 30, 40, 50, 60, 70, 80, 90}, sweep.Buckets())

	table, err := sweep.Run(context.Background())
	r.NoError(err)
	r.Equal(sli.SweepColumns, table.Columns())
	r.Equal(10, table.Len())

	for i, row := range table.Rows() {
		low := i * 10
		r.Equal(core.Row{low, low + 10, int64(i), int64(100 + i)}, row)
	}

	// false positives are queried before true positives in every bucket
	calls := adapter.Calls()
	r.Len(calls, 20)
	for i, call := range calls {
		want := sli.PrefixFalsePositive
		if i%2 == 1 {
			want = sli.PrefixTruePositive
		}
		r.Equal(want, paramValue(call.Params, "Classification_Param"))
		r.Equal(int64(i/2*10), paramValue(call.Params, "LowSparseRate_Param"))
	}

	r.Equal(20, adapter.Connects())
	r.Equal(20, adapter.Closes())
}

func TestSparseRateSweep_Progress(t *testing.T) {
	r := require.New(t)

	adapter := mock.NewAdapter(mock.AdapterWithResponder(countResponder))
	client, err := core.Dial("cluster", "outputs", adapter)
	r.NoError(err)

	settings := sweepSettings()
	settings.To = 30

	var out bytes.Buffer
	sweep, err := sli.NewSparseRateSweep(client, settings, discardLogger(), sli.SweepWithProgress(&out))
	r.NoError(err)

	table, err := sweep.Run(context.Background())
	r.NoError(err)
	r.Equal(3, table.Len())

	// the final render is complete when Run returns
	r.NotEmpty(out.String())
}

func TestSparseRateSweep_ProgressOnFailure(t *testing.T) {
	r := require.New(t)

	adapter := mock.NewAdapter(mock.AdapterWithResponder(func(string, []core.QueryParam) (*core.Response, error) {
		return nil, errors.New("boom")
	}))
	client, err := core.Dial("cluster", "outputs", adapter)
	r.NoError(err)

	var out bytes.Buffer
	sweep, err := sli.NewSparseRateSweep(client, sweepSettings(), discardLogger(), sli.SweepWithProgress(&out))
	r.NoError(err)

	_, err = sweep.Run(context.Background())
	r.Error(err)
	r.NotEmpty(out.String())
}

func TestSparseRateSweep_Query(t *testing.T) {
	r := require.New(t)

	sweep, err := sli.NewSparseRateSweep(nil, sweepSettings(), discardLogger())
	r.NoError(err)

	query, err := sweep.Query()
	r.NoError(err)
	r.Contains(query, "cluster('https://slivdevoutput00usw3.westus3.kusto.windows.net/').database('outputs').SLISustainedDuration_v2")
	r.Contains(query, "database('outputs').BrainAllIncident")
	r.Contains(query, "startswith Classification_Param")

	settings := sweepSettings()
	settings.IncidentTable = "BrainAllIncident | take 1"
	sweep, err = sli.NewSparseRateSweep(nil, settings, discardLogger())
	r.NoError(err)
	_, err = sweep.Query()
	r.Error(err)
}

func TestSparseRateSweep_Errors(t *testing.T) {
	r := require.New(t)

	settings := sweepSettings()
	settings.Step = 0
	_, err := sli.NewSparseRateSweep(nil, settings, discardLogger())
	r.Error(err)

	settings = sweepSettings()
	settings.From = 100
	_, err = sli.NewSparseRateSweep(nil, settings, discardLogger())
	r.Error(err)

	// result without a count_ column
	adapter := mock.NewAdapter(mock.AdapterWithDefaultResponse(
		builders.NewResultTableBuilder().WithColumnNames("other").WithRow(1).Build(),
	))
	client, err := core.Dial("cluster", "outputs", adapter)
	r.NoError(err)

	sweep, err := sli.NewSparseRateSweep(client, sweepSettings(), discardLogger())
	r.NoError(err)
	_, err = sweep.Run(context.Background())
	r.ErrorIs(err, core.ErrConversion)

	// failure of a single bucket aborts the sweep
	boom := errors.New("boom")
	adapter = mock.NewAdapter(mock.AdapterWithResponder(func(query string, params []core.QueryParam) (*core.Response, error) {
		if paramValue(params, "LowSparseRate_Param") == int64(30) {
			return nil, boom
		}
		return countResponder(query, params)
	}))
	client, err = core.Dial("cluster", "outputs", adapter)
	r.NoError(err)

	sweep, err = sli.NewSparseRateSweep(client, sweepSettings(), discardLogger())
	r.NoError(err)
	_, err = sweep.Run(context.Background())
	r.ErrorIs(err, boom)
	r.ErrorIs(err, core.ErrQuery)
	r.Len(adapter.Calls(), 7)
}
