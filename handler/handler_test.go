package handler_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/sliops/kqlframe/config"
	"github.com/sliops/kqlframe/core"
	"github.com/sliops/kqlframe/core/builders"
	"github.com/sliops/kqlframe/core/mock"
	"github.com/sliops/kqlframe/handler"
	"github.com/sliops/kqlframe/sli"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	lookup := filepath.Join(t.TempDir(), "ServiceId_ServiceName.csv")
	require.NoError(t, os.WriteFile(lookup, []byte("SliId,ServiceName\nAKS.Etcd.Signal,AKS\n"), 0o644))

	return &config.Config{
		Adapter: "mock",
		Endpoints: []config.Endpoint{
			{Name: "raw", Cluster: "raw-cluster", Database: "slidata"},
			{Name: "outputs", Cluster: "outputs-cluster", Database: "outputs"},
		},
		Lookup: config.LookupConfig{Path: lookup},
		RawData: config.RawDataConfig{
			Endpoint:         "raw",
			MetadataCluster:  "metadata-cluster",
			MetadataDatabase: "slislometadata",
			MetadataFunction: "GetCombinedSLIMetadataFromV2AndV3",
			Take:             100,
		},
		Sweep: config.SweepConfig{
			Endpoint:      "outputs",
			DurationTable: "SLISustainedDuration_v2",
			IncidentTable: "BrainAllIncident",
			From:          0,
			To:            20,
			Step:          10,
		},
	}
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestHandler_Client(t *testing.T) {
	r := require.New(t)

	adapter := mock.NewAdapter()
	h, err := handler.NewWithAdapter(testConfig(t), discardLogger(), adapter)
	r.NoError(err)
	r.Len(h.Endpoints(), 2)

	c, err := h.Client(handler.Target{Endpoint: "outputs"})
	r.NoError(err)
	r.Equal("outputs-cluster", c.Cluster())

	_, err = h.Client(handler.Target{Endpoint: "missing"})
	r.ErrorIs(err, core.ErrNotFound)

	_, err = h.Client(handler.Target{Cluster: "only-cluster"})
	r.ErrorIs(err, handler.ErrNoTarget)

	// explicit pairs are registered once and reused
	first, err := h.Client(handler.Target{Cluster: "new-cluster", Database: "db"})
	r.NoError(err)
	second, err := h.Client(handler.Target{Cluster: "new-cluster", Database: "db"})
	r.NoError(err)
	r.Same(first, second)
	r.Equal(1, adapter.Authentications("new-cluster"))
}

func TestHandler_Query(t *testing.T) {
	r := require.New(t)

	adapter := mock.NewAdapter(mock.AdapterWithResponse("T | take N",
		builders.NewResultTableBuilder().WithColumnNames("a").WithRow(int64(1)).Build(),
	))
	h, err := handler.NewWithAdapter(testConfig(t), discardLogger(), adapter)
	r.NoError(err)

	table, err := h.Query(context.Background(), handler.Target{Endpoint: "raw"}, "T | take N", core.Param("N", int64(1)))
	r.NoError(err)
	r.Equal([]string{"a"}, table.Columns())

	calls := adapter.Calls()
	r.Len(calls, 1)
	r.Equal("raw-cluster", calls[0].Cluster)
	r.Equal("slidata", calls[0].Database)
}

func TestHandler_RawData(t *testing.T) {
	r := require.New(t)

	adapter := mock.NewAdapter(mock.AdapterWithDefaultResponse(
		builders.NewResultTableBuilder().WithColumnNames("Value").WithRow(0.5).Build(),
	))
	h, err := handler.NewWithAdapter(testConfig(t), discardLogger(), adapter)
	r.NoError(err)

	req := &sli.RawDataRequest{
		LocationID: "East US",
		SLOGroup:   "AKS",
		SLISignal:  "Etcd",
		ServiceID:  "id",
	}
	req.End = req.Start.AddDate(0, 0, 10)

	table, err := h.RawData(context.Background(), req)
	r.NoError(err)
	r.Equal(1, table.Len())

	calls := adapter.Calls()
	r.Len(calls, 1)
	r.Equal("raw-cluster", calls[0].Cluster)
	r.Contains(calls[0].Query, "cluster('metadata-cluster').database('slislometadata')")
}

func TestHandler_SparseSweep(t *testing.T) {
	r := require.New(t)

	adapter := mock.NewAdapter(mock.AdapterWithDefaultResponse(
		builders.NewResultTableBuilder().WithColumnNames("count_").WithRow(int64(3)).Build(),
	))
	h, err := handler.NewWithAdapter(testConfig(t), discardLogger(), adapter)
	r.NoError(err)

	table, err := h.SparseSweep(context.Background(), nil)
	r.NoError(err)
	r.Equal(sli.SweepColumns, table.Columns())
	r.Equal(2, table.Len())

	calls := adapter.Calls()
	r.Len(calls, 4)
	// source tables default to the sweep endpoint
	r.Contains(calls[0].Query, "cluster('outputs-cluster').database('outputs').SLISustainedDuration_v2")
}
