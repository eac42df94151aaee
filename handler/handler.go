package handler

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/sliops/kqlframe/adapters"
	"github.com/sliops/kqlframe/config"
	"github.com/sliops/kqlframe/core"
	"github.com/sliops/kqlframe/sli"
)

var ErrNoTarget = errors.New("either an endpoint or a cluster and a database are required")

// Target selects the client a query runs on, either by endpoint name or by
// an explicit cluster and database.
type Target struct {
	Endpoint string
	Cluster  string
	Database string
}

func (t Target) String() string {
	if t.Endpoint != "" {
		return t.Endpoint
	}
	return t.Cluster + ":" + t.Database
}

type Handler struct {
	cfg      *config.Config
	log      logrus.FieldLogger
	registry *core.Registry
}

// New creates the adapter configured in cfg and registers a client for every
// configured endpoint.
func New(cfg *config.Config, logger logrus.FieldLogger, prompt func(string)) (*Handler, error) {
	adapter, err := new(adapters.Mux).GetAdapter(cfg.Adapter, &adapters.Options{
		AuthMethod: adapters.AuthMethod(cfg.Auth.Method),
		TenantID:   cfg.Auth.TenantID,
		ClientID:   cfg.Auth.ClientID,
		Prompt:     prompt,
	})
	if err != nil {
		return nil, fmt.Errorf("adapters.GetAdapter: %w", err)
	}

	return NewWithAdapter(cfg, logger, adapter)
}

// NewWithAdapter is like New, but uses an already constructed adapter.
func NewWithAdapter(cfg *config.Config, logger logrus.FieldLogger, adapter core.Adapter) (*Handler, error) {
	registry, err := core.NewRegistry(adapter, cfg.Identities(), core.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("core.NewRegistry: %w", err)
	}

	return &Handler{
		cfg:      cfg,
		log:      logger,
		registry: registry,
	}, nil
}

func (h *Handler) Endpoints() []config.Endpoint {
	return h.cfg.Endpoints
}

// Client returns the client of the target. Clients for explicit pairs are
// registered on first use.
func (h *Handler) Client(target Target) (*core.Client, error) {
	if target.Endpoint != "" {
		e, err := h.cfg.Endpoint(target.Endpoint)
		if err != nil {
			return nil, err
		}
		c, ok := h.registry.Lookup(e.Identity())
		if !ok {
			return nil, core.ErrIdentityNotFound(e.Identity())
		}
		return c, nil
	}

	if target.Cluster == "" || target.Database == "" {
		return nil, ErrNoTarget
	}

	id, err := core.NewClientIdentity(target.Cluster, target.Database)
	if err != nil {
		return nil, err
	}
	if c, ok := h.registry.Lookup(id); ok {
		return c, nil
	}

	c, err := h.registry.Register(id.Cluster, id.Database)
	if err != nil {
		return nil, fmt.Errorf("registry.Register: %w", err)
	}
	return c, nil
}

// Query runs an ad hoc query on the target.
func (h *Handler) Query(ctx context.Context, target Target, query string, params ...core.QueryParam) (*core.Table, error) {
	c, err := h.Client(target)
	if err != nil {
		return nil, err
	}

	h.log.WithFields(logrus.Fields{
		"target": target.String(),
		"params": len(params),
	}).Info("running query")

	table, err := h.registry.ExecuteAsTable(ctx, c.Identity(), query, params...)
	if err != nil {
		return nil, err
	}
	return table, nil
}

// RawData loads the raw signal data of one SLI from the raw data endpoint.
func (h *Handler) RawData(ctx context.Context, req *sli.RawDataRequest) (*core.Table, error) {
	client, err := h.Client(Target{Endpoint: h.cfg.RawData.Endpoint})
	if err != nil {
		return nil, fmt.Errorf("raw data endpoint: %w", err)
	}

	services, err := sli.LoadServiceMap(h.cfg.Lookup.Path)
	if err != nil {
		return nil, fmt.Errorf("sli.LoadServiceMap: %w", err)
	}

	loader, err := sli.NewRawDataLoader(client, services, sli.RawDataSettings{
		MetadataCluster:  h.cfg.RawData.MetadataCluster,
		MetadataDatabase: h.cfg.RawData.MetadataDatabase,
		MetadataFunction: h.cfg.RawData.MetadataFunction,
		Take:             h.cfg.RawData.Take,
	}, h.log)
	if err != nil {
		return nil, fmt.Errorf("sli.NewRawDataLoader: %w", err)
	}

	return loader.Load(ctx, req)
}

// SparseSweep runs the sparse rate sweep on the sweep endpoint. A non nil
// progress writer renders a progress bar.
func (h *Handler) SparseSweep(ctx context.Context, progress io.Writer) (*core.Table, error) {
	client, err := h.Client(Target{Endpoint: h.cfg.Sweep.Endpoint})
	if err != nil {
		return nil, fmt.Errorf("sweep endpoint: %w", err)
	}

	var opts []sli.SweepOption
	if progress != nil {
		opts = append(opts, sli.SweepWithProgress(progress))
	}

	// tables live next to the sweep endpoint unless configured otherwise
	sweep, err := sli.NewSparseRateSweep(client, sli.SweepSettings{
		SourceCluster:  cmp.Or(h.cfg.Sweep.SourceCluster, client.Cluster()),
		SourceDatabase: cmp.Or(h.cfg.Sweep.SourceDatabase, client.Database()),
		DurationTable:  h.cfg.Sweep.DurationTable,
		IncidentTable:  h.cfg.Sweep.IncidentTable,
		From:           h.cfg.Sweep.From,
		To:             h.cfg.Sweep.To,
		Step:           h.cfg.Sweep.Step,
	}, h.log, opts...)
	if err != nil {
		return nil, fmt.Errorf("sli.NewSparseRateSweep: %w", err)
	}

	return sweep.Run(ctx)
}
