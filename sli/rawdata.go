package sli

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sliops/kqlframe/core"
)

var rawDataTemplate = parseTemplate("raw_data", `let SliMetadata = cluster({{ string .MetadataCluster }}).database({{ string .MetadataDatabase }}).{{ identifier .MetadataFunction }}(EndTime_Param)
    | extend SliName = strcat(SliId, "-", ServiceTreeId)
    | where ServiceName == ServiceName_Param and SliName == SliName_Param
    | project tableName = substring(NrtKustoTableName, 1, strlen(NrtKustoTableName) - 2);
let query = strcat(toscalar(SliMetadata
    | project Ref = strcat("table(", tableName, ")",
        "| extend LocationId = tolower(replace_string(LocationId, ' ', ''))",
        "| where EndTimeUtc >= datetime(", StartTime_Param, ") and EndTimeUtc < datetime(", EndTime_Param, ")",
        " and LocationId == '", LocationId_Param, "'",
        "| sort by StartTimeUtc",
        "| take {{ .Take }}")));
evaluate execute_query(".", query)
`)

// locations are spliced into a server side query, so only plain region names pass
var locationRegexp = regexp.MustCompile(`^[a-z0-9]+$`)

var ErrInvalidRequest = errors.New("invalid raw data request")

// RawDataSettings hold the structural parts of the raw data query.
type RawDataSettings struct {
	MetadataCluster  string
	MetadataDatabase string
	MetadataFunction string
	Take             int
}

// RawDataRequest selects the raw signal data of one SLI in one location.
type RawDataRequest struct {
	Start      time.Time
	End        time.Time
	LocationID string
	SLOGroup   string
	SLISignal  string
	ServiceID  string
}

// SignalName returns the formatted signal name "<group>.<signal>.Signal".
func SignalName(sloGroup, sliSignal string) string {
	return strings.Join([]string{sloGroup, sliSignal, "Signal"}, ".")
}

// NormalizeLocation lower-cases a location and strips spaces, the same way
// the query normalizes the LocationId column.
func NormalizeLocation(location string) string {
	return strings.ToLower(strings.ReplaceAll(location, " ", ""))
}

func (req *RawDataRequest) validate() error {
	if !req.Start.Before(req.End) {
		return fmt.Errorf("%w: start %s is not before end %s", ErrInvalidRequest, req.Start, req.End)
	}
	if !locationRegexp.MatchString(NormalizeLocation(req.LocationID)) {
		return fmt.Errorf("%w: location %q", ErrInvalidRequest, req.LocationID)
	}
	if req.SLOGroup == "" || req.SLISignal == "" || req.ServiceID == "" {
		return fmt.Errorf("%w: slo group, sli signal and service id are required", ErrInvalidRequest)
	}
	return nil
}

// RawDataLoader loads raw SLI signal data.
type RawDataLoader struct {
	querier  Querier
	services *ServiceMap
	settings RawDataSettings
	log      logrus.FieldLogger
}

func NewRawDataLoader(querier Querier, services *ServiceMap, settings RawDataSettings, log logrus.FieldLogger) (*RawDataLoader, error) {
	if settings.MetadataCluster == "" || settings.MetadataDatabase == "" {
		return nil, errors.New("metadata cluster and database are required")
	}
	if _, err := kqlIdentifier(settings.MetadataFunction); err != nil {
		return nil, fmt.Errorf("metadata function: %w", err)
	}
	if settings.Take < 1 {
		return nil, fmt.Errorf("take must be positive, got %d", settings.Take)
	}

	return &RawDataLoader{
		querier:  querier,
		services: services,
		settings: settings,
		log:      log,
	}, nil
}

// Build returns the query text and its parameters for a request.
func (l *RawDataLoader) Build(req *RawDataRequest) (string, []core.QueryParam, error) {
	if err := req.validate(); err != nil {
		return "", nil, err
	}

	signal := SignalName(req.SLOGroup, req.SLISignal)

	serviceName, err := l.services.Resolve(signal)
	if err != nil {
		return "", nil, fmt.Errorf("services.Resolve: %w", err)
	}

	query, err := render(rawDataTemplate, l.settings)
	if err != nil {
		return "", nil, err
	}

	params := []core.QueryParam{
		core.Param("StartTime_Param", req.Start.UTC()),
		core.Param("EndTime_Param", req.End.UTC()),
		core.Param("LocationId_Param", NormalizeLocation(req.LocationID)),
		core.Param("ServiceName_Param", serviceName),
		core.Param("SliName_Param", signal+"-"+req.ServiceID),
	}

	return query, params, nil
}

// Load runs the raw data query and returns its result.
func (l *RawDataLoader) Load(ctx context.Context, req *RawDataRequest) (*core.Table, error) {
	query, params, err := l.Build(req)
	if err != nil {
		return nil, err
	}

	l.log.WithFields(logrus.Fields{
		"signal":   SignalName(req.SLOGroup, req.SLISignal),
		"location": NormalizeLocation(req.LocationID),
	}).Info("loading raw data")

	table, err := l.querier.ExecuteAsTable(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("querier.ExecuteAsTable: %w", err)
	}

	return table, nil
}
