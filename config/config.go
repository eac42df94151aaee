package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"

	"github.com/sliops/kqlframe/core"
)

const EnvPrefix = "KQLFRAME"

type (
	Config struct {
		// Adapter is the type alias of the query service adapter.
		Adapter   string        `mapstructure:"adapter"`
		Auth      AuthConfig    `mapstructure:"auth"`
		Endpoints []Endpoint    `mapstructure:"endpoints"`
		Lookup    LookupConfig  `mapstructure:"lookup"`
		RawData   RawDataConfig `mapstructure:"raw_data"`
		Sweep     SweepConfig   `mapstructure:"sweep"`
		Log       LogConfig     `mapstructure:"log"`
	}

	AuthConfig struct {
		Method   string `mapstructure:"method"`
		TenantID string `mapstructure:"tenant_id"`
		ClientID string `mapstructure:"client_id"`
	}

	// Endpoint is a named (cluster, database) pair.
	Endpoint struct {
		Name     string `mapstructure:"name"`
		Cluster  string `mapstructure:"cluster"`
		Database string `mapstructure:"database"`
	}

	LookupConfig struct {
		// Path of the csv file mapping signal ids to service names.
		Path string `mapstructure:"path"`
	}

	RawDataConfig struct {
		Endpoint         string `mapstructure:"endpoint"`
		MetadataCluster  string `mapstructure:"metadata_cluster"`
		MetadataDatabase string `mapstructure:"metadata_database"`
		MetadataFunction string `mapstructure:"metadata_function"`
		Take             int    `mapstructure:"take"`
	}

	SweepConfig struct {
		Endpoint       string `mapstructure:"endpoint"`
		SourceCluster  string `mapstructure:"source_cluster"`
		SourceDatabase string `mapstructure:"source_database"`
		DurationTable  string `mapstructure:"duration_table"`
		IncidentTable  string `mapstructure:"incident_table"`
		From           int    `mapstructure:"from"`
		To             int    `mapstructure:"to"`
		Step           int    `mapstructure:"step"`
		Output         string `mapstructure:"output"`
	}

	LogConfig struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	}
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("adapter", "kusto")
	v.SetDefault("auth.method", "device")
	v.SetDefault("lookup.path", "ServiceId_ServiceName.csv")
	v.SetDefault("raw_data.metadata_function", "GetCombinedSLIMetadataFromV2AndV3")
	v.SetDefault("raw_data.take", 20000)
	v.SetDefault("sweep.duration_table", "SLISustainedDuration_v2")
	v.SetDefault("sweep.incident_table", "BrainAllIncident")
	v.SetDefault("sweep.from", 0)
	v.SetDefault("sweep.to", 100)
	v.SetDefault("sweep.step", 10)
	v.SetDefault("sweep.output", "re_sparse.csv")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// envOnlyKeys have no default, so Unmarshal does not see their environment
// overrides unless they are bound explicitly.
var envOnlyKeys = []string{
	"auth.tenant_id",
	"auth.client_id",
	"raw_data.endpoint",
	"raw_data.metadata_cluster",
	"raw_data.metadata_database",
	"sweep.endpoint",
	"sweep.source_cluster",
	"sweep.source_database",
}

func bindEnv(v *viper.Viper) error {
	for _, key := range envOnlyKeys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("v.BindEnv(%s): %w", key, err)
		}
	}
	return nil
}

// Load reads the config file (or kqlframe.yaml from the working directory or
// $HOME/.config/kqlframe when path is empty), applies environment overrides
// and expands template helpers.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindEnv(v); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("kqlframe")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/kqlframe")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("v.ReadInConfig: %w", err)
		}
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("v.Unmarshal: %w", err)
	}

	if err := cfg.expand(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) expand() error {
	var result *multierror.Error

	fields := []*string{
		&c.Auth.TenantID,
		&c.Auth.ClientID,
		&c.Lookup.Path,
		&c.RawData.MetadataCluster,
		&c.RawData.MetadataDatabase,
		&c.Sweep.SourceCluster,
		&c.Sweep.SourceDatabase,
		&c.Sweep.Output,
	}
	for i := range c.Endpoints {
		fields = append(fields, &c.Endpoints[i].Cluster, &c.Endpoints[i].Database)
	}

	for _, field := range fields {
		ex, err := expand(*field)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("expand %q: %w", *field, err))
			continue
		}
		*field = ex
	}

	return result.ErrorOrNil()
}

// Validate reports every problem of the config at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	names := make(map[string]struct{}, len(c.Endpoints))
	for i, e := range c.Endpoints {
		if e.Name == "" {
			result = multierror.Append(result, fmt.Errorf("endpoints[%d]: name is required", i))
		}
		if _, err := core.NewClientIdentity(e.Cluster, e.Database); err != nil {
			result = multierror.Append(result, fmt.Errorf("endpoints[%d]: %w", i, err))
		}
		if _, ok := names[e.Name]; ok && e.Name != "" {
			result = multierror.Append(result, fmt.Errorf("endpoints[%d]: duplicate name %q", i, e.Name))
		}
		names[e.Name] = struct{}{}
	}

	if c.RawData.Take < 1 {
		result = multierror.Append(result, fmt.Errorf("raw_data.take must be positive, got %d", c.RawData.Take))
	}
	if c.Sweep.Step < 1 {
		result = multierror.Append(result, fmt.Errorf("sweep.step must be positive, got %d", c.Sweep.Step))
	}
	if c.Sweep.From >= c.Sweep.To {
		result = multierror.Append(result, fmt.Errorf("sweep range is empty: %d ... %d", c.Sweep.From, c.Sweep.To))
	}

	return result.ErrorOrNil()
}

// Endpoint returns the endpoint with the given name.
func (c *Config) Endpoint(name string) (Endpoint, error) {
	for _, e := range c.Endpoints {
		if e.Name == name {
			return e, nil
		}
	}
	return Endpoint{}, fmt.Errorf("%w: endpoint %q", core.ErrNotFound, name)
}

// Identities returns the identities of all configured endpoints.
func (c *Config) Identities() []core.ClientIdentity {
	ids := make([]core.ClientIdentity, 0, len(c.Endpoints))
	for _, e := range c.Endpoints {
		ids = append(ids, e.Identity())
	}
	return ids
}

func (e Endpoint) Identity() core.ClientIdentity {
	return core.ClientIdentity{
		Cluster:  e.Cluster,
		Database: e.Database,
	}
}
