// Package config loads the devserver's YAML configuration file.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/n9te9/go-graphql-devserver/middleware"
	"github.com/n9te9/go-graphql-devserver/mock"
	"github.com/n9te9/go-graphql-devserver/schema"
)

// Config is the devserver configuration file.
type Config struct {
	Endpoint      string               `yaml:"endpoint"`
	ServiceName   string               `yaml:"service_name"`
	Port          int                  `yaml:"port"`
	Pretty        bool                 `yaml:"pretty"`
	Introspection *bool                `yaml:"introspection"`
	Sources       []SourceSetting      `yaml:"sources"`
	DevSourcesDir string               `yaml:"dev_sources_dir"`
	Mock          MockSetting          `yaml:"mock"`
	Logging       LoggingSetting       `yaml:"logging"`
	Opentelemetry OpentelemetrySetting `yaml:"opentelemetry"`
}

// SourceSetting declares one data source in the configuration file.
type SourceSetting struct {
	Name       string             `yaml:"name"`
	SchemaFile string             `yaml:"schema_file"`
	Host       string             `yaml:"host"`
	Retry      schema.RetryOption `yaml:"retry"`
	ContextKey string             `yaml:"context_key"`
	// Resolvers are static responses per field path; strings support
	// {{args.name}} substitution.
	Resolvers map[string]any `yaml:"resolvers"`
}

// MockSetting controls mock mode.
type MockSetting struct {
	Enable            bool           `yaml:"enable"`
	PreserveResolvers bool           `yaml:"preserve_resolvers"`
	Values            map[string]any `yaml:"values"`
}

// LoggingSetting controls the zap logger.
type LoggingSetting struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// OpentelemetrySetting mirrors the tracing block of the configuration file.
type OpentelemetrySetting struct {
	TracingSetting OpentelemetryTracingSetting `yaml:"tracing"`
}

// OpentelemetryTracingSetting enables OTLP trace export.
type OpentelemetryTracingSetting struct {
	Enable   bool   `yaml:"enable"`
	Endpoint string `yaml:"endpoint"`
}

// Load reads and parses the configuration file, applying defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "/graphql"
	}
	if c.ServiceName == "" {
		c.ServiceName = "graphql-devserver"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Opentelemetry.TracingSetting.Endpoint == "" {
		c.Opentelemetry.TracingSetting.Endpoint = "localhost:4318"
	}
}

// DataSources converts the configured source settings into data sources.
func (c *Config) DataSources() []schema.DataSource {
	return ConvertSources(c.Sources)
}

// ConvertSources converts source settings into data sources, turning static
// resolver responses into resolvers.
func ConvertSources(settings []SourceSetting) []schema.DataSource {
	sources := make([]schema.DataSource, 0, len(settings))
	for _, s := range settings {
		src := schema.DataSource{
			Name:       s.Name,
			SchemaFile: s.SchemaFile,
			Host:       s.Host,
			Retry:      s.Retry,
			ContextKey: s.ContextKey,
		}
		if len(s.Resolvers) > 0 {
			src.Resolvers = make(schema.ResolverMap, len(s.Resolvers))
			for path, value := range s.Resolvers {
				src.Resolvers[path] = mock.ValueResolver(value)
			}
		}
		sources = append(sources, src)
	}
	return sources
}

// Options converts the configuration into middleware options. The returned
// options carry no logger; the server attaches the one it builds.
func (c *Config) Options() middleware.Options {
	opts := middleware.Options{
		Endpoint:          c.Endpoint,
		Sources:           c.DataSources(),
		Mock:              c.Mock.Enable,
		Mocks:             c.Mock.Values,
		PreserveResolvers: c.Mock.PreserveResolvers,
		Pretty:            c.Pretty,
	}
	if c.Introspection != nil && !*c.Introspection {
		opts.DisableIntrospection = true
	}
	return opts
}
