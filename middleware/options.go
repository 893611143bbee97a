package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/n9te9/go-graphql-devserver/schema"
)

// Options configures a Middleware. Zero values fall back to DefaultOptions
// field by field; a caller-set value always wins.
type Options struct {
	// Endpoint is the URL path the GraphQL handler answers on.
	Endpoint string
	// Sources are the data source modules composed into the schema.
	Sources []schema.DataSource
	// Mock enables generated placeholder resolvers.
	Mock bool
	// Mocks overrides generated values per field path, see mock.Config.
	Mocks map[string]any
	// PreserveResolvers keeps real resolvers in mock mode.
	PreserveResolvers bool
	// DisableIntrospection turns off __schema and __type queries.
	DisableIntrospection bool
	// Pretty indents JSON responses.
	Pretty bool
	// MaxBodySize limits request bodies, in bytes.
	MaxBodySize int64
	// Logger receives structured request logs.
	Logger *zap.Logger
	// HTTPClient fetches SDL for host-backed sources.
	HTTPClient *http.Client
}

// DefaultOptions returns the defaults the caller's options are merged over.
func DefaultOptions() Options {
	return Options{
		Endpoint:    "/graphql",
		MaxBodySize: 1 << 20, // 1MB
		Logger:      zap.NewNop(),
		HTTPClient:  http.DefaultClient,
	}
}

// withDefaults merges opts over DefaultOptions, field by field.
func withDefaults(opts Options) Options {
	defaults := DefaultOptions()
	if opts.Endpoint == "" {
		opts.Endpoint = defaults.Endpoint
	}
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = defaults.MaxBodySize
	}
	if opts.Logger == nil {
		opts.Logger = defaults.Logger
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = defaults.HTTPClient
	}
	return opts
}
