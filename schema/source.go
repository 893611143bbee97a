package schema

import (
	"context"
)

// Resolver produces the value for a single field. The arguments map carries
// the field arguments with query variables already substituted.
type Resolver func(ctx context.Context, args map[string]any) (any, error)

// ResolverMap maps field paths ("Query.user", "User.posts") to resolvers.
type ResolverMap map[string]Resolver

// DataSource is one GraphQL module to be composed into the executable schema.
// Exactly one of SDL, SchemaFile, or Host must be set; Host sources fetch
// their SDL from a running service at compose time.
type DataSource struct {
	// Name identifies the source. Discovered dev sources override configured
	// sources with the same name.
	Name string `yaml:"name"`
	// SDL is the inline schema definition.
	SDL string `yaml:"sdl"`
	// SchemaFile is a path to a file containing the schema definition.
	SchemaFile string `yaml:"schema_file"`
	// Host is a GraphQL endpoint answering the { _service { sdl } } query.
	Host string `yaml:"host"`
	// Retry configures SDL fetching for Host sources.
	Retry RetryOption `yaml:"retry"`
	// ContextKey is the key under which Model is exposed on the per-request
	// context map. Empty means the source contributes no model.
	ContextKey string `yaml:"context_key"`
	// Model is the backing value published under ContextKey.
	Model any `yaml:"-"`
	// Resolvers are the source's field resolvers, keyed by "Type.field".
	Resolvers ResolverMap `yaml:"-"`
}

// BuildContext folds the sources' models into one context map. Later sources
// override earlier ones on context key collision.
func BuildContext(sources []DataSource) map[string]any {
	out := make(map[string]any, len(sources))
	for _, src := range sources {
		if src.ContextKey == "" {
			continue
		}
		out[src.ContextKey] = src.Model
	}
	return out
}

// mergeResolvers folds the sources' resolver maps left to right. Later
// sources override earlier ones on path collision.
func mergeResolvers(sources []DataSource) ResolverMap {
	out := make(ResolverMap)
	for _, src := range sources {
		for path, r := range src.Resolvers {
			out[path] = r
		}
	}
	return out
}
