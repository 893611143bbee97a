package middleware

import (
	"context"

	"github.com/n9te9/go-graphql-devserver/schema"
)

type contextKey int

const (
	modelsKey contextKey = iota
	requestIDKey
	schemaKey
)

// WithModels attaches the per-request model map. Values last only for the
// request/response cycle they were built for.
func WithModels(ctx context.Context, models map[string]any) context.Context {
	return context.WithValue(ctx, modelsKey, models)
}

// Models returns the full model map attached to the request context.
func Models(ctx context.Context) map[string]any {
	models, _ := ctx.Value(modelsKey).(map[string]any)
	return models
}

// Model returns a single model by its context key. Resolvers use this to
// reach the backing model of their data source.
func Model(ctx context.Context, key string) (any, bool) {
	models := Models(ctx)
	if models == nil {
		return nil, false
	}
	model, ok := models[key]
	return model, ok
}

// WithRequestID attaches the request's ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the ID attached to the request context, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// withSchema attaches the composed schema for downstream handlers.
func withSchema(ctx context.Context, s *schema.Schema) context.Context {
	return context.WithValue(ctx, schemaKey, s)
}

// SchemaFrom returns the composed schema attached by Wrap, or nil.
func SchemaFrom(ctx context.Context) *schema.Schema {
	s, _ := ctx.Value(schemaKey).(*schema.Schema)
	return s
}
