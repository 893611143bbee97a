// Package middleware composes data sources into one executable schema and
// serves it over HTTP. It is the glue between the schema, mock, and executor
// packages: default-option merging, per-request context assembly, and the
// mock-mode branch all live here.
package middleware

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/n9te9/go-graphql-devserver/executor"
	"github.com/n9te9/go-graphql-devserver/mock"
	"github.com/n9te9/go-graphql-devserver/schema"
)

// Middleware is the composed GraphQL endpoint. It serves requests itself via
// ServeHTTP and doubles as a classic wrapping middleware via Wrap.
type Middleware struct {
	opts   Options
	schema *schema.Schema
	exec   *executor.Executor
	logger *zap.Logger
}

var _ http.Handler = (*Middleware)(nil)

// New merges opts with DefaultOptions, composes the schema from the data
// sources, and branches into mock decoration when mock mode is on.
func New(opts Options) (*Middleware, error) {
	opts = withDefaults(opts)

	s, err := schema.ComposeWithClient(opts.Sources, opts.HTTPClient)
	if err != nil {
		return nil, fmt.Errorf("failed to compose schema: %w", err)
	}

	execOpts := []executor.Option{
		executor.WithIntrospection(!opts.DisableIntrospection),
	}
	if opts.Mock {
		resolvers := mock.Wrap(s, mock.Config{
			Values:            opts.Mocks,
			PreserveResolvers: opts.PreserveResolvers,
		})
		execOpts = append(execOpts, executor.WithResolvers(resolvers))
	}

	return &Middleware{
		opts:   opts,
		schema: s,
		exec:   executor.New(s, execOpts...),
		logger: opts.Logger,
	}, nil
}

// Schema returns the composed schema.
func (m *Middleware) Schema() *schema.Schema {
	return m.schema
}

// Endpoint returns the URL path the handler answers on.
func (m *Middleware) Endpoint() string {
	return m.opts.Endpoint
}

// requestContext builds the context for one request: the folded model map
// and a fresh request ID. It is rebuilt per request and discarded with it.
func (m *Middleware) requestContext(r *http.Request) *http.Request {
	ctx := r.Context()
	ctx = WithModels(ctx, schema.BuildContext(m.opts.Sources))
	ctx = WithRequestID(ctx, uuid.NewString())
	ctx = withSchema(ctx, m.schema)
	return r.WithContext(ctx)
}

// Wrap returns a middleware that attaches the composed schema and the
// per-request context map to the request before calling next.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, m.requestContext(r))
	})
}

// ServeHTTP answers GraphQL requests on GET and POST.
func (m *Middleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		m.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req *executor.Request
	var err error
	if r.Method == http.MethodGet {
		req, err = parseGetRequest(r)
	} else {
		req, err = m.parsePostRequest(r)
	}
	if err != nil {
		m.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	r = m.requestContext(r)
	resp := m.exec.Execute(r.Context(), req)
	m.writeResponse(w, resp)

	m.logger.Info("graphql request served",
		zap.String("request_id", RequestID(r.Context())),
		zap.String("method", r.Method),
		zap.String("operation", operationType(req.Query)),
		zap.String("operation_name", req.OperationName),
		zap.Int("errors", len(resp.Errors)),
		zap.Duration("duration", time.Since(start)),
	)
}

// parseGetRequest reads a GraphQL request from query parameters; variables
// arrive as a JSON-encoded parameter.
func parseGetRequest(r *http.Request) (*executor.Request, error) {
	params := r.URL.Query()
	req := &executor.Request{
		Query:         params.Get("query"),
		OperationName: params.Get("operationName"),
	}

	if vars := params.Get("variables"); vars != "" {
		if err := json.Unmarshal([]byte(vars), &req.Variables); err != nil {
			return nil, fmt.Errorf("invalid variables JSON")
		}
	}
	return req, nil
}

// parsePostRequest reads a GraphQL request from the body, accepting both
// application/json and application/graphql.
func (m *Middleware) parsePostRequest(r *http.Request) (*executor.Request, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, m.opts.MaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read request body")
	}
	defer r.Body.Close()

	if len(body) == 0 {
		return nil, fmt.Errorf("empty request body")
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/graphql") {
		return &executor.Request{Query: string(body)}, nil
	}

	var req executor.Request
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("invalid JSON request body")
	}
	return &req, nil
}

func (m *Middleware) writeResponse(w http.ResponseWriter, resp *executor.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	enc := json.NewEncoder(w)
	if m.opts.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(resp); err != nil {
		m.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (m *Middleware) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(&executor.Response{
		Errors: []*executor.Error{{Message: message}},
	})
}

// operationType guesses the operation kind from the query text, for logs.
func operationType(query string) string {
	query = strings.TrimSpace(strings.ToLower(query))
	switch {
	case strings.HasPrefix(query, "mutation"):
		return "mutation"
	case strings.HasPrefix(query, "subscription"):
		return "subscription"
	default:
		return "query"
	}
}
