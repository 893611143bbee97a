package middleware_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/n9te9/go-graphql-devserver/middleware"
	"github.com/n9te9/go-graphql-devserver/schema"
)

const usersSDL = `
type User {
	id: ID!
	name: String!
}

type Query {
	me: User
	greeting(name: String!): String
}`

type userStore struct {
	name string
}

func testSources() []schema.DataSource {
	return []schema.DataSource{
		{
			Name:       "users",
			SDL:        usersSDL,
			ContextKey: "Users",
			Model:      &userStore{name: "Ada"},
			Resolvers: schema.ResolverMap{
				"Query.me": func(ctx context.Context, args map[string]any) (any, error) {
					store, ok := middleware.Model(ctx, "Users")
					if !ok {
						return nil, nil
					}
					return map[string]any{"id": "1", "name": store.(*userStore).name}, nil
				},
				"Query.greeting": func(ctx context.Context, args map[string]any) (any, error) {
					return "Hello " + args["name"].(string), nil
				},
			},
		},
	}
}

func postQuery(t *testing.T, h http.Handler, query string) map[string]any {
	t.Helper()
	body, _ := json.Marshal(map[string]any{"query": query})
	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status OK, got %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestWithDefaults_CallerWins(t *testing.T) {
	merged := middleware.WithDefaultsForTest(middleware.Options{
		Endpoint:    "/api/graphql",
		MaxBodySize: 64,
	})
	if merged.Endpoint != "/api/graphql" {
		t.Errorf("expected caller endpoint to win, got %q", merged.Endpoint)
	}
	if merged.MaxBodySize != 64 {
		t.Errorf("expected caller body size to win, got %d", merged.MaxBodySize)
	}
	if merged.Logger == nil {
		t.Error("expected default logger")
	}
	if merged.HTTPClient == nil {
		t.Error("expected default HTTP client")
	}
}

func TestWithDefaults_ZeroValuesFallBack(t *testing.T) {
	merged := middleware.WithDefaultsForTest(middleware.Options{})
	if merged.Endpoint != "/graphql" {
		t.Errorf("expected default endpoint, got %q", merged.Endpoint)
	}
	if merged.MaxBodySize != 1<<20 {
		t.Errorf("expected default body size, got %d", merged.MaxBodySize)
	}
}

func TestNew_ComposeFailure(t *testing.T) {
	_, err := middleware.New(middleware.Options{})
	if err == nil {
		t.Fatal("expected error for empty sources")
	}
}

func TestServeHTTP_QueryWithContextModel(t *testing.T) {
	m, err := middleware.New(middleware.Options{Sources: testSources()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	resp := postQuery(t, m, `{ me { id name } }`)
	want := map[string]any{
		"data": map[string]any{
			"me": map[string]any{"id": "1", "name": "Ada"},
		},
	}
	if diff := cmp.Diff(want, resp); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func TestServeHTTP_GetRequest(t *testing.T) {
	m, err := middleware.New(middleware.Options{Sources: testSources()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	params := url.Values{}
	params.Set("query", `query($name: String!) { greeting(name: $name) }`)
	params.Set("variables", `{"name":"Grace"}`)

	req := httptest.NewRequest(http.MethodGet, "/graphql?"+params.Encode(), nil)
	w := httptest.NewRecorder()
	m.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status OK, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Hello Grace") {
		t.Errorf("expected greeting in response, got %s", w.Body.String())
	}
}

func TestServeHTTP_MethodNotAllowed(t *testing.T) {
	m, err := middleware.New(middleware.Options{Sources: testSources()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/graphql", nil)
	w := httptest.NewRecorder()
	m.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}
}

func TestServeHTTP_BadRequests(t *testing.T) {
	m, err := middleware.New(middleware.Options{Sources: testSources()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	for name, body := range map[string]string{
		"empty body":   "",
		"invalid json": "{not json",
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body))
			w := httptest.NewRecorder()
			m.ServeHTTP(w, req)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestServeHTTP_GraphQLContentType(t *testing.T) {
	m, err := middleware.New(middleware.Options{Sources: testSources()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{ me { name } }`))
	req.Header.Set("Content-Type", "application/graphql")
	w := httptest.NewRecorder()
	m.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status OK, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Ada") {
		t.Errorf("expected resolver data, got %s", w.Body.String())
	}
}

func TestServeHTTP_MockMode(t *testing.T) {
	m, err := middleware.New(middleware.Options{
		Sources: testSources(),
		Mock:    true,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	resp := postQuery(t, m, `{ me { name } }`)
	data := resp["data"].(map[string]any)
	me := data["me"].(map[string]any)
	if me["name"] != "Hello World" {
		t.Errorf("expected mock placeholder, got %v", me["name"])
	}
}

func TestServeHTTP_MockModePreservesResolvers(t *testing.T) {
	m, err := middleware.New(middleware.Options{
		Sources:           testSources(),
		Mock:              true,
		PreserveResolvers: true,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	resp := postQuery(t, m, `{ me { name } }`)
	data := resp["data"].(map[string]any)
	me := data["me"].(map[string]any)
	if me["name"] != "Ada" {
		t.Errorf("expected real resolver to win, got %v", me["name"])
	}
}

func TestServeHTTP_IntrospectionDisabled(t *testing.T) {
	m, err := middleware.New(middleware.Options{
		Sources:              testSources(),
		DisableIntrospection: true,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	resp := postQuery(t, m, `{ __schema { queryType { name } } }`)
	if _, ok := resp["errors"]; !ok {
		t.Error("expected errors for disabled introspection")
	}
}

func TestWrap_AttachesSchemaAndContext(t *testing.T) {
	m, err := middleware.New(middleware.Options{Sources: testSources()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var (
		gotSchema    bool
		gotModel     bool
		gotRequestID string
	)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSchema = middleware.SchemaFrom(r.Context()) != nil
		_, gotModel = middleware.Model(r.Context(), "Users")
		gotRequestID = middleware.RequestID(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	m.Wrap(next).ServeHTTP(httptest.NewRecorder(), req)

	if !gotSchema {
		t.Error("expected schema on request context")
	}
	if !gotModel {
		t.Error("expected Users model on request context")
	}
	if gotRequestID == "" {
		t.Error("expected request ID on request context")
	}
}

func TestRequestContext_FreshPerRequest(t *testing.T) {
	m, err := middleware.New(middleware.Options{Sources: testSources()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ids := make(map[string]bool)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids[middleware.RequestID(r.Context())] = true
	})
	wrapped := m.Wrap(next)

	for i := 0; i < 3; i++ {
		wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}
	if len(ids) != 3 {
		t.Errorf("expected 3 distinct request IDs, got %d", len(ids))
	}
}
