package schema

import (
	"fmt"
	"net/http"
	"os"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

// Compose merges the given data sources into one executable schema.
//
// Each source contributes one SDL document; gqlparser merges the documents
// during load, so root types declared across sources are combined. Resolver
// maps and context keys are folded left to right with later sources winning
// on collision. Composition is all-or-nothing: any unreadable, unfetchable,
// or invalid source fails the whole compose with no partial schema.
func Compose(sources []DataSource) (*Schema, error) {
	return compose(sources, http.DefaultClient)
}

// ComposeWithClient is Compose with an explicit HTTP client for sources that
// fetch their SDL from a running service.
func ComposeWithClient(sources []DataSource, httpClient *http.Client) (*Schema, error) {
	return compose(sources, httpClient)
}

func compose(sources []DataSource, httpClient *http.Client) (*Schema, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("schema composition requires at least one data source")
	}

	inputs := make([]*ast.Source, 0, len(sources))
	for i, src := range sources {
		sdl, err := sourceSDL(src, httpClient)
		if err != nil {
			return nil, fmt.Errorf("failed to load data source %q: %w", sourceLabel(src, i), err)
		}
		inputs = append(inputs, &ast.Source{
			Name:  sourceLabel(src, i),
			Input: sdl,
		})
	}

	parsed, err := gqlparser.LoadSchema(inputs...)
	if err != nil {
		return nil, fmt.Errorf("schema composition failed: %w", err)
	}

	s := newSchema(parsed, sources)
	if !s.HasQuery() {
		return nil, fmt.Errorf("composed schema has no query fields")
	}

	return s, nil
}

// sourceSDL resolves a source's SDL from its inline definition, schema file,
// or remote host, in that order of precedence.
func sourceSDL(src DataSource, httpClient *http.Client) (string, error) {
	switch {
	case src.SDL != "":
		return src.SDL, nil
	case src.SchemaFile != "":
		data, err := os.ReadFile(src.SchemaFile)
		if err != nil {
			return "", fmt.Errorf("failed to read schema file: %w", err)
		}
		return string(data), nil
	case src.Host != "":
		return fetchSDL(src.Host, httpClient, src.Retry)
	default:
		return "", fmt.Errorf("data source declares no sdl, schema_file, or host")
	}
}

func sourceLabel(src DataSource, i int) string {
	if src.Name != "" {
		return src.Name
	}
	return fmt.Sprintf("source[%d]", i)
}
