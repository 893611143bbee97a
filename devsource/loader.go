// Package devsource discovers local development data sources. A dev source
// is a <name>.graphql SDL file with an optional <name>.yaml sidecar carrying
// its context key and static resolver responses. Discovered sources override
// configured ones with the same name, so a developer can shadow any module
// of a composed schema with a local definition.
package devsource

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/n9te9/go-graphql-devserver/mock"
	"github.com/n9te9/go-graphql-devserver/schema"
)

// sidecar is the optional YAML file next to a dev source's SDL.
type sidecar struct {
	// ContextKey names the key the source's model is published under.
	ContextKey string `yaml:"context_key"`
	// Model is a static model value for the context map.
	Model any `yaml:"model"`
	// Resolvers maps field paths to static responses; strings support
	// {{args.name}} substitution.
	Resolvers map[string]any `yaml:"resolvers"`
}

// Load scans dir for dev sources. A missing directory is not an error; it
// returns no sources so a repo without a dev directory composes normally.
func Load(dir string) ([]schema.DataSource, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read dev source directory %s: %w", dir, err)
	}

	var sources []schema.DataSource
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".graphql") {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".graphql")
		src, err := loadSource(dir, name)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}

	// ReadDir returns sorted entries; keep the invariant explicit since
	// discovery order decides later-wins merges.
	sort.Slice(sources, func(i, j int) bool { return sources[i].Name < sources[j].Name })

	return sources, nil
}

func loadSource(dir, name string) (schema.DataSource, error) {
	src := schema.DataSource{
		Name:       name,
		SchemaFile: filepath.Join(dir, name+".graphql"),
	}

	sidecarPath := filepath.Join(dir, name+".yaml")
	data, err := os.ReadFile(sidecarPath)
	if os.IsNotExist(err) {
		return src, nil
	}
	if err != nil {
		return schema.DataSource{}, fmt.Errorf("failed to read sidecar %s: %w", sidecarPath, err)
	}

	var sc sidecar
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return schema.DataSource{}, fmt.Errorf("failed to parse sidecar %s: %w", sidecarPath, err)
	}

	src.ContextKey = sc.ContextKey
	src.Model = sc.Model
	if len(sc.Resolvers) > 0 {
		src.Resolvers = make(schema.ResolverMap, len(sc.Resolvers))
		for path, value := range sc.Resolvers {
			src.Resolvers[path] = mock.ValueResolver(value)
		}
	}

	return src, nil
}

// Override merges discovered dev sources over the configured ones: a dev
// source replaces the configured source with the same name and is appended
// otherwise. Appending keeps dev sources later in the list, so they also win
// resolver and context key collisions during composition.
func Override(configured, discovered []schema.DataSource) []schema.DataSource {
	byName := make(map[string]int, len(configured))
	out := make([]schema.DataSource, len(configured))
	copy(out, configured)
	for i, src := range out {
		byName[src.Name] = i
	}

	for _, src := range discovered {
		if i, ok := byName[src.Name]; ok {
			out[i] = src
			continue
		}
		out = append(out, src)
	}
	return out
}
