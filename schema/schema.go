package schema

import (
	"sort"

	"github.com/vektah/gqlparser/v2/ast"
)

// Schema is the executable schema composed from one or more data sources.
// It wraps the parsed AST with lookup indexes and carries the merged resolver
// map. A Schema is read-only after composition.
type Schema struct {
	ast       *ast.Schema
	resolvers ResolverMap
	types     map[string]*ast.Definition
	queries   map[string]*ast.FieldDefinition
	mutations map[string]*ast.FieldDefinition

	// fieldOwner records which source contributed each root field,
	// for diagnostics on composed schemas.
	fieldOwner map[string]string
}

func newSchema(parsed *ast.Schema, sources []DataSource) *Schema {
	s := &Schema{
		ast:        parsed,
		resolvers:  mergeResolvers(sources),
		types:      make(map[string]*ast.Definition, len(parsed.Types)),
		queries:    make(map[string]*ast.FieldDefinition),
		mutations:  make(map[string]*ast.FieldDefinition),
		fieldOwner: make(map[string]string),
	}

	for name, def := range parsed.Types {
		s.types[name] = def
	}

	if parsed.Query != nil {
		for _, f := range parsed.Query.Fields {
			if isIntrospectionField(f.Name) {
				continue
			}
			s.queries[f.Name] = f
		}
	}
	if parsed.Mutation != nil {
		for _, f := range parsed.Mutation.Fields {
			s.mutations[f.Name] = f
		}
	}

	// Later sources win here too, mirroring resolver merge order.
	for _, src := range sources {
		for path := range src.Resolvers {
			s.fieldOwner[path] = src.Name
		}
	}

	return s
}

func isIntrospectionField(name string) bool {
	return len(name) >= 2 && name[0] == '_' && name[1] == '_'
}

// AST returns the underlying parsed schema.
func (s *Schema) AST() *ast.Schema {
	return s.ast
}

// Resolvers returns the merged resolver map. Later sources won on collision.
func (s *Schema) Resolvers() ResolverMap {
	return s.resolvers
}

// Type returns a type definition by name, or nil.
func (s *Schema) Type(name string) *ast.Definition {
	return s.types[name]
}

// QueryField returns a query root field definition by name, or nil.
func (s *Schema) QueryField(name string) *ast.FieldDefinition {
	return s.queries[name]
}

// MutationField returns a mutation root field definition by name, or nil.
func (s *Schema) MutationField(name string) *ast.FieldDefinition {
	return s.mutations[name]
}

// Owner reports which data source contributed the resolver at path.
func (s *Schema) Owner(path string) string {
	return s.fieldOwner[path]
}

// Queries returns all query field names in sorted order.
func (s *Schema) Queries() []string {
	return sortedKeys(s.queries)
}

// Mutations returns all mutation field names in sorted order.
func (s *Schema) Mutations() []string {
	return sortedKeys(s.mutations)
}

// Types returns all type names in sorted order, optionally filtered by kind.
func (s *Schema) Types(kinds ...ast.DefinitionKind) []string {
	want := make(map[ast.DefinitionKind]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}

	names := make([]string, 0, len(s.types))
	for name, def := range s.types {
		if len(want) == 0 || want[def.Kind] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// HasQuery reports whether the schema has a query type with fields beyond
// the introspection meta fields gqlparser injects.
func (s *Schema) HasQuery() bool {
	return s.ast.Query != nil && len(s.queries) > 0
}

// HasMutation reports whether the schema has a mutation type with fields.
func (s *Schema) HasMutation() bool {
	return s.ast.Mutation != nil && len(s.mutations) > 0
}

// Implementors returns the object type names implementing the named
// interface, in sorted order.
func (s *Schema) Implementors(iface string) []string {
	var names []string
	for name, def := range s.types {
		if def.Kind != ast.Object {
			continue
		}
		for _, impl := range def.Interfaces {
			if impl == iface {
				names = append(names, name)
				break
			}
		}
	}
	sort.Strings(names)
	return names
}

func sortedKeys(m map[string]*ast.FieldDefinition) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
