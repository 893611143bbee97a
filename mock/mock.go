// Package mock layers generated placeholder resolvers over a composed
// schema for local development. Values are derived from the schema's types,
// so any query that validates gets a plausible response without a backend.
package mock

import (
	"context"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/n9te9/go-graphql-devserver/schema"
)

// defaultMaxDepth caps object recursion when generating values, so schemas
// with cyclic type references terminate.
const defaultMaxDepth = 4

// Config controls mock decoration.
type Config struct {
	// Values overrides generated mocks per field path ("Query.user",
	// "User.email"). A schema.Resolver value is called as-is; any other
	// value is returned statically, with {{args.name}} substitution applied
	// to strings.
	Values map[string]any
	// PreserveResolvers keeps the data sources' real resolvers and fills
	// only uncovered fields with mocks. When false, mocks replace all
	// resolvers.
	PreserveResolvers bool
	// MaxDepth bounds generated object nesting. Zero means the default.
	MaxDepth int
}

// Wrap builds the resolver map for mock mode: one generated resolver per
// query and mutation root field, plus resolvers for every override path.
func Wrap(s *schema.Schema, cfg Config) schema.ResolverMap {
	maxDepth := cfg.MaxDepth
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}

	g := &generator{schema: s, maxDepth: maxDepth}
	out := make(schema.ResolverMap)

	for _, name := range s.Queries() {
		fieldDef := s.QueryField(name)
		out["Query."+name] = g.fieldResolver(fieldDef.Type)
	}
	for _, name := range s.Mutations() {
		fieldDef := s.MutationField(name)
		out["Mutation."+name] = g.fieldResolver(fieldDef.Type)
	}

	for path, value := range cfg.Values {
		out[path] = ValueResolver(value)
	}

	if cfg.PreserveResolvers {
		for path, r := range s.Resolvers() {
			out[path] = r
		}
	}

	return out
}

// ValueResolver turns an override value into a resolver. Resolver-typed
// values pass through; anything else is returned statically with
// {{args.name}} substitution applied to strings.
func ValueResolver(value any) schema.Resolver {
	if r, ok := value.(schema.Resolver); ok {
		return r
	}
	if fn, ok := value.(func(ctx context.Context, args map[string]any) (any, error)); ok {
		return fn
	}
	return func(ctx context.Context, args map[string]any) (any, error) {
		return substituteArgs(value, args), nil
	}
}

type generator struct {
	schema   *schema.Schema
	maxDepth int
}

func (g *generator) fieldResolver(typ *ast.Type) schema.Resolver {
	return func(ctx context.Context, args map[string]any) (any, error) {
		return g.value(typ, g.maxDepth), nil
	}
}

// value generates a placeholder for the given type. Nullable values beyond
// the depth cap come back null.
func (g *generator) value(typ *ast.Type, depth int) any {
	if typ.Elem != nil {
		// Two elements make list shapes obvious in a client.
		return []any{
			g.value(typ.Elem, depth),
			g.value(typ.Elem, depth),
		}
	}

	def := g.schema.Type(typ.NamedType)
	if def == nil {
		return nil
	}

	switch def.Kind {
	case ast.Scalar:
		return scalarValue(def.Name)
	case ast.Enum:
		if len(def.EnumValues) > 0 {
			return def.EnumValues[0].Name
		}
		return nil
	case ast.Object:
		return g.objectValue(def, depth)
	case ast.Interface, ast.Union:
		if concrete := g.firstPossibleType(def); concrete != nil {
			return g.objectValue(concrete, depth)
		}
		return nil
	default:
		return nil
	}
}

func (g *generator) objectValue(def *ast.Definition, depth int) any {
	if depth <= 0 {
		return nil
	}

	out := make(map[string]any, len(def.Fields)+1)
	out["__typename"] = def.Name
	for _, f := range def.Fields {
		if len(f.Name) >= 2 && f.Name[:2] == "__" {
			continue
		}
		out[f.Name] = g.value(f.Type, depth-1)
	}
	return out
}

func (g *generator) firstPossibleType(def *ast.Definition) *ast.Definition {
	var candidates []string
	switch def.Kind {
	case ast.Union:
		candidates = def.Types
	case ast.Interface:
		candidates = g.schema.Implementors(def.Name)
	}
	if len(candidates) == 0 {
		return nil
	}
	return g.schema.Type(candidates[0])
}

// scalarValue returns the fixed placeholder for a built-in scalar. Custom
// scalars have no generated value; cover them with a Config.Values override.
func scalarValue(name string) any {
	switch name {
	case "String":
		return "Hello World"
	case "Int":
		return int64(42)
	case "Float":
		return 12.34
	case "Boolean":
		return true
	case "ID":
		return uuid.NewString()
	default:
		return nil
	}
}

// argsPattern matches {{args.name}} placeholders in static override values.
var argsPattern = regexp.MustCompile(`\{\{args\.([a-zA-Z_][a-zA-Z0-9_]*)\}\}`)

// substituteArgs replaces {{args.name}} placeholders in strings with the
// field's argument values, recursing through maps and slices.
func substituteArgs(value any, args map[string]any) any {
	switch v := value.(type) {
	case string:
		return argsPattern.ReplaceAllStringFunc(v, func(match string) string {
			name := argsPattern.FindStringSubmatch(match)[1]
			if arg, ok := args[name]; ok {
				return fmt.Sprintf("%v", arg)
			}
			return match
		})
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[key] = substituteArgs(val, args)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = substituteArgs(val, args)
		}
		return out
	default:
		return value
	}
}
