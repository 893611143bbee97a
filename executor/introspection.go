package executor

import (
	"github.com/vektah/gqlparser/v2/ast"
)

// Introspection is served by projecting the schema AST onto the requested
// selections. Deprecation metadata is static: nothing in a dev schema is
// reported as deprecated.

// supplierMap maps an introspection field name to a function producing its
// value for a given selection.
type supplierMap map[string]func(f *ast.Field) any

// introspectMetaField answers one __schema or __type root field.
func (e *Executor) introspectMetaField(doc *ast.QueryDocument, field *ast.Field, variables map[string]any) any {
	switch field.Name {
	case "__schema":
		return e.introspectSchema(doc, field.SelectionSet)
	case "__type":
		name, _ := argumentValue(field, "name", variables).(string)
		return e.introspectType(doc, name, field.SelectionSet)
	default:
		return nil
	}
}

func (e *Executor) introspectSchema(doc *ast.QueryDocument, selections ast.SelectionSet) map[string]any {
	return e.project(doc, selections, supplierMap{
		"description": func(*ast.Field) any { return nil },
		"queryType": func(*ast.Field) any {
			return namedTypeRef(e.schema.AST().Query)
		},
		"mutationType": func(*ast.Field) any {
			return namedTypeRef(e.schema.AST().Mutation)
		},
		"subscriptionType": func(*ast.Field) any {
			return namedTypeRef(e.schema.AST().Subscription)
		},
		"types": func(f *ast.Field) any {
			types := make([]any, 0)
			for _, name := range e.schema.Types() {
				if t := e.introspectType(doc, name, f.SelectionSet); t != nil {
					types = append(types, t)
				}
			}
			return types
		},
		"directives": func(f *ast.Field) any {
			directives := make([]any, 0, len(e.schema.AST().Directives))
			for _, dir := range e.schema.AST().Directives {
				directives = append(directives, e.introspectDirective(doc, dir, f.SelectionSet))
			}
			return directives
		},
	})
}

func namedTypeRef(def *ast.Definition) any {
	if def == nil {
		return nil
	}
	return map[string]any{"name": def.Name}
}

func (e *Executor) introspectType(doc *ast.QueryDocument, name string, selections ast.SelectionSet) map[string]any {
	def := e.schema.Type(name)
	if def == nil {
		return nil
	}

	return e.project(doc, selections, supplierMap{
		"name":           func(*ast.Field) any { return def.Name },
		"kind":           func(*ast.Field) any { return typeKind(def) },
		"description":    func(*ast.Field) any { return def.Description },
		"specifiedByURL": func(*ast.Field) any { return nil },
		"isOneOf":        func(*ast.Field) any { return false },
		"ofType":         func(*ast.Field) any { return nil },
		"fields": func(f *ast.Field) any {
			if def.Kind != ast.Object && def.Kind != ast.Interface {
				return nil
			}
			return e.introspectFields(doc, def.Fields, f.SelectionSet)
		},
		"inputFields": func(f *ast.Field) any {
			if def.Kind != ast.InputObject {
				return nil
			}
			return e.introspectInputFields(doc, def.Fields, f.SelectionSet)
		},
		"enumValues": func(f *ast.Field) any {
			if def.Kind != ast.Enum {
				return nil
			}
			values := make([]any, 0, len(def.EnumValues))
			for _, v := range def.EnumValues {
				value := v
				values = append(values, e.project(doc, f.SelectionSet, supplierMap{
					"name":              func(*ast.Field) any { return value.Name },
					"description":       func(*ast.Field) any { return value.Description },
					"isDeprecated":      func(*ast.Field) any { return false },
					"deprecationReason": func(*ast.Field) any { return nil },
				}))
			}
			return values
		},
		"interfaces": func(f *ast.Field) any {
			if def.Kind != ast.Object {
				return nil
			}
			ifaces := make([]any, 0, len(def.Interfaces))
			for _, iface := range def.Interfaces {
				ifaces = append(ifaces, e.introspectType(doc, iface, f.SelectionSet))
			}
			return ifaces
		},
		"possibleTypes": func(f *ast.Field) any {
			var members []string
			switch def.Kind {
			case ast.Union:
				members = def.Types
			case ast.Interface:
				members = e.schema.Implementors(def.Name)
			default:
				return nil
			}
			possible := make([]any, 0, len(members))
			for _, member := range members {
				possible = append(possible, e.introspectType(doc, member, f.SelectionSet))
			}
			return possible
		},
	})
}

func (e *Executor) introspectFields(doc *ast.QueryDocument, fields ast.FieldList, selections ast.SelectionSet) []any {
	out := make([]any, 0, len(fields))
	for _, field := range fields {
		if len(field.Name) >= 2 && field.Name[:2] == "__" {
			continue
		}
		def := field
		out = append(out, e.project(doc, selections, supplierMap{
			"name":        func(*ast.Field) any { return def.Name },
			"description": func(*ast.Field) any { return def.Description },
			"args": func(f *ast.Field) any {
				return e.introspectArguments(doc, def.Arguments, f.SelectionSet)
			},
			"type": func(f *ast.Field) any {
				return e.introspectTypeRef(doc, def.Type, f.SelectionSet)
			},
			"isDeprecated":      func(*ast.Field) any { return false },
			"deprecationReason": func(*ast.Field) any { return nil },
		}))
	}
	return out
}

func (e *Executor) introspectInputFields(doc *ast.QueryDocument, fields ast.FieldList, selections ast.SelectionSet) []any {
	out := make([]any, 0, len(fields))
	for _, field := range fields {
		def := field
		out = append(out, e.project(doc, selections, supplierMap{
			"name":        func(*ast.Field) any { return def.Name },
			"description": func(*ast.Field) any { return def.Description },
			"type": func(f *ast.Field) any {
				return e.introspectTypeRef(doc, def.Type, f.SelectionSet)
			},
			"defaultValue": func(*ast.Field) any {
				if def.DefaultValue == nil {
					return nil
				}
				return def.DefaultValue.String()
			},
			"isDeprecated":      func(*ast.Field) any { return false },
			"deprecationReason": func(*ast.Field) any { return nil },
		}))
	}
	return out
}

func (e *Executor) introspectArguments(doc *ast.QueryDocument, args ast.ArgumentDefinitionList, selections ast.SelectionSet) []any {
	out := make([]any, 0, len(args))
	for _, arg := range args {
		def := arg
		out = append(out, e.project(doc, selections, supplierMap{
			"name":        func(*ast.Field) any { return def.Name },
			"description": func(*ast.Field) any { return def.Description },
			"type": func(f *ast.Field) any {
				return e.introspectTypeRef(doc, def.Type, f.SelectionSet)
			},
			"defaultValue": func(*ast.Field) any {
				if def.DefaultValue == nil {
					return nil
				}
				return def.DefaultValue.String()
			},
			"isDeprecated":      func(*ast.Field) any { return false },
			"deprecationReason": func(*ast.Field) any { return nil },
		}))
	}
	return out
}

// introspectTypeRef renders a type reference, peeling NON_NULL and LIST
// wrappers into ofType chains.
func (e *Executor) introspectTypeRef(doc *ast.QueryDocument, t *ast.Type, selections ast.SelectionSet) map[string]any {
	switch {
	case t.NonNull:
		return e.project(doc, selections, supplierMap{
			"kind": func(*ast.Field) any { return "NON_NULL" },
			"name": func(*ast.Field) any { return nil },
			"ofType": func(f *ast.Field) any {
				inner := *t
				inner.NonNull = false
				return e.introspectTypeRef(doc, &inner, f.SelectionSet)
			},
		})
	case t.Elem != nil:
		return e.project(doc, selections, supplierMap{
			"kind": func(*ast.Field) any { return "LIST" },
			"name": func(*ast.Field) any { return nil },
			"ofType": func(f *ast.Field) any {
				return e.introspectTypeRef(doc, t.Elem, f.SelectionSet)
			},
		})
	default:
		return e.project(doc, selections, supplierMap{
			"kind": func(*ast.Field) any {
				if def := e.schema.Type(t.NamedType); def != nil {
					return typeKind(def)
				}
				return "SCALAR"
			},
			"name":   func(*ast.Field) any { return t.NamedType },
			"ofType": func(*ast.Field) any { return nil },
		})
	}
}

func (e *Executor) introspectDirective(doc *ast.QueryDocument, dir *ast.DirectiveDefinition, selections ast.SelectionSet) map[string]any {
	return e.project(doc, selections, supplierMap{
		"name":        func(*ast.Field) any { return dir.Name },
		"description": func(*ast.Field) any { return dir.Description },
		"locations": func(*ast.Field) any {
			locations := make([]any, len(dir.Locations))
			for i, loc := range dir.Locations {
				locations[i] = string(loc)
			}
			return locations
		},
		"args": func(f *ast.Field) any {
			return e.introspectArguments(doc, dir.Arguments, f.SelectionSet)
		},
		"isRepeatable": func(*ast.Field) any { return dir.IsRepeatable },
	})
}

// project evaluates the requested selections against the suppliers,
// honoring aliases. Unknown meta fields project to null.
func (e *Executor) project(doc *ast.QueryDocument, selections ast.SelectionSet, suppliers supplierMap) map[string]any {
	result := make(map[string]any)
	for _, field := range expandFragments(doc, selections) {
		alias := field.Alias
		if alias == "" {
			alias = field.Name
		}
		if supplier, ok := suppliers[field.Name]; ok {
			result[alias] = supplier(field)
		} else {
			result[alias] = nil
		}
	}
	return result
}

// expandFragments inlines fragment spreads and inline fragments.
// Introspection fragments are always conditioned on meta types, so type
// conditions need no checking here.
func expandFragments(doc *ast.QueryDocument, selections ast.SelectionSet) []*ast.Field {
	var fields []*ast.Field
	for _, sel := range selections {
		switch s := sel.(type) {
		case *ast.Field:
			fields = append(fields, s)
		case *ast.FragmentSpread:
			if doc == nil {
				continue
			}
			for _, frag := range doc.Fragments {
				if frag.Name == s.Name {
					fields = append(fields, expandFragments(doc, frag.SelectionSet)...)
					break
				}
			}
		case *ast.InlineFragment:
			fields = append(fields, expandFragments(doc, s.SelectionSet)...)
		}
	}
	return fields
}

func typeKind(def *ast.Definition) string {
	switch def.Kind {
	case ast.Scalar:
		return "SCALAR"
	case ast.Object:
		return "OBJECT"
	case ast.Interface:
		return "INTERFACE"
	case ast.Union:
		return "UNION"
	case ast.Enum:
		return "ENUM"
	case ast.InputObject:
		return "INPUT_OBJECT"
	default:
		return "OBJECT"
	}
}

func argumentValue(field *ast.Field, name string, variables map[string]any) any {
	for _, arg := range field.Arguments {
		if arg.Name == name {
			return resolveValue(arg.Value, variables)
		}
	}
	return nil
}
