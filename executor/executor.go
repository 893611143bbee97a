// Package executor evaluates GraphQL operations against a composed schema
// and its resolver map. Resolution is dynamic: root fields call into
// registered resolvers, nested fields are projected from the values those
// resolvers return, with per-field resolvers consulted first.
package executor

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/validator"

	"github.com/n9te9/go-graphql-devserver/schema"
)

// Request is an incoming GraphQL request.
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// Response is a GraphQL response in wire shape.
type Response struct {
	Data   any      `json:"data,omitempty"`
	Errors []*Error `json:"errors,omitempty"`
}

// Error is a GraphQL error in wire shape.
type Error struct {
	Message    string         `json:"message"`
	Locations  []Location     `json:"locations,omitempty"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Error implements the error interface, so a resolver can return an *Error
// directly to control the reported extensions.
func (e *Error) Error() string {
	return e.Message
}

// Location points at the query position an error refers to.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Executor executes operations against a composed schema.
type Executor struct {
	schema        *schema.Schema
	resolvers     schema.ResolverMap
	introspection bool
}

// Option configures an Executor.
type Option func(*Executor)

// WithIntrospection toggles support for __schema and __type queries.
func WithIntrospection(enabled bool) Option {
	return func(e *Executor) {
		e.introspection = enabled
	}
}

// WithResolvers replaces the schema's merged resolver map, e.g. with a
// mock-decorated one.
func WithResolvers(resolvers schema.ResolverMap) Option {
	return func(e *Executor) {
		e.resolvers = resolvers
	}
}

// New creates an executor over the given schema. By default it uses the
// schema's merged resolvers and allows introspection.
func New(s *schema.Schema, opts ...Option) *Executor {
	e := &Executor{
		schema:        s,
		resolvers:     s.Resolvers(),
		introspection: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs one GraphQL request and always returns a response, never an
// error: failures are reported in the response's errors list.
func (e *Executor) Execute(ctx context.Context, req *Request) *Response {
	if req == nil || req.Query == "" {
		return errorResponse("query is required")
	}

	doc, err := e.parseQuery(req.Query)
	if err != nil {
		return &Response{Errors: []*Error{err}}
	}

	op := e.selectOperation(doc, req.OperationName)
	if op == nil {
		if req.OperationName != "" {
			return errorResponse(fmt.Sprintf("operation %q not found", req.OperationName))
		}
		return errorResponse("no operation found in query")
	}

	var root *ast.Definition
	switch op.Operation {
	case ast.Query:
		root = e.schema.AST().Query
	case ast.Mutation:
		root = e.schema.AST().Mutation
		if root == nil {
			return errorResponse("schema does not support mutations")
		}
	default:
		return errorResponse(fmt.Sprintf("unsupported operation type %q", op.Operation))
	}

	data, errs := e.executeSelectionSet(ctx, doc, root, nil, op.SelectionSet, req.Variables, nil)
	return &Response{Data: data, Errors: errs}
}

func errorResponse(message string) *Response {
	return &Response{Errors: []*Error{{Message: message}}}
}

// parseQuery parses and validates a query against the schema.
func (e *Executor) parseQuery(query string) (*ast.QueryDocument, *Error) {
	doc, parseErrs := gqlparser.LoadQuery(e.schema.AST(), query)
	if len(parseErrs) > 0 {
		first := parseErrs[0]
		gqlErr := &Error{Message: first.Message}
		for _, loc := range first.Locations {
			gqlErr.Locations = append(gqlErr.Locations, Location{Line: loc.Line, Column: loc.Column})
		}
		return nil, gqlErr
	}

	if errs := validator.Validate(e.schema.AST(), doc); len(errs) > 0 {
		return nil, &Error{Message: errs[0].Message}
	}

	return doc, nil
}

func (e *Executor) selectOperation(doc *ast.QueryDocument, name string) *ast.OperationDefinition {
	for _, op := range doc.Operations {
		if name == "" || op.Name == name {
			return op
		}
	}
	return nil
}

// executeSelectionSet resolves one level of selections against a parent
// value. parent is nil at the root, where resolution goes through the
// resolver map only. Introspection meta fields resolve here alongside data
// fields, so a query can mix both.
func (e *Executor) executeSelectionSet(ctx context.Context, doc *ast.QueryDocument, typeDef *ast.Definition, parent any, selections ast.SelectionSet, variables map[string]any, path []any) (map[string]any, []*Error) {
	result := make(map[string]any)
	var errs []*Error

	for _, field := range e.collectFields(doc, typeDef, selections) {
		alias := field.Alias
		if alias == "" {
			alias = field.Name
		}

		if field.Name == "__typename" {
			result[alias] = typeDef.Name
			continue
		}

		fieldPath := append(append([]any{}, path...), alias)

		// The validator only admits __schema and __type on the query root.
		if field.Name == "__schema" || field.Name == "__type" {
			if !e.introspection {
				errs = append(errs, &Error{Message: "introspection is disabled", Path: fieldPath})
				result[alias] = nil
				continue
			}
			result[alias] = e.introspectMetaField(doc, field, variables)
			continue
		}

		fieldDef := findFieldDef(typeDef, field.Name)
		if fieldDef == nil {
			// The validator rejects unknown fields; reaching this means the
			// parent type changed between validation and execution.
			continue
		}

		value, err := e.resolveField(ctx, typeDef, parent, field, fieldDef, variables)
		if err != nil {
			err.Path = fieldPath
			errs = append(errs, err)
			result[alias] = nil
			continue
		}

		completed, subErrs := e.completeValue(ctx, doc, fieldDef.Type, field.SelectionSet, value, variables, fieldPath)
		errs = append(errs, subErrs...)
		result[alias] = completed
	}

	return result, errs
}

// collectFields flattens fragment spreads and inline fragments whose type
// condition matches typeDef into a plain field list.
func (e *Executor) collectFields(doc *ast.QueryDocument, typeDef *ast.Definition, selections ast.SelectionSet) []*ast.Field {
	var fields []*ast.Field
	for _, sel := range selections {
		switch s := sel.(type) {
		case *ast.Field:
			fields = append(fields, s)
		case *ast.FragmentSpread:
			for _, frag := range doc.Fragments {
				if frag.Name == s.Name && e.fragmentApplies(typeDef, frag.TypeCondition) {
					fields = append(fields, e.collectFields(doc, typeDef, frag.SelectionSet)...)
					break
				}
			}
		case *ast.InlineFragment:
			if e.fragmentApplies(typeDef, s.TypeCondition) {
				fields = append(fields, e.collectFields(doc, typeDef, s.SelectionSet)...)
			}
		}
	}
	return fields
}

// fragmentApplies reports whether a fragment with the given type condition
// selects into typeDef.
func (e *Executor) fragmentApplies(typeDef *ast.Definition, condition string) bool {
	if condition == "" || condition == typeDef.Name {
		return true
	}
	for _, iface := range typeDef.Interfaces {
		if iface == condition {
			return true
		}
	}
	// Union membership: the condition names a union containing typeDef.
	if cond := e.schema.Type(condition); cond != nil && cond.Kind == ast.Union {
		for _, member := range cond.Types {
			if member == typeDef.Name {
				return true
			}
		}
	}
	return false
}

// resolveField produces the raw value for one field, consulting the resolver
// map first and falling back to a property of the parent value.
func (e *Executor) resolveField(ctx context.Context, typeDef *ast.Definition, parent any, field *ast.Field, fieldDef *ast.FieldDefinition, variables map[string]any) (any, *Error) {
	args := e.extractArguments(field, fieldDef, variables)

	path := typeDef.Name + "." + field.Name
	if resolver, ok := e.resolvers[path]; ok {
		value, err := resolver(ctx, args)
		if err != nil {
			return nil, toGraphQLError(err)
		}
		return value, nil
	}

	if parent == nil {
		// Root field without a resolver resolves to null.
		return nil, nil
	}

	return propertyOf(parent, field.Name), nil
}

func toGraphQLError(err error) *Error {
	var gqlErr *Error
	if e, ok := err.(*Error); ok {
		gqlErr = e
	} else {
		gqlErr = &Error{Message: err.Error()}
	}
	return gqlErr
}

// completeValue projects a resolved value onto the field's selection set
// following the field type.
func (e *Executor) completeValue(ctx context.Context, doc *ast.QueryDocument, typ *ast.Type, selections ast.SelectionSet, value any, variables map[string]any, path []any) (any, []*Error) {
	if value == nil {
		return nil, nil
	}

	if typ.Elem != nil {
		return e.completeList(ctx, doc, typ.Elem, selections, value, variables, path)
	}

	def := e.schema.Type(typ.Name())
	if def == nil || def.Kind == ast.Scalar || def.Kind == ast.Enum {
		return value, nil
	}

	concrete := e.concreteType(def, value)
	if concrete == nil {
		return nil, []*Error{{Message: fmt.Sprintf("cannot determine concrete type for abstract type %q", def.Name), Path: path}}
	}

	return e.executeSelectionSet(ctx, doc, concrete, value, selections, variables, path)
}

func (e *Executor) completeList(ctx context.Context, doc *ast.QueryDocument, elem *ast.Type, selections ast.SelectionSet, value any, variables map[string]any, path []any) (any, []*Error) {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		// A lone value for a list field is completed as a one-element list.
		completed, errs := e.completeValue(ctx, doc, elem, selections, value, variables, append(append([]any{}, path...), 0))
		return []any{completed}, errs
	}

	out := make([]any, rv.Len())
	var errs []*Error
	for i := 0; i < rv.Len(); i++ {
		itemPath := append(append([]any{}, path...), i)
		completed, itemErrs := e.completeValue(ctx, doc, elem, selections, rv.Index(i).Interface(), variables, itemPath)
		errs = append(errs, itemErrs...)
		out[i] = completed
	}
	return out, errs
}

// concreteType determines the object type a value belongs to. Object types
// resolve to themselves; abstract types consult the value's __typename and
// fall back to the first possible type.
func (e *Executor) concreteType(def *ast.Definition, value any) *ast.Definition {
	if def.Kind == ast.Object {
		return def
	}

	if m, ok := value.(map[string]any); ok {
		if name, ok := m["__typename"].(string); ok {
			if resolved := e.schema.Type(name); resolved != nil && resolved.Kind == ast.Object {
				return resolved
			}
		}
	}

	var candidates []string
	switch def.Kind {
	case ast.Union:
		candidates = def.Types
	case ast.Interface:
		candidates = e.schema.Implementors(def.Name)
	}
	if len(candidates) > 0 {
		return e.schema.Type(candidates[0])
	}
	return nil
}

// extractArguments evaluates the field's arguments, substituting variables
// and applying declared defaults for omitted arguments.
func (e *Executor) extractArguments(field *ast.Field, fieldDef *ast.FieldDefinition, variables map[string]any) map[string]any {
	args := make(map[string]any)
	for _, argDef := range fieldDef.Arguments {
		if argDef.DefaultValue != nil {
			args[argDef.Name] = resolveValue(argDef.DefaultValue, variables)
		}
	}
	for _, arg := range field.Arguments {
		args[arg.Name] = resolveValue(arg.Value, variables)
	}
	return args
}

// resolveValue converts an AST value into a Go value.
func resolveValue(value *ast.Value, variables map[string]any) any {
	if value == nil {
		return nil
	}

	switch value.Kind {
	case ast.Variable:
		if variables != nil {
			return variables[value.Raw]
		}
		return nil
	case ast.IntValue:
		n, _ := strconv.ParseInt(value.Raw, 10, 64)
		return n
	case ast.FloatValue:
		f, _ := strconv.ParseFloat(value.Raw, 64)
		return f
	case ast.StringValue, ast.BlockValue, ast.EnumValue:
		return value.Raw
	case ast.BooleanValue:
		return value.Raw == "true"
	case ast.NullValue:
		return nil
	case ast.ListValue:
		var list []any
		for _, child := range value.Children {
			list = append(list, resolveValue(child.Value, variables))
		}
		return list
	case ast.ObjectValue:
		obj := make(map[string]any)
		for _, child := range value.Children {
			obj[child.Name] = resolveValue(child.Value, variables)
		}
		return obj
	default:
		return value.Raw
	}
}

func findFieldDef(typeDef *ast.Definition, name string) *ast.FieldDefinition {
	for _, f := range typeDef.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// propertyOf reads a field value from a parent value: map lookups for maps,
// json-tag-aware reflection for structs.
func propertyOf(parent any, name string) any {
	switch p := parent.(type) {
	case map[string]any:
		return p[name]
	}

	rv := reflect.ValueOf(parent)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("json")
		if comma := strings.IndexByte(tag, ','); comma >= 0 {
			tag = tag[:comma]
		}
		if tag == name || (tag == "" && strings.EqualFold(f.Name, name)) {
			return rv.Field(i).Interface()
		}
	}
	return nil
}
