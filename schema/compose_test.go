package schema_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/n9te9/go-graphql-devserver/schema"
)

const usersSDL = `
type User {
	id: ID!
	name: String!
}

type Query {
	me: User
	user(id: ID!): User
}`

const postsSDL = `
type Post {
	id: ID!
	title: String!
	author: User
}

extend type Query {
	posts: [Post!]!
}`

func TestCompose_MergesSources(t *testing.T) {
	s, err := schema.Compose([]schema.DataSource{
		{Name: "users", SDL: usersSDL},
		{Name: "posts", SDL: postsSDL},
	})
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	wantQueries := []string{"me", "posts", "user"}
	if diff := cmp.Diff(wantQueries, s.Queries()); diff != "" {
		t.Errorf("query fields mismatch (-want +got):\n%s", diff)
	}

	if s.Type("User") == nil {
		t.Error("expected User type from users source")
	}
	if s.Type("Post") == nil {
		t.Error("expected Post type from posts source")
	}
}

func TestCompose_EmptySources(t *testing.T) {
	_, err := schema.Compose(nil)
	if err == nil {
		t.Fatal("expected error for empty source list")
	}
}

func TestCompose_InvalidSDL(t *testing.T) {
	_, err := schema.Compose([]schema.DataSource{
		{Name: "broken", SDL: "type Query { oops "},
	})
	if err == nil {
		t.Fatal("expected error for invalid SDL")
	}
}

func TestCompose_NoQueryType(t *testing.T) {
	_, err := schema.Compose([]schema.DataSource{
		{Name: "typesonly", SDL: "type User { id: ID! }"},
	})
	if err == nil {
		t.Fatal("expected error for schema without query fields")
	}
}

func TestCompose_ResolverCollisionLastWins(t *testing.T) {
	first := func(ctx context.Context, args map[string]any) (any, error) { return "first", nil }
	second := func(ctx context.Context, args map[string]any) (any, error) { return "second", nil }

	s, err := schema.Compose([]schema.DataSource{
		{Name: "a", SDL: "type Query { hello: String }", Resolvers: schema.ResolverMap{"Query.hello": first}},
		{Name: "b", SDL: "extend type Query { world: String }", Resolvers: schema.ResolverMap{"Query.hello": second}},
	})
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	got, err := s.Resolvers()["Query.hello"](context.Background(), nil)
	if err != nil {
		t.Fatalf("resolver failed: %v", err)
	}
	if got != "second" {
		t.Errorf("expected later source to win, got %v", got)
	}
	if owner := s.Owner("Query.hello"); owner != "b" {
		t.Errorf("expected owner b, got %q", owner)
	}
}

func TestBuildContext_LastWriteWins(t *testing.T) {
	type usersModel struct{ name string }

	got := schema.BuildContext([]schema.DataSource{
		{Name: "users", ContextKey: "Users", Model: usersModel{name: "a"}},
		{Name: "nokey", Model: usersModel{name: "ignored"}},
		{Name: "users2", ContextKey: "Users", Model: usersModel{name: "b"}},
		{Name: "posts", ContextKey: "Posts", Model: "posts-model"},
	})

	want := map[string]any{
		"Users": usersModel{name: "b"},
		"Posts": "posts-model",
	}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(usersModel{})); diff != "" {
		t.Errorf("context map mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildContext_Empty(t *testing.T) {
	got := schema.BuildContext(nil)
	if len(got) != 0 {
		t.Errorf("expected empty context map, got %v", got)
	}
}
