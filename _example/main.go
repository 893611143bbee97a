package main

import (
	"context"
	"log"
	"net/http"

	"github.com/n9te9/go-graphql-devserver/middleware"
	"github.com/n9te9/go-graphql-devserver/schema"
)

var usersSDL = `type User {
  id: ID!
  name: String!
}

type Query {
  me: User
  user(id: ID!): User
}`

var postsSDL = `type Post {
  id: ID!
  title: String!
  author: User
}

extend type Query {
  posts: [Post!]!
}`

type userStore struct {
	users map[string]string
}

func main() {
	store := &userStore{users: map[string]string{"1": "Ada", "2": "Grace"}}

	sources := []schema.DataSource{
		{
			Name:       "users",
			SDL:        usersSDL,
			ContextKey: "Users",
			Model:      store,
			Resolvers: schema.ResolverMap{
				"Query.user": func(ctx context.Context, args map[string]any) (any, error) {
					s, _ := middleware.Model(ctx, "Users")
					id := args["id"].(string)
					return map[string]any{"id": id, "name": s.(*userStore).users[id]}, nil
				},
			},
		},
		{
			Name: "posts",
			SDL:  postsSDL,
			// No resolvers: mock mode fills posts with placeholders.
		},
	}

	m, err := middleware.New(middleware.Options{
		Sources:           sources,
		Mock:              true,
		PreserveResolvers: true,
		Pretty:            true,
	})
	if err != nil {
		log.Fatal(err)
	}

	http.Handle("/graphql", m)
	log.Println("listening on :8080, try: curl -XPOST localhost:8080/graphql -d '{\"query\":\"{ user(id: \\\"1\\\") { name } posts { title } }\"}'")
	log.Fatal(http.ListenAndServe(":8080", nil))
}
