package server

import (
	"fmt"
	"os"
	"path/filepath"
)

const defaultConfig = `endpoint: /graphql
port: 8080
service_name: graphql-devserver

sources:
  - name: users
    schema_file: sources/users.graphql
    context_key: Users

dev_sources_dir: ./dev

mock:
  enable: true

logging:
  level: info
  format: text
`

const exampleSDL = `type User {
  id: ID!
  name: String!
  email: String
}

type Query {
  me: User
  user(id: ID!): User
}
`

// Init scaffolds a new devserver project in the current directory: a
// configuration file and one example data source. Existing files are left
// alone.
func Init() error {
	if err := writeIfAbsent("devserver.yaml", defaultConfig); err != nil {
		return err
	}
	if err := os.MkdirAll("sources", 0o755); err != nil {
		return fmt.Errorf("failed to create sources directory: %w", err)
	}
	return writeIfAbsent(filepath.Join("sources", "users.graphql"), exampleSDL)
}

func writeIfAbsent(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("%s already exists, skipping\n", path)
		return nil
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Printf("created %s\n", path)
	return nil
}
