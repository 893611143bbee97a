package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/n9te9/go-graphql-devserver/server"
)

var configPath string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of the GraphQL devserver",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("graphql-devserver v0.1.0")
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Scaffold a devserver configuration and an example data source",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Init()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the GraphQL devserver",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Run(configPath)
	},
}

func main() {
	serveCmd.Flags().StringVarP(&configPath, "config", "c", "devserver.yaml", "path to the configuration file")

	rootCmd := cobra.Command{
		Use:   "devserver",
		Short: "Compose GraphQL data sources into one mockable schema and serve it",
	}
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
