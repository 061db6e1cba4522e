package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/errycx/pokedex-api/internal/server"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pokedex",
	Short: "Pokedex catalog API",
	Long:  "Pokedex is a REST catalog of Pokemon backed by MongoDB and enriched from PokeAPI.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start()
	},
}

// pokedex serve — start the HTTP server (same as the bare command).
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start()
	},
}

// pokedex seed — wipe and refill the catalog from PokeAPI.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Reseed the catalog with popular Pokemon from PokeAPI",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Seed()
	},
}

// pokedex routes — print all registered routes.
var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List all registered named routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		infos, err := server.Routes()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range infos {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(routesCmd)
}
