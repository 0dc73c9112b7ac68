/*
Package main is the entry point for the describo CLI.

describo is a storefront search service: shoppers describe a product in their
own words and describo finds it, while a behavioral trust score replaces the
checkout CAPTCHA for visitors who browse like humans.

Usage:
  describo [command]

Available Commands:
  serve       Run the HTTP API
  mcp         Run the MCP server (stdio transport)
  search      Search the catalog from the terminal
  catalog     Inspect and validate product catalogs
  bench       Measure search relevance against known queries
  stats       Show search analytics
  init        Write a default config file
  version     Show version information

Examples:
  # Start the API on 127.0.0.1:8080
  describo serve

  # Try a query
  describo search foldable thing people sleep on during camping
*/
package main

import (
	"fmt"
	"os"

	"github.com/khanglvm/describo/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
