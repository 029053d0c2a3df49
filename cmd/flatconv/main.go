// Package main provides the flatconv command: it converts fixed-width and
// delimited flat files into XML, JSON or YAML documents.
package main

import (
	"os"

	"github.com/leapstack-labs/flatconv/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
