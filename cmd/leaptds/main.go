// Package main provides the leaptds command.
package main

import (
	"os"

	"github.com/leapstack-labs/leaptds/internal/cli"

	// SQL Server adapter registration.
	_ "github.com/leapstack-labs/leaptds/pkg/adapters/mssql"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
