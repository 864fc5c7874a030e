// Command vaultindex is a small demonstration CLI exercising the full
// seal/query/unseal path against the reference bbolt-backed driver and
// local key service. It is a thin wrapper, not a production tool: the
// library's entry points are pkg/vault, pkg/keysvc, and pkg/ddbstore.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

var (
	dbDir    string
	password string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "vaultindex",
	Short: "vaultindex - a searchable-encryption demonstration CLI",
	Long: `vaultindex seals, queries, and unseals a single demonstration
record type ("contact": a partition key indexed for equality, a
protected name field indexed for prefix search, and a plaintext tag)
against a
bbolt-backed reference driver and an in-process key service.

This is a demo front end over pkg/vault, pkg/keysvc, and pkg/ddbstore -
not a production key-management or storage layer.`,
	Version: Version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbDir, "db", "./vaultindex-data", "data directory for the reference bbolt store")
	rootCmd.PersistentFlags().StringVar(&password, "password", "vaultindex-demo-password", "password the local key service derives its keys from")

	rootCmd.SetVersionTemplate(fmt.Sprintf("vaultindex version %s\nCommit: %s\n", Version, Commit))
}
