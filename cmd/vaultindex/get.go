package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cuemby/vaultindex/pkg/ddbstore"
	"github.com/cuemby/vaultindex/pkg/keysvc"
	"github.com/cuemby/vaultindex/pkg/vault"
)

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Fetch a contact by primary key and unseal it",
	RunE:  runGet,
}

func init() {
	getCmd.Flags().String("pk", "", "partition key")
	getCmd.Flags().String("sk", "", "sort key")
	_ = getCmd.MarkFlagRequired("pk")
	_ = getCmd.MarkFlagRequired("sk")

	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	pk, _ := cmd.Flags().GetString("pk")
	sk, _ := cmd.Flags().GetString("sk")

	ks, err := keysvc.NewLocalFromPassword(password)
	if err != nil {
		return fmt.Errorf("building key service: %w", err)
	}

	store, err := ddbstore.Open(dbDir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	ctx := context.Background()
	row, ok, err := store.GetItem(ctx, pk, sk)
	if err != nil {
		return fmt.Errorf("fetching row: %w", err)
	}
	if !ok {
		fmt.Println("not found")
		return nil
	}

	unsealed, err := vault.Unseal(ctx, ks, contactTypeName, []string{"name"}, row)
	if err != nil {
		return fmt.Errorf("unsealing row: %w", err)
	}

	nameVal, _ := unsealed.GetProtected("name")
	name, _ := nameVal.Utf8Str()
	tag, _ := unsealed.Unprotected()["tag"].AsString()
	fmt.Printf("pk=%s sk=%s name=%s tag=%s\n", pk, sk, name, tag)
	return nil
}
