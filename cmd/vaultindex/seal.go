package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cuemby/vaultindex/internal/plaintext"
	"github.com/cuemby/vaultindex/pkg/ddbstore"
	"github.com/cuemby/vaultindex/pkg/keysvc"
	"github.com/cuemby/vaultindex/pkg/tableattr"
	"github.com/cuemby/vaultindex/pkg/vault"
)

const queryTermLength = 12

var sealCmd = &cobra.Command{
	Use:   "seal",
	Short: "Seal a contact record and write it to the store",
	RunE:  runSeal,
}

func init() {
	sealCmd.Flags().String("pk", "", "partition key (e.g. an email address)")
	sealCmd.Flags().String("sk", "", "sort key")
	sealCmd.Flags().String("name", "", "protected name field")
	sealCmd.Flags().String("tag", "", "plaintext tag field")
	_ = sealCmd.MarkFlagRequired("pk")
	_ = sealCmd.MarkFlagRequired("sk")
	_ = sealCmd.MarkFlagRequired("name")

	rootCmd.AddCommand(sealCmd)
}

func runSeal(cmd *cobra.Command, args []string) error {
	pk, _ := cmd.Flags().GetString("pk")
	sk, _ := cmd.Flags().GetString("sk")
	name, _ := cmd.Flags().GetString("name")
	tag, _ := cmd.Flags().GetString("tag")

	ks, err := keysvc.NewLocalFromPassword(password)
	if err != nil {
		return fmt.Errorf("building key service: %w", err)
	}

	store, err := ddbstore.Open(dbDir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	rec := &contact{pk: pk, sk: sk, name: name, tag: tag}
	sealer := vault.NewSealer(rec).AddProtected("name", plaintext.NewUtf8Str(name))
	if tag != "" {
		sealer = sealer.AddPlaintext("tag", tableattr.NewString(tag))
	}

	ctx := context.Background()
	pkParts, rows, err := sealer.Seal(ctx, ks, queryTermLength)
	if err != nil {
		return fmt.Errorf("sealing record: %w", err)
	}

	if err := store.PutItems(ctx, rows); err != nil {
		return fmt.Errorf("writing rows: %w", err)
	}

	fmt.Printf("sealed %d rows under pk=%s sk=%s\n", len(rows), pkParts.PK, pkParts.SK)
	return nil
}
