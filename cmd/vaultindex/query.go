package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cuemby/vaultindex/internal/index"
	"github.com/cuemby/vaultindex/internal/plaintext"
	"github.com/cuemby/vaultindex/pkg/ddbstore"
	"github.com/cuemby/vaultindex/pkg/keysvc"
	"github.com/cuemby/vaultindex/pkg/vault"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query contacts by name prefix or exact partition key and unseal the match",
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().String("name-prefix", "", "find a contact whose name starts with this value")
	queryCmd.Flags().String("name-eq", "", "find a contact whose partition key equals this value exactly")

	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	prefixVal, _ := cmd.Flags().GetString("name-prefix")
	eqVal, _ := cmd.Flags().GetString("name-eq")
	if prefixVal == "" && eqVal == "" {
		return fmt.Errorf("one of --name-prefix or --name-eq is required")
	}

	ks, err := keysvc.NewLocalFromPassword(password)
	if err != nil {
		return fmt.Errorf("building key service: %w", err)
	}

	store, err := ddbstore.Open(dbDir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	rec := &contact{}
	q := vault.NewQuery(rec)
	if eqVal != "" {
		// "name" alone only supports starts_with in this demo schema, and
		// the compound pk#name index needs a pk value alongside a name
		// prefix, so no index answers an exact match on name. Route eq
		// queries through the standalone exact index instead: pk itself.
		q = q.Where("pk", index.OpEq, plaintext.NewUtf8Str(eqVal))
	} else {
		q = q.Where("name", index.OpStartsWith, plaintext.NewUtf8Str(prefixVal))
	}

	ctx := context.Background()
	term, err := q.Term(ctx, ks, queryTermLength)
	if err != nil {
		return fmt.Errorf("composing query: %w", err)
	}

	rows, err := store.QueryByTerm(ctx, term)
	if err != nil {
		return fmt.Errorf("querying store: %w", err)
	}
	if len(rows) == 0 {
		fmt.Println("no match")
		return nil
	}

	unsealed, err := vault.UnsealAll(ctx, ks, contactTypeName, []string{"name"}, rows)
	if err != nil {
		return fmt.Errorf("unsealing result: %w", err)
	}

	for i, u := range unsealed {
		nameVal, _ := u.GetProtected("name")
		name, _ := nameVal.Utf8Str()
		tagAttr := u.Unprotected()["tag"]
		tag, _ := tagAttr.AsString()
		fmt.Printf("match %d: pk=%s name=%s tag=%s\n", i, rows[i].PK, name, tag)
	}
	return nil
}
