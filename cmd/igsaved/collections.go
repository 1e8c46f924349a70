package main

import (
	"fmt"

	"github.com/spf13/cobra"

	apperrors "igsaved/pkg/errors"
	"igsaved/pkg/lister"
	"igsaved/pkg/ui"
)

// collectionsCmd lists the saved collections of the account
var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "List your saved collections",
	Long: `List the collections of the logged-in account with their IDs.

Pass an ID to 'igsaved export --collection' to export a single collection.`,
	Args: cobra.NoArgs,
	RunE: runCollections,
}

func init() {
	rootCmd.AddCommand(collectionsCmd)
}

func runCollections(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, log, out := current.cfg, current.log, current.out

	session, err := resolveSession(cfg, log, nil, false)
	if err != nil {
		return err
	}

	client := newClient(cfg, log)
	user, err := client.Login(ctx, session)
	if err != nil {
		return apperrors.Auth("login failed", err)
	}

	collections, err := lister.New(client, log).ListCollections(ctx)
	if err != nil {
		return err
	}

	ui.PrintInfo(out, "Account", "@"+user.Username)
	if len(collections) == 0 {
		ui.PrintWarning(out, "No collections found. 'igsaved export' downloads all saved posts.")
		return nil
	}

	fmt.Fprintf(out, "\n%-22s %7s  %s\n", "ID", "POSTS", "NAME")
	for _, c := range collections {
		fmt.Fprintf(out, "%-22s %7d  %s\n", c.ID, c.Count, c.Name)
	}
	return nil
}
