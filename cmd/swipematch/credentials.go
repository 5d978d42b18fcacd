package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MJE43/swipematch/internal/credentials"
)

func (a *app) credentialsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage the cat API key in the OS keyring",
	}
	store := func() *credentials.Store {
		return credentials.NewStore(a.cfg.Keyring.Service, a.cfg.Keyring.FallbackPath)
	}

	set := &cobra.Command{
		Use:   "set <api-key>",
		Short: "Store the cat API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.TrimSpace(args[0])
			if key == "" {
				return errors.New("api key must not be empty")
			}
			if err := store().SetCatAPIKey(key); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "stored")
			return nil
		},
	}

	var reveal bool
	get := &cobra.Command{
		Use:   "get",
		Short: "Print the stored cat API key, masked unless --reveal is set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := store().GetCatAPIKey()
			if errors.Is(err, credentials.ErrNotFound) {
				return errors.New("no cat api key stored")
			}
			if err != nil {
				return err
			}
			if !reveal {
				key = mask(key)
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}
	get.Flags().BoolVar(&reveal, "reveal", false, "print the full key")

	del := &cobra.Command{
		Use:   "delete",
		Short: "Remove the stored cat API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := store().Delete(credentials.CatAPIKey); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "deleted")
			return nil
		},
	}

	cmd.AddCommand(set, get, del)
	return cmd
}

// mask keeps the last four characters.
func mask(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}
