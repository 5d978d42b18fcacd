package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MJE43/swipematch/internal/api"
	"github.com/MJE43/swipematch/internal/catalog"
	"github.com/MJE43/swipematch/internal/stats"
)

func (a *app) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <profile-id>",
		Short: "Print judgement statistics for a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid profile id: %w", err)
			}
			db, err := a.openDB(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			p, err := db.GetProfile(cmd.Context(), id)
			if err != nil {
				return err
			}
			records, err := db.AllJudgements(cmd.Context(), id)
			if err != nil {
				return err
			}
			resp := api.StatsResponse{
				ProfileID: p.ID.String(),
				Kind:      p.Kind,
				Summary:   stats.Summarize(records),
			}
			if p.Kind == catalog.KindPokemon {
				ts := stats.PokemonTypes(records)
				resp.Types = &ts
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
}
