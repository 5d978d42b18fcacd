package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MJE43/swipematch/internal/engine"
)

type sequenceFlags struct {
	seed   int64
	cursor int64
	min    int64
	max    int64
	mode   string
	count  int
}

func (f *sequenceFlags) register(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "sequence seed")
	cmd.Flags().Int64Var(&f.cursor, "cursor", 1, "cursor position")
	cmd.Flags().Int64Var(&f.min, "min", 1, "smallest identifier (inclusive)")
	cmd.Flags().Int64Var(&f.max, "max", 1019, "upper identifier bound (exclusive)")
	cmd.Flags().StringVar(&f.mode, "mode", "hash", "hash or shuffle")
	_ = cmd.MarkFlagRequired("seed")
}

func (f *sequenceFlags) value(cursor int64) (int64, error) {
	mode, err := engine.ParseMode(f.mode)
	if err != nil {
		return 0, err
	}
	return mode.Value(f.seed, cursor, engine.Bounds{Min: f.min, Max: f.max})
}

func (a *app) sequenceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sequence",
		Short: "Evaluate the seeded identifier sequence",
	}

	var valueFlags sequenceFlags
	value := &cobra.Command{
		Use:   "value",
		Short: "Print the identifier at a cursor, or --count identifiers from it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n := max(valueFlags.count, 1)
			for i := range n {
				v, err := valueFlags.value(valueFlags.cursor + int64(i))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%d\n", valueFlags.cursor+int64(i), v)
			}
			return nil
		},
	}
	valueFlags.register(value)
	value.Flags().IntVar(&valueFlags.count, "count", 1, "number of consecutive cursors")

	var previewFlags sequenceFlags
	preview := &cobra.Command{
		Use:   "preview",
		Short: "Print the identifier that follows the cursor without moving it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := previewFlags.value(previewFlags.cursor + 1)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
	previewFlags.register(preview)

	advance := &cobra.Command{
		Use:   "advance <profile-id>",
		Short: "Advance a stored profile's cursor and print its new state",
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
			mode, err := engine.ParseMode(p.Mode)
			if err != nil {
				return err
			}
			seq, err := engine.NewSequence(p.ID.String(),
				engine.State{Seed: p.Seed, Cursor: p.Cursor},
				engine.Bounds{Min: p.RangeMin, Max: p.RangeMax},
				mode, db)
			if err != nil {
				return err
			}
			current, err := seq.Advance(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]int64{
				"cursor":  seq.State().Cursor,
				"current": current,
				"next":    seq.PreviewNext(),
			})
		},
	}

	cmd.AddCommand(value, preview, advance)
	return cmd
}
