package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MJE43/swipematch/internal/engine/jsref"
)

func (a *app) verifyCmd() *cobra.Command {
	var (
		seed, from, to int64
		minID, maxID   int64
	)
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Compare the Go sequence against the JavaScript formula over a cursor range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if to < from {
				return fmt.Errorf("--to must not be below --from")
			}
			ev, err := jsref.New()
			if err != nil {
				return err
			}
			var mismatches []jsref.Report
			for c := from; c <= to; c++ {
				r, err := ev.Verify(seed, c, minID, maxID)
				if err != nil {
					return err
				}
				if !r.Match {
					mismatches = append(mismatches, r)
				}
			}
			a.logger.Debug("verify finished",
				zap.Int64("seed", seed),
				zap.Int64("checked", to-from+1),
				zap.Int("mismatches", len(mismatches)),
			)
			if len(mismatches) > 0 {
				if err := printJSON(cmd.OutOrStdout(), mismatches); err != nil {
					return err
				}
				return fmt.Errorf("%d of %d cursors differ", len(mismatches), to-from+1)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d cursors match\n", to-from+1)
			return nil
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 0, "sequence seed")
	cmd.Flags().Int64Var(&from, "from", 0, "first cursor")
	cmd.Flags().Int64Var(&to, "to", 1000, "last cursor (inclusive)")
	cmd.Flags().Int64Var(&minID, "min", 1, "smallest identifier (inclusive)")
	cmd.Flags().Int64Var(&maxID, "max", 1019, "upper identifier bound (exclusive)")
	_ = cmd.MarkFlagRequired("seed")
	return cmd
}
