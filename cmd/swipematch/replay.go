package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/MJE43/swipematch/internal/gesture"
)

func (a *app) replayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "replay <trace.json>",
		Short: "Replay a recorded gesture trace and print the outcome",
		Long: `Reads a JSON array of events such as
  [{"type":"start","x":100,"y":100},{"type":"move","x":-500,"y":100},{"type":"end"}]
and drives the gesture mapper through it with the configured constants.
Use "-" to read the trace from standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				raw []byte
				err error
			)
			if args[0] == "-" {
				raw, err = io.ReadAll(cmd.InOrStdin())
			} else {
				raw, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read trace: %w", err)
			}
			var events []gesture.Event
			if err := json.Unmarshal(raw, &events); err != nil {
				return fmt.Errorf("decode trace: %w", err)
			}
			res, err := gesture.Replay(a.cfg.Gesture, events)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}
