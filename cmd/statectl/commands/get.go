package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	statestore "github.com/goliatone/go-statestore"
	"github.com/goliatone/go-statestore/internal/snapshot"
)

func getCmd(a *app) *cobra.Command {
	var fields bool
	cmd := &cobra.Command{
		Use:         "get <store> [instance]",
		Short:       "Print a stored snapshot",
		Args:        cobra.RangeArgs(1, 2),
		Annotations: usesBackend(),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := cacheKey(args)
			payload, ok, err := a.backend.Get(cmd.Context(), key)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no snapshot stored under %s", key)
			}
			state, err := snapshot.DecodeObject(payload)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			a.logger.Debug("snapshot loaded", "key", key, "bytes", len(payload))

			out := cmd.OutOrStdout()
			if fields {
				w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				for _, field := range statestore.DescribeState(state) {
					fmt.Fprintf(w, "%s\t%s\n", field.Path, field.Type)
				}
				return w.Flush()
			}
			pretty, err := json.MarshalIndent(state, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(out, string(pretty))
			return err
		},
	}
	cmd.Flags().BoolVar(&fields, "fields", false, "print field paths and types instead of values")
	return cmd
}
