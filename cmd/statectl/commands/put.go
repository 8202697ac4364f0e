package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-statestore/internal/snapshot"
)

func putCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "put <store> [instance] <json>",
		Short:       "Write a JSON object snapshot",
		Args:        cobra.RangeArgs(2, 3),
		Annotations: usesBackend(),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := args[len(args)-1]
			key := cacheKey(args[:len(args)-1])

			state, err := snapshot.DecodeObject(body)
			if err != nil {
				return err
			}
			payload, err := snapshot.Encode(state)
			if err != nil {
				return err
			}
			if err := a.backend.Set(cmd.Context(), key, payload); err != nil {
				return err
			}
			a.logger.Info("snapshot written", "key", key, "bytes", len(payload))
			_, err = fmt.Fprintln(cmd.OutOrStdout(), key)
			return err
		},
	}
	return cmd
}
