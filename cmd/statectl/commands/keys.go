package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-statestore/pkg/cache"
)

func keysCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "keys",
		Short:       "List stored cache keys",
		Args:        cobra.NoArgs,
		Annotations: usesBackend(),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := cache.Keys(cmd.Context(), a.backend)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, key := range keys {
				if _, err := fmt.Fprintln(out, key); err != nil {
					return err
				}
			}
			return nil
		},
	}
	return cmd
}
