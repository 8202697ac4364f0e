package commands

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-statestore/pkg/cache"
)

func deleteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "delete <store> [instance]",
		Short:       "Remove a stored snapshot",
		Args:        cobra.RangeArgs(1, 2),
		Annotations: usesBackend(),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := cacheKey(args)
			if err := cache.Delete(cmd.Context(), a.backend, key); err != nil {
				return err
			}
			a.logger.Info("snapshot deleted", "key", key)
			return nil
		},
	}
	return cmd
}
