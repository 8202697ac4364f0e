package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	statestore "github.com/goliatone/go-statestore"
)

func keyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key <store> [instance]",
		Short: "Print the cache key for a store",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), cacheKey(args))
			return err
		},
	}
	return cmd
}

// cacheKey derives the key from <store> [instance] arguments.
func cacheKey(args []string) string {
	instance := ""
	if len(args) > 1 {
		instance = args[1]
	}
	return statestore.CacheKey(args[0], instance)
}
