package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"skillcred/backend/cache"
	"skillcred/backend/catalog"
)

var errInProcessCache = errors.New("REDIS_URL is not set, so each server keeps its own in-process catalog cache; there is no shared cache to flush")

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the catalog cache",
}

var cacheFlushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Drop every cached test listing and test definition",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := flushCatalog(cmd.Context(), rt.store, rt.catalog); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "catalog cache flushed")
		return nil
	},
}

// flushCatalog drops the shared catalog entries. An in-process store only
// lives as long as this command, so flushing it would change nothing a
// server reads.
func flushCatalog(ctx context.Context, store cache.Store, cat *catalog.Catalog) error {
	if _, ok := store.(*cache.MemoryStore); ok {
		return errInProcessCache
	}
	return cat.Flush(ctx)
}

func init() {
	cacheCmd.AddCommand(cacheFlushCmd)
}
