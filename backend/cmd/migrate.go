package cmd

import (
	"github.com/spf13/cobra"

	"skillcred/backend/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the schema and row-level security policies",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := database.Migrate(rt.db); err != nil {
			return err
		}
		rt.logger.Println("schema migrated")
		return nil
	},
}
