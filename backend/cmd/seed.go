package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"skillcred/backend/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the reference skill and test catalog",
	Long:  "Upserts skills, tests and questions from the embedded catalog (or --file) and flushes the catalog cache.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			c   *seed.Catalog
			err error
		)
		if path, _ := cmd.Flags().GetString("file"); path != "" {
			data, readErr := os.ReadFile(path)
			if readErr != nil {
				return readErr
			}
			c, err = seed.Parse(data)
		} else {
			c, err = seed.Default()
		}
		if err != nil {
			return err
		}

		rt, err := bootstrap(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		stats, err := seed.Apply(cmd.Context(), rt.gateway, c)
		if err != nil {
			return err
		}
		switch err := flushCatalog(cmd.Context(), rt.store, rt.catalog); {
		case errors.Is(err, errInProcessCache):
			rt.logger.Println("catalog cache is in-process; running servers see the new catalog once their entries expire")
		case err != nil:
			rt.logger.Printf("flush catalog cache: %v", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d skills, %d tests, %d questions\n", stats.Skills, stats.Tests, stats.Questions)
		return nil
	},
}

func init() {
	seedCmd.Flags().String("file", "", "YAML catalog to load instead of the embedded one")
}
