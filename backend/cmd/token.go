package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"skillcred/backend/utils"
)

var tokenCmd = &cobra.Command{
	Use:   "token <userId>",
	Short: "Mint a bearer token for local testing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		token, err := utils.GenerateJWTToken(args[0], cfg)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}
