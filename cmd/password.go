package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/meetplan/internal/auth"
)

func newHashPasswordCmd() *cobra.Command {
	var password string

	c := &cobra.Command{
		Use:   "hash-password",
		Short: "Print a bcrypt hash for OPERATOR_PASSWORD_BCRYPT",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "export OPERATOR_PASSWORD_BCRYPT='%s'\n", h)
			return nil
		},
	}

	c.Flags().StringVar(&password, "password", "", "operator password")
	_ = c.MarkFlagRequired("password")
	return c
}
