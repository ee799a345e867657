/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/sendico/apiserver/config"
	"github.com/sendico/apiserver/internal/db"
	"github.com/sendico/apiserver/internal/services"
	"github.com/sendico/apiserver/internal/store"
	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Administer user accounts",
}

var usersPromoteCmd = &cobra.Command{
	Use:   "promote <username>",
	Short: "Grant (or with --revoke remove) the admin role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		revoke, err := cmd.Flags().GetBool("revoke")
		if err != nil {
			return err
		}

		cfg := config.LoadConfig()
		conn, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer conn.Close()

		users := services.NewUserService(store.NewUserRepository(conn), nil, cfg.Auth.BcryptCost, nil, nil)
		user, err := users.Promote(cmd.Context(), args[0], !revoke)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s admin=%t\n", user.Username, user.IsAdmin)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersPromoteCmd)

	usersPromoteCmd.Flags().Bool("revoke", false, "remove the admin role instead of granting it")
}
