package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/campaign-core/internal/domain/schema"
)

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
	}

	cmd.AddCommand(newUsersCreateCmd())
	cmd.AddCommand(newUsersDeleteCmd())

	return cmd
}

func newUsersCreateCmd() *cobra.Command {
	var pw string

	cmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				if err := requirePersistentStore(d); err != nil {
					return err
				}
				user, token, err := d.Auth.Register(ctx, schema.Credentials{Username: args[0], Password: pw})
				if err != nil {
					return fmt.Errorf("creating user: %w", err)
				}
				// The CLI has no use for the session Register opens.
				if err := d.Auth.Logout(ctx, token); err != nil {
					return err
				}
				fmt.Printf("Created user %s (id %d)\n", user.Username, user.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&pw, "password", "p", "", "Password (required)")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newUsersDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <username>",
		Short: "Delete an account with all its journals and entities",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return fmt.Errorf("refusing to delete %q without --force", args[0])
			}
			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				if err := requirePersistentStore(d); err != nil {
					return err
				}
				user, err := findUser(ctx, d.Store, args[0])
				if err != nil {
					return err
				}
				if err := d.Auth.DeleteAccount(ctx, user.ID); err != nil {
					return err
				}
				fmt.Printf("Deleted user %s\n", user.Username)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Confirm deletion")

	return cmd
}
