package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iliyamo/insurance-lead-desk/internal/model"
	"github.com/iliyamo/insurance-lead-desk/internal/repository"
)

func makeAdminCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "make-admin <email>",
		Short: "Give the profile with this email the admin role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			u, err := a.users.FindByEmail(ctx, args[0])
			if errors.Is(err, repository.ErrNotFound) {
				cmd.Println("User not found!")
				return nil
			}
			if err != nil {
				return err
			}
			if err := a.users.SetRole(ctx, u.ID, model.RoleAdmin); err != nil {
				return err
			}
			cmd.Printf("Successfully made %s an admin!\n", u.Email)
			return nil
		},
	}
}

func promoteAllCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "promote-all-admins",
		Short: "Give every profile the admin role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			users, err := a.users.All(ctx)
			if err != nil {
				return err
			}
			if len(users) == 0 {
				cmd.Println("No users found.")
				return nil
			}
			for _, u := range users {
				if err := a.users.SetRole(ctx, u.ID, model.RoleAdmin); err != nil {
					return fmt.Errorf("promote %s: %w", u.Email, err)
				}
				cmd.Printf("Promoted %s (%s)\n", u.Email, u.ID)
			}
			cmd.Printf("Promoted %d users to admin.\n", len(users))
			return nil
		},
	}
}
