package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"velocity/internal/auth"
	"velocity/internal/model"
	"velocity/internal/storage"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage API users",
}

var (
	userEmail    string
	userName     string
	userRole     string
	userPassword string
)

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user that can log in to the API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !auth.ValidRole(userRole) {
			return fmt.Errorf("role must be one of %s", strings.Join(auth.Roles, ", "))
		}
		if len(userPassword) < 8 {
			return errors.New("password must be at least 8 characters")
		}
		hash, err := auth.HashPassword(userPassword)
		if err != nil {
			return err
		}

		db, err := openStorage()
		if err != nil {
			return err
		}
		defer db.Close()

		u, err := db.CreateUser(cmd.Context(), model.User{
			Email:        userEmail,
			FullName:     userName,
			Role:         userRole,
			PasswordHash: hash,
		})
		if errors.Is(err, storage.ErrConflict) {
			return fmt.Errorf("a user with email %s already exists", userEmail)
		}
		if err != nil {
			return err
		}
		fmt.Printf("Created user %d (%s, %s)\n", u.ID, u.Email, u.Role)
		return nil
	},
}

func init() {
	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "login email")
	userCreateCmd.Flags().StringVar(&userName, "name", "", "full name")
	userCreateCmd.Flags().StringVar(&userRole, "role", auth.RoleContractor, "role: admin, manager, finance or contractor")
	userCreateCmd.Flags().StringVar(&userPassword, "password", "", "initial password")
	_ = userCreateCmd.MarkFlagRequired("email")
	_ = userCreateCmd.MarkFlagRequired("password")
	userCmd.AddCommand(userCreateCmd)
}
