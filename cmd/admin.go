package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/eerojala/My-video-game-collection/auth"
	"github.com/eerojala/My-video-game-collection/db"
	"github.com/eerojala/My-video-game-collection/models"
	"github.com/eerojala/My-video-game-collection/store"
	"github.com/eerojala/My-video-game-collection/utils"
	"github.com/spf13/cobra"
	"gorm.io/datatypes"
)

var (
	adminUsername string
	adminPassword string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin accounts",
}

// Signup always creates Members, so admins are made here.
var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin account, or promote an existing user",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		conn, err := db.OpenAndMigrate(cfg)
		if err != nil {
			return err
		}
		defer db.Close(conn)

		user, err := createAdmin(cmd.Context(), store.New(conn), adminUsername, adminPassword)
		if err != nil {
			return err
		}
		log.WithField("user_id", user.ID).Infof("Admin %s ready", user.Username)
		return nil
	},
}

func init() {
	adminCreateCmd.Flags().StringVar(&adminUsername, "username", "", "Admin username")
	adminCreateCmd.Flags().StringVar(&adminPassword, "password", "", "Admin password")
	_ = adminCreateCmd.MarkFlagRequired("username")
	_ = adminCreateCmd.MarkFlagRequired("password")
	adminCmd.AddCommand(adminCreateCmd)
}

// createAdmin applies the signup rules to the credentials. An existing user
// is promoted and keeps their password.
func createAdmin(ctx context.Context, s *store.Store, username, password string) (*models.User, error) {
	if violations := utils.Validate(models.UserInput{Username: username, Password: password}); len(violations) > 0 {
		return nil, fmt.Errorf("invalid admin credentials: %s %s", violations[0].Field, violations[0].Reason)
	}

	existing, err := s.Users.FindByUsername(ctx, username)
	switch {
	case err == nil:
		return s.Users.Update(ctx, existing.ID, store.Fields{"role": models.RoleAdmin})
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		OwnedGames:   datatypes.JSONSlice[string]{},
	}
	if err := s.Users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}
	return user, nil
}
