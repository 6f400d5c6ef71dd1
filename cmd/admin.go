package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ray-remotestate/gspot/database"
	"github.com/ray-remotestate/gspot/database/dbhelper"
	"github.com/ray-remotestate/gspot/database/seed"
	"github.com/ray-remotestate/gspot/models"
	"github.com/ray-remotestate/gspot/utils"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := database.ConnectAndMigrate(cfg.DatabaseURL); err != nil {
				return err
			}
			defer database.ShutdownDatabase()
			logrus.Info("migration is successful")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load categories, menu items and payment methods from YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			data := seed.DefaultMenu
			if file != "" {
				if data, err = os.ReadFile(file); err != nil {
					return err
				}
			}
			f, err := database.ParseSeed(bytes.NewReader(data))
			if err != nil {
				return err
			}

			if err := database.ConnectAndMigrate(cfg.DatabaseURL); err != nil {
				return err
			}
			defer database.ShutdownDatabase()
			return database.Seed(cmd.Context(), dbhelper.New(database.GSpot), f)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "seed file (defaults to the bundled menu)")
	return cmd
}

func createAdminCmd() *cobra.Command {
	var name, email, password, role string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a dashboard user",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := models.Role(strings.ToLower(role))
			if !r.IsValid() {
				return fmt.Errorf("role must be %s or %s", models.RoleAdmin, models.RoleStaff)
			}
			if len(password) < 6 {
				return errors.New("password must be at least 6 characters")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := database.ConnectAndMigrate(cfg.DatabaseURL); err != nil {
				return err
			}
			defer database.ShutdownDatabase()
			return createAdmin(cmd.Context(), dbhelper.New(database.GSpot), name, email, password, r)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "login password")
	cmd.Flags().StringVar(&role, "role", string(models.RoleAdmin), "admin or staff")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

func createAdmin(ctx context.Context, store *dbhelper.Store, name, email, password string, role models.Role) error {
	exists, err := store.IsUserExists(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check user existence: %w", err)
	}
	if exists {
		return errors.New("user already exists")
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	id, err := store.CreateUserWithRole(ctx, name, email, hashed, role)
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"user_id": id, "role": role}).Info("user created")
	return nil
}
