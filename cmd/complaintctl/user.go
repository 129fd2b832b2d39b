package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/service"
)

var (
	userEmail    string
	userPassword string
	userFullName string
	userRole     string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an account with any role",
	Long: `Create an account directly in the database. Unlike public registration,
the role flag is always honored, which makes this the way to bootstrap admins.

Examples:
  complaintctl user create --email ops@example.com --password s3cretpass --name "Ops Admin" --role admin`,
	RunE: runUserCreate,
}

func init() {
	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "Account email (required)")
	userCreateCmd.Flags().StringVar(&userPassword, "password", "", "Account password, at least 8 characters (required)")
	userCreateCmd.Flags().StringVar(&userFullName, "name", "", "Full name (required)")
	userCreateCmd.Flags().StringVar(&userRole, "role", string(domain.RoleUser), "Role: user, admin or navigator")
	_ = userCreateCmd.MarkFlagRequired("email")
	_ = userCreateCmd.MarkFlagRequired("password")
	_ = userCreateCmd.MarkFlagRequired("name")

	userCmd.AddCommand(userCreateCmd)
	rootCmd.AddCommand(userCmd)
}

func runUserCreate(cmd *cobra.Command, _ []string) error {
	role, err := domain.ParseRole(userRole)
	if err != nil {
		return err
	}

	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	store := repository.NewPostgresStore(e.pg.PoolHandle())
	authService := service.NewAuthService(*e.cfg, service.AuthDependencies{UserRepo: store.Users()})
	user, err := authService.Provision(cmd.Context(), service.RegisterInput{
		Email:    userEmail,
		Password: userPassword,
		FullName: userFullName,
		Role:     &role,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (%s)\n", user.Role, user.Email, user.ID)
	return nil
}
