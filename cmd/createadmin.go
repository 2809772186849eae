package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/magpress/authserver/config"
	"github.com/magpress/authserver/internal/auth"
	"github.com/magpress/authserver/internal/db"
	"github.com/magpress/authserver/internal/services"
	"github.com/magpress/authserver/internal/store"
	"github.com/magpress/authserver/types"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// createAdminCmd represents the createadmin command. It bootstraps the
// first admin account interactively, the only way to obtain an admin
// before any admin exists to promote others.
var createAdminCmd = &cobra.Command{
	Use:   "createadmin",
	Short: "Interactively create an admin user",
	Long: `Interactively create an admin user. Usage:

	authserver createadmin

Prompts for username, optional email, and password (with confirmation),
then inserts the user with the admin role.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		dbConn, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer func() {
			_ = dbConn.Close()
		}()

		reader := bufio.NewReader(os.Stdin)

		username, err := prompt(reader, "Enter admin username: ")
		if err != nil {
			return err
		}
		email, err := prompt(reader, "Enter admin email (optional): ")
		if err != nil {
			return err
		}

		password, err := promptPassword("Enter admin password: ")
		if err != nil {
			return err
		}
		confirm, err := promptPassword("Confirm admin password: ")
		if err != nil {
			return err
		}
		if password != confirm {
			return fmt.Errorf("passwords do not match")
		}

		repo := store.NewUserRepository(dbConn)
		hasher := auth.NewHasher(cfg.BcryptCost)
		codec := auth.NewCodec(cfg.SecretKey, cfg.AccessTokenTTL(), cfg.RefreshTokenTTL())
		authService := services.NewAuthService(repo, hasher, codec)

		user, err := authService.Register(cmd.Context(), services.RegisterInput{
			Username: username,
			Password: password,
			Email:    email,
			Role:     types.RoleAdmin,
		})
		if err != nil {
			return fmt.Errorf("creating admin user: %w", err)
		}

		fmt.Printf("\nAdmin user %q created successfully (id %d)\n", user.Username, user.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createAdminCmd)
}

func prompt(reader *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(label string) (string, error) {
	fmt.Print(label)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}
