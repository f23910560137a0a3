package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"rental-backend/internal/accounts"
	"rental-backend/internal/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const adminPasswordEnv = "ADMIN_PASSWORD"

func CreateAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create or reset a staff login",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			if email == "" {
				return errors.New("--email is required")
			}
			password, err := readPassword(cmd)
			if err != nil {
				return err
			}

			_, log, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			p := accounts.NewProvisioner(bcrypt.DefaultCost)
			var user *models.User
			err = db.Transaction(func(tx *gorm.DB) error {
				var err error
				user, err = p.EnsureStaff(cmd.Context(), tx, email, password)
				return err
			})
			if errors.Is(err, accounts.ErrPasswordRequired) {
				return errors.New("password is empty: set " + adminPasswordEnv + " or pass --password-stdin")
			}
			if err != nil {
				return err
			}
			log.Info("staff login ready", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
			return nil
		},
	}
	cmd.Flags().String("email", "", "login email")
	cmd.Flags().Bool("password-stdin", false, "read the password from the first line of stdin instead of "+adminPasswordEnv)
	return cmd
}

// readPassword takes the password from stdin or the environment, never from argv.
func readPassword(cmd *cobra.Command) (string, error) {
	if fromStdin, _ := cmd.Flags().GetBool("password-stdin"); fromStdin {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	return os.Getenv(adminPasswordEnv), nil
}
