package cli

import (
	"fmt"
	"strings"
	"time"

	"shop-inventory/internal/auth"

	"github.com/spf13/cobra"
)

// newTokenCmd signs an access token with the configured secret. The API has
// no login surface, so operators mint tokens here.
func newTokenCmd() *cobra.Command {
	var (
		subject  string
		username string
		roles    []string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a signed access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseRoles(roles)
			if err != nil {
				return err
			}

			cfg, err := loadValidConfig()
			if err != nil {
				return err
			}

			authenticator, err := auth.NewAuthenticator(auth.Config{
				Secret: cfg.JWT.Secret,
				Expiry: cfg.JWT.AccessExpiry,
			})
			if err != nil {
				return err
			}

			token, expiresAt, err := authenticator.Issue(subject, username, parsed)
			if err != nil {
				return fmt.Errorf("signing token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expiresAt.UTC().Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "sub", "", "Subject (user ID) of the token")
	cmd.Flags().StringVar(&username, "username", "", "Username claim")
	cmd.Flags().StringArrayVar(&roles, "role", []string{string(auth.RoleUser)}, "Role to grant (ADMIN or USER), repeatable")
	_ = cmd.MarkFlagRequired("sub")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

func parseRoles(raw []string) ([]auth.Role, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("at least one --role is required")
	}

	roles := make([]auth.Role, 0, len(raw))
	for _, r := range raw {
		switch role := auth.Role(strings.ToUpper(strings.TrimSpace(r))); role {
		case auth.RoleAdmin, auth.RoleUser:
			roles = append(roles, role)
		default:
			return nil, fmt.Errorf("unknown role %q (valid: ADMIN, USER)", r)
		}
	}
	return roles, nil
}
