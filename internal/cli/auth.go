package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rshade/stockdesk/internal/config"
	"github.com/rshade/stockdesk/internal/session"
)

// NewLoginCmd creates the login command, which stores a bearer token.
func NewLoginCmd() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store a bearer token for API requests",
		Long: `Stores the token in the configured storage backend. Requests use
` + config.EnvToken + ` instead when it is set.`,
		Example: `  stockdesk login --token "$(cat ~/.stockdesk-token)"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, config.GetGlobalConfig())
			if err != nil {
				return err
			}
			defer a.Close()

			info, err := a.session.Login(ctx, strings.TrimSpace(token))
			if errors.Is(err, session.ErrEmptyToken) {
				return errors.New("--token is required")
			}
			if err != nil {
				return err
			}
			cmd.Printf("Logged in (session %s)\n", info.SessionID)
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "bearer token")
	return cmd
}

// NewLogoutCmd creates the logout command, which forgets the stored token.
func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored bearer token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, config.GetGlobalConfig())
			if err != nil {
				return err
			}
			defer a.Close()

			if err = a.session.Logout(ctx); err != nil {
				return err
			}
			cmd.Println("Logged out.")
			return nil
		},
	}
}
