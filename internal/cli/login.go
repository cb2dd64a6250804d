package cli

import (
	"errors"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ekrsw/knowledge2/pkg/session"
)

var loginUsername string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with knowledge2",
	Long: `Exchanges your username and password for a session token pair and
stores it locally. Logging in while already authenticated replaces the
current session (account switching).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		manager.Bootstrap(cmd.Context())

		username := loginUsername
		if username == "" {
			var err error
			username, err = pterm.DefaultInteractiveTextInput.Show("Username")
			if err != nil {
				return err
			}
		}
		if username == "" {
			return fmt.Errorf("username cannot be empty")
		}

		password, err := pterm.DefaultInteractiveTextInput.WithMask("*").Show("Password")
		if err != nil {
			return err
		}

		if err := manager.Login(cmd.Context(), username, password); err != nil {
			var unreachable *session.UnreachableError
			switch {
			case errors.Is(err, session.ErrInvalidCredentials):
				pterm.Error.Println("Invalid username or password.")
				return err
			case errors.As(err, &unreachable):
				pterm.Error.Println("Could not reach the server. Check --server and try again.")
				return err
			default:
				return err
			}
		}

		pterm.Success.Printf("Logged in as %s\n", username)
		if u, ok := manager.Identity(); ok && u.FullName != "" {
			pterm.Info.Printf("Welcome back, %s\n", u.FullName)
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "username (prompted if omitted)")
}
