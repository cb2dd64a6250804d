package cli

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ekrsw/knowledge2/pkg/session"
)

var (
	registerUsername string
	registerFullName string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new knowledge2 account",
	Long: `Registers a new account with the server. Registration is public and
does not log you in; run ` + "`kbctl login`" + ` afterwards.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		username := registerUsername
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

		fullName := registerFullName
		if fullName == "" {
			var err error
			fullName, err = pterm.DefaultInteractiveTextInput.Show("Full name")
			if err != nil {
				return err
			}
		}

		password, err := pterm.DefaultInteractiveTextInput.WithMask("*").Show("Password")
		if err != nil {
			return err
		}

		// Registration is sessionless: a plain client with no token provider.
		client := session.NewClient(session.NewGateway(cfg.ServerURL, nil, logger))
		user, err := client.Register(cmd.Context(), username, fullName, password)
		if err != nil {
			return err
		}

		pterm.Success.Printf("Account %s created. Run `kbctl login` to sign in.\n", user.Username)
		return nil
	},
}

func init() {
	registerCmd.Flags().StringVarP(&registerUsername, "username", "u", "", "username (prompted if omitted)")
	registerCmd.Flags().StringVar(&registerFullName, "full-name", "", "full name (prompted if omitted)")
}
