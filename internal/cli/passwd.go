package cli

import (
	"errors"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ekrsw/knowledge2/pkg/session"
)

var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change the password of the current account",
	RunE: func(cmd *cobra.Command, args []string) error {
		manager.Bootstrap(cmd.Context())
		if err := guard.Require(); err != nil {
			return loginHint(err)
		}

		oldPassword, err := pterm.DefaultInteractiveTextInput.WithMask("*").Show("Current password")
		if err != nil {
			return err
		}
		newPassword, err := pterm.DefaultInteractiveTextInput.WithMask("*").Show("New password")
		if err != nil {
			return err
		}
		confirm, err := pterm.DefaultInteractiveTextInput.WithMask("*").Show("Repeat new password")
		if err != nil {
			return err
		}
		if newPassword != confirm {
			return fmt.Errorf("new passwords do not match")
		}

		if err := manager.ChangePassword(cmd.Context(), oldPassword, newPassword); err != nil {
			var policy *session.PolicyViolationError
			switch {
			case errors.As(err, &policy):
				pterm.Error.Printf("Password rejected: %s\n", policy.Detail)
				return err
			case errors.Is(err, session.ErrLoginRequired):
				return loginHint(err)
			default:
				return err
			}
		}

		pterm.Success.Println("Password changed.")
		return nil
	},
}
