package cli

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ekrsw/knowledge2/pkg/session"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out from knowledge2",
	Long: `Clears the locally stored session and asks the server to revoke the
refresh token. The local session is removed even when the server cannot be
reached.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		state := manager.Bootstrap(cmd.Context())
		if state == session.StateUnauthenticated {
			pterm.Info.Println("Not logged in.")
			return nil
		}

		manager.Logout(cmd.Context())
		pterm.Success.Println("Logged out.")
		return nil
	},
}
