package cli

import (
	"errors"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ekrsw/knowledge2/pkg/session"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Display the identity of the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		manager.Bootstrap(cmd.Context())
		if err := guard.Require(); err != nil {
			return loginHint(err)
		}

		user, err := manager.RefreshIdentity(cmd.Context())
		if err != nil {
			if errors.Is(err, session.ErrLoginRequired) {
				return loginHint(err)
			}
			return err
		}

		role := "user"
		if user.IsAdmin {
			role = "admin"
		}

		pterm.DefaultSection.Println("Identity")
		if err := pterm.DefaultTable.WithData(pterm.TableData{
			{"ID", user.ID},
			{"Username", user.Username},
			{"Full name", user.FullName},
			{"Role", role},
			{"Created", user.CreatedAt.Format(time.RFC1123)},
			{"Updated", user.UpdatedAt.Format(time.RFC1123)},
		}).Render(); err != nil {
			return err
		}
		return nil
	},
}

// loginHint converts ErrLoginRequired into a user-facing nudge toward the
// login entry point.
func loginHint(err error) error {
	if errors.Is(err, session.ErrLoginRequired) {
		pterm.Warning.Println("You are not logged in. Run `kbctl login` first.")
	}
	return err
}
