package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ekrsw/knowledge2/pkg/session"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display authentication status",
	RunE: func(cmd *cobra.Command, args []string) error {
		manager.Bootstrap(cmd.Context())

		pterm.DefaultSection.Println("Authentication Status")

		sess, ok := manager.Session()
		if !ok {
			pterm.Info.Println("Not logged in.")
			return nil
		}

		pterm.Info.Printf("State: %s\n", manager.State())
		printTokenClaims(sess.AccessToken)

		user, err := manager.RefreshIdentity(cmd.Context())
		switch {
		case errors.Is(err, session.ErrLoginRequired):
			pterm.Warning.Println("The server rejected the stored token. Run `kbctl login` again.")
			return nil
		case err != nil:
			pterm.Warning.Printf("Could not verify the session with the server: %v\n", err)
			return nil
		}

		role := "user"
		if user.IsAdmin {
			role = "admin"
		}
		pterm.Info.Printf("Identity: %s (%s, %s)\n", user.Username, user.FullName, role)
		return nil
	},
}

// printTokenClaims shows what the access token says about itself, without
// verifying the signature; validity is the server's call, not ours.
func printTokenClaims(raw string) {
	subject, username, expiry, err := tokenClaims(raw)
	if err != nil {
		pterm.Warning.Printf("Stored access token is not a readable JWT: %v\n", err)
		return
	}
	if subject != "" {
		pterm.Info.Printf("Token subject: %s\n", subject)
	}
	if username != "" {
		pterm.Info.Printf("Token username: %s\n", username)
	}
	if !expiry.IsZero() {
		pterm.Info.Printf("Token expires: %s\n", expiry.Format(time.RFC1123))
	}
}

// tokenClaims decodes the unverified claims of a JWT access token.
func tokenClaims(raw string) (subject, username string, expiry time.Time, err error) {
	claims := jwt.MapClaims{}
	if _, _, err = jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return "", "", time.Time{}, err
	}

	subject, err = claims.GetSubject()
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("bad subject claim: %w", err)
	}
	if v, ok := claims["username"].(string); ok {
		username = v
	}
	if exp, expErr := claims.GetExpirationTime(); expErr == nil && exp != nil {
		expiry = exp.Time
	}
	return subject, username, expiry, nil
}
