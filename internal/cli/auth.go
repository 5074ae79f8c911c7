package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/supporthub/supporthub-client/pkg/util"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate and store the session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		token, err := gateway.Login(ctx, loginEmail, loginPassword)
		if err != nil {
			if util.IsAuthFailure(err) {
				return fmt.Errorf("login rejected: check your credentials")
			}
			return err
		}
		if err := store.Save(token); err != nil {
			return fmt.Errorf("failed to persist token: %w", err)
		}

		user, err := gateway.Me(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("logged in as %s (%s)\n", user.FullName, user.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the stored session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := store.Clear(); err != nil {
			return err
		}
		fmt.Println("logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if !store.IsAuthenticated(ctx, gateway) {
			return fmt.Errorf("not logged in (or account inactive); run 'supporthub login'")
		}
		user, err := gateway.Me(ctx)
		if err != nil {
			return err
		}
		role := "user"
		if user.IsAdmin {
			role = "admin"
		}
		fmt.Printf("%s <%s> — %s", user.FullName, user.Email, role)
		if user.Sector != nil {
			fmt.Printf(", sector %s", user.Sector.Name)
		}
		fmt.Println()
		if claims, err := store.Claims(); err == nil && !claims.ExpiresAt.IsZero() {
			fmt.Printf("session expires %s\n", claims.ExpiresAt.Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "account email")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "account password")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")
}

// requireAuth fails fast for commands that need a live session.
func requireAuth() error {
	if store.Token() == "" {
		return fmt.Errorf("not logged in; run 'supporthub login'")
	}
	return nil
}
