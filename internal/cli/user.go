package cli

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/supporthub/supporthub-client/internal/api"
)

var userInput api.UserInput

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage accounts (admin)",
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		users, err := gateway.ListUsers(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE\tACTIVE\tSECTOR")
		for _, u := range users {
			role := "user"
			if u.IsAdmin {
				role = "admin"
			}
			sector := "-"
			if u.Sector != nil {
				sector = u.Sector.Name
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%t\t%s\n", u.ID, u.FullName, u.Email, role, u.IsActive, sector)
		}
		return w.Flush()
	},
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a new account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		user, err := gateway.CreateUser(cmd.Context(), userInput)
		if err != nil {
			return err
		}
		fmt.Printf("user #%d (%s) created\n", user.ID, user.Email)
		return nil
	},
}

var userUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid user id %q", args[0])
		}
		user, err := gateway.UpdateUser(cmd.Context(), id, userInput)
		if err != nil {
			return err
		}
		fmt.Printf("user #%d updated\n", user.ID)
		return nil
	},
}

var userDeactivateCmd = &cobra.Command{
	Use:   "deactivate <id>",
	Short: "Deactivate an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid user id %q", args[0])
		}
		if err := gateway.DeactivateUser(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("user #%d deactivated\n", id)
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{userCreateCmd, userUpdateCmd} {
		cmd.Flags().StringVar(&userInput.FullName, "name", "", "full name")
		cmd.Flags().StringVar(&userInput.Email, "email", "", "email address")
		cmd.Flags().StringVar(&userInput.Password, "password", "", "password")
		cmd.Flags().IntVar(&userInput.SectorID, "sector", 0, "sector id")
		cmd.Flags().IntVar(&userInput.RoleID, "role", 0, "role id")
		cmd.Flags().BoolVar(&userInput.IsAdmin, "admin", false, "grant admin rights")
		cmd.Flags().BoolVar(&userInput.IsActive, "active", true, "account active")
	}
	_ = userCreateCmd.MarkFlagRequired("name")
	_ = userCreateCmd.MarkFlagRequired("email")
	_ = userCreateCmd.MarkFlagRequired("password")

	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userUpdateCmd)
	userCmd.AddCommand(userDeactivateCmd)
}
