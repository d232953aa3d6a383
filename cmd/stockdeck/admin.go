package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stockdeck/internal/model"
	"stockdeck/pkg/uid"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Account management (manager only)",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}
		list, err := sess.API().ListUsers(cmd.Context(), usersPage, usersLimit)
		if err != nil {
			return err
		}

		w := table()
		fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tROLE")
		for _, u := range list.Users {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", uid.Short(u.ID), u.Username, u.Email, u.Role)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Printf("Page %d/%d, %d total\n", list.Page, list.TotalPages, list.Total)
		return nil
	},
}

var usersCreateCmd = &cobra.Command{
	Use:   "create <username> <email> <password> <role>",
	Short: "Create an account",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}
		user, err := sess.API().CreateUser(cmd.Context(), model.CreateUserRequest{
			Username: args[0],
			Email:    args[1],
			Password: args[2],
			Role:     model.Role(args[3]),
		})
		if err != nil {
			return err
		}
		fmt.Printf("Created %s (%s)\n", user.Username, user.ID)
		return nil
	},
}

var usersUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update an account's fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}

		req := model.UpdateUserRequest{TargetID: args[0]}
		if cmd.Flags().Changed("username") {
			req.Username = &updUsername
		}
		if cmd.Flags().Changed("email") {
			req.Email = &updEmail
		}
		if cmd.Flags().Changed("role") {
			role := model.Role(updRole)
			req.Role = &role
		}

		user, err := sess.API().UpdateUser(cmd.Context(), req)
		if err != nil {
			return err
		}
		fmt.Printf("Updated %s\n", user.Username)
		return nil
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}
		if err := sess.API().DeleteUser(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("User deleted.")
		return nil
	},
}

var storesCmd = &cobra.Command{
	Use:   "stores",
	Short: "Store management (manager only)",
}

var storesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stores",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}
		list, err := sess.API().ListStores(cmd.Context())
		if err != nil {
			return err
		}

		w := table()
		fmt.Fprintln(w, "ID\tNAME\tADDRESS")
		for _, st := range list.Items {
			fmt.Fprintf(w, "%s\t%s\t%s\n", uid.Short(st.ID), st.Name, st.Address)
		}
		return w.Flush()
	},
}

var storesCreateCmd = &cobra.Command{
	Use:   "create <name> [address]",
	Short: "Create a store",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}
		req := model.CreateStoreRequest{Name: args[0]}
		if len(args) == 2 {
			req.Address = args[1]
		}
		store, err := sess.API().CreateStore(cmd.Context(), req)
		if err != nil {
			return err
		}
		fmt.Printf("Created %s (%s)\n", store.Name, store.ID)
		return nil
	},
}

var storesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}
		if err := sess.API().DeleteStore(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("Store deleted.")
		return nil
	},
}

var staffCmd = &cobra.Command{
	Use:   "staff",
	Short: "Store staff assignments (manager only)",
}

var staffListCmd = &cobra.Command{
	Use:   "list <store-id>",
	Short: "List the staff assigned to a store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}
		list, err := sess.API().ListStoreStaff(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		w := table()
		fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL")
		for _, u := range list.Staff {
			fmt.Fprintf(w, "%s\t%s\t%s\n", uid.Short(u.ID), u.Username, u.Email)
		}
		return w.Flush()
	},
}

var staffAddCmd = &cobra.Command{
	Use:   "add <store-id> <user-id>",
	Short: "Assign a user to a store",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}
		assoc, err := sess.API().AddStaffToStore(cmd.Context(), model.AddStaffRequest{
			StoreID: args[0],
			UserID:  args[1],
		})
		if err != nil {
			return err
		}
		fmt.Printf("Assigned (association %s)\n", assoc.ID)
		return nil
	},
}

var staffRemoveCmd = &cobra.Command{
	Use:   "remove <association-id>",
	Short: "Remove a staff assignment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}
		if err := sess.API().DeleteStaffFromStore(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("Assignment removed.")
		return nil
	},
}

var (
	usersPage   int
	usersLimit  int
	updUsername string
	updEmail    string
	updRole     string
)

func init() {
	usersListCmd.Flags().IntVar(&usersPage, "page", 1, "page number")
	usersListCmd.Flags().IntVar(&usersLimit, "limit", 10, "page size")
	usersUpdateCmd.Flags().StringVar(&updUsername, "username", "", "new username")
	usersUpdateCmd.Flags().StringVar(&updEmail, "email", "", "new email")
	usersUpdateCmd.Flags().StringVar(&updRole, "role", "", "new role (manager|staff)")

	usersCmd.AddCommand(usersListCmd, usersCreateCmd, usersUpdateCmd, usersDeleteCmd)
	storesCmd.AddCommand(storesListCmd, storesCreateCmd, storesDeleteCmd)
	staffCmd.AddCommand(staffListCmd, staffAddCmd, staffRemoveCmd)
	rootCmd.AddCommand(usersCmd, storesCmd, staffCmd)
}
