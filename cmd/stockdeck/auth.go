package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"stockdeck/internal/model"
)

var (
	loginUsername string
	loginPassword string
	loginRemember bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against the backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		username := loginUsername
		password := loginPassword
		reader := bufio.NewReader(os.Stdin)

		if username == "" {
			fmt.Print("Username: ")
			line, err := reader.ReadString('\n')
			if err != nil {
				return err
			}
			username = strings.TrimSpace(line)
		}
		if password == "" {
			fmt.Print("Password: ")
			line, err := reader.ReadString('\n')
			if err != nil {
				return err
			}
			password = strings.TrimSpace(line)
		}

		resp, err := cli.session.Login(cmd.Context(),
			model.LoginRequest{Username: username, Password: password}, loginRemember)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		fmt.Printf("Logged in as %s (%s)\n", resp.User.Username, resp.User.Role)
		if loginRemember {
			fmt.Println("Session persisted durably.")
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the persisted session",
	RunE: func(cmd *cobra.Command, args []string) error {
		cli.session.Logout()
		fmt.Println("Logged out.")
		return nil
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the authenticated account",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}
		if err := sess.RefreshProfile(cmd.Context()); err != nil {
			return err
		}

		user := sess.User()
		w := table()
		fmt.Fprintf(w, "ID\t%s\n", user.ID)
		fmt.Fprintf(w, "Username\t%s\n", user.Username)
		fmt.Fprintf(w, "Email\t%s\n", user.Email)
		fmt.Fprintf(w, "Role\t%s\n", user.Role)
		return w.Flush()
	},
}

var profilePasswdCmd = &cobra.Command{
	Use:   "passwd <old-password> <new-password>",
	Short: "Change the account password",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}
		err = sess.API().ChangePassword(cmd.Context(), model.PasswordChangeRequest{
			OldPassword: args[0],
			NewPassword: args[1],
		})
		if err != nil {
			return err
		}
		fmt.Println("Password updated.")
		return nil
	},
}

var serversCmd = &cobra.Command{
	Use:   "servers",
	Short: "Show the active backend endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Active server: %s\n", cli.serverURL)
		if url, ok := cli.storage.ReadServer(); ok {
			fmt.Printf("Persisted selection: %s\n", url)
		} else {
			fmt.Printf("Default from configuration: %s\n", cli.cfg.Client.ServerURL)
		}
		return nil
	},
}

var serversUseCmd = &cobra.Command{
	Use:   "use <url>",
	Short: "Persist a backend endpoint selection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cli.storage.WriteServer(args[0]); err != nil {
			return err
		}
		fmt.Printf("Server set to %s\n", args[0])
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "account username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "account password")
	loginCmd.Flags().BoolVar(&loginRemember, "remember", false, "persist the session durably")

	profileCmd.AddCommand(profilePasswdCmd)
	serversCmd.AddCommand(serversUseCmd)

	rootCmd.AddCommand(loginCmd, logoutCmd, profileCmd, serversCmd)
}
