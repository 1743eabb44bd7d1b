package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/NeurArk/ai-contract-guardian/client"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := current

		email, password, err := promptCredentials()
		if err != nil {
			return err
		}

		resp, err := a.client.Login(cmd.Context(), client.Credentials{Email: email, Password: password})
		if err != nil {
			return fmt.Errorf("%s", client.ErrorMessage(err, "Login failed"))
		}

		if err := a.session.Login(cmd.Context(), resp.AccessToken); err != nil {
			return fmt.Errorf("%s", client.ErrorMessage(err, "Login failed"))
		}

		fmt.Printf("Logged in as %s\n", a.session.User().Email)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and log in",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := current

		email, password, err := promptCredentials()
		if err != nil {
			return err
		}

		user, err := a.client.Register(cmd.Context(), client.Credentials{Email: email, Password: password})
		if err != nil {
			return fmt.Errorf("%s", client.ErrorMessage(err, "Registration failed"))
		}

		// Auto-login after registration, the way the web app does.
		resp, err := a.client.Login(cmd.Context(), client.Credentials{Email: user.Email, Password: password})
		if err != nil {
			return fmt.Errorf("account created, but login failed: %s", client.ErrorMessage(err, "try 'guardian login'"))
		}
		if err := a.session.Login(cmd.Context(), resp.AccessToken); err != nil {
			return fmt.Errorf("account created, but login failed: %s", client.ErrorMessage(err, "try 'guardian login'"))
		}

		fmt.Printf("Account created, logged in as %s\n", user.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		current.session.Logout()
		fmt.Println("Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireAuth(cmd)
		if err != nil {
			return err
		}

		user := a.session.User()
		fmt.Printf("%s (since %s)\n", user.Email, user.CreatedAt.Format("2006-01-02"))
		return nil
	},
}

var (
	flagEmail    string
	flagPassword string
)

// promptCredentials reads the email from the flag or stdin and the
// password from the flag or a hidden terminal prompt.
func promptCredentials() (string, string, error) {
	email := strings.TrimSpace(flagEmail)
	if email == "" {
		fmt.Print("Email: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", "", fmt.Errorf("failed to read email: %w", err)
		}
		email = strings.TrimSpace(line)
	}

	password := flagPassword
	if password == "" {
		fmt.Print("Password: ")
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return "", "", fmt.Errorf("failed to read password: %w", err)
		}
		password = string(raw)
	}

	return email, password, nil
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().StringVar(&flagEmail, "email", "", "account email")
		c.Flags().StringVar(&flagPassword, "password", "", "account password (prompted when omitted)")
	}
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)
}
