package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/AyushShukla12112005/trackctl/internal/api"
	"github.com/AyushShukla12112005/trackctl/internal/session"
	"github.com/AyushShukla12112005/trackctl/internal/validate"
)

var (
	loginEmail    string
	loginPassword string

	registerName     string
	registerEmail    string
	registerPassword string
	registerConfirm  string

	profileName     string
	resetToken      string
	currentPassword string
	newPassword     string
	confirmPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store a session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		return loginRun(cmd.Context())
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and log in",
	RunE: func(cmd *cobra.Command, args []string) error {
		return registerRun(cmd.Context())
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := sessions.Clear(); err != nil {
			return err
		}
		ui.Success("Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		return whoamiRun(cmd.Context())
	},
}

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage the logged-in account",
}

var forgotPasswordCmd = &cobra.Command{
	Use:   "forgot-password <email>",
	Short: "Request a password reset email",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := client.ForgotPassword(cmd.Context(), args[0]); err != nil {
			return finish(err)
		}
		ui.Success("Reset instructions sent to %s", args[0])
		return nil
	},
}

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password",
	Short: "Set a new password using a reset token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if resetToken == "" {
			return fmt.Errorf("--token is required")
		}
		if err := validate.NewPassword(newPassword, confirmPassword); err != nil {
			return err
		}
		if err := client.ResetPassword(cmd.Context(), resetToken, newPassword); err != nil {
			return finish(err)
		}
		ui.Success("Password updated, you can log in now")
		return nil
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Update the account display name",
	RunE: func(cmd *cobra.Command, args []string) error {
		return profileRun(cmd.Context())
	},
}

var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change the account password",
	RunE: func(cmd *cobra.Command, args []string) error {
		return passwdRun(cmd.Context())
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Password (prompted when omitted)")

	registerCmd.Flags().StringVar(&registerName, "name", "", "Display name")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "Account email")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "Password (prompted when omitted)")
	registerCmd.Flags().StringVar(&registerConfirm, "confirm", "", "Password confirmation")

	resetPasswordCmd.Flags().StringVar(&resetToken, "token", "", "Reset token from the email")
	resetPasswordCmd.Flags().StringVar(&newPassword, "password", "", "New password")
	resetPasswordCmd.Flags().StringVar(&confirmPassword, "confirm", "", "New password confirmation")

	profileCmd.Flags().StringVar(&profileName, "name", "", "New display name")

	passwdCmd.Flags().StringVar(&currentPassword, "current", "", "Current password (prompted when omitted)")
	passwdCmd.Flags().StringVar(&newPassword, "password", "", "New password (prompted when omitted)")
	passwdCmd.Flags().StringVar(&confirmPassword, "confirm", "", "New password confirmation")

	accountCmd.AddCommand(forgotPasswordCmd)
	accountCmd.AddCommand(resetPasswordCmd)
	accountCmd.AddCommand(profileCmd)
	accountCmd.AddCommand(passwdCmd)

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(accountCmd)
}

// promptSecret reads a value without echoing it to the terminal.
func promptSecret(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return string(raw), nil
}

func loginRun(ctx context.Context) error {
	if loginEmail == "" {
		return fmt.Errorf("--email is required")
	}
	if loginPassword == "" {
		pw, err := promptSecret("Password")
		if err != nil {
			return err
		}
		loginPassword = pw
	}

	result, err := client.Login(ctx, loginEmail, loginPassword)
	if err != nil {
		return finish(err)
	}

	err = sessions.Save(&session.Session{
		Token:   result.Token,
		User:    result.User,
		SavedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	ui.Success("Logged in as %s <%s>", result.User.Name, result.User.Email)
	return nil
}

func registerRun(ctx context.Context) error {
	if err := validate.DisplayName(registerName); err != nil {
		return err
	}
	if registerEmail == "" {
		return fmt.Errorf("--email is required")
	}
	if registerPassword == "" {
		pw, err := promptSecret("Password")
		if err != nil {
			return err
		}
		confirm, err := promptSecret("Confirm password")
		if err != nil {
			return err
		}
		registerPassword, registerConfirm = pw, confirm
	}
	if registerConfirm == "" {
		registerConfirm = registerPassword
	}
	if err := validate.NewPassword(registerPassword, registerConfirm); err != nil {
		return err
	}

	result, err := client.Register(ctx, strings.TrimSpace(registerName), registerEmail, registerPassword)
	if err != nil {
		return finish(err)
	}

	err = sessions.Save(&session.Session{
		Token:   result.Token,
		User:    result.User,
		SavedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	ui.Success("Welcome, %s", result.User.Name)
	return nil
}

func whoamiRun(ctx context.Context) error {
	if _, err := requireSession(); err != nil {
		return err
	}

	// Confirm the token is still good; fall back to the cached profile
	// when the backend is unreachable.
	user, err := client.Me(ctx)
	if err != nil {
		if api.IsAuth(err) {
			return finish(err)
		}
		sess, loadErr := sessions.Load()
		if loadErr != nil {
			return err
		}
		ui.Warning("Backend unreachable, showing cached profile")
		user = &sess.User
	}

	fmt.Fprintf(ui.Out, "%s <%s>\n", user.Name, user.Email)
	return nil
}

func profileRun(ctx context.Context) error {
	if _, err := requireSession(); err != nil {
		return err
	}
	if err := validate.DisplayName(profileName); err != nil {
		return err
	}

	user, err := client.UpdateProfile(ctx, strings.TrimSpace(profileName))
	if err != nil {
		return finish(err)
	}

	// Keep the cached profile in step with the backend.
	if sess, loadErr := sessions.Load(); loadErr == nil {
		sess.User = *user
		_ = sessions.Save(sess)
	}
	ui.Success("Profile updated")
	return nil
}

func passwdRun(ctx context.Context) error {
	if _, err := requireSession(); err != nil {
		return err
	}

	var err error
	if currentPassword == "" {
		if currentPassword, err = promptSecret("Current password"); err != nil {
			return err
		}
	}
	if newPassword == "" {
		if newPassword, err = promptSecret("New password"); err != nil {
			return err
		}
		if confirmPassword, err = promptSecret("Confirm new password"); err != nil {
			return err
		}
	}
	if confirmPassword == "" {
		confirmPassword = newPassword
	}
	if err := validate.NewPassword(newPassword, confirmPassword); err != nil {
		return err
	}

	if err := client.ChangePassword(ctx, currentPassword, newPassword); err != nil {
		return finish(err)
	}
	ui.Success("Password changed")
	return nil
}
