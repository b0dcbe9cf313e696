package cli

import (
	"fmt"

	"github.com/fitforge/fitforge-web/internal/models"
	"github.com/spf13/cobra"
)

func (a *app) loginCmd() *cobra.Command {
	var (
		email    string
		password string
		admin    bool
		username string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		Example: `  fitforge login --email lifter@example.com --password 'Squat#2024'
  fitforge login --admin --username sample --password 123`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var (
				token string
				err   error
			)
			if admin {
				token, err = a.auth.AdminLogin(ctx, &models.AdminLoginRequest{Username: username, Password: password})
				if err != nil {
					return message(err, "Invalid admin credentials")
				}
			} else {
				token, err = a.auth.Login(ctx, &models.LoginRequest{Email: email, Password: password})
				if err != nil {
					return message(err, "Login failed")
				}
			}

			sess, err := a.store.Set(nil, nil, token)
			if err != nil {
				return fmt.Errorf("the API returned a token that could not be read: %w", err)
			}

			if admin {
				fmt.Fprintln(a.out, "Admin login successful")
			} else {
				fmt.Fprintln(a.out, "Login successful!")
			}
			fmt.Fprintf(a.out, "Logged in as %s (%s)\n", sess.DisplayName, sess.Hint)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	cmd.Flags().BoolVar(&admin, "admin", false, "Log in to the admin panel with --username")
	cmd.Flags().StringVar(&username, "username", "", "Admin username")
	_ = cmd.MarkFlagRequired("password")
	cmd.MarkFlagsMutuallyExclusive("email", "username")

	return cmd
}

func (a *app) signupCmd() *cobra.Command {
	var req models.SignupRequest

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := a.auth.Signup(cmd.Context(), &req)
			if err != nil {
				return message(err, "Signup failed")
			}
			if _, err := a.store.Set(nil, nil, token); err != nil {
				return fmt.Errorf("the API returned a token that could not be read: %w", err)
			}
			fmt.Fprintln(a.out, "Signup successful!")
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Username, "username", "", "Username, 4 to 50 characters")
	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password with a digit, an uppercase letter and a special character")
	cmd.Flags().StringVar(&req.Role, "role", models.RoleUser, "user or instructor")

	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Clear(nil, nil); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged out successfully")
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.session()
			if err != nil {
				return err
			}

			user, err := a.courses.CurrentUser(cmd.Context(), sess.Token)
			if err != nil {
				return a.fail(err, "Failed to fetch user data")
			}

			fmt.Fprintf(a.out, "%s <%s>\n", user.Username, user.Email)
			fmt.Fprintf(a.out, "role:      %s\n", user.Role)
			fmt.Fprintf(a.out, "balance:   %s\n", money(user.Balance))
			fmt.Fprintf(a.out, "purchased: %d course(s)\n", len(user.PurchasedCourses))
			return nil
		},
	}
}
