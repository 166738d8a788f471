package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/filedeck/filedeck/internal/api"
	"github.com/filedeck/filedeck/internal/identity"
	"github.com/filedeck/filedeck/internal/models"
	"github.com/filedeck/filedeck/internal/session"
)

// newSignupCmd creates the 'signup' command.
func newSignupCmd() *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a filedeck account",
		Long: `Create a new account on the filedeck backend.

Missing values are prompted for; the password is read without echo.

Examples:
  filedeck signup
  filedeck signup --name "Ann Lee" --email ann@example.net`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			if name == "" {
				if name, err = promptLine("Name: "); err != nil {
					return err
				}
			}
			if email == "" {
				if email, err = promptLine("Email: "); err != nil {
					return err
				}
			}
			password, err := readPassword("Password: ")
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}

			req := models.SignupRequest{Name: strings.TrimSpace(name), Email: strings.TrimSpace(email), Password: password}
			switch {
			case req.Email == "":
				return &api.ValidationError{Field: "email", Reason: "email is required"}
			case req.Password == "":
				return &api.ValidationError{Field: "password", Reason: "password is required"}
			}

			if err := a.api.Signup(GetContext(), req); err != nil {
				return fmt.Errorf("signup failed: %w", err)
			}

			GetLogger().Info().Str("email", req.Email).Msg("Account created")
			fmt.Fprintf(cmd.OutOrStdout(), "Account created for %s. Sign in with: filedeck login --email %s\n", req.Email, req.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")

	return cmd
}

// newLoginCmd creates the 'login' command.
func newLoginCmd() *cobra.Command {
	var email string
	var redirect string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		Long: `Sign in with the configured OAuth provider or with email and password.

Without --email the command prints the provider's sign-in URL. Open it in a
browser; after signing in, paste the URL the browser lands on.

Examples:
  filedeck login
  filedeck login --email ann@example.net
  filedeck login --redirect 'http://localhost:3000/profile-setup#access_token=...'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			idc, err := a.identityClient()
			if err != nil {
				return err
			}
			ctx := GetContext()
			out := cmd.OutOrStdout()

			var tokens *models.Tokens
			if email != "" {
				password, err := readPassword("Password: ")
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				if tokens, err = idc.SignInWithPassword(ctx, email, password); err != nil {
					return fmt.Errorf("sign in failed: %w", err)
				}
			} else {
				if redirect == "" {
					fmt.Fprintln(out, "Open this URL in your browser to sign in:")
					fmt.Fprintf(out, "\n  %s\n\n", idc.AuthorizeURL(a.cfg.OAuthProvider, a.cfg.RedirectURL))
					if redirect, err = promptLine("Paste the URL you were redirected to: "); err != nil {
						return err
					}
				}
				if tokens, err = identity.ParseRedirect(redirect); err != nil {
					return err
				}
			}

			sess, err := a.sessions.Login(ctx, tokens)
			if err != nil {
				return err
			}

			GetLogger().Debug().Str("user_id", sess.UserID()).Msg("Signed in")
			fmt.Fprintf(out, "Signed in as %s\n", describeUser(sess.User))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Sign in with email and password instead of OAuth")
	cmd.Flags().StringVar(&redirect, "redirect", "", "OAuth redirect URL (skips the prompt)")

	return cmd
}

// newLogoutCmd creates the 'logout' command.
func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the cached session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := localSessions()
			if err != nil {
				return err
			}
			if err := m.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

// newWhoamiCmd creates the 'whoami' command.
func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := localSessions()
			if err != nil {
				return err
			}
			sess, err := m.Cached()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if sess == nil {
				fmt.Fprintln(out, "Not signed in")
				return nil
			}
			printSession(out, sess, time.Now())
			return nil
		},
	}
}

// localSessions reads the session cache without contacting any server, so
// logout and whoami work without a valid config.
func localSessions() (*session.Manager, error) {
	store, err := session.DefaultStore()
	if err != nil {
		return nil, err
	}
	return session.NewManager(store, nil, GetLogger()), nil
}

func describeUser(u *models.User) string {
	if u == nil {
		return "unknown user"
	}
	if u.Email == "" {
		return u.Name
	}
	return fmt.Sprintf("%s <%s>", u.Name, u.Email)
}

func printSession(out io.Writer, sess *models.Session, now time.Time) {
	fmt.Fprintf(out, "User:    %s\n", describeUser(sess.User))
	if sess.User != nil {
		fmt.Fprintf(out, "User ID: %s\n", sess.User.ID)
	}

	exp := sess.ExpiresAt
	if e, ok := session.TokenExpiry(sess.AccessToken); ok {
		exp = e
	}
	switch {
	case exp.IsZero():
		fmt.Fprintln(out, "Token:   no expiry")
	case now.After(exp) && sess.RefreshToken != "":
		fmt.Fprintf(out, "Token:   expired %s (refreshed on next use)\n", exp.Local().Format("2006-01-02 15:04:05"))
	case now.After(exp):
		fmt.Fprintf(out, "Token:   expired %s (sign in again)\n", exp.Local().Format("2006-01-02 15:04:05"))
	default:
		fmt.Fprintf(out, "Token:   expires %s\n", exp.Local().Format("2006-01-02 15:04:05"))
	}
}
