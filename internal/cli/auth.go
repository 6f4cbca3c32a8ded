package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Daniil-Sakharov/hockey-project-sub001/domain"
	"github.com/Daniil-Sakharov/hockey-project-sub001/internal/entitlement"
	"github.com/Daniil-Sakharov/hockey-project-sub001/internal/guard"
	"github.com/Daniil-Sakharov/hockey-project-sub001/internal/onboarding"
)

func (a *App) newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Sign in, sign out and inspect the session",
	}
	cmd.AddCommand(
		a.newAuthLoginCmd(),
		a.newAuthRegisterCmd(),
		a.newAuthLogoutCmd(),
		a.newAuthWhoamiCmd(),
		a.newAuthRefreshCmd(),
	)
	return cmd
}

func (a *App) newAuthLoginCmd() *cobra.Command {
	var email, password, returnTo string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				email = a.promptInput("Email: ")
			}
			if password == "" {
				password = a.promptPassword("Password: ")
			}

			ctx, cancel := a.timeout(cmd.Context())
			defer cancel()
			account, err := a.store.Login(ctx, email, password)
			if err != nil {
				return a.failure("login failed", err)
			}
			a.println("Signed in as %s", account.Email)
			a.println("Next: %s", a.guard.AfterAuth(ctx, returnTo))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	cmd.Flags().StringVar(&returnTo, "return-to", "", "destination to continue to after signing in")
	return cmd
}

func (a *App) newAuthRegisterCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				email = a.promptInput("Email: ")
			}
			if password == "" {
				password = a.promptPassword("Password: ")
				confirm := a.promptPassword("Confirm password: ")
				if password != confirm {
					return fmt.Errorf("passwords do not match")
				}
			}

			ctx, cancel := a.timeout(cmd.Context())
			defer cancel()
			account, err := a.store.Register(ctx, email, password)
			if err != nil {
				return a.failure("registration failed", err)
			}
			a.println("Account created. Signed in as %s", account.Email)
			a.println("Next: %s", guard.PostAuthDestination(a.store.Session()))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password (at least 6 characters)")
	return cmd
}

func (a *App) newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.timeout(cmd.Context())
			defer cancel()
			a.store.Logout(ctx)
			a.println("Signed out")
			return nil
		},
	}
}

func (a *App) newAuthRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the refresh credential for a new credential pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.timeout(cmd.Context())
			defer cancel()
			if err := a.store.Refresh(ctx); err != nil {
				if !a.store.Session().IsAuthenticated {
					return fmt.Errorf("refresh failed, signed out: %s", messageOf(err))
				}
				return fmt.Errorf("refresh failed: %s", messageOf(err))
			}
			a.println("Credential refreshed")
			return nil
		},
	}
}

func (a *App) newAuthWhoamiCmd() *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if remote && a.store.Session().IsAuthenticated {
				ctx, cancel := a.timeout(cmd.Context())
				defer cancel()
				if _, err := a.store.ReloadAccount(ctx); err != nil {
					return a.failure("reload failed", err)
				}
			}
			view := newSessionView(a.store.Session())
			return a.print(view, view)
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "reload the account from the directory first")
	return cmd
}

// sessionView is the printable summary of a session.
type sessionView struct {
	Authenticated  bool                    `json:"authenticated" yaml:"authenticated"`
	Email          string                  `json:"email,omitempty" yaml:"email,omitempty"`
	Role           domain.Role             `json:"role,omitempty" yaml:"role,omitempty"`
	LinkedPlayerID string                  `json:"linkedPlayerId,omitempty" yaml:"linkedPlayerId,omitempty"`
	Tier           domain.SubscriptionTier `json:"tier" yaml:"tier"`
	State          string                  `json:"state" yaml:"state"`
	Home           string                  `json:"home" yaml:"home"`
}

func newSessionView(s domain.Session) sessionView {
	state := onboarding.Classify(s)
	view := sessionView{
		Authenticated: s.IsAuthenticated,
		Tier:          entitlement.TierOf(s.Account),
		State:         state.String(),
		Home:          guard.Home(state),
	}
	if s.Account != nil {
		view.Email = s.Account.Email
		view.Role = s.Account.Role
		if s.Account.HasLinkedPlayer() {
			view.LinkedPlayerID = *s.Account.LinkedPlayerID
		}
	}
	return view
}

func (v sessionView) render(w io.Writer) error {
	if !v.Authenticated {
		_, err := fmt.Fprintln(w, "Not signed in")
		return err
	}
	linked := v.LinkedPlayerID
	if linked == "" {
		linked = "-"
	}
	return fields{
		{"Email", v.Email},
		{"Role", string(v.Role)},
		{"Player", linked},
		{"Tier", string(v.Tier)},
		{"State", v.State},
		{"Home", v.Home},
	}.render(w)
}

func messageOf(err error) string {
	var dErr *domain.Error
	if errors.As(err, &dErr) {
		return dErr.Message
	}
	return err.Error()
}
