package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Daniil-Sakharov/hockey-project-sub001/domain"
	"github.com/Daniil-Sakharov/hockey-project-sub001/internal/guard"
	"github.com/Daniil-Sakharov/hockey-project-sub001/internal/onboarding"
)

func (a *App) newOnboardingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "onboarding",
		Short: "Choose a role and link a player profile",
	}
	cmd.AddCommand(
		a.newRoleCmd(),
		a.newLinkCmd(),
		a.newUnlinkCmd(),
		a.newStateCmd(),
	)
	return cmd
}

func (a *App) newRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "role <fan|player|scout|coach|parent>",
		Short:     "Set the role of the signed-in account",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"fan", "player", "scout", "coach", "parent"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			role := domain.Role(strings.ToLower(args[0]))
			ctx, cancel := a.timeout(cmd.Context())
			defer cancel()
			if err := a.store.UpdateRole(ctx, role); err != nil {
				return fmt.Errorf("role not changed: %s", messageOf(err))
			}
			a.println("Role set to %s", role)
			a.println("Next: %s", guard.Home(a.store.State()))
			return nil
		},
	}
}

func (a *App) newLinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "link <playerId> <fullName> <birthDate>",
		Short: "Link a registry player (birth date as YYYY-MM-DD)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.timeout(cmd.Context())
			defer cancel()
			if _, err := a.store.LinkPlayer(ctx, args[0], args[1], args[2]); err != nil {
				return a.failure("link failed", err)
			}
			a.println("Linked player %s", args[0])
			a.println("Next: %s", guard.Home(a.store.State()))
			return nil
		},
	}
}

func (a *App) newUnlinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unlink",
		Short: "Remove the linked player",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			ctx, cancel := a.timeout(cmd.Context())
			defer cancel()
			if err := a.store.UnlinkPlayer(ctx); err != nil {
				return fmt.Errorf("unlink failed: %s", messageOf(err))
			}
			a.println("Player unlinked")
			return nil
		},
	}
}

type stateView struct {
	State string `json:"state" yaml:"state"`
	Home  string `json:"home" yaml:"home"`
}

func (v stateView) render(w io.Writer) error {
	return fields{{"State", v.State}, {"Home", v.Home}}.render(w)
}

func (a *App) newStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show the onboarding state and its landing destination",
		RunE: func(cmd *cobra.Command, args []string) error {
			state := onboarding.Classify(a.store.Session())
			view := stateView{State: state.String(), Home: guard.Home(state)}
			return a.print(view, view)
		},
	}
}

// requireSession rejects local-first commands while signed out.
func (a *App) requireSession() error {
	if !a.store.Session().IsAuthenticated {
		return fmt.Errorf("not signed in, run 'hockeyctl auth login' first")
	}
	return nil
}
