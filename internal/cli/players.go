package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/Daniil-Sakharov/hockey-project-sub001/domain"
)

type playerView domain.Player

func (p playerView) render(w io.Writer) error {
	return fields{
		{"ID", p.ID},
		{"Name", p.FullName},
		{"Born", p.BirthDate},
		{"Team", p.TeamID},
		{"Position", p.Position},
	}.render(w)
}

type playerList []domain.Player

func (l playerList) render(w io.Writer) error {
	t := newTable("ID", "NAME", "BORN", "TEAM", "POSITION")
	for _, p := range l {
		t.addRow(p.ID, p.FullName, p.BirthDate, p.TeamID, p.Position)
	}
	return t.render(w)
}

func (a *App) newPlayersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "players",
		Short: "Look up the player registry",
	}
	cmd.AddCommand(a.newPlayersListCmd(), a.newPlayersShowCmd())
	return cmd
}

func (a *App) newPlayersListCmd() *cobra.Command {
	var (
		team          string
		limit, offset int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registry players, optionally for one team",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.timeout(cmd.Context())
			defer cancel()
			players, err := a.remote.Players(ctx, team, limit, offset)
			if err != nil {
				return a.lookupFailure("list players", err)
			}
			return a.print(players, playerList(players))
		},
	}
	cmd.Flags().StringVar(&team, "team", "", "team id")
	cmd.Flags().IntVar(&limit, "limit", 0, "page size (server maximum when 0)")
	cmd.Flags().IntVar(&offset, "offset", 0, "rows to skip")
	return cmd
}

// show is how a parent or player finds the identity fields 'onboarding link' expects.
func (a *App) newPlayersShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <playerId>",
		Short: "Show one registry player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.timeout(cmd.Context())
			defer cancel()
			player, err := a.remote.Player(ctx, args[0])
			if err != nil {
				return a.lookupFailure("show player", err)
			}
			return a.print(player, playerView(*player))
		},
	}
}
