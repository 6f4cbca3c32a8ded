package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Daniil-Sakharov/hockey-project-sub001/internal/guard"
)

type routeView struct {
	Destination string `json:"destination" yaml:"destination"`
	Policy      string `json:"policy" yaml:"policy"`
	Action      string `json:"action" yaml:"action"`
	Target      string `json:"target" yaml:"target"`
	ReturnTo    string `json:"returnTo,omitempty" yaml:"returnTo,omitempty"`
}

func (v routeView) render(w io.Writer) error {
	switch v.Action {
	case guard.Render.String():
		_, err := fmt.Fprintf(w, "render %s\n", v.Target)
		return err
	case guard.Block.String():
		_, err := fmt.Fprintf(w, "block %s (session not restored)\n", v.Target)
		return err
	}
	if v.ReturnTo != "" {
		_, err := fmt.Fprintf(w, "redirect %s (return to %s)\n", v.Target, v.ReturnTo)
		return err
	}
	_, err := fmt.Fprintf(w, "redirect %s\n", v.Target)
	return err
}

func (a *App) newRouteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "route <destination>",
		Short: "Show what navigating to a destination would do",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.timeout(cmd.Context())
			defer cancel()
			d := a.guard.Navigate(ctx, args[0])
			view := routeView{
				Destination: args[0],
				Policy:      guard.PolicyFor(args[0]).String(),
				Action:      d.Action.String(),
				Target:      d.Target,
				ReturnTo:    d.ReturnTo,
			}
			return a.print(view, view)
		},
	}
}
