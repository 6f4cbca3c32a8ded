package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Daniil-Sakharov/hockey-project-sub001/domain"
	"github.com/Daniil-Sakharov/hockey-project-sub001/internal/entitlement"
)

func (a *App) newFeatureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feature",
		Short: "Check feature access for the current session",
	}
	cmd.AddCommand(a.newFeatureCheckCmd(), a.newFeatureListCmd())
	return cmd
}

type featureAccess struct {
	Feature      entitlement.FeatureKey  `json:"feature" yaml:"feature"`
	RequiredTier domain.SubscriptionTier `json:"requiredTier" yaml:"requiredTier"`
	Access       bool                    `json:"access" yaml:"access"`

	// DirectoryTier is the directory's answer, set by 'feature list --remote'.
	DirectoryTier domain.SubscriptionTier `json:"directoryTier,omitempty" yaml:"directoryTier,omitempty"`
}

func (f featureAccess) render(w io.Writer) error {
	if f.Access {
		_, err := fmt.Fprintf(w, "%s: unlocked\n", f.Feature)
		return err
	}
	_, err := fmt.Fprintf(w, "%s: locked (requires %s)\n", f.Feature, f.RequiredTier)
	return err
}

type featureList []featureAccess

func (l featureList) render(w io.Writer) error {
	remote := false
	for _, f := range l {
		if f.DirectoryTier != "" {
			remote = true
			break
		}
	}

	headers := []string{"FEATURE", "TIER", "ACCESS"}
	if remote {
		headers = append(headers, "DIRECTORY")
	}
	t := newTable(headers...)
	for _, f := range l {
		access := "no"
		if f.Access {
			access = "yes"
		}
		row := []string{string(f.Feature), string(f.RequiredTier), access}
		if remote {
			directoryTier := string(f.DirectoryTier)
			switch {
			case directoryTier == "":
				directoryTier = "missing"
			case f.DirectoryTier != f.RequiredTier:
				directoryTier += " (differs)"
			}
			row = append(row, directoryTier)
		}
		t.addRow(row...)
	}
	return t.render(w)
}

func (a *App) access(feature entitlement.FeatureKey) featureAccess {
	return featureAccess{
		Feature:      feature,
		RequiredTier: entitlement.RequiredTier(feature),
		Access:       a.store.HasFeature(feature),
	}
}

func (a *App) newFeatureCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <feature>",
		Short: "Report whether the session may use a feature",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			feature, ok := entitlement.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown feature %q, see 'hockeyctl feature list'", args[0])
			}
			view := a.access(feature)
			return a.print(view, view)
		},
	}
}

func (a *App) newFeatureListCmd() *cobra.Command {
	var remote bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every feature with its required tier",
		RunE: func(cmd *cobra.Command, args []string) error {
			var directoryTable map[string]domain.SubscriptionTier
			if remote {
				ctx, cancel := a.timeout(cmd.Context())
				defer cancel()
				table, err := a.remote.Entitlements(ctx)
				if err != nil {
					return a.lookupFailure("fetch entitlements", err)
				}
				directoryTable = table
			}

			var list featureList
			for _, f := range entitlement.Features() {
				view := a.access(f)
				view.DirectoryTier = directoryTable[string(f)]
				list = append(list, view)
			}
			return a.print(list, list)
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "compare with the directory's entitlement table")
	return cmd
}
