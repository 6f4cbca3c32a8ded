package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Daniil-Sakharov/hockey-project-sub001/domain"
	"github.com/Daniil-Sakharov/hockey-project-sub001/internal/entitlement"
)

func (a *App) newSubscriptionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subscription",
		Short: "Show or change the subscription tier",
	}
	cmd.AddCommand(a.newSubscriptionSetCmd(), a.newSubscriptionShowCmd())
	return cmd
}

func (a *App) newSubscriptionSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "set <free|pro|ultra>",
		Short:     "Switch the signed-in account to a tier",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"free", "pro", "ultra"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			tier := domain.SubscriptionTier(strings.ToLower(args[0]))
			ctx, cancel := a.timeout(cmd.Context())
			defer cancel()
			if err := a.store.UpdateSubscription(ctx, tier); err != nil {
				return fmt.Errorf("subscription not changed: %s", messageOf(err))
			}
			a.println("Subscription set to %s (%d per month)", tier, entitlement.Price(tier))
			return nil
		},
	}
}

type subscriptionView struct {
	Tier      domain.SubscriptionTier  `json:"tier" yaml:"tier"`
	Price     int                      `json:"price" yaml:"price"`
	AutoRenew bool                     `json:"autoRenew" yaml:"autoRenew"`
	EndDate   *time.Time               `json:"endDate" yaml:"endDate"`
	Unlocked  []entitlement.FeatureKey `json:"unlocked" yaml:"unlocked"`
}

func (v subscriptionView) render(w io.Writer) error {
	end := "never"
	if v.EndDate != nil {
		end = v.EndDate.Format(domain.BirthDateLayout)
	}
	unlocked := make([]string, len(v.Unlocked))
	for i, f := range v.Unlocked {
		unlocked[i] = string(f)
	}
	return fields{
		{"Tier", string(v.Tier)},
		{"Price", strconv.Itoa(v.Price)},
		{"Auto renew", strconv.FormatBool(v.AutoRenew)},
		{"Ends", end},
		{"Features", strings.Join(unlocked, ", ")},
	}.render(w)
}

func (a *App) newSubscriptionShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective tier and unlocked features",
		RunE: func(cmd *cobra.Command, args []string) error {
			tier := a.store.CurrentTier()
			view := subscriptionView{
				Tier:     tier,
				Price:    entitlement.Price(tier),
				Unlocked: entitlement.Unlocked(tier),
			}
			if s := a.store.Session(); s.Account != nil {
				view.Price = s.Account.Subscription.Price
				view.AutoRenew = s.Account.Subscription.AutoRenew
				view.EndDate = s.Account.Subscription.EndDate
			}
			return a.print(view, view)
		},
	}
}
