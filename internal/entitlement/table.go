// Package entitlement maps gated features to the minimum subscription tier
// that unlocks them and answers access questions against that table.
package entitlement

import (
	"fmt"
	"sort"
	"time"

	"github.com/Daniil-Sakharov/hockey-project-sub001/domain"
)

// FeatureKey identifies a gated feature.
type FeatureKey string

const (
	FeatureBasicStats         FeatureKey = "basic_stats"
	FeatureTournamentCalendar FeatureKey = "tournament_calendar"
	FeatureTeamRosters        FeatureKey = "team_rosters"
	FeaturePlayerRankings     FeatureKey = "player_rankings"

	FeatureAdvancedStats      FeatureKey = "advanced_stats"
	FeaturePlayerComparison   FeatureKey = "player_comparison"
	FeatureMatchHistoryExport FeatureKey = "match_history_export"
	FeatureScoutNotes         FeatureKey = "scout_notes"
	FeatureVideoHighlights    FeatureKey = "video_highlights"

	FeatureAIRecommendations   FeatureKey = "ai_recommendations"
	FeaturePredictiveAnalytics FeatureKey = "predictive_analytics"
	FeaturePrioritySupport     FeatureKey = "priority_support"
)

var requiredTiers = map[FeatureKey]domain.SubscriptionTier{
	FeatureBasicStats:         domain.TierFree,
	FeatureTournamentCalendar: domain.TierFree,
	FeatureTeamRosters:        domain.TierFree,
	FeaturePlayerRankings:     domain.TierFree,

	FeatureAdvancedStats:      domain.TierPro,
	FeaturePlayerComparison:   domain.TierPro,
	FeatureMatchHistoryExport: domain.TierPro,
	FeatureScoutNotes:         domain.TierPro,
	FeatureVideoHighlights:    domain.TierPro,

	FeatureAIRecommendations:   domain.TierUltra,
	FeaturePredictiveAnalytics: domain.TierUltra,
	FeaturePrioritySupport:     domain.TierUltra,
}

var tierRanks = map[domain.SubscriptionTier]int{
	domain.TierFree:  0,
	domain.TierPro:   1,
	domain.TierUltra: 2,
}

// SubscriptionPeriod is the length of one paid billing period.
const SubscriptionPeriod = 30 * 24 * time.Hour

// Monthly prices per tier, in rubles.
var tierPrices = map[domain.SubscriptionTier]int{
	domain.TierFree:  0,
	domain.TierPro:   299,
	domain.TierUltra: 599,
}

// RequiredTier returns the minimum tier unlocking feature.
// It panics for a key that is not declared in this package.
func RequiredTier(feature FeatureKey) domain.SubscriptionTier {
	tier, ok := requiredTiers[feature]
	if !ok {
		panic(fmt.Sprintf("entitlement: undeclared feature key %q", feature))
	}
	return tier
}

// Lookup is the non-panicking form of RequiredTier for keys arriving from
// outside the program (CLI arguments, request parameters).
func Lookup(feature string) (FeatureKey, bool) {
	key := FeatureKey(feature)
	_, ok := requiredTiers[key]
	return key, ok
}

// Rank orders tiers: free=0, pro=1, ultra=2. Unknown tiers rank -1.
func Rank(tier domain.SubscriptionTier) int {
	if rank, ok := tierRanks[tier]; ok {
		return rank
	}
	return -1
}

// ValidTier reports whether tier is declared.
func ValidTier(tier domain.SubscriptionTier) bool {
	return Rank(tier) >= 0
}

// Tiers returns every tier in ascending order.
func Tiers() []domain.SubscriptionTier {
	out := make([]domain.SubscriptionTier, 0, len(tierRanks))
	for tier := range tierRanks {
		out = append(out, tier)
	}
	sort.Slice(out, func(i, j int) bool { return Rank(out[i]) < Rank(out[j]) })
	return out
}

// Price returns the monthly price of tier; unknown tiers cost nothing.
func Price(tier domain.SubscriptionTier) int {
	return tierPrices[tier]
}

// Features returns every declared feature key sorted by name.
func Features() []FeatureKey {
	out := make([]FeatureKey, 0, len(requiredTiers))
	for key := range requiredTiers {
		out = append(out, key)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Table returns a copy of the feature to tier mapping.
func Table() map[FeatureKey]domain.SubscriptionTier {
	out := make(map[FeatureKey]domain.SubscriptionTier, len(requiredTiers))
	for k, v := range requiredTiers {
		out[k] = v
	}
	return out
}

// Subscribe builds the subscription record for switching to tier at now.
// Paid tiers run for SubscriptionPeriod; the free tier never expires.
func Subscribe(tier domain.SubscriptionTier, now time.Time) domain.Subscription {
	if Rank(tier) <= Rank(domain.TierFree) {
		return domain.FreeSubscription(now)
	}
	end := now.Add(SubscriptionPeriod)
	return domain.Subscription{
		Tier:      tier,
		StartDate: now,
		EndDate:   &end,
		AutoRenew: true,
		Price:     Price(tier),
	}
}
