package entitlement

import "github.com/Daniil-Sakharov/hockey-project-sub001/domain"

// HasAccess reports whether an account on tier may use feature.
func HasAccess(tier domain.SubscriptionTier, feature FeatureKey) bool {
	return Rank(tier) >= Rank(RequiredTier(feature))
}

// TierOf maps an optional account to its tier. No account means free.
func TierOf(account *domain.Account) domain.SubscriptionTier {
	if account == nil || !ValidTier(account.Subscription.Tier) {
		return domain.TierFree
	}
	return account.Subscription.Tier
}

// Unlocked lists the features available on tier.
func Unlocked(tier domain.SubscriptionTier) []FeatureKey {
	var out []FeatureKey
	for _, key := range Features() {
		if HasAccess(tier, key) {
			out = append(out, key)
		}
	}
	return out
}
