package domain

import "time"

// Role is the area of the product an account has chosen to use.
type Role string

const (
	RoleFan    Role = "fan"
	RolePlayer Role = "player"
	RoleScout  Role = "scout"
	RoleCoach  Role = "coach"
	RoleParent Role = "parent"
)

// DefaultRole is assigned by registration. An account still holding it has not
// made an explicit role decision yet.
const DefaultRole = RoleFan

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	switch r {
	case RoleFan, RolePlayer, RoleScout, RoleCoach, RoleParent:
		return true
	}
	return false
}

// SubscriptionTier identifies a billing plan. Tiers are ordered; compare them
// through entitlement.Rank only.
type SubscriptionTier string

const (
	TierFree  SubscriptionTier = "free"
	TierPro   SubscriptionTier = "pro"
	TierUltra SubscriptionTier = "ultra"
)

// Subscription describes the billing state attached to an account.
// EndDate is nil only for the free tier.
type Subscription struct {
	Tier      SubscriptionTier `json:"tier"`
	StartDate time.Time        `json:"startDate"`
	EndDate   *time.Time       `json:"endDate"`
	AutoRenew bool             `json:"autoRenew"`
	Price     int              `json:"price"`
}

// IsUnlimited reports whether the subscription never expires.
func (s Subscription) IsUnlimited() bool {
	return s.EndDate == nil
}

// Account is the directory record of a registered user.
type Account struct {
	ID             string       `json:"id"`
	Email          string       `json:"email"`
	Name           string       `json:"name,omitempty"`
	Role           Role         `json:"role"`
	LinkedPlayerID *string      `json:"linkedPlayerId,omitempty"`
	Subscription   Subscription `json:"subscription"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`

	PasswordHash string `json:"-"`
}

// HasLinkedPlayer reports whether the account is linked to a registry player.
func (a *Account) HasLinkedPlayer() bool {
	return a != nil && a.LinkedPlayerID != nil && *a.LinkedPlayerID != ""
}

// Clone returns a deep copy so callers cannot mutate shared state.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	out := *a
	if a.LinkedPlayerID != nil {
		id := *a.LinkedPlayerID
		out.LinkedPlayerID = &id
	}
	if a.Subscription.EndDate != nil {
		end := *a.Subscription.EndDate
		out.Subscription.EndDate = &end
	}
	return &out
}

// FreeSubscription is the subscription every account starts with.
func FreeSubscription(now time.Time) Subscription {
	return Subscription{
		Tier:      TierFree,
		StartDate: now,
		EndDate:   nil,
		AutoRenew: false,
		Price:     0,
	}
}
