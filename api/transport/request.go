package transport

type CredentialsRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshCredential string `json:"refreshCredential" validate:"required"`
}

type RoleRequest struct {
	Role string `json:"role" validate:"required,oneof=fan player scout coach parent"`
}

type SubscriptionRequest struct {
	Tier string `json:"tier" validate:"required,oneof=free pro ultra"`
}

type PlayerLinkRequest struct {
	PlayerID  string `json:"playerId" validate:"required"`
	FullName  string `json:"fullName" validate:"required"`
	BirthDate string `json:"birthDate" validate:"required,datetime=2006-01-02"`
}

type PlayerListQuery struct {
	Team   string `validate:"omitempty,max=64"`
	Limit  int    `validate:"gte=0,lte=100"`
	Offset int    `validate:"gte=0"`
}
