package domain

// AuthResult is what the account directory returns for register, login and refresh.
type AuthResult struct {
	Credential        string   `json:"credential"`
	RefreshCredential string   `json:"refreshCredential"`
	ExpiresIn         int      `json:"expiresIn"`
	Account           *Account `json:"account"`
}

// PlayerLink carries the identity fields used to verify a player link.
type PlayerLink struct {
	PlayerID  string `json:"playerId" validate:"required"`
	FullName  string `json:"fullName" validate:"required"`
	BirthDate string `json:"birthDate" validate:"required,datetime=2006-01-02"`
}
