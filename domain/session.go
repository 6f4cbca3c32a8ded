package domain

import "time"

// Session is the client-side authentication state. IsAuthenticated, Account
// and Credential are always set and cleared together.
type Session struct {
	IsAuthenticated   bool     `json:"isAuthenticated"`
	Account           *Account `json:"account"`
	Credential        *string  `json:"credential"`
	RefreshCredential string   `json:"refreshCredential,omitempty"`
}

// AnonymousSession returns the unauthenticated state.
func AnonymousSession() Session {
	return Session{}
}

// NewAuthenticatedSession builds a session holding account and credential.
func NewAuthenticatedSession(account *Account, credential, refresh string) Session {
	token := credential
	return Session{
		IsAuthenticated:   true,
		Account:           account.Clone(),
		Credential:        &token,
		RefreshCredential: refresh,
	}
}

// Consistent reports whether the three authentication fields agree.
func (s Session) Consistent() bool {
	hasAccount := s.Account != nil
	hasCredential := s.Credential != nil && *s.Credential != ""
	return s.IsAuthenticated == hasAccount && hasAccount == hasCredential
}

// Token returns the bearer credential or an empty string.
func (s Session) Token() string {
	if s.Credential == nil {
		return ""
	}
	return *s.Credential
}

// Clone returns a deep copy.
func (s Session) Clone() Session {
	out := s
	out.Account = s.Account.Clone()
	if s.Credential != nil {
		token := *s.Credential
		out.Credential = &token
	}
	return out
}

// RefreshSession represents a refresh credential stored in Redis by the directory service.
type RefreshSession struct {
	ID        string            `json:"id"`
	AccountID string            `json:"account_id"`
	ExpiresAt time.Time         `json:"expires_at"`
	CreatedAt time.Time         `json:"created_at"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func (s *RefreshSession) IsExpired(reference time.Time) bool {
	if s == nil {
		return true
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return !s.ExpiresAt.After(reference)
}
