package session

import (
	"context"
	"errors"

	"github.com/Daniil-Sakharov/hockey-project-sub001/domain"
)

// MinPasswordLength is the shortest password registration accepts.
const MinPasswordLength = 6

// classify maps a directory failure onto the user-facing taxonomy.
func classify(err error) *domain.Error {
	var dErr *domain.Error
	if errors.As(err, &dErr) {
		switch dErr.Code {
		case domain.ErrCodeInvalidCredentials,
			domain.ErrCodeMissingField,
			domain.ErrCodeWeakPassword,
			domain.ErrCodeDuplicateEmail,
			domain.ErrCodeNotAuthenticated,
			domain.ErrCodePlayerNotFound,
			domain.ErrCodeNetworkUnavailable,
			domain.ErrCodeServerError:
			return dErr
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.WrapError(domain.ErrCodeNetworkUnavailable, domain.ErrNetworkUnavailable.Message, err)
	}
	return domain.WrapError(domain.ErrCodeServerError, domain.ErrServerError.Message, err)
}

func validateCredentials(email, password string) *domain.Error {
	if email == "" || password == "" {
		return domain.ErrMissingField
	}
	return nil
}
