package usecase

import (
	"strings"

	domainErrors "github.com/polkiloo/apply4me/internal/domain/errors"
	"github.com/polkiloo/apply4me/internal/pkg/auth"
)

// AuthUseCase verifies bearer tokens and the admin key.
type AuthUseCase struct {
	strategy     auth.Strategy
	hasher       auth.KeyHasher
	adminKeyHash string
}

// NewAuthUseCase constructs AuthUseCase. An empty adminKeyHash rejects every admin key.
func NewAuthUseCase(strategy auth.Strategy, hasher auth.KeyHasher, adminKeyHash string) *AuthUseCase {
	return &AuthUseCase{strategy: strategy, hasher: hasher, adminKeyHash: strings.TrimSpace(adminKeyHash)}
}

// ParseToken returns the subject of a valid bearer token.
func (u *AuthUseCase) ParseToken(token string) (string, error) {
	return u.strategy.ParseToken(token)
}

// IssueToken signs a token for subject.
func (u *AuthUseCase) IssueToken(subject string) (string, error) {
	return u.strategy.IssueToken(subject)
}

func (u *AuthUseCase) VerifyAdminKey(key string) error {
	if u.adminKeyHash == "" || key == "" {
		return domainErrors.ErrInvalidAdminKey
	}
	if err := u.hasher.Compare(u.adminKeyHash, key); err != nil {
		return domainErrors.ErrInvalidAdminKey
	}
	return nil
}
