package services

import (
	"context"
	"errors"

	"animax/internal/models"
	"animax/internal/repositories"

	"golang.org/x/crypto/bcrypt"
)

// passwordHashCost is lowered by tests.
var passwordHashCost = bcrypt.DefaultCost

// TokenIssuer signs bearer tokens. Implemented by auth.JWTManager.
type TokenIssuer interface {
	GenerateToken(userID, email, role string) (string, error)
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if err != nil {
		return "", NewInternalError("failed to hash password", err)
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IdentityResolver confirms that the account behind a verified token
// still exists.
type IdentityResolver struct {
	accounts AccountStore
}

func NewIdentityResolver(accounts AccountStore) *IdentityResolver {
	return &IdentityResolver{accounts: accounts}
}

// Resolve re-fetches the account for role and id. A missing account is a
// NotFound error; an unknown role is Unauthorized.
func (r *IdentityResolver) Resolve(ctx context.Context, role, id string) (models.Identity, error) {
	switch role {
	case models.RoleSuperAdmin:
		admin, err := r.accounts.GetSuperAdminByID(ctx, id)
		if err != nil {
			return models.Identity{}, accountLookupError(err)
		}
		return models.Identity{ID: admin.ID, Role: role, Email: admin.Email}, nil

	case models.RoleUser:
		user, err := r.accounts.GetUserByID(ctx, id)
		if err != nil {
			return models.Identity{}, accountLookupError(err)
		}
		return models.Identity{ID: user.ID, Role: role, Email: user.Email}, nil
	}

	return models.Identity{}, NewUnauthorizedError("Invalid Token Structure or Role")
}

func accountLookupError(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return &Error{Kind: KindNotFound, Message: "User Not Found", Err: err}
	}
	return NewInternalError("account lookup failed", err)
}
