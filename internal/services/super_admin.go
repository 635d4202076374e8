// ===============================
// internal/services/super_admin.go - Super admin accounts
// ===============================

package services

import (
	"context"
	"errors"
	"strings"

	"animax/internal/logging"
	"animax/internal/models"
	"animax/internal/repositories"
	"animax/internal/storage"

	"github.com/google/uuid"
)

type SuperAdminSignupInput struct {
	UserName string `json:"userName" form:"userName" validate:"required"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=6"`
}

type SuperAdminService struct {
	accounts      AccountStore
	uploads       *UploadService
	tokens        TokenIssuer
	signupEnabled bool
}

func NewSuperAdminService(accounts AccountStore, uploads *UploadService, tokens TokenIssuer, signupEnabled bool) *SuperAdminService {
	return &SuperAdminService{
		accounts:      accounts,
		uploads:       uploads,
		tokens:        tokens,
		signupEnabled: signupEnabled,
	}
}

func (s *SuperAdminService) SignupSuperAdmin(ctx context.Context, input SuperAdminSignupInput, picture *MediaFile) (*models.SuperAdmin, error) {
	if !s.signupEnabled {
		return nil, NewForbiddenError("Super admin signup is disabled")
	}

	input.UserName = strings.TrimSpace(input.UserName)
	input.Email = normalizeEmail(input.Email)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	if _, err := s.accounts.GetSuperAdminByEmail(ctx, input.Email); err == nil {
		return nil, NewConflictError("Super admin already exists")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, NewInternalError("failed to look up super admin", err)
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	admin := &models.SuperAdmin{
		ID:           uuid.New().String(),
		UserName:     input.UserName,
		Email:        input.Email,
		PasswordHash: hash,
		IsSuperAdmin: true,
	}

	if picture != nil {
		url, err := s.uploads.Upload(ctx, picture, storage.KeySpec{
			Kind:   storage.KindProfilePicture,
			UserID: admin.ID,
		})
		if err != nil {
			return nil, err
		}
		admin.ProfilePicture = &url
	}

	if err := s.accounts.CreateSuperAdmin(ctx, admin); err != nil {
		if admin.ProfilePicture != nil {
			s.uploads.DeleteQuietly(ctx, *admin.ProfilePicture)
		}
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, NewConflictError("Super admin already exists")
		}
		return nil, NewInternalError("failed to create super admin", err)
	}

	logging.Ctx(ctx).Info().Str("admin_id", admin.ID).Msg("super admin signed up")
	return admin, nil
}

func (s *SuperAdminService) SigninSuperAdmin(ctx context.Context, input SigninInput) (*models.SuperAdmin, string, error) {
	input.Email = normalizeEmail(input.Email)
	if err := validateInput(input); err != nil {
		return nil, "", err
	}

	admin, err := s.accounts.GetSuperAdminByEmail(ctx, input.Email)
	if err != nil {
		return nil, "", storeError(err, "Super admin not found")
	}
	if !checkPassword(admin.PasswordHash, input.Password) {
		return nil, "", NewUnauthorizedError("Invalid credentials")
	}

	token, err := s.tokens.GenerateToken(admin.ID, admin.Email, models.RoleSuperAdmin)
	if err != nil {
		return nil, "", NewInternalError("failed to issue token", err)
	}
	return admin, token, nil
}

func (s *SuperAdminService) GetSuperAdminByID(ctx context.Context, identity models.Identity, id string) (*models.SuperAdmin, error) {
	if !identity.IsSuperAdmin() {
		return nil, NewForbiddenError("Forbidden: Access Denied")
	}
	admin, err := s.accounts.GetSuperAdminByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Super admin not found")
	}
	return admin, nil
}

// ResetSuperAdminPassword changes the caller's own password.
func (s *SuperAdminService) ResetSuperAdminPassword(ctx context.Context, identity models.Identity, input ResetPasswordInput) error {
	if !identity.IsSuperAdmin() {
		return NewForbiddenError("Forbidden: Access Denied")
	}
	if err := validateInput(input); err != nil {
		return err
	}

	admin, err := s.accounts.GetSuperAdminByID(ctx, identity.ID)
	if err != nil {
		return storeError(err, "Super admin not found")
	}
	if !checkPassword(admin.PasswordHash, input.OldPassword) {
		return NewUnauthorizedError("Old password is incorrect")
	}

	hash, err := hashPassword(input.NewPassword)
	if err != nil {
		return err
	}
	return storeError(s.accounts.UpdateSuperAdminPassword(ctx, admin.ID, hash), "Super admin not found")
}
