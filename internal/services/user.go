// ===============================
// internal/services/user.go - Viewer accounts
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

type SignupInput struct {
	UserName string `json:"userName" form:"userName" validate:"required"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=6"`
	Bio      string `json:"bio" form:"bio" validate:"max=200"`
}

type SigninInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ResetPasswordInput struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

type UserUpdate struct {
	UserName *string `json:"userName" validate:"omitempty,min=1"`
	Bio      *string `json:"bio" validate:"omitempty,max=200"`
}

type UserService struct {
	accounts   AccountStore
	engagement EngagementStore
	uploads    *UploadService
	tokens     TokenIssuer
	authz      Authorizer
}

func NewUserService(accounts AccountStore, engagement EngagementStore, uploads *UploadService, tokens TokenIssuer, authz Authorizer) *UserService {
	return &UserService{
		accounts:   accounts,
		engagement: engagement,
		uploads:    uploads,
		tokens:     tokens,
		authz:      authz,
	}
}

func (s *UserService) SignupUser(ctx context.Context, input SignupInput, picture *MediaFile) (*models.User, error) {
	input.UserName = strings.TrimSpace(input.UserName)
	input.Email = normalizeEmail(input.Email)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	if _, err := s.accounts.GetUserByEmail(ctx, input.Email); err == nil {
		return nil, NewConflictError("User already exists")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, NewInternalError("failed to look up user", err)
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New().String(),
		UserName:     input.UserName,
		Email:        input.Email,
		PasswordHash: hash,
		Bio:          strings.TrimSpace(input.Bio),
	}

	if picture != nil {
		url, err := s.uploads.Upload(ctx, picture, storage.KeySpec{
			Kind:   storage.KindProfilePicture,
			UserID: user.ID,
		})
		if err != nil {
			return nil, err
		}
		user.ProfilePicture = &url
	}

	if err := s.accounts.CreateUser(ctx, user); err != nil {
		if user.HasProfilePicture() {
			s.uploads.DeleteQuietly(ctx, *user.ProfilePicture)
		}
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, NewConflictError("User already exists")
		}
		return nil, NewInternalError("failed to create user", err)
	}

	logging.Ctx(ctx).Info().Str("user_id", user.ID).Msg("user signed up")
	return s.withActivity(ctx, user)
}

// SigninUser checks the credentials and issues a USER token.
func (s *UserService) SigninUser(ctx context.Context, input SigninInput) (*models.User, string, error) {
	input.Email = normalizeEmail(input.Email)
	if err := validateInput(input); err != nil {
		return nil, "", err
	}

	user, err := s.accounts.GetUserByEmail(ctx, input.Email)
	if err != nil {
		return nil, "", storeError(err, "User not found")
	}
	if !checkPassword(user.PasswordHash, input.Password) {
		return nil, "", NewUnauthorizedError("Invalid credentials")
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email, models.RoleUser)
	if err != nil {
		return nil, "", NewInternalError("failed to issue token", err)
	}

	user, err = s.withActivity(ctx, user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *UserService) GetUserByID(ctx context.Context, identity models.Identity, userID string) (*models.User, error) {
	if err := authorize(s.authz, identity, ResourceUser, ActionRead); err != nil {
		return nil, err
	}

	user, err := s.accounts.GetUserByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "User not found")
	}
	return s.withActivity(ctx, user)
}

// ResetUserPassword changes the caller's own password.
func (s *UserService) ResetUserPassword(ctx context.Context, identity models.Identity, input ResetPasswordInput) error {
	if err := validateInput(input); err != nil {
		return err
	}
	if !identity.IsUser() {
		return NewForbiddenError("Forbidden: Access Denied")
	}

	user, err := s.accounts.GetUserByID(ctx, identity.ID)
	if err != nil {
		return storeError(err, "User not found")
	}
	if !checkPassword(user.PasswordHash, input.OldPassword) {
		return NewUnauthorizedError("Old password is incorrect")
	}

	hash, err := hashPassword(input.NewPassword)
	if err != nil {
		return err
	}
	return storeError(s.accounts.UpdateUserPassword(ctx, user.ID, hash), "User not found")
}

// UpdateUser lets the owner or a super admin change the profile.
func (s *UserService) UpdateUser(ctx context.Context, identity models.Identity, userID string, update UserUpdate, picture *MediaFile) (*models.User, error) {
	if err := s.authorizeOwner(identity, userID, ActionUpdate); err != nil {
		return nil, err
	}
	if err := validateInput(update); err != nil {
		return nil, err
	}

	user, err := s.accounts.GetUserByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "User not found")
	}

	if update.UserName != nil {
		user.UserName = strings.TrimSpace(*update.UserName)
	}
	if update.Bio != nil {
		user.Bio = strings.TrimSpace(*update.Bio)
	}

	if picture != nil {
		previous := ""
		if user.HasProfilePicture() {
			previous = *user.ProfilePicture
		}
		url, err := s.uploads.Replace(ctx, previous, picture, storage.KeySpec{
			Kind:   storage.KindProfilePicture,
			UserID: user.ID,
		})
		if err != nil {
			return nil, err
		}
		user.ProfilePicture = &url
	}

	if err := s.accounts.UpdateUser(ctx, user); err != nil {
		return nil, storeError(err, "User not found")
	}
	return s.withActivity(ctx, user)
}

// DeleteUser removes the account, its picture and every row it owns.
func (s *UserService) DeleteUser(ctx context.Context, identity models.Identity, userID string) error {
	if err := s.authorizeOwner(identity, userID, ActionDelete); err != nil {
		return err
	}

	user, err := s.accounts.GetUserByID(ctx, userID)
	if err != nil {
		return storeError(err, "User not found")
	}

	if user.HasProfilePicture() {
		s.uploads.DeleteQuietly(ctx, *user.ProfilePicture)
	}

	if err := s.accounts.DeleteUser(ctx, user.ID); err != nil {
		return storeError(err, "User not found")
	}

	logging.Ctx(ctx).Info().
		Str("user_id", user.ID).
		Str("deleted_by", identity.ID).
		Msg("user deleted")
	return nil
}

func (s *UserService) authorizeOwner(identity models.Identity, userID, action string) error {
	if err := authorize(s.authz, identity, ResourceUser, action); err != nil {
		return err
	}
	if identity.IsSuperAdmin() || identity.ID == userID {
		return nil
	}
	return NewForbiddenError("You can only modify your own account")
}

// withActivity fills the watchlist, comment and progress views.
func (s *UserService) withActivity(ctx context.Context, user *models.User) (*models.User, error) {
	entries, err := s.engagement.ListWatchlist(ctx, user.ID)
	if err != nil {
		return nil, NewInternalError("failed to load watchlist", err)
	}
	user.Watchlist = make([]string, 0, len(entries))
	for _, entry := range entries {
		user.Watchlist = append(user.Watchlist, entry.AnimeID)
	}

	if user.Comments, err = s.engagement.ListCommentsByUser(ctx, user.ID); err != nil {
		return nil, NewInternalError("failed to load comments", err)
	}
	if user.WatchProgress, err = s.engagement.ListWatchProgress(ctx, user.ID); err != nil {
		return nil, NewInternalError("failed to load watch progress", err)
	}
	return user, nil
}

// normalizeEmail is applied on every write and lookup of an account email.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
