// ===============================
// internal/repositories/account_repository.go - Users and super admins
// ===============================

package repositories

import (
	"context"
	"strings"
	"time"

	"animax/internal/database"
	"animax/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type AccountRepository struct {
	db *sqlx.DB
}

func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const userColumns = `id, user_name, email, password_hash, profile_picture, bio, created_at, updated_at`

const superAdminColumns = `id, user_name, email, password_hash, profile_picture, is_super_admin,
	created_at, updated_at`

// ===============================
// USERS
// ===============================

func (r *AccountRepository) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (:id, :user_name, :email, :password_hash, :profile_picture, :bio, :created_at, :updated_at)`,
		user)
	return translate(err, "create user")
}

func (r *AccountRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = $1`, id); err != nil {
		return nil, translate(err, "get user")
	}
	return &user, nil
}

func (r *AccountRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, translate(err, "get user by email")
	}
	return &user, nil
}

func (r *AccountRepository) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE users SET
			user_name = :user_name, profile_picture = :profile_picture, bio = :bio, updated_at = :updated_at
		WHERE id = :id`, user)
	if err != nil {
		return translate(err, "update user")
	}
	return expectOne(res, "update user")
}

func (r *AccountRepository) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`, passwordHash, id)
	if err != nil {
		return translate(err, "update user password")
	}
	return expectOne(res, "update user password")
}

// DeleteUser removes the account with its watchlist, progress and comments.
func (r *AccountRepository) DeleteUser(ctx context.Context, id string) error {
	return database.Transaction(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return translate(err, "delete user")
		}
		if err := expectOne(res, "delete user"); err != nil {
			return err
		}
		for _, q := range []string{
			`DELETE FROM watchlists WHERE user_id = $1`,
			`DELETE FROM watch_progress WHERE user_id = $1`,
			`DELETE FROM comments WHERE user_id = $1`,
		} {
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return translate(err, "purge user rows")
			}
		}
		return nil
	})
}

// ===============================
// SUPER ADMINS
// ===============================

func (r *AccountRepository) CreateSuperAdmin(ctx context.Context, admin *models.SuperAdmin) error {
	if admin.ID == "" {
		admin.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	admin.CreatedAt, admin.UpdatedAt = now, now
	admin.Email = strings.ToLower(strings.TrimSpace(admin.Email))
	admin.IsSuperAdmin = true

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO super_admins (`+superAdminColumns+`)
		VALUES (:id, :user_name, :email, :password_hash, :profile_picture, :is_super_admin,
			:created_at, :updated_at)`, admin)
	return translate(err, "create super admin")
}

func (r *AccountRepository) GetSuperAdminByID(ctx context.Context, id string) (*models.SuperAdmin, error) {
	var admin models.SuperAdmin
	err := r.db.GetContext(ctx, &admin, `SELECT `+superAdminColumns+` FROM super_admins WHERE id = $1`, id)
	if err != nil {
		return nil, translate(err, "get super admin")
	}
	return &admin, nil
}

func (r *AccountRepository) GetSuperAdminByEmail(ctx context.Context, email string) (*models.SuperAdmin, error) {
	var admin models.SuperAdmin
	err := r.db.GetContext(ctx, &admin, `SELECT `+superAdminColumns+` FROM super_admins WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, translate(err, "get super admin by email")
	}
	return &admin, nil
}

func (r *AccountRepository) UpdateSuperAdminPassword(ctx context.Context, id, passwordHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE super_admins SET password_hash = $1, updated_at = NOW() WHERE id = $2`, passwordHash, id)
	if err != nil {
		return translate(err, "update super admin password")
	}
	return expectOne(res, "update super admin password")
}
