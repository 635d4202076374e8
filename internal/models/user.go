// ===============================
// internal/models/user.go - Viewer and super admin accounts
// ===============================

package models

import "time"

// Account roles carried in token claims
const (
	RoleUser       = "USER"
	RoleSuperAdmin = "SUPERADMIN"
)

const MaxBioLength = 200

type User struct {
	ID             string    `json:"_id" db:"id"`
	UserName       string    `json:"userName" db:"user_name"`
	Email          string    `json:"email" db:"email"`
	PasswordHash   string    `json:"-" db:"password_hash"`
	ProfilePicture *string   `json:"profilePicture" db:"profile_picture"`
	Bio            string    `json:"bio" db:"bio"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`

	// Read-time views over the watchlist, comment and progress tables
	Watchlist     []string        `json:"watchlist" db:"-"`
	Comments      []CommentEntry  `json:"comments" db:"-"`
	WatchProgress []WatchProgress `json:"watchProgress" db:"-"`
}

// CommentEntry is the per-user comment history item.
type CommentEntry struct {
	ID        string    `json:"_id" db:"id"`
	AnimeID   string    `json:"anime" db:"anime_id"`
	EpisodeID string    `json:"episode" db:"episode_id"`
	Comment   string    `json:"comment" db:"comment"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

func (u *User) HasProfilePicture() bool {
	return u.ProfilePicture != nil && *u.ProfilePicture != ""
}

type SuperAdmin struct {
	ID             string    `json:"_id" db:"id"`
	UserName       string    `json:"userName" db:"user_name"`
	Email          string    `json:"email" db:"email"`
	PasswordHash   string    `json:"-" db:"password_hash"`
	ProfilePicture *string   `json:"profilePicture" db:"profile_picture"`
	IsSuperAdmin   bool      `json:"isSuperAdmin" db:"is_super_admin"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}

// Identity is the authenticated caller resolved by the auth gate.
type Identity struct {
	ID    string `json:"id"`
	Role  string `json:"role"`
	Email string `json:"email"`
}

func (i Identity) IsSuperAdmin() bool {
	return i.Role == RoleSuperAdmin
}

func (i Identity) IsUser() bool {
	return i.Role == RoleUser
}
