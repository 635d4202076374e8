package services

import (
	"context"
	"io"

	"animax/internal/models"
)

// CatalogStore persists animes, seasons and episodes. Implemented by
// repositories.CatalogRepository.
type CatalogStore interface {
	CreateAnime(ctx context.Context, anime *models.Anime) error
	GetAnimeByID(ctx context.Context, id string) (*models.Anime, error)
	GetAnimesByIDs(ctx context.Context, ids []string) ([]models.Anime, error)
	AnimeTitleExists(ctx context.Context, title, excludeID string) (bool, error)
	ListAnimes(ctx context.Context, status string) ([]models.Anime, error)
	UpdateAnime(ctx context.Context, anime *models.Anime) error
	DeleteAnime(ctx context.Context, id string) error

	CreateSeason(ctx context.Context, season *models.Season) error
	GetSeasonByID(ctx context.Context, id string) (*models.Season, error)
	GetSeasonsByIDs(ctx context.Context, ids []string) ([]models.Season, error)
	ListSeasonsByAnime(ctx context.Context, animeID string) ([]models.Season, error)
	SeasonNumberExists(ctx context.Context, animeID string, number int, excludeID string) (bool, error)
	UpdateSeason(ctx context.Context, season *models.Season) error
	DetachSeason(ctx context.Context, animeID, seasonID string) error
	DeleteSeasons(ctx context.Context, ids []string) error

	CreateEpisode(ctx context.Context, episode *models.Episode) error
	GetEpisodeByID(ctx context.Context, id string) (*models.Episode, error)
	GetEpisodesByIDs(ctx context.Context, ids []string) ([]models.Episode, error)
	ListEpisodesBySeason(ctx context.Context, seasonID string) ([]models.Episode, error)
	EpisodeNumberExists(ctx context.Context, seasonID string, number int, excludeID string) (bool, error)
	UpdateEpisode(ctx context.Context, episode *models.Episode) error
	DetachEpisode(ctx context.Context, episodeID string) error
	DeleteEpisodes(ctx context.Context, ids []string) error
}

// AccountStore persists viewers and super admins.
type AccountStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	UpdateUserPassword(ctx context.Context, id, passwordHash string) error
	DeleteUser(ctx context.Context, id string) error

	CreateSuperAdmin(ctx context.Context, admin *models.SuperAdmin) error
	GetSuperAdminByID(ctx context.Context, id string) (*models.SuperAdmin, error)
	GetSuperAdminByEmail(ctx context.Context, email string) (*models.SuperAdmin, error)
	UpdateSuperAdminPassword(ctx context.Context, id, passwordHash string) error
}

// EngagementStore persists watchlists, watch progress and comments.
type EngagementStore interface {
	AddToWatchlist(ctx context.Context, entry *models.WatchlistEntry) error
	RemoveFromWatchlist(ctx context.Context, userID, animeID string) error
	ListWatchlist(ctx context.Context, userID string) ([]models.WatchlistEntry, error)

	SaveWatchProgress(ctx context.Context, progress *models.WatchProgress) error
	GetWatchProgress(ctx context.Context, userID, animeID, seasonID, episodeID string) (*models.WatchProgress, error)
	ListWatchProgress(ctx context.Context, userID string) ([]models.WatchProgress, error)

	CreateComment(ctx context.Context, comment *models.Comment) error
	GetComment(ctx context.Context, id string) (*models.Comment, error)
	ListCommentsByEpisode(ctx context.Context, episodeID string) ([]models.Comment, error)
	ListCommentsByUser(ctx context.Context, userID string) ([]models.CommentEntry, error)
	UpdateComment(ctx context.Context, comment *models.Comment) error
	DeleteComment(ctx context.Context, id string) error
}

// MediaStore is the object store with folder semantics. Implemented by
// storage.ObjectStore.
type MediaStore interface {
	Upload(ctx context.Context, key string, body io.ReadSeeker, contentType string) (string, error)
	DeleteByURL(ctx context.Context, rawURL string) error
	ExistsByURL(ctx context.Context, rawURL string) (bool, error)
	DeleteFolder(ctx context.Context, prefix string) error
	RootFolder() string
}

// Authorizer answers (role, resource, action) policy questions.
type Authorizer interface {
	Enforce(role, resource, action string) (bool, error)
}

// Policy resources and actions
const (
	ResourceAnime         = "anime"
	ResourceSeason        = "season"
	ResourceEpisode       = "episode"
	ResourceWatchlist     = "watchlist"
	ResourceWatchProgress = "watch_progress"
	ResourceComment       = "comment"
	ResourceUser          = "user"

	ActionRead   = "read"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

func authorize(authz Authorizer, identity models.Identity, resource, action string) error {
	allowed, err := authz.Enforce(identity.Role, resource, action)
	if err != nil {
		return NewInternalError("authorization check failed", err)
	}
	if !allowed {
		return NewForbiddenError("Forbidden: Access Denied")
	}
	return nil
}
