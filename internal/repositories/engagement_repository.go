// ===============================
// internal/repositories/engagement_repository.go - Watchlists, progress and comments
// ===============================

package repositories

import (
	"context"
	"time"

	"animax/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type EngagementRepository struct {
	db *sqlx.DB
}

func NewEngagementRepository(db *sqlx.DB) *EngagementRepository {
	return &EngagementRepository{db: db}
}

// ===============================
// WATCHLIST
// ===============================

// AddToWatchlist returns ErrDuplicate when the anime is already listed.
func (r *EngagementRepository) AddToWatchlist(ctx context.Context, entry *models.WatchlistEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	entry.AddedAt = time.Now().UTC()

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO watchlists (id, user_id, anime_id, added_at)
		VALUES (:id, :user_id, :anime_id, :added_at)`, entry)
	return translate(err, "add to watchlist")
}

func (r *EngagementRepository) RemoveFromWatchlist(ctx context.Context, userID, animeID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM watchlists WHERE user_id = $1 AND anime_id = $2`, userID, animeID)
	if err != nil {
		return translate(err, "remove from watchlist")
	}
	return expectOne(res, "remove from watchlist")
}

func (r *EngagementRepository) ListWatchlist(ctx context.Context, userID string) ([]models.WatchlistEntry, error) {
	entries := []models.WatchlistEntry{}
	err := r.db.SelectContext(ctx, &entries, `
		SELECT id, user_id, anime_id, added_at FROM watchlists
		WHERE user_id = $1 ORDER BY added_at`, userID)
	return entries, translate(err, "list watchlist")
}

// ===============================
// WATCH PROGRESS
// ===============================

// SaveWatchProgress inserts or updates the single row for the
// (user, anime, season, episode) slot and reloads it into progress.
func (r *EngagementRepository) SaveWatchProgress(ctx context.Context, progress *models.WatchProgress) error {
	if progress.ID == "" {
		progress.ID = uuid.New().String()
	}
	progress.UpdatedAt = time.Now().UTC()

	query := `
		INSERT INTO watch_progress (id, user_id, anime_id, season_id, episode_id, current_time_seconds, updated_at)
		VALUES (:id, :user_id, :anime_id, :season_id, :episode_id, :current_time_seconds, :updated_at)
		ON CONFLICT (user_id, anime_id, season_id, episode_id) DO UPDATE SET
			current_time_seconds = EXCLUDED.current_time_seconds,
			updated_at = EXCLUDED.updated_at
		RETURNING id, user_id, anime_id, season_id, episode_id, current_time_seconds, updated_at`

	rows, err := r.db.NamedQueryContext(ctx, query, progress)
	if err != nil {
		return translate(err, "save watch progress")
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.StructScan(progress); err != nil {
			return translate(err, "scan watch progress")
		}
	}
	return translate(rows.Err(), "save watch progress")
}

func (r *EngagementRepository) GetWatchProgress(ctx context.Context, userID, animeID, seasonID, episodeID string) (*models.WatchProgress, error) {
	var progress models.WatchProgress
	err := r.db.GetContext(ctx, &progress, `
		SELECT id, user_id, anime_id, season_id, episode_id, current_time_seconds, updated_at
		FROM watch_progress
		WHERE user_id = $1 AND anime_id = $2 AND season_id = $3 AND episode_id = $4`,
		userID, animeID, seasonID, episodeID)
	if err != nil {
		return nil, translate(err, "get watch progress")
	}
	return &progress, nil
}

func (r *EngagementRepository) ListWatchProgress(ctx context.Context, userID string) ([]models.WatchProgress, error) {
	list := []models.WatchProgress{}
	err := r.db.SelectContext(ctx, &list, `
		SELECT id, user_id, anime_id, season_id, episode_id, current_time_seconds, updated_at
		FROM watch_progress WHERE user_id = $1 ORDER BY updated_at DESC`, userID)
	return list, translate(err, "list watch progress")
}

// ===============================
// COMMENTS
// ===============================

const commentColumns = `id, user_id, anime_id, episode_id, comment, created_at, updated_at`

func (r *EngagementRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	comment.CreatedAt, comment.UpdatedAt = now, now

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO comments (`+commentColumns+`)
		VALUES (:id, :user_id, :anime_id, :episode_id, :comment, :created_at, :updated_at)`, comment)
	return translate(err, "create comment")
}

func (r *EngagementRepository) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.GetContext(ctx, &comment, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id)
	if err != nil {
		return nil, translate(err, "get comment")
	}
	return &comment, nil
}

type commentRow struct {
	models.Comment
	AuthorName    *string `db:"author_name"`
	AuthorPicture *string `db:"author_picture"`
}

// ListCommentsByEpisode returns the newest comments first with their authors.
func (r *EngagementRepository) ListCommentsByEpisode(ctx context.Context, episodeID string) ([]models.Comment, error) {
	var rows []commentRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT c.id, c.user_id, c.anime_id, c.episode_id, c.comment, c.created_at, c.updated_at,
		       u.user_name AS author_name, u.profile_picture AS author_picture
		FROM comments c
		LEFT JOIN users u ON u.id = c.user_id
		WHERE c.episode_id = $1
		ORDER BY c.created_at DESC`, episodeID)
	if err != nil {
		return nil, translate(err, "list comments")
	}

	comments := make([]models.Comment, 0, len(rows))
	for _, row := range rows {
		comment := row.Comment
		if row.AuthorName != nil {
			comment.Author = &models.CommentAuthor{
				ID:             comment.UserID,
				UserName:       *row.AuthorName,
				ProfilePicture: row.AuthorPicture,
			}
		}
		comments = append(comments, comment)
	}
	return comments, nil
}

func (r *EngagementRepository) ListCommentsByUser(ctx context.Context, userID string) ([]models.CommentEntry, error) {
	entries := []models.CommentEntry{}
	err := r.db.SelectContext(ctx, &entries, `
		SELECT id, anime_id, episode_id, comment, created_at FROM comments
		WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	return entries, translate(err, "list user comments")
}

func (r *EngagementRepository) UpdateComment(ctx context.Context, comment *models.Comment) error {
	comment.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE comments SET comment = $1, updated_at = $2 WHERE id = $3`,
		comment.Comment, comment.UpdatedAt, comment.ID)
	if err != nil {
		return translate(err, "update comment")
	}
	return expectOne(res, "update comment")
}

func (r *EngagementRepository) DeleteComment(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return translate(err, "delete comment")
	}
	return expectOne(res, "delete comment")
}

