// ===============================
// internal/repositories/catalog_repository.go - Anime, season and episode rows
// ===============================

package repositories

import (
	"context"
	"time"

	"animax/internal/database"
	"animax/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type CatalogRepository struct {
	db *sqlx.DB
}

func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

const animeColumns = `id, title, description, genres, status, release_date, rating, studio,
	anime_cover, season_ids, episode_ids, media_folder, created_at, updated_at`

const seasonColumns = `id, anime_id, season_number, season_title, season_cover, episode_ids,
	media_folder, created_at, updated_at`

const episodeColumns = `id, season_id, anime_id, episode_number, title, anime_episode, duration,
	subtitles, released_at, created_at, updated_at`

// ===============================
// ANIME
// ===============================

func (r *CatalogRepository) CreateAnime(ctx context.Context, anime *models.Anime) error {
	if anime.ID == "" {
		anime.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	anime.CreatedAt, anime.UpdatedAt = now, now
	if anime.SeasonIDs == nil {
		anime.SeasonIDs = models.StringSlice{}
	}
	if anime.EpisodeIDs == nil {
		anime.EpisodeIDs = models.StringSlice{}
	}

	query := `
		INSERT INTO animes (` + animeColumns + `)
		VALUES (:id, :title, :description, :genres, :status, :release_date, :rating, :studio,
			:anime_cover, :season_ids, :episode_ids, :media_folder, :created_at, :updated_at)`

	_, err := r.db.NamedExecContext(ctx, query, anime)
	return translate(err, "create anime")
}

func (r *CatalogRepository) GetAnimeByID(ctx context.Context, id string) (*models.Anime, error) {
	var anime models.Anime
	err := r.db.GetContext(ctx, &anime, `SELECT `+animeColumns+` FROM animes WHERE id = $1`, id)
	if err != nil {
		return nil, translate(err, "get anime")
	}
	return &anime, nil
}

func (r *CatalogRepository) GetAnimesByIDs(ctx context.Context, ids []string) ([]models.Anime, error) {
	animes := []models.Anime{}
	if len(ids) == 0 {
		return animes, nil
	}
	err := r.db.SelectContext(ctx, &animes,
		`SELECT `+animeColumns+` FROM animes WHERE id = ANY($1) ORDER BY title`, pq.Array(ids))
	return animes, translate(err, "get animes")
}

// AnimeTitleExists checks the unique title, ignoring excludeID when set.
func (r *CatalogRepository) AnimeTitleExists(ctx context.Context, title, excludeID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM animes WHERE title = $1 AND id <> $2)`, title, excludeID)
	return exists, translate(err, "check anime title")
}

// ListAnimes returns every anime sorted by title, optionally filtered by status.
func (r *CatalogRepository) ListAnimes(ctx context.Context, status string) ([]models.Anime, error) {
	animes := []models.Anime{}
	query := `SELECT ` + animeColumns + ` FROM animes`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY title`

	err := r.db.SelectContext(ctx, &animes, query, args...)
	return animes, translate(err, "list animes")
}

func (r *CatalogRepository) UpdateAnime(ctx context.Context, anime *models.Anime) error {
	anime.UpdatedAt = time.Now().UTC()
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE animes SET
			title = :title, description = :description, genres = :genres, status = :status,
			release_date = :release_date, rating = :rating, studio = :studio,
			anime_cover = :anime_cover, updated_at = :updated_at
		WHERE id = :id`, anime)
	if err != nil {
		return translate(err, "update anime")
	}
	return expectOne(res, "update anime")
}

// DeleteAnime removes the anime row together with the watchlist, progress
// and comment rows that point at it.
func (r *CatalogRepository) DeleteAnime(ctx context.Context, id string) error {
	return database.Transaction(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM animes WHERE id = $1`, id)
		if err != nil {
			return translate(err, "delete anime")
		}
		if err := expectOne(res, "delete anime"); err != nil {
			return err
		}
		for _, q := range []string{
			`DELETE FROM watchlists WHERE anime_id = $1`,
			`DELETE FROM watch_progress WHERE anime_id = $1`,
			`DELETE FROM comments WHERE anime_id = $1`,
		} {
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return translate(err, "purge anime references")
			}
		}
		return nil
	})
}

// ===============================
// SEASONS
// ===============================

// CreateSeason inserts the row and appends its id to the anime's season list.
func (r *CatalogRepository) CreateSeason(ctx context.Context, season *models.Season) error {
	if season.ID == "" {
		season.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	season.CreatedAt, season.UpdatedAt = now, now
	if season.EpisodeIDs == nil {
		season.EpisodeIDs = models.StringSlice{}
	}

	return database.Transaction(ctx, r.db, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO seasons (`+seasonColumns+`)
			VALUES (:id, :anime_id, :season_number, :season_title, :season_cover, :episode_ids,
				:media_folder, :created_at, :updated_at)`, season)
		if err != nil {
			return translate(err, "create season")
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE animes SET season_ids = array_append(season_ids, $1), updated_at = $2
			WHERE id = $3`, season.ID, now, season.AnimeID)
		if err != nil {
			return translate(err, "link season")
		}
		return expectOne(res, "link season")
	})
}

func (r *CatalogRepository) GetSeasonByID(ctx context.Context, id string) (*models.Season, error) {
	var season models.Season
	err := r.db.GetContext(ctx, &season, `SELECT `+seasonColumns+` FROM seasons WHERE id = $1`, id)
	if err != nil {
		return nil, translate(err, "get season")
	}
	return &season, nil
}

func (r *CatalogRepository) GetSeasonsByIDs(ctx context.Context, ids []string) ([]models.Season, error) {
	seasons := []models.Season{}
	if len(ids) == 0 {
		return seasons, nil
	}
	err := r.db.SelectContext(ctx, &seasons,
		`SELECT `+seasonColumns+` FROM seasons WHERE id = ANY($1) ORDER BY season_number`, pq.Array(ids))
	return seasons, translate(err, "get seasons")
}

func (r *CatalogRepository) ListSeasonsByAnime(ctx context.Context, animeID string) ([]models.Season, error) {
	seasons := []models.Season{}
	err := r.db.SelectContext(ctx, &seasons,
		`SELECT `+seasonColumns+` FROM seasons WHERE anime_id = $1 ORDER BY season_number`, animeID)
	return seasons, translate(err, "list seasons")
}

func (r *CatalogRepository) SeasonNumberExists(ctx context.Context, animeID string, number int, excludeID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS(SELECT 1 FROM seasons WHERE anime_id = $1 AND season_number = $2 AND id <> $3)`,
		animeID, number, excludeID)
	return exists, translate(err, "check season number")
}

func (r *CatalogRepository) UpdateSeason(ctx context.Context, season *models.Season) error {
	season.UpdatedAt = time.Now().UTC()
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE seasons SET
			season_number = :season_number, season_title = :season_title,
			season_cover = :season_cover, updated_at = :updated_at
		WHERE id = :id`, season)
	if err != nil {
		return translate(err, "update season")
	}
	return expectOne(res, "update season")
}

// DetachSeason removes the season id from its anime's season list.
func (r *CatalogRepository) DetachSeason(ctx context.Context, animeID, seasonID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE animes SET season_ids = array_remove(season_ids, $1), updated_at = NOW()
		WHERE id = $2`, seasonID, animeID)
	return translate(err, "detach season")
}

// DeleteSeasons removes season rows and the progress rows recorded against them.
func (r *CatalogRepository) DeleteSeasons(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return database.Transaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM seasons WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
			return translate(err, "delete seasons")
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM watch_progress WHERE season_id = ANY($1)`, pq.Array(ids)); err != nil {
			return translate(err, "purge season progress")
		}
		return nil
	})
}

// ===============================
// EPISODES
// ===============================

// CreateEpisode inserts the row and appends its id to both the season and
// the anime episode lists.
func (r *CatalogRepository) CreateEpisode(ctx context.Context, episode *models.Episode) error {
	if episode.ID == "" {
		episode.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	episode.CreatedAt, episode.UpdatedAt = now, now
	if episode.ReleasedAt.IsZero() {
		episode.ReleasedAt = now
	}
	if episode.Subtitles == nil {
		episode.Subtitles = models.Subtitles{}
	}

	return database.Transaction(ctx, r.db, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO episodes (`+episodeColumns+`)
			VALUES (:id, :season_id, :anime_id, :episode_number, :title, :anime_episode, :duration,
				:subtitles, :released_at, :created_at, :updated_at)`, episode)
		if err != nil {
			return translate(err, "create episode")
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE seasons SET episode_ids = array_append(episode_ids, $1), updated_at = $2
			WHERE id = $3`, episode.ID, now, episode.SeasonID)
		if err != nil {
			return translate(err, "link episode to season")
		}
		if err := expectOne(res, "link episode to season"); err != nil {
			return err
		}

		res, err = tx.ExecContext(ctx, `
			UPDATE animes SET episode_ids = array_append(episode_ids, $1), updated_at = $2
			WHERE id = $3`, episode.ID, now, episode.AnimeID)
		if err != nil {
			return translate(err, "link episode to anime")
		}
		return expectOne(res, "link episode to anime")
	})
}

func (r *CatalogRepository) GetEpisodeByID(ctx context.Context, id string) (*models.Episode, error) {
	var episode models.Episode
	err := r.db.GetContext(ctx, &episode, `SELECT `+episodeColumns+` FROM episodes WHERE id = $1`, id)
	if err != nil {
		return nil, translate(err, "get episode")
	}
	return &episode, nil
}

func (r *CatalogRepository) GetEpisodesByIDs(ctx context.Context, ids []string) ([]models.Episode, error) {
	episodes := []models.Episode{}
	if len(ids) == 0 {
		return episodes, nil
	}
	err := r.db.SelectContext(ctx, &episodes,
		`SELECT `+episodeColumns+` FROM episodes WHERE id = ANY($1) ORDER BY episode_number`, pq.Array(ids))
	return episodes, translate(err, "get episodes")
}

func (r *CatalogRepository) ListEpisodesBySeason(ctx context.Context, seasonID string) ([]models.Episode, error) {
	episodes := []models.Episode{}
	err := r.db.SelectContext(ctx, &episodes,
		`SELECT `+episodeColumns+` FROM episodes WHERE season_id = $1 ORDER BY episode_number`, seasonID)
	return episodes, translate(err, "list episodes")
}

func (r *CatalogRepository) EpisodeNumberExists(ctx context.Context, seasonID string, number int, excludeID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS(SELECT 1 FROM episodes WHERE season_id = $1 AND episode_number = $2 AND id <> $3)`,
		seasonID, number, excludeID)
	return exists, translate(err, "check episode number")
}

func (r *CatalogRepository) UpdateEpisode(ctx context.Context, episode *models.Episode) error {
	episode.UpdatedAt = time.Now().UTC()
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE episodes SET
			episode_number = :episode_number, title = :title, anime_episode = :anime_episode,
			duration = :duration, subtitles = :subtitles, updated_at = :updated_at
		WHERE id = :id`, episode)
	if err != nil {
		return translate(err, "update episode")
	}
	return expectOne(res, "update episode")
}

// DetachEpisode removes the episode id from every season and anime list
// holding it.
func (r *CatalogRepository) DetachEpisode(ctx context.Context, episodeID string) error {
	return database.Transaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			UPDATE seasons SET episode_ids = array_remove(episode_ids, $1), updated_at = NOW()
			WHERE $1 = ANY(episode_ids)`, episodeID); err != nil {
			return translate(err, "detach episode from seasons")
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE animes SET episode_ids = array_remove(episode_ids, $1), updated_at = NOW()
			WHERE $1 = ANY(episode_ids)`, episodeID); err != nil {
			return translate(err, "detach episode from animes")
		}
		return nil
	})
}

// DeleteEpisodes removes episode rows with their progress and comment rows.
func (r *CatalogRepository) DeleteEpisodes(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return database.Transaction(ctx, r.db, func(tx *sqlx.Tx) error {
		for _, q := range []string{
			`DELETE FROM episodes WHERE id = ANY($1)`,
			`DELETE FROM watch_progress WHERE episode_id = ANY($1)`,
			`DELETE FROM comments WHERE episode_id = ANY($1)`,
		} {
			if _, err := tx.ExecContext(ctx, q, pq.Array(ids)); err != nil {
				return translate(err, "delete episodes")
			}
		}
		return nil
	})
}
