//go:build integration
// +build integration

package repositories_test

import (
	"context"
	"testing"
	"time"

	"animax/internal/database"
	"animax/internal/models"
	"animax/internal/repositories"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB starts PostgreSQL, applies the migrations and returns a pool.
func setupTestDB(t *testing.T) *sqlx.DB {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:alpine",
		postgres.WithDatabase("animax"),
		postgres.WithUsername("animax"),
		postgres.WithPassword("animax"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.Connect(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.RunMigrations(ctx, db))
	// second run must be a no-op
	require.NoError(t, database.RunMigrations(ctx, db))
	return db
}

func seedAnime(t *testing.T, repo *repositories.CatalogRepository, title string) *models.Anime {
	anime := &models.Anime{
		Title:       title,
		Description: "desc",
		Genres:      models.StringSlice{"Action", "Shounen"},
		Status:      models.AnimeStatusOngoing,
		ReleaseDate: "2002-10-03",
		AnimeCover:  "https://cdn.example.com/Animax/anime/" + title + "/cover/cover.png",
		MediaFolder: "Animax/anime/" + title,
	}
	require.NoError(t, repo.CreateAnime(context.Background(), anime))
	return anime
}

func TestCatalogRepository(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	catalog := repositories.NewCatalogRepository(db)
	engagement := repositories.NewEngagementRepository(db)

	anime := seedAnime(t, catalog, "Naruto")

	t.Run("duplicate title", func(t *testing.T) {
		err := catalog.CreateAnime(ctx, &models.Anime{
			Title: "Naruto", Description: "d", Status: models.AnimeStatusOngoing,
			ReleaseDate: "x", AnimeCover: "c", MediaFolder: "f",
		})
		assert.ErrorIs(t, err, repositories.ErrDuplicate)

		exists, err := catalog.AnimeTitleExists(ctx, "Naruto", "")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = catalog.AnimeTitleExists(ctx, "Naruto", anime.ID)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	season := &models.Season{
		AnimeID: anime.ID, SeasonNumber: 1, SeasonTitle: "Part 1",
		SeasonCover: "cover", MediaFolder: "Animax/anime/Naruto/seasons/Season_1",
	}
	require.NoError(t, catalog.CreateSeason(ctx, season))

	episode := &models.Episode{
		SeasonID: season.ID, AnimeID: anime.ID, EpisodeNumber: 1,
		AnimeEpisode: "video", Duration: "1420",
		Subtitles: models.Subtitles{{Language: "en", URL: "https://subs/en.vtt"}},
	}
	require.NoError(t, catalog.CreateEpisode(ctx, episode))

	t.Run("create links ids", func(t *testing.T) {
		got, err := catalog.GetAnimeByID(ctx, anime.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StringSlice{season.ID}, got.SeasonIDs)
		assert.Equal(t, models.StringSlice{episode.ID}, got.EpisodeIDs)
		assert.Equal(t, models.StringSlice{"Action", "Shounen"}, got.Genres)

		s, err := catalog.GetSeasonByID(ctx, season.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StringSlice{episode.ID}, s.EpisodeIDs)

		e, err := catalog.GetEpisodeByID(ctx, episode.ID)
		require.NoError(t, err)
		assert.Equal(t, "en", e.Subtitles[0].Language)
	})

	t.Run("detach and delete episode", func(t *testing.T) {
		require.NoError(t, engagement.CreateComment(ctx, &models.Comment{
			UserID: "u1", AnimeID: anime.ID, EpisodeID: episode.ID, Comment: "great",
		}))

		require.NoError(t, catalog.DetachEpisode(ctx, episode.ID))
		require.NoError(t, catalog.DeleteEpisodes(ctx, []string{episode.ID}))

		_, err := catalog.GetEpisodeByID(ctx, episode.ID)
		assert.ErrorIs(t, err, repositories.ErrNotFound)

		got, err := catalog.GetAnimeByID(ctx, anime.ID)
		require.NoError(t, err)
		assert.Empty(t, got.EpisodeIDs)

		comments, err := engagement.ListCommentsByEpisode(ctx, episode.ID)
		require.NoError(t, err)
		assert.Empty(t, comments)
	})

	t.Run("delete anime purges references", func(t *testing.T) {
		require.NoError(t, engagement.AddToWatchlist(ctx, &models.WatchlistEntry{UserID: "u1", AnimeID: anime.ID}))

		require.NoError(t, catalog.DetachSeason(ctx, anime.ID, season.ID))
		require.NoError(t, catalog.DeleteSeasons(ctx, []string{season.ID}))
		require.NoError(t, catalog.DeleteAnime(ctx, anime.ID))

		_, err := catalog.GetAnimeByID(ctx, anime.ID)
		assert.ErrorIs(t, err, repositories.ErrNotFound)

		list, err := engagement.ListWatchlist(ctx, "u1")
		require.NoError(t, err)
		assert.Empty(t, list)

		assert.ErrorIs(t, catalog.DeleteAnime(ctx, anime.ID), repositories.ErrNotFound)
	})
}

func TestEngagementRepository_WatchProgressUpsert(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	engagement := repositories.NewEngagementRepository(db)

	first := &models.WatchProgress{UserID: "u1", AnimeID: "a1", SeasonID: "s1", EpisodeID: "e1", CurrentTime: 30}
	require.NoError(t, engagement.SaveWatchProgress(ctx, first))

	second := &models.WatchProgress{UserID: "u1", AnimeID: "a1", SeasonID: "s1", EpisodeID: "e1", CurrentTime: 95.5}
	require.NoError(t, engagement.SaveWatchProgress(ctx, second))
	assert.Equal(t, first.ID, second.ID)

	list, err := engagement.ListWatchProgress(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 95.5, list[0].CurrentTime)
}

func TestAccountRepository(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	accounts := repositories.NewAccountRepository(db)
	engagement := repositories.NewEngagementRepository(db)

	user := &models.User{UserName: "kakashi", Email: "Kakashi@Leaf.jp", PasswordHash: "hash"}
	require.NoError(t, accounts.CreateUser(ctx, user))

	err := accounts.CreateUser(ctx, &models.User{UserName: "copy", Email: "kakashi@leaf.jp", PasswordHash: "h"})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	got, err := accounts.GetUserByEmail(ctx, "KAKASHI@leaf.jp")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	require.NoError(t, engagement.AddToWatchlist(ctx, &models.WatchlistEntry{UserID: user.ID, AnimeID: "a1"}))
	require.NoError(t, accounts.DeleteUser(ctx, user.ID))

	list, err := engagement.ListWatchlist(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = accounts.GetUserByID(ctx, user.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
