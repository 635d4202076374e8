package services

import (
	"context"
	"strings"
	"testing"

	"animax/internal/models"
	"animax/internal/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAnime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	anime, err := f.anime.CreateAnime(ctx, adminID, AnimeInput{
		Title:       "X",
		Description: "d",
		ReleaseDate: "2020",
	}, pngFile())
	require.NoError(t, err)
	assert.Equal(t, "X", anime.Title)
	assert.Equal(t, models.AnimeStatusOngoing, anime.Status)
	assert.Equal(t, "https://media.test/Animax/anime/"+anime.ID+"/cover/cover.png", anime.AnimeCover)

	t.Run("duplicate title", func(t *testing.T) {
		_, err := f.anime.CreateAnime(ctx, adminID, AnimeInput{
			Title:       "X",
			Description: "d",
			ReleaseDate: "2020",
		}, pngFile())
		requireKind(t, err, KindValidation)
		assert.Equal(t, "Anime already exists", MessageOf(err))
		assert.Len(t, f.store.Animes, 1)
		assert.Len(t, f.media.Uploaded, 1)
	})

	t.Run("cover required", func(t *testing.T) {
		_, err := f.anime.CreateAnime(ctx, adminID, AnimeInput{
			Title:       "Y",
			Description: "d",
			ReleaseDate: "2020",
		}, nil)
		requireKind(t, err, KindValidation)
		assert.Equal(t, "Anime cover image is required", MessageOf(err))
	})

	t.Run("rating out of range", func(t *testing.T) {
		rating := 11.0
		_, err := f.anime.CreateAnime(ctx, adminID, AnimeInput{
			Title:       "Z",
			Description: "d",
			ReleaseDate: "2020",
			Rating:      &rating,
		}, pngFile())
		requireKind(t, err, KindValidation)
		assert.Contains(t, MessageOf(err), "rating")
	})

	t.Run("viewer is forbidden", func(t *testing.T) {
		_, err := f.anime.CreateAnime(ctx, viewerID, AnimeInput{
			Title:       "W",
			Description: "d",
			ReleaseDate: "2020",
		}, pngFile())
		requireKind(t, err, KindForbidden)
		assert.Len(t, f.store.Animes, 1)
	})
}

func TestGetAllAnime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.seed(t, "Naruto")
	f.seed(t, "Bleach")

	list, err := f.anime.GetAllAnime(ctx, "")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Bleach", list[0].Title)
	require.Len(t, list[0].Seasons, 2)
	assert.Equal(t, 1, list[0].Seasons[0].SeasonNumber)
	assert.Len(t, list[0].Seasons[0].Episodes, 2)
	assert.Len(t, list[0].Episodes, 4)

	list, err = f.anime.GetAllAnime(ctx, "completed")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.anime.GetAllAnime(ctx, "PAUSED")
	requireKind(t, err, KindValidation)
}

func TestUpdateAnime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	naruto := f.seed(t, "Naruto")
	f.seed(t, "Bleach")

	taken := "Bleach"
	_, err := f.anime.UpdateAnime(ctx, adminID, naruto.anime.ID, AnimeUpdate{Title: &taken}, nil)
	requireKind(t, err, KindValidation)
	assert.Equal(t, "Anime already exists", MessageOf(err))

	title := "Naruto Shippuden"
	status := models.AnimeStatusCompleted
	updated, err := f.anime.UpdateAnime(ctx, adminID, naruto.anime.ID, AnimeUpdate{Title: &title, Status: &status}, pngFile())
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, models.AnimeStatusCompleted, updated.Status)
	// media stays in the folder chosen at creation
	assert.Equal(t, naruto.anime.AnimeCover, updated.AnimeCover)
	assert.Equal(t, models.StringSlice{naruto.seasons[0].ID, naruto.seasons[1].ID}, updated.SeasonIDs)

	_, err = f.anime.UpdateAnime(ctx, adminID, "missing", AnimeUpdate{Title: &title}, nil)
	requireKind(t, err, KindNotFound)
}

func TestAddSeason(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	anime, err := f.anime.CreateAnime(ctx, adminID, AnimeInput{Title: "X", Description: "d", ReleaseDate: "2020"}, pngFile())
	require.NoError(t, err)

	season, err := f.seasons.AddSeason(ctx, adminID, anime.ID, SeasonInput{SeasonNumber: 1, SeasonTitle: "One"}, pngFile())
	require.NoError(t, err)
	assert.Equal(t, "https://media.test/Animax/anime/"+anime.ID+"/seasons/Season_"+season.ID+"/cover/cover.png", season.SeasonCover)

	_, err = f.seasons.AddSeason(ctx, adminID, anime.ID, SeasonInput{SeasonNumber: 1, SeasonTitle: "Again"}, pngFile())
	requireKind(t, err, KindValidation)
	assert.Equal(t, "Season number already exists", MessageOf(err))
	assert.Len(t, f.store.Seasons, 1)

	_, err = f.seasons.AddSeason(ctx, adminID, "missing", SeasonInput{SeasonNumber: 2, SeasonTitle: "Two"}, pngFile())
	requireKind(t, err, KindNotFound)

	stored, err := f.anime.GetAnimeByID(ctx, anime.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StringSlice{season.ID}, stored.SeasonIDs)
}

func TestAddEpisode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.seed(t, "Naruto")

	_, err := f.episodes.AddEpisode(ctx, adminID, s.seasons[0].ID, EpisodeInput{EpisodeNumber: 1, Duration: "10"}, mp4File())
	requireKind(t, err, KindValidation)
	assert.Equal(t, "Episode number already exists in this season", MessageOf(err))

	_, err = f.episodes.AddEpisode(ctx, adminID, s.seasons[0].ID, EpisodeInput{EpisodeNumber: 3, Duration: "10"}, pngFile())
	requireKind(t, err, KindValidation)

	title := "  Finale "
	ep, err := f.episodes.AddEpisode(ctx, adminID, s.seasons[0].ID, EpisodeInput{
		EpisodeNumber: 3,
		Title:         &title,
		Duration:      "1400",
		Subtitles:     []models.Subtitle{{Language: "en", URL: "https://subs.test/en.vtt"}},
	}, mp4File())
	require.NoError(t, err)
	assert.Equal(t, "Finale", *ep.Title)
	assert.Equal(t, "https://media.test/Animax/anime/"+s.anime.ID+"/seasons/Season_"+s.seasons[0].ID+"/episodes/Episode_"+ep.ID+".mp4", ep.AnimeEpisode)
	assert.Equal(t, s.anime.ID, ep.AnimeID)

	list, err := f.episodes.GetEpisodesBySeason(ctx, s.seasons[0].ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, 3, list[2].EpisodeNumber)

	anime, err := f.anime.GetAnimeByID(ctx, s.anime.ID)
	require.NoError(t, err)
	assert.True(t, anime.HasEpisode(ep.ID))
}

func TestUpdateEpisode_ReplacesMedia(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.seed(t, "Naruto")
	ep := s.episodes[0]

	number := 2
	_, err := f.episodes.UpdateEpisode(ctx, adminID, ep.ID, EpisodeUpdate{EpisodeNumber: &number}, nil)
	requireKind(t, err, KindValidation)

	number = 9
	updated, err := f.episodes.UpdateEpisode(ctx, adminID, ep.ID, EpisodeUpdate{EpisodeNumber: &number}, mp4File())
	require.NoError(t, err)
	assert.Equal(t, 9, updated.EpisodeNumber)
	// same key, overwritten in place
	assert.Equal(t, ep.AnimeEpisode, updated.AnimeEpisode)
	assert.Empty(t, f.media.DeletedURLs)

	updated, err = f.episodes.UpdateEpisode(ctx, adminID, ep.ID, EpisodeUpdate{}, webmFile())
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSuffix(ep.AnimeEpisode, ".mp4")+".webm", updated.AnimeEpisode)
	assert.Equal(t, []string{ep.AnimeEpisode}, f.media.DeletedURLs)
	assert.Contains(t, f.media.Objects, strings.TrimPrefix(updated.AnimeEpisode, storetest.PublicURL+"/"))
}
