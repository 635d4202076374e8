package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"animax/internal/auth"
	"animax/internal/authz"
	"animax/internal/models"
	"animax/internal/storetest"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var (
	adminID  = models.Identity{ID: "admin-1", Role: models.RoleSuperAdmin, Email: "admin@animax.test"}
	viewerID = models.Identity{ID: "user-1", Role: models.RoleUser, Email: "viewer@animax.test"}
)

// pngBytes starts with the PNG signature so content sniffing recognises it.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)

type fixture struct {
	store *storetest.Memory
	media *storetest.Media

	uploads   *UploadService
	cascade   *CascadeManager
	anime     *AnimeService
	seasons   *SeasonService
	episodes  *EpisodeService
	users     *UserService
	admins    *SuperAdminService
	watchlist *WatchlistService
	progress  *WatchProgressService
	comments  *CommentService
	tokens    *auth.JWTManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	passwordHashCost = bcrypt.MinCost

	enforcer, err := authz.NewEnforcer(authz.Config{})
	require.NoError(t, err)
	tokens, err := auth.NewJWTManager("test_secret_that_is_long_enough_for_hs256", time.Hour)
	require.NoError(t, err)

	store := storetest.NewMemory()
	media := storetest.NewMedia()
	uploads := NewUploadService(media)
	cascade := NewCascadeManager(store, media, enforcer)

	return &fixture{
		store:     store,
		media:     media,
		uploads:   uploads,
		cascade:   cascade,
		anime:     NewAnimeService(store, uploads, enforcer, cascade),
		seasons:   NewSeasonService(store, uploads, enforcer, cascade),
		episodes:  NewEpisodeService(store, uploads, enforcer, cascade),
		users:     NewUserService(store, store, uploads, tokens, enforcer),
		admins:    NewSuperAdminService(store, uploads, tokens, true),
		watchlist: NewWatchlistService(store, store, enforcer),
		progress:  NewWatchProgressService(store, store, enforcer),
		comments:  NewCommentService(store, store, enforcer),
		tokens:    tokens,
	}
}

func pngFile() *MediaFile {
	return &MediaFile{
		Body:        bytes.NewReader(pngBytes),
		Filename:    "cover.png",
		ContentType: "image/png",
		Size:        int64(len(pngBytes)),
	}
}

func mp4File() *MediaFile {
	body := []byte("\x00\x00\x00\x18ftypmp42")
	return &MediaFile{
		Body:        bytes.NewReader(body),
		Filename:    "episode.mp4",
		ContentType: "video/mp4",
		Size:        int64(len(body)),
	}
}

func webmFile() *MediaFile {
	body := []byte("\x1a\x45\xdf\xa3webm")
	return &MediaFile{
		Body:        bytes.NewReader(body),
		Filename:    "episode.webm",
		ContentType: "video/webm",
		Size:        int64(len(body)),
	}
}

// seeded is an anime with two seasons of two episodes each.
type seeded struct {
	anime    *models.Anime
	seasons  []*models.Season
	episodes []*models.Episode
}

func (f *fixture) seed(t *testing.T, title string) seeded {
	t.Helper()
	ctx := context.Background()

	anime, err := f.anime.CreateAnime(ctx, adminID, AnimeInput{
		Title:       title,
		Description: "ninja story",
		Genres:      []string{"Action"},
		ReleaseDate: "2002-10-03",
	}, pngFile())
	require.NoError(t, err)

	out := seeded{anime: anime}
	for n := 1; n <= 2; n++ {
		season, err := f.seasons.AddSeason(ctx, adminID, anime.ID, SeasonInput{
			SeasonNumber: n,
			SeasonTitle:  "Arc",
		}, pngFile())
		require.NoError(t, err)
		out.seasons = append(out.seasons, season)

		for e := 1; e <= 2; e++ {
			episode, err := f.episodes.AddEpisode(ctx, adminID, season.ID, EpisodeInput{
				EpisodeNumber: e,
				Duration:      "1420",
			}, mp4File())
			require.NoError(t, err)
			out.episodes = append(out.episodes, episode)
		}
	}
	return out
}

func requireKind(t *testing.T, err error, kind ErrorKind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, KindOf(err), "error: %v", err)
}
