// Package storetest provides in-memory stores and a recording media store
// for service and handler tests.
package storetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"animax/internal/models"
	"animax/internal/repositories"

	"github.com/google/uuid"
)

// Memory implements the catalog, account and engagement stores.
type Memory struct {
	mu sync.Mutex

	Animes      map[string]*models.Anime
	Seasons     map[string]*models.Season
	Episodes    map[string]*models.Episode
	Users       map[string]*models.User
	SuperAdmins map[string]*models.SuperAdmin
	Watchlists  map[string]*models.WatchlistEntry
	Progress    map[string]*models.WatchProgress
	Comments    map[string]*models.Comment
}

func NewMemory() *Memory {
	return &Memory{
		Animes:      map[string]*models.Anime{},
		Seasons:     map[string]*models.Season{},
		Episodes:    map[string]*models.Episode{},
		Users:       map[string]*models.User{},
		SuperAdmins: map[string]*models.SuperAdmin{},
		Watchlists:  map[string]*models.WatchlistEntry{},
		Progress:    map[string]*models.WatchProgress{},
		Comments:    map[string]*models.Comment{},
	}
}

func notFound(what string) error {
	return fmt.Errorf("%s: %w", what, repositories.ErrNotFound)
}

func duplicate(what string) error {
	return fmt.Errorf("%s: %w", what, repositories.ErrDuplicate)
}

func newID(id string) string {
	if id == "" {
		return uuid.New().String()
	}
	return id
}

func cloneIDs(ids models.StringSlice) models.StringSlice {
	return append(models.StringSlice{}, ids...)
}

func copyAnime(a *models.Anime) models.Anime {
	out := *a
	out.Genres = cloneIDs(a.Genres)
	out.SeasonIDs = cloneIDs(a.SeasonIDs)
	out.EpisodeIDs = cloneIDs(a.EpisodeIDs)
	out.Seasons, out.Episodes = nil, nil
	return out
}

func copySeason(s *models.Season) models.Season {
	out := *s
	out.EpisodeIDs = cloneIDs(s.EpisodeIDs)
	out.Episodes = nil
	return out
}

// ===============================
// ANIME
// ===============================

func (m *Memory) CreateAnime(_ context.Context, anime *models.Anime) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.Animes {
		if a.Title == anime.Title {
			return duplicate("create anime")
		}
	}
	anime.ID = newID(anime.ID)
	anime.CreatedAt, anime.UpdatedAt = time.Now(), time.Now()
	if anime.SeasonIDs == nil {
		anime.SeasonIDs = models.StringSlice{}
	}
	if anime.EpisodeIDs == nil {
		anime.EpisodeIDs = models.StringSlice{}
	}
	stored := copyAnime(anime)
	m.Animes[anime.ID] = &stored
	return nil
}

func (m *Memory) GetAnimeByID(_ context.Context, id string) (*models.Anime, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.Animes[id]
	if !ok {
		return nil, notFound("get anime")
	}
	out := copyAnime(a)
	return &out, nil
}

func (m *Memory) GetAnimesByIDs(_ context.Context, ids []string) ([]models.Anime, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []models.Anime{}
	for _, id := range ids {
		if a, ok := m.Animes[id]; ok {
			out = append(out, copyAnime(a))
		}
	}
	models.SortByTitle(out)
	return out, nil
}

func (m *Memory) AnimeTitleExists(_ context.Context, title, excludeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.Animes {
		if a.Title == title && a.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) ListAnimes(_ context.Context, status string) ([]models.Anime, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []models.Anime{}
	for _, a := range m.Animes {
		if status == "" || a.Status == status {
			out = append(out, copyAnime(a))
		}
	}
	models.SortByTitle(out)
	return out, nil
}

func (m *Memory) UpdateAnime(_ context.Context, anime *models.Anime) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.Animes[anime.ID]
	if !ok {
		return notFound("update anime")
	}
	for _, a := range m.Animes {
		if a.ID != anime.ID && a.Title == anime.Title {
			return duplicate("update anime")
		}
	}
	anime.UpdatedAt = time.Now()
	updated := copyAnime(anime)
	// id lists are only changed through the link operations
	updated.SeasonIDs, updated.EpisodeIDs = stored.SeasonIDs, stored.EpisodeIDs
	m.Animes[anime.ID] = &updated
	return nil
}

func (m *Memory) DeleteAnime(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Animes[id]; !ok {
		return notFound("delete anime")
	}
	delete(m.Animes, id)
	for k, w := range m.Watchlists {
		if w.AnimeID == id {
			delete(m.Watchlists, k)
		}
	}
	for k, p := range m.Progress {
		if p.AnimeID == id {
			delete(m.Progress, k)
		}
	}
	for k, c := range m.Comments {
		if c.AnimeID == id {
			delete(m.Comments, k)
		}
	}
	return nil
}

// ===============================
// SEASONS
// ===============================

func (m *Memory) CreateSeason(_ context.Context, season *models.Season) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	anime, ok := m.Animes[season.AnimeID]
	if !ok {
		return notFound("link season")
	}
	for _, s := range m.Seasons {
		if s.AnimeID == season.AnimeID && s.SeasonNumber == season.SeasonNumber {
			return duplicate("create season")
		}
	}
	season.ID = newID(season.ID)
	season.CreatedAt, season.UpdatedAt = time.Now(), time.Now()
	if season.EpisodeIDs == nil {
		season.EpisodeIDs = models.StringSlice{}
	}
	stored := copySeason(season)
	m.Seasons[season.ID] = &stored
	anime.SeasonIDs = append(anime.SeasonIDs, season.ID)
	return nil
}

func (m *Memory) GetSeasonByID(_ context.Context, id string) (*models.Season, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.Seasons[id]
	if !ok {
		return nil, notFound("get season")
	}
	out := copySeason(s)
	return &out, nil
}

func (m *Memory) GetSeasonsByIDs(_ context.Context, ids []string) ([]models.Season, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []models.Season{}
	for _, id := range ids {
		if s, ok := m.Seasons[id]; ok {
			out = append(out, copySeason(s))
		}
	}
	models.SortSeasons(out)
	return out, nil
}

func (m *Memory) ListSeasonsByAnime(_ context.Context, animeID string) ([]models.Season, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []models.Season{}
	for _, s := range m.Seasons {
		if s.AnimeID == animeID {
			out = append(out, copySeason(s))
		}
	}
	models.SortSeasons(out)
	return out, nil
}

func (m *Memory) SeasonNumberExists(_ context.Context, animeID string, number int, excludeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.Seasons {
		if s.AnimeID == animeID && s.SeasonNumber == number && s.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) UpdateSeason(_ context.Context, season *models.Season) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.Seasons[season.ID]
	if !ok {
		return notFound("update season")
	}
	stored.SeasonNumber = season.SeasonNumber
	stored.SeasonTitle = season.SeasonTitle
	stored.SeasonCover = season.SeasonCover
	stored.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) DetachSeason(_ context.Context, animeID, seasonID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if a, ok := m.Animes[animeID]; ok {
		a.SeasonIDs = a.SeasonIDs.Without(seasonID)
	}
	return nil
}

func (m *Memory) DeleteSeasons(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range ids {
		delete(m.Seasons, id)
		for k, p := range m.Progress {
			if p.SeasonID == id {
				delete(m.Progress, k)
			}
		}
	}
	return nil
}

// ===============================
// EPISODES
// ===============================

func (m *Memory) CreateEpisode(_ context.Context, episode *models.Episode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	season, ok := m.Seasons[episode.SeasonID]
	if !ok {
		return notFound("link episode to season")
	}
	anime, ok := m.Animes[episode.AnimeID]
	if !ok {
		return notFound("link episode to anime")
	}
	for _, e := range m.Episodes {
		if e.SeasonID == episode.SeasonID && e.EpisodeNumber == episode.EpisodeNumber {
			return duplicate("create episode")
		}
	}
	episode.ID = newID(episode.ID)
	episode.CreatedAt, episode.UpdatedAt = time.Now(), time.Now()
	if episode.ReleasedAt.IsZero() {
		episode.ReleasedAt = episode.CreatedAt
	}
	stored := *episode
	m.Episodes[episode.ID] = &stored
	season.EpisodeIDs = append(season.EpisodeIDs, episode.ID)
	anime.EpisodeIDs = append(anime.EpisodeIDs, episode.ID)
	return nil
}

func (m *Memory) GetEpisodeByID(_ context.Context, id string) (*models.Episode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.Episodes[id]
	if !ok {
		return nil, notFound("get episode")
	}
	out := *e
	return &out, nil
}

func (m *Memory) GetEpisodesByIDs(_ context.Context, ids []string) ([]models.Episode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []models.Episode{}
	for _, id := range ids {
		if e, ok := m.Episodes[id]; ok {
			out = append(out, *e)
		}
	}
	models.SortEpisodes(out)
	return out, nil
}

func (m *Memory) ListEpisodesBySeason(_ context.Context, seasonID string) ([]models.Episode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []models.Episode{}
	for _, e := range m.Episodes {
		if e.SeasonID == seasonID {
			out = append(out, *e)
		}
	}
	models.SortEpisodes(out)
	return out, nil
}

func (m *Memory) EpisodeNumberExists(_ context.Context, seasonID string, number int, excludeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.Episodes {
		if e.SeasonID == seasonID && e.EpisodeNumber == number && e.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) UpdateEpisode(_ context.Context, episode *models.Episode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Episodes[episode.ID]; !ok {
		return notFound("update episode")
	}
	episode.UpdatedAt = time.Now()
	stored := *episode
	m.Episodes[episode.ID] = &stored
	return nil
}

func (m *Memory) DetachEpisode(_ context.Context, episodeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.Seasons {
		s.EpisodeIDs = s.EpisodeIDs.Without(episodeID)
	}
	for _, a := range m.Animes {
		a.EpisodeIDs = a.EpisodeIDs.Without(episodeID)
	}
	return nil
}

func (m *Memory) DeleteEpisodes(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range ids {
		delete(m.Episodes, id)
		for k, p := range m.Progress {
			if p.EpisodeID == id {
				delete(m.Progress, k)
			}
		}
		for k, c := range m.Comments {
			if c.EpisodeID == id {
				delete(m.Comments, k)
			}
		}
	}
	return nil
}

// ===============================
// ACCOUNTS
// ===============================

func (m *Memory) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.Users {
		if u.Email == user.Email {
			return duplicate("create user")
		}
	}
	user.ID = newID(user.ID)
	user.CreatedAt, user.UpdatedAt = time.Now(), time.Now()
	stored := *user
	m.Users[user.ID] = &stored
	return nil
}

func (m *Memory) GetUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.Users[id]
	if !ok {
		return nil, notFound("get user")
	}
	out := *u
	return &out, nil
}

func (m *Memory) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.Users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, notFound("get user by email")
}

func (m *Memory) UpdateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.Users[user.ID]
	if !ok {
		return notFound("update user")
	}
	stored.UserName = user.UserName
	stored.Bio = user.Bio
	stored.ProfilePicture = user.ProfilePicture
	stored.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) UpdateUserPassword(_ context.Context, id, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.Users[id]
	if !ok {
		return notFound("update user password")
	}
	u.PasswordHash = passwordHash
	return nil
}

func (m *Memory) DeleteUser(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Users[id]; !ok {
		return notFound("delete user")
	}
	delete(m.Users, id)
	for k, w := range m.Watchlists {
		if w.UserID == id {
			delete(m.Watchlists, k)
		}
	}
	for k, p := range m.Progress {
		if p.UserID == id {
			delete(m.Progress, k)
		}
	}
	for k, c := range m.Comments {
		if c.UserID == id {
			delete(m.Comments, k)
		}
	}
	return nil
}

func (m *Memory) CreateSuperAdmin(_ context.Context, admin *models.SuperAdmin) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.SuperAdmins {
		if a.Email == admin.Email {
			return duplicate("create super admin")
		}
	}
	admin.ID = newID(admin.ID)
	admin.IsSuperAdmin = true
	admin.CreatedAt, admin.UpdatedAt = time.Now(), time.Now()
	stored := *admin
	m.SuperAdmins[admin.ID] = &stored
	return nil
}

func (m *Memory) GetSuperAdminByID(_ context.Context, id string) (*models.SuperAdmin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.SuperAdmins[id]
	if !ok {
		return nil, notFound("get super admin")
	}
	out := *a
	return &out, nil
}

func (m *Memory) GetSuperAdminByEmail(_ context.Context, email string) (*models.SuperAdmin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.SuperAdmins {
		if a.Email == email {
			out := *a
			return &out, nil
		}
	}
	return nil, notFound("get super admin by email")
}

func (m *Memory) UpdateSuperAdminPassword(_ context.Context, id, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.SuperAdmins[id]
	if !ok {
		return notFound("update super admin password")
	}
	a.PasswordHash = passwordHash
	return nil
}

// ===============================
// ENGAGEMENT
// ===============================

func (m *Memory) AddToWatchlist(_ context.Context, entry *models.WatchlistEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, w := range m.Watchlists {
		if w.UserID == entry.UserID && w.AnimeID == entry.AnimeID {
			return duplicate("add to watchlist")
		}
	}
	entry.ID = newID(entry.ID)
	entry.AddedAt = time.Now()
	stored := *entry
	stored.Anime = nil
	m.Watchlists[entry.ID] = &stored
	return nil
}

func (m *Memory) RemoveFromWatchlist(_ context.Context, userID, animeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k, w := range m.Watchlists {
		if w.UserID == userID && w.AnimeID == animeID {
			delete(m.Watchlists, k)
			return nil
		}
	}
	return notFound("remove from watchlist")
}

func (m *Memory) ListWatchlist(_ context.Context, userID string) ([]models.WatchlistEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []models.WatchlistEntry{}
	for _, w := range m.Watchlists {
		if w.UserID == userID {
			out = append(out, *w)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AddedAt.Before(out[j].AddedAt) })
	return out, nil
}

func (m *Memory) SaveWatchProgress(_ context.Context, progress *models.WatchProgress) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	progress.UpdatedAt = time.Now()
	for _, p := range m.Progress {
		if p.SameEpisode(progress) {
			p.CurrentTime = progress.CurrentTime
			p.UpdatedAt = progress.UpdatedAt
			*progress = *p
			return nil
		}
	}
	progress.ID = newID(progress.ID)
	stored := *progress
	m.Progress[progress.ID] = &stored
	return nil
}

func (m *Memory) GetWatchProgress(_ context.Context, userID, animeID, seasonID, episodeID string) (*models.WatchProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	want := &models.WatchProgress{UserID: userID, AnimeID: animeID, SeasonID: seasonID, EpisodeID: episodeID}
	for _, p := range m.Progress {
		if p.SameEpisode(want) {
			out := *p
			return &out, nil
		}
	}
	return nil, notFound("get watch progress")
}

func (m *Memory) ListWatchProgress(_ context.Context, userID string) ([]models.WatchProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []models.WatchProgress{}
	for _, p := range m.Progress {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *Memory) CreateComment(_ context.Context, comment *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	comment.ID = newID(comment.ID)
	comment.CreatedAt, comment.UpdatedAt = time.Now(), time.Now()
	stored := *comment
	stored.Author = nil
	m.Comments[comment.ID] = &stored
	return nil
}

func (m *Memory) GetComment(_ context.Context, id string) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.Comments[id]
	if !ok {
		return nil, notFound("get comment")
	}
	out := *c
	return &out, nil
}

func (m *Memory) ListCommentsByEpisode(_ context.Context, episodeID string) ([]models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []models.Comment{}
	for _, c := range m.Comments {
		if c.EpisodeID != episodeID {
			continue
		}
		comment := *c
		if u, ok := m.Users[c.UserID]; ok {
			comment.Author = &models.CommentAuthor{ID: u.ID, UserName: u.UserName, ProfilePicture: u.ProfilePicture}
		}
		out = append(out, comment)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) ListCommentsByUser(_ context.Context, userID string) ([]models.CommentEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []models.CommentEntry{}
	for _, c := range m.Comments {
		if c.UserID == userID {
			out = append(out, models.CommentEntry{
				ID: c.ID, AnimeID: c.AnimeID, EpisodeID: c.EpisodeID, Comment: c.Comment, CreatedAt: c.CreatedAt,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) UpdateComment(_ context.Context, comment *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.Comments[comment.ID]
	if !ok {
		return notFound("update comment")
	}
	c.Comment = comment.Comment
	c.UpdatedAt = time.Now()
	comment.UpdatedAt = c.UpdatedAt
	return nil
}

func (m *Memory) DeleteComment(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Comments[id]; !ok {
		return notFound("delete comment")
	}
	delete(m.Comments, id)
	return nil
}

// References lists every row that still mentions id in any
// reference column. Used to assert that cascades leave nothing behind.
func (m *Memory) References(id string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var refs []string
	for _, a := range m.Animes {
		if a.ID == id || a.SeasonIDs.Contains(id) || a.EpisodeIDs.Contains(id) {
			refs = append(refs, "anime:"+a.ID)
		}
	}
	for _, s := range m.Seasons {
		if s.ID == id || s.AnimeID == id || s.EpisodeIDs.Contains(id) {
			refs = append(refs, "season:"+s.ID)
		}
	}
	for _, e := range m.Episodes {
		if e.ID == id || e.SeasonID == id || e.AnimeID == id {
			refs = append(refs, "episode:"+e.ID)
		}
	}
	for _, w := range m.Watchlists {
		if w.AnimeID == id {
			refs = append(refs, "watchlist:"+w.ID)
		}
	}
	for _, p := range m.Progress {
		if p.AnimeID == id || p.SeasonID == id || p.EpisodeID == id {
			refs = append(refs, "progress:"+p.ID)
		}
	}
	for _, c := range m.Comments {
		if c.AnimeID == id || c.EpisodeID == id {
			refs = append(refs, "comment:"+c.ID)
		}
	}
	return refs
}
