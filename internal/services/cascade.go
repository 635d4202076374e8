// ===============================
// internal/services/cascade.go - Cascading deletes across the catalog tree
// ===============================

package services

import (
	"context"

	"animax/internal/logging"
	"animax/internal/metrics"
	"animax/internal/models"
)

// CascadeManager removes a catalog entity with everything that only exists
// because of it. Object store failures are logged and counted but never
// stop the row deletions; the sequence is neither atomic nor retried.
type CascadeManager struct {
	catalog CatalogStore
	media   MediaStore
	authz   Authorizer
}

func NewCascadeManager(catalog CatalogStore, media MediaStore, authz Authorizer) *CascadeManager {
	return &CascadeManager{
		catalog: catalog,
		media:   media,
		authz:   authz,
	}
}

// DeleteAnime removes the anime, its seasons and episodes and their media.
func (m *CascadeManager) DeleteAnime(ctx context.Context, identity models.Identity, animeID string) error {
	if err := authorize(m.authz, identity, ResourceAnime, ActionDelete); err != nil {
		return err
	}

	anime, err := m.catalog.GetAnimeByID(ctx, animeID)
	if err != nil {
		return storeError(err, "Anime not found")
	}

	seasons, err := m.catalog.GetSeasonsByIDs(ctx, anime.SeasonIDs)
	if err != nil {
		return storeError(err, "Season not found")
	}

	// Episodes listed on the anime plus any only reachable through a season.
	episodeIDs := append(models.StringSlice{}, anime.EpisodeIDs...)
	seasonIDs := make([]string, 0, len(seasons))
	for _, season := range seasons {
		seasonIDs = append(seasonIDs, season.ID)
		for _, id := range season.EpisodeIDs {
			if !episodeIDs.Contains(id) {
				episodeIDs = append(episodeIDs, id)
			}
		}
	}

	episodes, err := m.catalog.GetEpisodesByIDs(ctx, episodeIDs)
	if err != nil {
		return storeError(err, "Episode not found")
	}

	log := logging.Ctx(ctx).With().Str("anime_id", anime.ID).Logger()

	m.deleteMedia(ctx, "anime", "cover", anime.AnimeCover)
	for _, season := range seasons {
		m.deleteMedia(ctx, "anime", "season_cover", season.SeasonCover)
	}
	for _, episode := range episodes {
		m.deleteMedia(ctx, "anime", "episode_media", episode.AnimeEpisode)
	}
	m.deleteFolder(ctx, "anime", anime.MediaFolder)

	if err := m.catalog.DeleteEpisodes(ctx, episodeIDs); err != nil {
		return NewInternalError("failed to delete episodes", err)
	}
	if err := m.catalog.DeleteSeasons(ctx, seasonIDs); err != nil {
		return NewInternalError("failed to delete seasons", err)
	}
	if err := m.catalog.DeleteAnime(ctx, anime.ID); err != nil {
		return storeError(err, "Anime not found")
	}

	metrics.RecordCascadeDelete("anime")
	log.Info().
		Int("seasons", len(seasonIDs)).
		Int("episodes", len(episodeIDs)).
		Msg("anime deleted")
	return nil
}

// DeleteSeason detaches the season from its anime and removes it with its
// episodes. The episode ids stay in the anime's episode list.
func (m *CascadeManager) DeleteSeason(ctx context.Context, identity models.Identity, seasonID string) error {
	if err := authorize(m.authz, identity, ResourceSeason, ActionDelete); err != nil {
		return err
	}

	season, err := m.catalog.GetSeasonByID(ctx, seasonID)
	if err != nil {
		return storeError(err, "Season not found")
	}

	if err := m.catalog.DetachSeason(ctx, season.AnimeID, season.ID); err != nil {
		return NewInternalError("failed to detach season", err)
	}

	if err := m.catalog.DeleteEpisodes(ctx, season.EpisodeIDs); err != nil {
		return NewInternalError("failed to delete episodes", err)
	}

	m.deleteFolder(ctx, "season", season.MediaFolder)

	if err := m.catalog.DeleteSeasons(ctx, []string{season.ID}); err != nil {
		return NewInternalError("failed to delete season", err)
	}

	metrics.RecordCascadeDelete("season")
	logging.Ctx(ctx).Info().
		Str("season_id", season.ID).
		Str("anime_id", season.AnimeID).
		Int("episodes", len(season.EpisodeIDs)).
		Msg("season deleted")
	return nil
}

// DeleteEpisode unlinks the episode everywhere, removes its media file and
// then the row.
func (m *CascadeManager) DeleteEpisode(ctx context.Context, identity models.Identity, episodeID string) error {
	if err := authorize(m.authz, identity, ResourceEpisode, ActionDelete); err != nil {
		return err
	}

	episode, err := m.catalog.GetEpisodeByID(ctx, episodeID)
	if err != nil {
		return storeError(err, "Episode not found")
	}

	if err := m.catalog.DetachEpisode(ctx, episode.ID); err != nil {
		return NewInternalError("failed to detach episode", err)
	}

	m.deleteMedia(ctx, "episode", "episode_media", episode.AnimeEpisode)

	if err := m.catalog.DeleteEpisodes(ctx, []string{episode.ID}); err != nil {
		return NewInternalError("failed to delete episode", err)
	}

	metrics.RecordCascadeDelete("episode")
	logging.Ctx(ctx).Info().Str("episode_id", episode.ID).Msg("episode deleted")
	return nil
}

func (m *CascadeManager) deleteMedia(ctx context.Context, entity, step, url string) {
	if url == "" {
		return
	}
	if err := m.media.DeleteByURL(ctx, url); err != nil {
		metrics.RecordMediaCleanupFailure(entity, step)
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("entity", entity).
			Str("step", step).
			Str("url", url).
			Msg("media cleanup failed")
	}
}

func (m *CascadeManager) deleteFolder(ctx context.Context, entity, folder string) {
	if folder == "" {
		return
	}
	if err := m.media.DeleteFolder(ctx, folder); err != nil {
		metrics.RecordMediaCleanupFailure(entity, "folder")
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("entity", entity).
			Str("folder", folder).
			Msg("media folder cleanup failed")
	}
}
