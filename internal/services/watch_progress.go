// ===============================
// internal/services/watch_progress.go - Playback position per episode
// ===============================

package services

import (
	"context"

	"animax/internal/models"
)

type SaveProgressInput struct {
	AnimeID     string   `json:"animeId" validate:"required"`
	SeasonID    string   `json:"seasonId" validate:"required"`
	EpisodeID   string   `json:"episodeId" validate:"required"`
	CurrentTime *float64 `json:"currentTime" validate:"omitempty,gte=0"`
}

type WatchProgressService struct {
	engagement EngagementStore
	catalog    CatalogStore
	authz      Authorizer
}

func NewWatchProgressService(engagement EngagementStore, catalog CatalogStore, authz Authorizer) *WatchProgressService {
	return &WatchProgressService{
		engagement: engagement,
		catalog:    catalog,
		authz:      authz,
	}
}

// SaveProgress upserts the single row for (user, anime, season, episode).
func (s *WatchProgressService) SaveProgress(ctx context.Context, identity models.Identity, input SaveProgressInput) (*models.WatchProgress, error) {
	if err := authorize(s.authz, identity, ResourceWatchProgress, ActionUpdate); err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	episode, err := s.catalog.GetEpisodeByID(ctx, input.EpisodeID)
	if err != nil {
		return nil, storeError(err, "Episode not found")
	}
	if episode.SeasonID != input.SeasonID || episode.AnimeID != input.AnimeID {
		return nil, NewValidationError("Episode does not belong to the given anime and season")
	}

	progress := &models.WatchProgress{
		UserID:    identity.ID,
		AnimeID:   input.AnimeID,
		SeasonID:  input.SeasonID,
		EpisodeID: input.EpisodeID,
	}
	if input.CurrentTime != nil {
		progress.CurrentTime = *input.CurrentTime
	}

	if err := s.engagement.SaveWatchProgress(ctx, progress); err != nil {
		return nil, NewInternalError("failed to save watch progress", err)
	}
	return progress, nil
}

func (s *WatchProgressService) GetWatchProgress(ctx context.Context, identity models.Identity, animeID, seasonID, episodeID string) (*models.WatchProgress, error) {
	if err := authorize(s.authz, identity, ResourceWatchProgress, ActionRead); err != nil {
		return nil, err
	}

	progress, err := s.engagement.GetWatchProgress(ctx, identity.ID, animeID, seasonID, episodeID)
	if err != nil {
		return nil, storeError(err, "Watch progress not found")
	}
	return progress, nil
}
