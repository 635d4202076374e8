// ===============================
// internal/services/episode.go - Episode operations
// ===============================

package services

import (
	"context"
	"errors"
	"strings"

	"animax/internal/logging"
	"animax/internal/models"
	"animax/internal/repositories"
	"animax/internal/storage"

	"github.com/google/uuid"
)

type EpisodeInput struct {
	EpisodeNumber int               `json:"episodeNumber" validate:"required,gt=0"`
	Title         *string           `json:"title"`
	Duration      string            `json:"duration" validate:"required"`
	Subtitles     []models.Subtitle `json:"subtitles" validate:"dive"`
}

type EpisodeUpdate struct {
	EpisodeNumber *int               `json:"episodeNumber" validate:"omitempty,gt=0"`
	Title         *string            `json:"title"`
	Duration      *string            `json:"duration" validate:"omitempty,min=1"`
	Subtitles     *[]models.Subtitle `json:"subtitles"`
}

type EpisodeService struct {
	catalog CatalogStore
	uploads *UploadService
	authz   Authorizer
	cascade *CascadeManager
}

func NewEpisodeService(catalog CatalogStore, uploads *UploadService, authz Authorizer, cascade *CascadeManager) *EpisodeService {
	return &EpisodeService{
		catalog: catalog,
		uploads: uploads,
		authz:   authz,
		cascade: cascade,
	}
}

func (s *EpisodeService) AddEpisode(ctx context.Context, identity models.Identity, seasonID string, input EpisodeInput, media *MediaFile) (*models.Episode, error) {
	if err := authorize(s.authz, identity, ResourceEpisode, ActionCreate); err != nil {
		return nil, err
	}

	input.Duration = strings.TrimSpace(input.Duration)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if media == nil {
		return nil, NewValidationError("Anime episode file is required")
	}

	season, err := s.catalog.GetSeasonByID(ctx, seasonID)
	if err != nil {
		return nil, storeError(err, "Season not found")
	}

	exists, err := s.catalog.EpisodeNumberExists(ctx, season.ID, input.EpisodeNumber, "")
	if err != nil {
		return nil, storeError(err, "Episode not found")
	}
	if exists {
		return nil, NewValidationError("Episode number already exists in this season")
	}

	episode := &models.Episode{
		ID:            uuid.New().String(),
		SeasonID:      season.ID,
		AnimeID:       season.AnimeID,
		EpisodeNumber: input.EpisodeNumber,
		Title:         trimmedOrNil(input.Title),
		Duration:      input.Duration,
		Subtitles:     models.Subtitles(input.Subtitles),
	}

	episode.AnimeEpisode, err = s.uploads.Upload(ctx, media, storage.KeySpec{
		Kind:      storage.KindAnimeEpisode,
		AnimeID:   season.AnimeID,
		SeasonID:  season.ID,
		EpisodeID: episode.ID,
		Folder:    season.MediaFolder,
	})
	if err != nil {
		return nil, err
	}

	if err := s.catalog.CreateEpisode(ctx, episode); err != nil {
		s.uploads.DeleteQuietly(ctx, episode.AnimeEpisode)
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, NewValidationError("Episode number already exists in this season")
		}
		return nil, storeError(err, "Season not found")
	}

	logging.Ctx(ctx).Info().
		Str("episode_id", episode.ID).
		Str("season_id", season.ID).
		Int("episode_number", episode.EpisodeNumber).
		Msg("episode created")
	return episode, nil
}

func (s *EpisodeService) GetEpisodesBySeason(ctx context.Context, seasonID string) ([]models.Episode, error) {
	if _, err := s.catalog.GetSeasonByID(ctx, seasonID); err != nil {
		return nil, storeError(err, "Season not found")
	}

	episodes, err := s.catalog.ListEpisodesBySeason(ctx, seasonID)
	if err != nil {
		return nil, storeError(err, "Episode not found")
	}
	models.SortEpisodes(episodes)
	return episodes, nil
}

func (s *EpisodeService) GetEpisodeByID(ctx context.Context, episodeID string) (*models.Episode, error) {
	episode, err := s.catalog.GetEpisodeByID(ctx, episodeID)
	if err != nil {
		return nil, storeError(err, "Episode not found")
	}
	return episode, nil
}

func (s *EpisodeService) UpdateEpisode(ctx context.Context, identity models.Identity, episodeID string, update EpisodeUpdate, media *MediaFile) (*models.Episode, error) {
	if err := authorize(s.authz, identity, ResourceEpisode, ActionUpdate); err != nil {
		return nil, err
	}
	if err := validateInput(update); err != nil {
		return nil, err
	}

	episode, err := s.catalog.GetEpisodeByID(ctx, episodeID)
	if err != nil {
		return nil, storeError(err, "Episode not found")
	}

	if update.EpisodeNumber != nil && *update.EpisodeNumber != episode.EpisodeNumber {
		exists, err := s.catalog.EpisodeNumberExists(ctx, episode.SeasonID, *update.EpisodeNumber, episode.ID)
		if err != nil {
			return nil, storeError(err, "Episode not found")
		}
		if exists {
			return nil, NewValidationError("Episode number already exists in this season")
		}
		episode.EpisodeNumber = *update.EpisodeNumber
	}
	if update.Title != nil {
		episode.Title = trimmedOrNil(update.Title)
	}
	if update.Duration != nil {
		episode.Duration = strings.TrimSpace(*update.Duration)
	}
	if update.Subtitles != nil {
		episode.Subtitles = models.Subtitles(*update.Subtitles)
	}

	if media != nil {
		season, err := s.catalog.GetSeasonByID(ctx, episode.SeasonID)
		if err != nil {
			return nil, storeError(err, "Season not found")
		}
		episode.AnimeEpisode, err = s.uploads.Replace(ctx, episode.AnimeEpisode, media, storage.KeySpec{
			Kind:      storage.KindAnimeEpisode,
			AnimeID:   season.AnimeID,
			SeasonID:  season.ID,
			EpisodeID: episode.ID,
			Folder:    season.MediaFolder,
		})
		if err != nil {
			return nil, err
		}
	}

	if err := s.catalog.UpdateEpisode(ctx, episode); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, NewValidationError("Episode number already exists in this season")
		}
		return nil, storeError(err, "Episode not found")
	}
	return episode, nil
}

func (s *EpisodeService) DeleteEpisode(ctx context.Context, identity models.Identity, episodeID string) error {
	return s.cascade.DeleteEpisode(ctx, identity, episodeID)
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
