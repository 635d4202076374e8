// ===============================
// internal/services/season.go - Season operations
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

type SeasonInput struct {
	SeasonNumber int    `json:"seasonNumber" validate:"required,gt=0"`
	SeasonTitle  string `json:"seasonTitle" validate:"required"`
}

type SeasonUpdate struct {
	SeasonNumber *int    `json:"seasonNumber" validate:"omitempty,gt=0"`
	SeasonTitle  *string `json:"seasonTitle" validate:"omitempty,min=1"`
}

type SeasonService struct {
	catalog CatalogStore
	uploads *UploadService
	authz   Authorizer
	cascade *CascadeManager
}

func NewSeasonService(catalog CatalogStore, uploads *UploadService, authz Authorizer, cascade *CascadeManager) *SeasonService {
	return &SeasonService{
		catalog: catalog,
		uploads: uploads,
		authz:   authz,
		cascade: cascade,
	}
}

func (s *SeasonService) AddSeason(ctx context.Context, identity models.Identity, animeID string, input SeasonInput, cover *MediaFile) (*models.Season, error) {
	if err := authorize(s.authz, identity, ResourceSeason, ActionCreate); err != nil {
		return nil, err
	}

	input.SeasonTitle = strings.TrimSpace(input.SeasonTitle)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if cover == nil {
		return nil, NewValidationError("Season cover image is required")
	}

	anime, err := s.catalog.GetAnimeByID(ctx, animeID)
	if err != nil {
		return nil, storeError(err, "Anime not found")
	}

	exists, err := s.catalog.SeasonNumberExists(ctx, anime.ID, input.SeasonNumber, "")
	if err != nil {
		return nil, storeError(err, "Season not found")
	}
	if exists {
		return nil, NewValidationError("Season number already exists")
	}

	id := uuid.New().String()
	season := &models.Season{
		ID:           id,
		AnimeID:      anime.ID,
		SeasonNumber: input.SeasonNumber,
		SeasonTitle:  input.SeasonTitle,
		MediaFolder:  seasonFolder(s.uploads.media.RootFolder(), anime, id),
	}

	season.SeasonCover, err = s.uploads.Upload(ctx, cover, storage.KeySpec{
		Kind:   storage.KindSeasonCover,
		Folder: season.MediaFolder,
	})
	if err != nil {
		return nil, err
	}

	if err := s.catalog.CreateSeason(ctx, season); err != nil {
		s.uploads.DeleteQuietly(ctx, season.SeasonCover)
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, NewValidationError("Season number already exists")
		}
		return nil, storeError(err, "Anime not found")
	}

	logging.Ctx(ctx).Info().
		Str("season_id", season.ID).
		Str("anime_id", anime.ID).
		Int("season_number", season.SeasonNumber).
		Msg("season created")
	return season, nil
}

// GetAllSeasonsByAnime returns the anime's seasons in order, each with its
// episodes.
func (s *SeasonService) GetAllSeasonsByAnime(ctx context.Context, animeID string) ([]models.Season, error) {
	if _, err := s.catalog.GetAnimeByID(ctx, animeID); err != nil {
		return nil, storeError(err, "Anime not found")
	}

	seasons, err := s.catalog.ListSeasonsByAnime(ctx, animeID)
	if err != nil {
		return nil, storeError(err, "Season not found")
	}
	for i := range seasons {
		if err := s.populate(ctx, &seasons[i]); err != nil {
			return nil, err
		}
	}
	models.SortSeasons(seasons)
	return seasons, nil
}

func (s *SeasonService) GetSeasonByID(ctx context.Context, seasonID string) (*models.Season, error) {
	season, err := s.catalog.GetSeasonByID(ctx, seasonID)
	if err != nil {
		return nil, storeError(err, "Season not found")
	}
	if err := s.populate(ctx, season); err != nil {
		return nil, err
	}
	return season, nil
}

func (s *SeasonService) UpdateSeason(ctx context.Context, identity models.Identity, seasonID string, update SeasonUpdate, cover *MediaFile) (*models.Season, error) {
	if err := authorize(s.authz, identity, ResourceSeason, ActionUpdate); err != nil {
		return nil, err
	}
	if err := validateInput(update); err != nil {
		return nil, err
	}

	season, err := s.catalog.GetSeasonByID(ctx, seasonID)
	if err != nil {
		return nil, storeError(err, "Season not found")
	}

	if update.SeasonNumber != nil && *update.SeasonNumber != season.SeasonNumber {
		exists, err := s.catalog.SeasonNumberExists(ctx, season.AnimeID, *update.SeasonNumber, season.ID)
		if err != nil {
			return nil, storeError(err, "Season not found")
		}
		if exists {
			return nil, NewValidationError("Season number already exists")
		}
		season.SeasonNumber = *update.SeasonNumber
	}
	if update.SeasonTitle != nil {
		season.SeasonTitle = strings.TrimSpace(*update.SeasonTitle)
	}

	if cover != nil {
		season.SeasonCover, err = s.uploads.Replace(ctx, season.SeasonCover, cover, storage.KeySpec{
			Kind:     storage.KindSeasonCover,
			AnimeID:  season.AnimeID,
			SeasonID: season.ID,
			Folder:   season.MediaFolder,
		})
		if err != nil {
			return nil, err
		}
	}

	if err := s.catalog.UpdateSeason(ctx, season); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, NewValidationError("Season number already exists")
		}
		return nil, storeError(err, "Season not found")
	}

	if err := s.populate(ctx, season); err != nil {
		return nil, err
	}
	return season, nil
}

func (s *SeasonService) DeleteSeason(ctx context.Context, identity models.Identity, seasonID string) error {
	return s.cascade.DeleteSeason(ctx, identity, seasonID)
}

func (s *SeasonService) populate(ctx context.Context, season *models.Season) error {
	episodes, err := s.catalog.GetEpisodesByIDs(ctx, season.EpisodeIDs)
	if err != nil {
		return storeError(err, "Episode not found")
	}
	models.SortEpisodes(episodes)
	season.Episodes = episodes
	return nil
}

// seasonFolder nests the season below its anime's pinned folder.
func seasonFolder(root string, anime *models.Anime, seasonID string) string {
	if anime.MediaFolder == "" {
		return storage.SeasonFolder(root, anime.ID, seasonID)
	}
	return storage.SeasonFolderUnder(anime.MediaFolder, seasonID)
}
