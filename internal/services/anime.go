// ===============================
// internal/services/anime.go - Anime catalog operations
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

// AnimeInput is the create payload.
type AnimeInput struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Genres      []string `json:"genres"`
	Status      string   `json:"status" validate:"omitempty,animestatus"`
	ReleaseDate string   `json:"releaseDate" validate:"required"`
	Rating      *float64 `json:"rating" validate:"omitempty,min=1,max=10"`
	Studio      string   `json:"studio"`
}

// AnimeUpdate carries only the fields the caller sent.
type AnimeUpdate struct {
	Title       *string   `json:"title" validate:"omitempty,min=1"`
	Description *string   `json:"description" validate:"omitempty,min=1"`
	Genres      *[]string `json:"genres"`
	Status      *string   `json:"status" validate:"omitempty,animestatus"`
	ReleaseDate *string   `json:"releaseDate" validate:"omitempty,min=1"`
	Rating      *float64  `json:"rating" validate:"omitempty,min=1,max=10"`
	Studio      *string   `json:"studio"`
}

type AnimeService struct {
	catalog CatalogStore
	uploads *UploadService
	authz   Authorizer
	cascade *CascadeManager
}

func NewAnimeService(catalog CatalogStore, uploads *UploadService, authz Authorizer, cascade *CascadeManager) *AnimeService {
	return &AnimeService{
		catalog: catalog,
		uploads: uploads,
		authz:   authz,
		cascade: cascade,
	}
}

func (s *AnimeService) CreateAnime(ctx context.Context, identity models.Identity, input AnimeInput, cover *MediaFile) (*models.Anime, error) {
	if err := authorize(s.authz, identity, ResourceAnime, ActionCreate); err != nil {
		return nil, err
	}

	input.Title = strings.TrimSpace(input.Title)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if cover == nil {
		return nil, NewValidationError("Anime cover image is required")
	}

	exists, err := s.catalog.AnimeTitleExists(ctx, input.Title, "")
	if err != nil {
		return nil, storeError(err, "Anime not found")
	}
	if exists {
		return nil, NewValidationError("Anime already exists")
	}

	status := input.Status
	if status == "" {
		status = models.AnimeStatusOngoing
	}

	id := uuid.New().String()
	anime := &models.Anime{
		ID:          id,
		Title:       input.Title,
		Description: input.Description,
		Genres:      cleanGenres(input.Genres),
		Status:      status,
		ReleaseDate: input.ReleaseDate,
		Rating:      input.Rating,
		Studio:      strings.TrimSpace(input.Studio),
		MediaFolder: storage.AnimeFolder(s.uploads.media.RootFolder(), id),
	}

	anime.AnimeCover, err = s.uploads.Upload(ctx, cover, storage.KeySpec{
		Kind:   storage.KindAnimeCover,
		Folder: anime.MediaFolder,
	})
	if err != nil {
		return nil, err
	}

	if err := s.catalog.CreateAnime(ctx, anime); err != nil {
		s.uploads.DeleteQuietly(ctx, anime.AnimeCover)
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, NewValidationError("Anime already exists")
		}
		return nil, NewInternalError("failed to create anime", err)
	}

	logging.Ctx(ctx).Info().Str("anime_id", anime.ID).Str("title", anime.Title).Msg("anime created")
	return anime, nil
}

// GetAllAnime lists the catalog sorted by title, optionally by status.
func (s *AnimeService) GetAllAnime(ctx context.Context, status string) ([]models.Anime, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	if status != "" && !models.IsValidAnimeStatus(status) {
		return nil, NewValidationError("Invalid status. Must be one of ONGOING, COMPLETED, UPCOMING")
	}

	animes, err := s.catalog.ListAnimes(ctx, status)
	if err != nil {
		return nil, storeError(err, "Anime not found")
	}
	for i := range animes {
		if err := s.populate(ctx, &animes[i]); err != nil {
			return nil, err
		}
	}
	models.SortByTitle(animes)
	return animes, nil
}

func (s *AnimeService) GetAnimeByID(ctx context.Context, animeID string) (*models.Anime, error) {
	anime, err := s.catalog.GetAnimeByID(ctx, animeID)
	if err != nil {
		return nil, storeError(err, "Anime not found")
	}
	if err := s.populate(ctx, anime); err != nil {
		return nil, err
	}
	return anime, nil
}

func (s *AnimeService) UpdateAnime(ctx context.Context, identity models.Identity, animeID string, update AnimeUpdate, cover *MediaFile) (*models.Anime, error) {
	if err := authorize(s.authz, identity, ResourceAnime, ActionUpdate); err != nil {
		return nil, err
	}
	if err := validateInput(update); err != nil {
		return nil, err
	}

	anime, err := s.catalog.GetAnimeByID(ctx, animeID)
	if err != nil {
		return nil, storeError(err, "Anime not found")
	}

	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title != anime.Title {
			exists, err := s.catalog.AnimeTitleExists(ctx, title, anime.ID)
			if err != nil {
				return nil, storeError(err, "Anime not found")
			}
			if exists {
				return nil, NewValidationError("Anime already exists")
			}
			anime.Title = title
		}
	}
	if update.Description != nil {
		anime.Description = *update.Description
	}
	if update.Genres != nil {
		anime.Genres = cleanGenres(*update.Genres)
	}
	if update.Status != nil {
		anime.Status = *update.Status
	}
	if update.ReleaseDate != nil {
		anime.ReleaseDate = *update.ReleaseDate
	}
	if update.Rating != nil {
		anime.Rating = update.Rating
	}
	if update.Studio != nil {
		anime.Studio = strings.TrimSpace(*update.Studio)
	}

	if cover != nil {
		anime.AnimeCover, err = s.uploads.Replace(ctx, anime.AnimeCover, cover, storage.KeySpec{
			Kind:    storage.KindAnimeCover,
			AnimeID: anime.ID,
			Folder:  anime.MediaFolder,
		})
		if err != nil {
			return nil, err
		}
	}

	if err := s.catalog.UpdateAnime(ctx, anime); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, NewValidationError("Anime already exists")
		}
		return nil, storeError(err, "Anime not found")
	}

	if err := s.populate(ctx, anime); err != nil {
		return nil, err
	}
	return anime, nil
}

// DeleteAnime runs the anime cascade.
func (s *AnimeService) DeleteAnime(ctx context.Context, identity models.Identity, animeID string) error {
	return s.cascade.DeleteAnime(ctx, identity, animeID)
}

// populate attaches sorted seasons (each with episodes) and the anime's
// episode list. Ids without a row are skipped.
func (s *AnimeService) populate(ctx context.Context, anime *models.Anime) error {
	seasons, err := s.catalog.GetSeasonsByIDs(ctx, anime.SeasonIDs)
	if err != nil {
		return storeError(err, "Season not found")
	}
	for i := range seasons {
		episodes, err := s.catalog.GetEpisodesByIDs(ctx, seasons[i].EpisodeIDs)
		if err != nil {
			return storeError(err, "Episode not found")
		}
		models.SortEpisodes(episodes)
		seasons[i].Episodes = episodes
	}
	models.SortSeasons(seasons)
	anime.Seasons = seasons

	episodes, err := s.catalog.GetEpisodesByIDs(ctx, anime.EpisodeIDs)
	if err != nil {
		return storeError(err, "Episode not found")
	}
	models.SortEpisodes(episodes)
	anime.Episodes = episodes
	return nil
}

func cleanGenres(genres []string) models.StringSlice {
	out := make(models.StringSlice, 0, len(genres))
	for _, g := range genres {
		if g = strings.TrimSpace(g); g != "" && !out.Contains(g) {
			out = append(out, g)
		}
	}
	return out
}
