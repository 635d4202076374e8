// ===============================
// internal/services/watchlist.go - Per-user watchlists
// ===============================

package services

import (
	"context"
	"errors"

	"animax/internal/models"
	"animax/internal/repositories"
)

type WatchlistInput struct {
	AnimeID string `json:"animeId" validate:"required"`
}

type WatchlistService struct {
	engagement EngagementStore
	catalog    CatalogStore
	authz      Authorizer
}

func NewWatchlistService(engagement EngagementStore, catalog CatalogStore, authz Authorizer) *WatchlistService {
	return &WatchlistService{
		engagement: engagement,
		catalog:    catalog,
		authz:      authz,
	}
}

func (s *WatchlistService) AddToWatchlist(ctx context.Context, identity models.Identity, input WatchlistInput) (*models.WatchlistEntry, error) {
	if err := authorize(s.authz, identity, ResourceWatchlist, ActionCreate); err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	anime, err := s.catalog.GetAnimeByID(ctx, input.AnimeID)
	if err != nil {
		return nil, storeError(err, "Anime not found")
	}

	entry := &models.WatchlistEntry{UserID: identity.ID, AnimeID: anime.ID}
	if err := s.engagement.AddToWatchlist(ctx, entry); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, NewValidationError("Anime already in watchlist")
		}
		return nil, NewInternalError("failed to add to watchlist", err)
	}
	entry.Anime = anime
	return entry, nil
}

func (s *WatchlistService) RemoveFromWatchlist(ctx context.Context, identity models.Identity, input WatchlistInput) error {
	if err := authorize(s.authz, identity, ResourceWatchlist, ActionDelete); err != nil {
		return err
	}
	if err := validateInput(input); err != nil {
		return err
	}

	if err := s.engagement.RemoveFromWatchlist(ctx, identity.ID, input.AnimeID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return NewValidationError("Anime not in watchlist")
		}
		return NewInternalError("failed to remove from watchlist", err)
	}
	return nil
}

// GetAllWatchlist returns the caller's entries with their anime attached.
// Entries whose anime no longer exists are left out.
func (s *WatchlistService) GetAllWatchlist(ctx context.Context, identity models.Identity) ([]models.WatchlistEntry, error) {
	if err := authorize(s.authz, identity, ResourceWatchlist, ActionRead); err != nil {
		return nil, err
	}

	entries, err := s.engagement.ListWatchlist(ctx, identity.ID)
	if err != nil {
		return nil, NewInternalError("failed to load watchlist", err)
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.AnimeID)
	}
	animes, err := s.catalog.GetAnimesByIDs(ctx, ids)
	if err != nil {
		return nil, NewInternalError("failed to load watchlist animes", err)
	}
	byID := make(map[string]*models.Anime, len(animes))
	for i := range animes {
		byID[animes[i].ID] = &animes[i]
	}

	out := make([]models.WatchlistEntry, 0, len(entries))
	for _, entry := range entries {
		if anime, ok := byID[entry.AnimeID]; ok {
			entry.Anime = anime
			out = append(out, entry)
		}
	}
	return out, nil
}
