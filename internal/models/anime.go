// ===============================
// internal/models/anime.go - Anime catalog model
// ===============================

package models

import (
	"sort"
	"time"
)

// Anime statuses
const (
	AnimeStatusOngoing   = "ONGOING"
	AnimeStatusCompleted = "COMPLETED"
	AnimeStatusUpcoming  = "UPCOMING"
)

// Rating bounds
const (
	MinAnimeRating = 1
	MaxAnimeRating = 10
)

type Anime struct {
	ID          string      `json:"_id" db:"id"`
	Title       string      `json:"title" db:"title"`
	Description string      `json:"description" db:"description"`
	Genres      StringSlice `json:"genres" db:"genres"`
	Status      string      `json:"status" db:"status"`
	ReleaseDate string      `json:"releaseDate" db:"release_date"`
	Rating      *float64    `json:"rating,omitempty" db:"rating"`
	Studio      string      `json:"studio,omitempty" db:"studio"`
	AnimeCover  string      `json:"animeCover" db:"anime_cover"`
	SeasonIDs   StringSlice `json:"seasonIds" db:"season_ids"`
	EpisodeIDs  StringSlice `json:"episodeIds" db:"episode_ids"`
	MediaFolder string      `json:"-" db:"media_folder"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time   `json:"updatedAt" db:"updated_at"`

	// Populated on read, not stored
	Seasons  []Season  `json:"seasons,omitempty" db:"-"`
	Episodes []Episode `json:"episodes,omitempty" db:"-"`
}

// IsValidAnimeStatus reports whether status is one of the known statuses.
func IsValidAnimeStatus(status string) bool {
	switch status {
	case AnimeStatusOngoing, AnimeStatusCompleted, AnimeStatusUpcoming:
		return true
	}
	return false
}

func (a *Anime) HasSeason(seasonID string) bool {
	return a.SeasonIDs.Contains(seasonID)
}

func (a *Anime) HasEpisode(episodeID string) bool {
	return a.EpisodeIDs.Contains(episodeID)
}

// SortByTitle orders a list the way catalog listings are returned.
func SortByTitle(list []Anime) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Title < list[j].Title
	})
}
