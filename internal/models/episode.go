// ===============================
// internal/models/episode.go
// ===============================

package models

import (
	"fmt"
	"sort"
	"time"
)

type Episode struct {
	ID            string    `json:"_id" db:"id"`
	SeasonID      string    `json:"season" db:"season_id"`
	AnimeID       string    `json:"anime" db:"anime_id"`
	EpisodeNumber int       `json:"episodeNumber" db:"episode_number"`
	Title         *string   `json:"title" db:"title"`
	AnimeEpisode  string    `json:"animeEpisode" db:"anime_episode"`
	Duration      string    `json:"duration" db:"duration"`
	Subtitles     Subtitles `json:"subtitles" db:"subtitles"`
	ReleasedAt    time.Time `json:"releasedAt" db:"released_at"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// Helper methods
func (e *Episode) GetDisplayTitle() string {
	if e.Title != nil && *e.Title != "" {
		return *e.Title
	}
	return fmt.Sprintf("Episode %d", e.EpisodeNumber)
}

func (e *Episode) IsWatchable() bool {
	return e.AnimeEpisode != ""
}

func SortEpisodes(list []Episode) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].EpisodeNumber < list[j].EpisodeNumber
	})
}
