// ===============================
// internal/models/season.go - Season model
// ===============================

package models

import (
	"fmt"
	"sort"
	"time"
)

type Season struct {
	ID           string      `json:"_id" db:"id"`
	AnimeID      string      `json:"anime" db:"anime_id"`
	SeasonNumber int         `json:"seasonNumber" db:"season_number"`
	SeasonTitle  string      `json:"seasonTitle" db:"season_title"`
	SeasonCover  string      `json:"seasonCover" db:"season_cover"`
	EpisodeIDs   StringSlice `json:"episodeIds" db:"episode_ids"`
	MediaFolder  string      `json:"-" db:"media_folder"`
	CreatedAt    time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time   `json:"updatedAt" db:"updated_at"`

	Episodes []Episode `json:"episodes,omitempty" db:"-"`
}

func (s *Season) GetDisplayTitle() string {
	if s.SeasonTitle != "" {
		return s.SeasonTitle
	}
	return fmt.Sprintf("Season %d", s.SeasonNumber)
}

func SortSeasons(list []Season) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].SeasonNumber < list[j].SeasonNumber
	})
}
