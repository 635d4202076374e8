// ===============================
// internal/models/engagement.go - Comments, watchlists and watch progress
// ===============================

package models

import "time"

type Comment struct {
	ID        string    `json:"_id" db:"id"`
	UserID    string    `json:"user" db:"user_id"`
	AnimeID   string    `json:"anime" db:"anime_id"`
	EpisodeID string    `json:"episode" db:"episode_id"`
	Comment   string    `json:"comment" db:"comment"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Populated on read
	Author *CommentAuthor `json:"author,omitempty" db:"-"`
}

// CommentAuthor is the public slice of a user shown next to a comment.
type CommentAuthor struct {
	ID             string  `json:"_id" db:"id"`
	UserName       string  `json:"userName" db:"user_name"`
	ProfilePicture *string `json:"profilePicture" db:"profile_picture"`
}

func (c *Comment) IsOwnedBy(userID string) bool {
	return c.UserID == userID
}

type WatchlistEntry struct {
	ID      string    `json:"_id" db:"id"`
	UserID  string    `json:"user" db:"user_id"`
	AnimeID string    `json:"animeId" db:"anime_id"`
	AddedAt time.Time `json:"addedAt" db:"added_at"`

	Anime *Anime `json:"anime,omitempty" db:"-"`
}

type WatchProgress struct {
	ID          string    `json:"_id" db:"id"`
	UserID      string    `json:"user" db:"user_id"`
	AnimeID     string    `json:"anime" db:"anime_id"`
	SeasonID    string    `json:"season" db:"season_id"`
	EpisodeID   string    `json:"episode" db:"episode_id"`
	CurrentTime float64   `json:"currentTime" db:"current_time_seconds"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// SameEpisode reports whether two progress rows address the same
// (user, anime, season, episode) slot.
func (p *WatchProgress) SameEpisode(o *WatchProgress) bool {
	return p.UserID == o.UserID &&
		p.AnimeID == o.AnimeID &&
		p.SeasonID == o.SeasonID &&
		p.EpisodeID == o.EpisodeID
}
