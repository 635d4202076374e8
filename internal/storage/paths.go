package storage

import (
	"fmt"
	"path"
	"strconv"
	"time"
)

// MediaKind selects the key layout for an upload.
type MediaKind string

const (
	KindProfilePicture MediaKind = "profilePicture"
	KindAnimeCover     MediaKind = "animeCover"
	KindSeasonCover    MediaKind = "seasonCover"
	KindAnimeEpisode   MediaKind = "animeEpisode"
)

// KeySpec carries the naming inputs for a media key. Catalog media is
// addressed by entity id so titles and numbers can change freely.
type KeySpec struct {
	Kind      MediaKind
	Ext       string
	UserID    string
	AnimeID   string
	SeasonID  string
	EpisodeID string
	// Folder pins the anime or season folder recorded at creation.
	Folder string
}

// AnimeFolder is the folder holding every object of one anime.
func AnimeFolder(root, animeID string) string {
	return path.Join(root, "anime", animeID)
}

// SeasonFolder is the folder holding a season's cover and episodes.
func SeasonFolder(root, animeID, seasonID string) string {
	return SeasonFolderUnder(AnimeFolder(root, animeID), seasonID)
}

// SeasonFolderUnder places a season folder below an existing anime folder.
func SeasonFolderUnder(animeFolder, seasonID string) string {
	return path.Join(animeFolder, "seasons", "Season_"+seasonID)
}

// BuildKey maps a KeySpec onto its object key below root.
func BuildKey(root string, spec KeySpec) (string, error) {
	switch spec.Kind {
	case KindProfilePicture:
		name := spec.UserID
		if name == "" {
			name = strconv.FormatInt(time.Now().UnixNano(), 10)
		}
		return path.Join(root, "profilePictures", name+spec.Ext), nil

	case KindAnimeCover:
		if spec.Folder != "" {
			return path.Join(spec.Folder, "cover", "cover"+spec.Ext), nil
		}
		if !validSegment(spec.AnimeID) {
			return "", fmt.Errorf("anime id is required for %s", spec.Kind)
		}
		return path.Join(AnimeFolder(root, spec.AnimeID), "cover", "cover"+spec.Ext), nil

	case KindSeasonCover:
		if spec.Folder != "" {
			return path.Join(spec.Folder, "cover", "cover"+spec.Ext), nil
		}
		if !validSegment(spec.AnimeID) || !validSegment(spec.SeasonID) {
			return "", fmt.Errorf("anime id and season id are required for %s", spec.Kind)
		}
		return path.Join(SeasonFolder(root, spec.AnimeID, spec.SeasonID), "cover", "cover"+spec.Ext), nil

	case KindAnimeEpisode:
		if !validSegment(spec.EpisodeID) {
			return "", fmt.Errorf("episode id is required for %s", spec.Kind)
		}
		name := "Episode_" + spec.EpisodeID + spec.Ext
		if spec.Folder != "" {
			return path.Join(spec.Folder, "episodes", name), nil
		}
		if !validSegment(spec.AnimeID) || !validSegment(spec.SeasonID) {
			return "", fmt.Errorf("anime id and season id are required for %s", spec.Kind)
		}
		return path.Join(SeasonFolder(root, spec.AnimeID, spec.SeasonID), "episodes", name), nil
	}

	return "", fmt.Errorf("unknown media kind %q", spec.Kind)
}

// validSegment rejects ids that would escape or split their folder.
func validSegment(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	for _, r := range s {
		if r == '/' || r == '\\' {
			return false
		}
	}
	return true
}
