package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildKey(t *testing.T) {
	tests := []struct {
		name string
		spec KeySpec
		want string
	}{
		{
			name: "profile picture with user id",
			spec: KeySpec{Kind: KindProfilePicture, UserID: "u1", Ext: ".jpg"},
			want: "Animax/profilePictures/u1.jpg",
		},
		{
			name: "anime cover",
			spec: KeySpec{Kind: KindAnimeCover, AnimeID: "a1", Ext: ".png"},
			want: "Animax/anime/a1/cover/cover.png",
		},
		{
			name: "season cover",
			spec: KeySpec{Kind: KindSeasonCover, AnimeID: "a1", SeasonID: "s2", Ext: ".webp"},
			want: "Animax/anime/a1/seasons/Season_s2/cover/cover.webp",
		},
		{
			name: "episode",
			spec: KeySpec{Kind: KindAnimeEpisode, AnimeID: "a1", SeasonID: "s2", EpisodeID: "e7", Ext: ".mp4"},
			want: "Animax/anime/a1/seasons/Season_s2/episodes/Episode_e7.mp4",
		},
		{
			name: "episode under a pinned season folder",
			spec: KeySpec{Kind: KindAnimeEpisode, Folder: "Animax/anime/a1/seasons/Season_s1", EpisodeID: "e3", Ext: ".webm"},
			want: "Animax/anime/a1/seasons/Season_s1/episodes/Episode_e3.webm",
		},
		{
			name: "anime cover under a pinned folder",
			spec: KeySpec{Kind: KindAnimeCover, AnimeID: "other", Folder: "Animax/anime/a1", Ext: ".png"},
			want: "Animax/anime/a1/cover/cover.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildKey("Animax", tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildKey_ProfilePictureWithoutUser(t *testing.T) {
	got, err := BuildKey("Animax", KeySpec{Kind: KindProfilePicture, Ext: ".png"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "Animax/profilePictures/"))
	assert.True(t, strings.HasSuffix(got, ".png"))
}

func TestBuildKey_MissingContext(t *testing.T) {
	_, err := BuildKey("Animax", KeySpec{Kind: KindSeasonCover, AnimeID: "a1", Ext: ".png"})
	assert.Error(t, err)

	_, err = BuildKey("Animax", KeySpec{Kind: KindAnimeEpisode, AnimeID: "a1", SeasonID: "s1", Ext: ".mp4"})
	assert.Error(t, err)

	_, err = BuildKey("Animax", KeySpec{Kind: "poster"})
	assert.Error(t, err)
}

func TestBuildKey_RejectsSeparatorsInIDs(t *testing.T) {
	for _, id := range []string{"Fate/Zero", "..", `a\b`} {
		_, err := BuildKey("Animax", KeySpec{Kind: KindAnimeCover, AnimeID: id, Ext: ".png"})
		assert.Error(t, err, id)
	}
}

func TestFolders_AreDisjointPerEntity(t *testing.T) {
	fate := AnimeFolder("Animax", "a1")
	zero := AnimeFolder("Animax", "a2")
	assert.False(t, strings.HasPrefix(zero+"/", fate+"/"))

	assert.Equal(t, "Animax/anime/a1/seasons/Season_s3", SeasonFolder("Animax", "a1", "s3"))
	assert.Equal(t, "Animax/anime/a1", fate)
}
