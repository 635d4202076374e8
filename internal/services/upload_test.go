package services

import (
	"bytes"
	"context"
	"testing"

	"animax/internal/storage"
	"animax/internal/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpload_SniffsGenericContentType(t *testing.T) {
	f := newFixture(t)

	file := pngFile()
	file.ContentType = "application/octet-stream"
	file.Filename = "blob"

	url, err := f.uploads.Upload(context.Background(), file, storage.KeySpec{Kind: storage.KindAnimeCover, AnimeID: "a1"})
	require.NoError(t, err)
	assert.Equal(t, "https://media.test/Animax/anime/a1/cover/cover.png", url)
	assert.Equal(t, "image/png", f.media.Objects["Animax/anime/a1/cover/cover.png"])
}

func TestUpload_RejectsWrongTypeForKind(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		file *MediaFile
		spec storage.KeySpec
	}{
		{
			name: "video as cover",
			file: mp4File(),
			spec: storage.KeySpec{Kind: storage.KindAnimeCover, AnimeID: "a1"},
		},
		{
			name: "image as episode",
			file: pngFile(),
			spec: storage.KeySpec{Kind: storage.KindAnimeEpisode, AnimeID: "a1", SeasonID: "s1", EpisodeID: "e1"},
		},
		{
			name: "text as profile picture",
			file: &MediaFile{Body: bytes.NewReader([]byte("hello")), Filename: "a.txt", ContentType: "text/plain"},
			spec: storage.KeySpec{Kind: storage.KindProfilePicture, UserID: "u1"},
		},
		{
			name: "missing file",
			file: nil,
			spec: storage.KeySpec{Kind: storage.KindProfilePicture, UserID: "u1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uploads.Upload(ctx, tt.file, tt.spec)
			requireKind(t, err, KindValidation)
		})
	}
	assert.Empty(t, f.media.Uploaded)
}

func TestUpload_StoreFailureIsUpstream(t *testing.T) {
	f := newFixture(t)
	f.media.FailUploads = true

	_, err := f.uploads.Upload(context.Background(), pngFile(), storage.KeySpec{Kind: storage.KindProfilePicture, UserID: "u1"})
	requireKind(t, err, KindUpstream)
	assert.Equal(t, "Server Error", MessageOf(err))
}

func TestReplace_DeletesPreviousOnlyWhenURLChanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	spec := storage.KeySpec{Kind: storage.KindProfilePicture, UserID: "u1"}

	url, err := f.uploads.Upload(ctx, pngFile(), spec)
	require.NoError(t, err)

	same, err := f.uploads.Replace(ctx, url, pngFile(), spec)
	require.NoError(t, err)
	assert.Equal(t, url, same)
	assert.Empty(t, f.media.DeletedURLs)

	webp := pngFile()
	webp.Filename = "me.webp"
	webp.ContentType = "image/webp"
	next, err := f.uploads.Replace(ctx, url, webp, spec)
	require.NoError(t, err)
	assert.Equal(t, "https://media.test/Animax/profilePictures/u1.webp", next)
	assert.Equal(t, []string{url}, f.media.DeletedURLs)
}

func TestReplace_SkipsPreviousAlreadyGone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	spec := storage.KeySpec{Kind: storage.KindProfilePicture, UserID: "u1"}

	gone := storetest.PublicURL + "/Animax/profilePictures/u1.jpg"
	next, err := f.uploads.Replace(ctx, gone, pngFile(), spec)
	require.NoError(t, err)
	assert.Equal(t, "https://media.test/Animax/profilePictures/u1.png", next)
	assert.Empty(t, f.media.DeletedURLs)

	// lookups that fail still fall through to the delete
	_, err = f.uploads.Replace(ctx, "https://elsewhere.test/old.png", pngFile(), spec)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://elsewhere.test/old.png"}, f.media.DeletedURLs)
}
