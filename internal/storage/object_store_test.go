package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 keeps objects in a map and answers the calls ObjectStore makes.
type fakeS3 struct {
	s3iface.S3API

	mu      sync.Mutex
	objects map[string]string
	puts    []string
}

func newFakeS3(keys ...string) *fakeS3 {
	f := &fakeS3{objects: map[string]string{}}
	for _, k := range keys {
		f.objects[k] = "x"
	}
	return f
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.StringValue(in.Key)] = aws.StringValue(in.ContentType)
	f.puts = append(f.puts, aws.StringValue(in.Key))
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObjectWithContext(_ aws.Context, in *s3.DeleteObjectInput, _ ...request.Option) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.StringValue(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) DeleteObjectsWithContext(_ aws.Context, in *s3.DeleteObjectsInput, _ ...request.Option) (*s3.DeleteObjectsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, obj := range in.Delete.Objects {
		delete(f.objects, aws.StringValue(obj.Key))
	}
	return &s3.DeleteObjectsOutput{}, nil
}

func (f *fakeS3) ListObjectsV2WithContext(_ aws.Context, in *s3.ListObjectsV2Input, _ ...request.Option) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	prefix := aws.StringValue(in.Prefix)
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	seen := map[string]bool{}
	for key := range f.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		rest := strings.TrimPrefix(key, prefix)
		if i := strings.Index(rest, "/"); i >= 0 {
			sub := prefix + rest[:i+1]
			if !seen[sub] {
				seen[sub] = true
				out.CommonPrefixes = append(out.CommonPrefixes, &s3.CommonPrefix{Prefix: aws.String(sub)})
			}
			continue
		}
		out.Contents = append(out.Contents, &s3.Object{Key: aws.String(key)})
	}
	return out, nil
}

func (f *fakeS3) HeadObjectWithContext(_ aws.Context, in *s3.HeadObjectInput, _ ...request.Option) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[aws.StringValue(in.Key)]; !ok {
		return nil, awserr.New("NotFound", "not found", nil)
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.objects))
	for k := range f.objects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func TestObjectStore_PublicURLRoundTrip(t *testing.T) {
	store := NewObjectStoreWithClient(newFakeS3(), "animax", "https://cdn.example.com/", "Animax")

	key := "Animax/anime/One Piece/cover/cover.png"
	u := store.GetPublicURL(key)
	assert.Equal(t, "https://cdn.example.com/Animax/anime/One%20Piece/cover/cover.png", u)

	back, err := store.KeyFromURL(u)
	require.NoError(t, err)
	assert.Equal(t, key, back)
}

func TestObjectStore_KeyFromForeignURL(t *testing.T) {
	store := NewObjectStoreWithClient(newFakeS3(), "animax", "https://cdn.example.com", "Animax")

	_, err := store.KeyFromURL("https://elsewhere.example.com/a.png")
	assert.ErrorIs(t, err, ErrForeignURL)

	_, err = store.KeyFromURL("https://cdn.example.com/")
	assert.ErrorIs(t, err, ErrForeignURL)
}

func TestObjectStore_UploadAndDeleteByURL(t *testing.T) {
	fake := newFakeS3()
	store := NewObjectStoreWithClient(fake, "animax", "https://cdn.example.com", "Animax")
	ctx := context.Background()

	u, err := store.Upload(ctx, "Animax/profilePictures/u1.png", strings.NewReader("img"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, []string{"Animax/profilePictures/u1.png"}, fake.keys())

	exists, err := store.FileExists(ctx, "Animax/profilePictures/u1.png")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.ExistsByURL(ctx, u)
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = store.ExistsByURL(ctx, "https://elsewhere.test/Animax/profilePictures/u1.png")
	assert.ErrorIs(t, err, ErrForeignURL)

	require.NoError(t, store.DeleteByURL(ctx, u))
	assert.Empty(t, fake.keys())

	exists, err = store.FileExists(ctx, "Animax/profilePictures/u1.png")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = store.ExistsByURL(ctx, u)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestObjectStore_DeleteFolderRecurses(t *testing.T) {
	fake := newFakeS3(
		"Animax/anime/Naruto/",
		"Animax/anime/Naruto/cover/cover.png",
		"Animax/anime/Naruto/seasons/Season_1/cover/cover.png",
		"Animax/anime/Naruto/seasons/Season_1/episodes/Episode_1.mp4",
		"Animax/anime/Naruto/seasons/Season_1/episodes/Episode_2.mp4",
		"Animax/anime/Bleach/cover/cover.png",
	)
	store := NewObjectStoreWithClient(fake, "animax", "https://cdn.example.com", "Animax")

	require.NoError(t, store.DeleteFolder(context.Background(), "Animax/anime/Naruto"))
	assert.Equal(t, []string{"Animax/anime/Bleach/cover/cover.png"}, fake.keys())
}
