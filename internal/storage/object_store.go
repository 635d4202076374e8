// ===============================
// internal/storage/object_store.go - S3-compatible (R2) media store
// ===============================

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"animax/internal/config"
	"animax/internal/logging"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// ErrForeignURL is returned when a URL does not live under the store's public base.
var ErrForeignURL = errors.New("url_not_in_bucket")

// maxDeleteBatch is the S3 DeleteObjects limit.
const maxDeleteBatch = 1000

type ObjectStore struct {
	client     s3iface.S3API
	bucketName string
	publicURL  string
	rootFolder string
}

func NewObjectStore(cfg config.StorageConfig) (*ObjectStore, error) {
	sess, err := session.NewSession(&aws.Config{
		Region:           aws.String(cfg.Region),
		Endpoint:         aws.String(cfg.Endpoint),
		Credentials:      credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
		S3ForcePathStyle: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage session: %w", err)
	}

	return NewObjectStoreWithClient(s3.New(sess), cfg.BucketName, cfg.PublicURL, cfg.RootFolder), nil
}

// NewObjectStoreWithClient wires an existing S3 client.
func NewObjectStoreWithClient(client s3iface.S3API, bucketName, publicURL, rootFolder string) *ObjectStore {
	return &ObjectStore{
		client:     client,
		bucketName: bucketName,
		publicURL:  strings.TrimRight(publicURL, "/"),
		rootFolder: strings.Trim(rootFolder, "/"),
	}
}

// RootFolder is the prefix every media key starts with.
func (o *ObjectStore) RootFolder() string {
	return o.rootFolder
}

// Upload stores body under key and returns its public URL.
func (o *ObjectStore) Upload(ctx context.Context, key string, body io.ReadSeeker, contentType string) (string, error) {
	_, err := o.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(o.bucketName),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return o.GetPublicURL(key), nil
}

// DeleteByURL removes the object a public URL points at.
func (o *ObjectStore) DeleteByURL(ctx context.Context, rawURL string) error {
	key, err := o.KeyFromURL(rawURL)
	if err != nil {
		return err
	}
	return o.DeleteFile(ctx, key)
}

// ExistsByURL reports whether the object behind a public URL is stored.
func (o *ObjectStore) ExistsByURL(ctx context.Context, rawURL string) (bool, error) {
	key, err := o.KeyFromURL(rawURL)
	if err != nil {
		return false, err
	}
	return o.FileExists(ctx, key)
}

func (o *ObjectStore) DeleteFile(ctx context.Context, key string) error {
	_, err := o.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(o.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// DeleteFolder removes every object below prefix, recursing into
// sub-folders, then the folder marker itself.
func (o *ObjectStore) DeleteFolder(ctx context.Context, prefix string) error {
	prefix = strings.TrimRight(prefix, "/") + "/"

	var (
		token   *string
		keys    []string
		folders []string
	)
	for {
		out, err := o.client.ListObjectsV2WithContext(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(o.bucketName),
			Prefix:            aws.String(prefix),
			Delimiter:         aws.String("/"),
			ContinuationToken: token,
		})
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", prefix, err)
		}

		for _, obj := range out.Contents {
			if key := aws.StringValue(obj.Key); key != prefix {
				keys = append(keys, key)
			}
		}
		for _, cp := range out.CommonPrefixes {
			folders = append(folders, aws.StringValue(cp.Prefix))
		}

		if !aws.BoolValue(out.IsTruncated) {
			break
		}
		token = out.NextContinuationToken
	}

	if err := o.deleteKeys(ctx, keys); err != nil {
		return err
	}

	for _, folder := range folders {
		if err := o.DeleteFolder(ctx, folder); err != nil {
			return err
		}
	}

	if err := o.DeleteFile(ctx, prefix); err != nil {
		return err
	}

	logging.Debug().
		Str("prefix", prefix).
		Int("objects", len(keys)).
		Int("folders", len(folders)).
		Msg("storage folder deleted")
	return nil
}

func (o *ObjectStore) deleteKeys(ctx context.Context, keys []string) error {
	for start := 0; start < len(keys); start += maxDeleteBatch {
		end := start + maxDeleteBatch
		if end > len(keys) {
			end = len(keys)
		}

		objects := make([]*s3.ObjectIdentifier, 0, end-start)
		for _, key := range keys[start:end] {
			objects = append(objects, &s3.ObjectIdentifier{Key: aws.String(key)})
		}

		out, err := o.client.DeleteObjectsWithContext(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(o.bucketName),
			Delete: &s3.Delete{Objects: objects, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return fmt.Errorf("failed to delete objects: %w", err)
		}
		if len(out.Errors) > 0 {
			first := out.Errors[0]
			return fmt.Errorf("failed to delete %s: %s", aws.StringValue(first.Key), aws.StringValue(first.Message))
		}
	}
	return nil
}

// GetPublicURL escapes each key segment so titles with spaces stay addressable.
func (o *ObjectStore) GetPublicURL(key string) string {
	segments := strings.Split(key, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return o.publicURL + "/" + strings.Join(segments, "/")
}

// KeyFromURL reverses GetPublicURL.
func (o *ObjectStore) KeyFromURL(rawURL string) (string, error) {
	base := o.publicURL + "/"
	if !strings.HasPrefix(rawURL, base) {
		return "", fmt.Errorf("%w: %s", ErrForeignURL, rawURL)
	}

	key, err := url.PathUnescape(strings.TrimPrefix(rawURL, base))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrForeignURL, err)
	}
	if key == "" {
		return "", fmt.Errorf("%w: empty key", ErrForeignURL)
	}
	return key, nil
}

func (o *ObjectStore) FileExists(ctx context.Context, key string) (bool, error) {
	_, err := o.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(o.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && (aerr.Code() == "NotFound" || aerr.Code() == s3.ErrCodeNoSuchKey) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
