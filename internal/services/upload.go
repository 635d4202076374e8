// ===============================
// internal/services/upload.go - Media upload adapter
// ===============================

package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"animax/internal/logging"
	"animax/internal/metrics"
	"animax/internal/storage"

	"github.com/gabriel-vasile/mimetype"
)

// MediaFile is an uploaded payload handed over by the transport layer.
type MediaFile struct {
	Body        io.ReadSeeker
	Filename    string
	ContentType string
	Size        int64
}

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

var allowedVideoTypes = map[string]string{
	"video/mp4":       ".mp4",
	"video/webm":      ".webm",
	"video/avi":       ".avi",
	"video/x-msvideo": ".avi",
}

type UploadService struct {
	media MediaStore
}

func NewUploadService(media MediaStore) *UploadService {
	return &UploadService{media: media}
}

// Upload validates the payload type for the kind, derives the object key
// and stores the file, returning its public URL.
func (s *UploadService) Upload(ctx context.Context, file *MediaFile, spec storage.KeySpec) (string, error) {
	if file == nil || file.Body == nil {
		return "", NewValidationError("File is required")
	}

	contentType, err := detectContentType(file)
	if err != nil {
		return "", NewValidationError("Unable to read uploaded file")
	}

	allowed := allowedImageTypes
	if spec.Kind == storage.KindAnimeEpisode {
		allowed = allowedVideoTypes
	}
	defaultExt, ok := allowed[contentType]
	if !ok {
		return "", NewValidationError(fmt.Sprintf("Unsupported file type %s", contentType))
	}

	spec.Ext = strings.ToLower(filepath.Ext(file.Filename))
	if spec.Ext == "" {
		spec.Ext = defaultExt
	}

	key, err := storage.BuildKey(s.media.RootFolder(), spec)
	if err != nil {
		return "", NewValidationError(err.Error())
	}

	url, err := s.media.Upload(ctx, key, file.Body, contentType)
	metrics.RecordMediaUpload(string(spec.Kind), err)
	if err != nil {
		return "", NewUpstreamError("Failed to upload media", err)
	}

	logging.Ctx(ctx).Info().
		Str("kind", string(spec.Kind)).
		Str("key", key).
		Int64("size", file.Size).
		Msg("media uploaded")
	return url, nil
}

// Replace uploads a new file and then removes the previous object if its
// URL changed and it is still stored. Removal failures are logged only.
func (s *UploadService) Replace(ctx context.Context, previousURL string, file *MediaFile, spec storage.KeySpec) (string, error) {
	url, err := s.Upload(ctx, file, spec)
	if err != nil {
		return "", err
	}
	if previousURL == "" || previousURL == url {
		return url, nil
	}

	exists, err := s.media.ExistsByURL(ctx, previousURL)
	if err != nil {
		logging.Ctx(ctx).Debug().Err(err).Str("url", previousURL).Msg("could not check previous media")
	} else if !exists {
		logging.Ctx(ctx).Debug().Str("url", previousURL).Msg("previous media already gone")
		return url, nil
	}
	s.DeleteQuietly(ctx, previousURL)
	return url, nil
}

// DeleteQuietly removes an object by URL, logging failures.
func (s *UploadService) DeleteQuietly(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.media.DeleteByURL(ctx, url); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("url", url).Msg("failed to delete media")
	}
}

// detectContentType trusts the declared type unless it is missing or
// generic, in which case the bytes are sniffed.
func detectContentType(file *MediaFile) (string, error) {
	declared := strings.ToLower(strings.TrimSpace(file.ContentType))
	if i := strings.Index(declared, ";"); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}
	if declared != "" && declared != "application/octet-stream" {
		return declared, nil
	}

	mtype, err := mimetype.DetectReader(file.Body)
	if err != nil {
		return "", err
	}
	if _, err := file.Body.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	sniffed, _, _ := strings.Cut(mtype.String(), ";")
	return sniffed, nil
}
