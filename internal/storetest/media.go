package storetest

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// ErrMediaUnavailable is returned by Media when failures are switched on.
var ErrMediaUnavailable = errors.New("media store unavailable")

const PublicURL = "https://media.test"

// Media records object store calls. Objects live in a map keyed by object
// key; URLs are PublicURL + "/" + key without escaping.
type Media struct {
	mu sync.Mutex

	Root    string
	Objects map[string]string

	Uploaded      []string
	DeletedURLs   []string
	DeletedFolder []string

	// FailDeletes makes every delete call fail.
	FailDeletes bool
	// FailUploads makes every upload call fail.
	FailUploads bool
}

func NewMedia() *Media {
	return &Media{Root: "Animax", Objects: map[string]string{}}
}

func (m *Media) RootFolder() string {
	return m.Root
}

func (m *Media) Upload(_ context.Context, key string, body io.ReadSeeker, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailUploads {
		return "", ErrMediaUnavailable
	}
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	m.Objects[key] = contentType
	m.Uploaded = append(m.Uploaded, key)
	return PublicURL + "/" + key, nil
}

func (m *Media) DeleteByURL(_ context.Context, rawURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeletedURLs = append(m.DeletedURLs, rawURL)
	if m.FailDeletes {
		return ErrMediaUnavailable
	}
	delete(m.Objects, strings.TrimPrefix(rawURL, PublicURL+"/"))
	return nil
}

func (m *Media) ExistsByURL(_ context.Context, rawURL string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !strings.HasPrefix(rawURL, PublicURL+"/") {
		return false, ErrMediaUnavailable
	}
	_, ok := m.Objects[strings.TrimPrefix(rawURL, PublicURL+"/")]
	return ok, nil
}

func (m *Media) DeleteFolder(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeletedFolder = append(m.DeletedFolder, prefix)
	if m.FailDeletes {
		return ErrMediaUnavailable
	}
	prefix = strings.TrimRight(prefix, "/") + "/"
	for key := range m.Objects {
		if strings.HasPrefix(key, prefix) {
			delete(m.Objects, key)
		}
	}
	return nil
}

// Keys returns the stored object keys.
func (m *Media) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.Objects))
	for k := range m.Objects {
		keys = append(keys, k)
	}
	return keys
}
