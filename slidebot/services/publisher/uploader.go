package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"
	"time"

	httputils "slidebot/slidebot/utils/http"
	"slidebot/slidebot/utils/logging"
)

// Uploader publishes an assembled document and returns its public link.
type Uploader interface {
	Upload(ctx context.Context, path string) (string, error)
}

// StatusError means the host answered with a non-success status. It is an
// upload rejection rather than an unexpected failure.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upload rejected: status %d", e.StatusCode)
}

// IsUploadRejected reports whether err is a host-side rejection.
func IsUploadRejected(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}

// FileHostUploader posts the document as multipart field "file" and reads
// the hosted link from the JSON "link" field.
type FileHostUploader struct {
	client   httputils.Doer
	endpoint string
}

func NewFileHostUploader(client httputils.Doer, endpoint string) *FileHostUploader {
	return &FileHostUploader{client: client, endpoint: endpoint}
}

type uploadResponse struct {
	Success *bool  `json:"success,omitempty"`
	Link    string `json:"link"`
}

func (u *FileHostUploader) Upload(ctx context.Context, path string) (string, error) {
	defer logging.LogDuration(ctx, "FileHostUploader.Upload")()

	resp, err := httputils.PostFile(ctx, u.client, u.endpoint, "file", path)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{StatusCode: resp.StatusCode}
	}

	var body uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if body.Link == "" {
		return "", errors.New("upload response has no link")
	}
	return body.Link, nil
}

// ObjectStore is the storage the object store uploader needs.
type ObjectStore interface {
	PutDocument(ctx context.Context, key, path string) error
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// ObjectStoreUploader keeps documents in a bucket and hands out presigned links.
type ObjectStoreUploader struct {
	store  ObjectStore
	expiry time.Duration
}

func NewObjectStoreUploader(store ObjectStore, expiry time.Duration) *ObjectStoreUploader {
	return &ObjectStoreUploader{store: store, expiry: expiry}
}

func (u *ObjectStoreUploader) Upload(ctx context.Context, docPath string) (string, error) {
	defer logging.LogDuration(ctx, "ObjectStoreUploader.Upload")()

	key := path.Join("decks", logging.RunID(ctx), path.Base(docPath))
	if err := u.store.PutDocument(ctx, key, docPath); err != nil {
		return "", err
	}
	return u.store.PresignedURL(ctx, key, u.expiry)
}
