package application

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/vidtube/backend/pkg/helpers"
)

// FileUpload carries one multipart file from the HTTP layer.
type FileUpload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
}

// MediaUploader is the media-host collaborator: it stores an image and
// returns its public URL, or fails when the host rejects or is unreachable.
type MediaUploader interface {
	UploadImage(ctx context.Context, kind, ownerID string, f FileUpload) (string, error)
}

// MediaStore uploads images to the media host (GCS). A nil client means the
// host is unconfigured and every upload fails, which callers surface as a
// missing-file validation error.
type MediaStore struct {
	GCS    *storage.Client
	Bucket string
}

func NewMediaStore(gcs *storage.Client, bucket string) *MediaStore {
	return &MediaStore{GCS: gcs, Bucket: bucket}
}

// UploadImage stores the file under <kind>/<ownerID>/<uuid><ext> and returns
// its public URL.
func (m *MediaStore) UploadImage(ctx context.Context, kind, ownerID string, f FileUpload) (string, error) {
	if m == nil || m.GCS == nil || m.Bucket == "" {
		return "", errors.New("media host not configured")
	}
	ext := strings.ToLower(filepath.Ext(f.Filename))
	objectPath := filepath.ToSlash(filepath.Join(kind, ownerID, uuid.NewString()+ext))
	return helpers.UploadObject(ctx, m.GCS, m.Bucket, objectPath, f.ContentType, f.Reader)
}
