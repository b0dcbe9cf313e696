package services

import (
	"context"
	"io"

	"github.com/fitforge/fitforge-web/pkg/metrics"
	"github.com/fitforge/fitforge-web/pkg/storage"
)

// VideoFile is an uploaded video waiting to be stored
type VideoFile struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.ReadSeeker
}

// APIVideoUploader stores videos through the course API's upload endpoint
type APIVideoUploader struct {
	api CourseAPI
}

// NewAPIVideoUploader creates an uploader that forwards to the course API
func NewAPIVideoUploader(api CourseAPI) *APIVideoUploader {
	return &APIVideoUploader{api: api}
}

func (u *APIVideoUploader) Backend() string { return "api" }

func (u *APIVideoUploader) Upload(ctx context.Context, token string, video *VideoFile) (string, error) {
	resp, err := u.api.UploadVideo(ctx, token, video.Filename, video.Body)
	if err != nil {
		metrics.VideoUploads.WithLabelValues(u.Backend(), "error").Inc()
		return "", err
	}
	metrics.VideoUploads.WithLabelValues(u.Backend(), "success").Inc()
	return resp.VideoURL, nil
}

// ObjectStoreUploader stores videos directly in an S3-compatible bucket
type ObjectStoreUploader struct {
	store *storage.VideoStore
}

// NewObjectStoreUploader wraps a bucket client
func NewObjectStoreUploader(store *storage.VideoStore) *ObjectStoreUploader {
	return &ObjectStoreUploader{store: store}
}

func (u *ObjectStoreUploader) Backend() string { return "s3" }

// Upload ignores token; the bucket has its own credentials
func (u *ObjectStoreUploader) Upload(ctx context.Context, _ string, video *VideoFile) (string, error) {
	return u.store.Upload(ctx, video.Body, video.Filename, video.ContentType)
}
