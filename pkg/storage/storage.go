package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/fitforge/fitforge-web/pkg/logger"
	"github.com/fitforge/fitforge-web/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// VideoStore uploads course videos straight to an S3-compatible bucket,
// bypassing the course API's own upload endpoint.
type VideoStore struct {
	s3Client      *s3.Client
	bucketName    string
	endpoint      string
	publicBaseURL string
}

// Options configures a VideoStore
type Options struct {
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Endpoint        string
	Region          string
	// PublicBaseURL is prepended to object keys in returned URLs, e.g. a CDN.
	// Defaults to {Endpoint}/{Bucket}.
	PublicBaseURL string
}

// NewVideoStore creates an S3 client for the configured bucket
func NewVideoStore(opts Options) (*VideoStore, error) {
	if opts.BucketName == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	if opts.Endpoint == "" {
		opts.Endpoint = "https://s3.amazonaws.com"
	}
	if opts.Region == "" {
		opts.Region = "us-east-1"
	}
	opts.Endpoint = strings.TrimRight(opts.Endpoint, "/")

	s3Client := s3.New(s3.Options{
		Region:       opts.Region,
		BaseEndpoint: aws.String(opts.Endpoint),
		UsePathStyle: true,
		Credentials: credentials.NewStaticCredentialsProvider(
			opts.AccessKeyID,
			opts.SecretAccessKey,
			"",
		),
	})

	publicBase := strings.TrimRight(opts.PublicBaseURL, "/")
	if publicBase == "" {
		publicBase = fmt.Sprintf("%s/%s", opts.Endpoint, opts.BucketName)
	}

	logger.Info("Video object storage client initialized",
		zap.String("bucket", opts.BucketName),
		zap.String("endpoint", opts.Endpoint),
		zap.String("region", opts.Region),
	)

	return &VideoStore{
		s3Client:      s3Client,
		bucketName:    opts.BucketName,
		endpoint:      opts.Endpoint,
		publicBaseURL: publicBase,
	}, nil
}

// Upload stores a video under a fresh key and returns its public URL.
// body must be seekable so the SDK can sign the payload.
func (s *VideoStore) Upload(ctx context.Context, body io.ReadSeeker, filename, contentType string) (string, error) {
	start := time.Now()

	if err := ValidateVideoType(contentType); err != nil {
		metrics.VideoUploads.WithLabelValues("s3", "rejected").Inc()
		return "", err
	}

	key := ObjectKey(filename)
	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})

	duration := metrics.MeasureDuration(start)
	if err != nil {
		metrics.VideoUploads.WithLabelValues("s3", "error").Inc()
		logger.Warn("Video upload to object storage failed",
			zap.Error(err),
			zap.String("key", key),
			zap.Float64("duration", duration))
		return "", fmt.Errorf("failed to upload video: %w", err)
	}

	metrics.VideoUploads.WithLabelValues("s3", "success").Inc()
	logger.Info("Video uploaded to object storage",
		zap.String("key", key),
		zap.Float64("duration", duration))

	return fmt.Sprintf("%s/%s", s.publicBaseURL, key), nil
}

// ObjectKey builds a collision-free key that keeps the original extension
func ObjectKey(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("videos/%s%s", uuid.NewString(), ext)
}

// ValidateVideoType validates the upload content type
func ValidateVideoType(contentType string) error {
	validTypes := map[string]bool{
		"video/mp4":        true,
		"video/webm":       true,
		"video/quicktime":  true,
		"video/x-matroska": true,
	}

	mediaType := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	if !validTypes[mediaType] {
		return fmt.Errorf("invalid file type: %s. Allowed types: mp4, webm, mov, mkv", contentType)
	}

	return nil
}
