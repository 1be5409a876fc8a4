package services

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"foodlink-backend/internal/apperrors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const uploadURLExpiry = 5 * time.Minute

// PhotoService issues pre-signed S3 upload URLs so donor clients can
// attach photos before creating a listing. It never touches donation
// state; the resulting public URLs are passed into Create.
type PhotoService struct {
	s3Client *s3.Client
	bucket   string
	region   string
	endpoint string
}

// NewPhotoService creates a photo service with static credentials and
// an optional custom S3 endpoint.
func NewPhotoService(region, bucket, accessKey, secretKey, endpoint string) (*PhotoService, error) {
	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &PhotoService{
		s3Client: s3Client,
		bucket:   bucket,
		region:   region,
		endpoint: endpoint,
	}, nil
}

// UploadURLRequest asks for a pre-signed upload slot.
type UploadURLRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

// UploadURLResponse carries the pre-signed PUT URL and the public URL
// the photo will have once uploaded.
type UploadURLResponse struct {
	UploadURL string `json:"upload_url"`
	PhotoURL  string `json:"photo_url"`
	ExpiresIn int    `json:"expires_in"`
}

// CreateUploadURL generates a pre-signed PUT URL under the donor's
// prefix.
func (s *PhotoService) CreateUploadURL(ctx context.Context, donorID, filename, contentType string) (*UploadURLResponse, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, apperrors.Validation("filename is required")
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}

	ext := path.Ext(filename)
	if ext == "" {
		ext = ".jpg"
	}
	key := fmt.Sprintf("donations/%s/%s%s", donorID, uuid.New().String(), ext)

	presignClient := s3.NewPresignClient(s.s3Client)
	request, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = uploadURLExpiry
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate pre-signed URL: %w", err)
	}

	return &UploadURLResponse{
		UploadURL: request.URL,
		PhotoURL:  s.publicURL(key),
		ExpiresIn: int(uploadURLExpiry.Seconds()),
	}, nil
}

func (s *PhotoService) publicURL(key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(s.endpoint, "/"), s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
