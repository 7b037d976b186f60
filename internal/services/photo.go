package services

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"travel-discovery-backend/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const (
	uploadURLTTL       = 5 * time.Minute
	profilePhotoPrefix = "profiles"
)

var (
	// ErrUnsupportedContentType is returned for non-image uploads
	ErrUnsupportedContentType = errors.New("unsupported content type")

	// ErrForeignPhoto is returned when confirming a key outside the user's prefix
	ErrForeignPhoto = errors.New("photo does not belong to user")
)

var photoExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// PhotoService issues upload URLs for profile photos and records the result
// on the profile
type PhotoService struct {
	profiles *ProfileAdapter
	s3Client *s3.Client
	s3Bucket string
	region   string
	endpoint string
}

// AWSOptions configures the S3 client
type AWSOptions struct {
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	Endpoint  string
}

// NewPhotoService creates a new photo service. Static credentials and a
// custom endpoint are used when set; otherwise the default AWS chain applies.
func NewPhotoService(ctx context.Context, profiles *ProfileAdapter, opts AWSOptions) (*PhotoService, error) {
	loaders := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKey != "" {
		loaders = append(loaders, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &PhotoService{
		profiles: profiles,
		s3Client: s3Client,
		s3Bucket: opts.Bucket,
		region:   opts.Region,
		endpoint: strings.TrimRight(opts.Endpoint, "/"),
	}, nil
}

// UploadRequest represents a request for a pre-signed upload URL
type UploadRequest struct {
	ContentType string `json:"contentType" validate:"omitempty,oneof=image/jpeg image/png image/webp"`
}

// UploadResponse carries the pre-signed URL and the key to confirm
type UploadResponse struct {
	UploadURL string `json:"uploadUrl"`
	Key       string `json:"key"`
	ExpiresIn int    `json:"expiresIn"`
}

// GetPreSignedURL generates a pre-signed PUT URL for a new profile photo
func (s *PhotoService) GetPreSignedURL(ctx context.Context, userID, contentType string) (*UploadResponse, error) {
	if contentType == "" {
		contentType = "image/jpeg"
	}
	ext, ok := photoExtensions[contentType]
	if !ok {
		return nil, ErrUnsupportedContentType
	}

	key := PhotoKey(userID, uuid.New().String(), ext)
	presignClient := s3.NewPresignClient(s.s3Client)
	request, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = uploadURLTTL
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate pre-signed URL: %w", err)
	}

	return &UploadResponse{
		UploadURL: request.URL,
		Key:       key,
		ExpiresIn: int(uploadURLTTL.Seconds()),
	}, nil
}

// ConfirmUpload stores the public URL of an uploaded photo on the profile.
// Only keys issued by GetPreSignedURL for userID are accepted.
func (s *PhotoService) ConfirmUpload(ctx context.Context, token, userID, key string) (*models.UserProfile, *Advisory, error) {
	if !ownsPhotoKey(userID, key) {
		return nil, nil, ErrForeignPhoto
	}
	photoURL := ObjectURL(s.endpoint, s.s3Bucket, s.region, key)
	return s.profiles.UpdateProfile(ctx, token, ProfileUpdate{PhotoURL: &photoURL})
}

// PhotoKey is the object key of a profile photo: profiles/{uid}/{id}.{ext}
func PhotoKey(userID, photoID, ext string) string {
	return fmt.Sprintf("%s/%s/%s.%s", profilePhotoPrefix, userID, photoID, ext)
}

// ownsPhotoKey reports whether key is exactly profiles/{userID}/{uuid}.{ext}
// with an extension GetPreSignedURL issues
func ownsPhotoKey(userID, key string) bool {
	parts := strings.Split(key, "/")
	if len(parts) != 3 || parts[0] != profilePhotoPrefix || parts[1] != userID || userID == "" {
		return false
	}
	id, ext, ok := strings.Cut(parts[2], ".")
	if !ok || !slices.Contains(slices.Collect(maps.Values(photoExtensions)), ext) {
		return false
	}
	parsed, err := uuid.Parse(id)
	return err == nil && parsed.String() == id
}

// ObjectURL is the public URL of key, path-style when a custom endpoint is set
func ObjectURL(endpoint, bucket, region, key string) string {
	if endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", endpoint, bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, region, key)
}
