// internal/storage/avatar.go
package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"pocketcash-wallet/internal/util"
)

// AvatarUploadTTL is how long a presigned avatar upload URL stays valid.
const AvatarUploadTTL = 15 * time.Minute

var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
)

var avatarExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// S3Config holds the object storage settings for avatars.
type S3Config struct {
	Bucket        string
	Region        string
	Endpoint      string // optional, e.g. a MinIO URL
	AccessKey     string // optional, default credential chain when empty
	SecretKey     string
	PublicBaseURL string // optional, overrides the derived public URL
}

// AvatarUpload describes a presigned PUT the client performs directly against S3.
type AvatarUpload struct {
	Key       string    `json:"key"`
	UploadURL string    `json:"upload_url"`
	Method    string    `json:"method"`
	PublicURL string    `json:"public_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AvatarStore issues presigned upload URLs for profile photos.
type AvatarStore struct {
	cfg S3Config
}

// NewAvatarStore creates an AvatarStore. A store without a bucket is valid but
// reports util.ErrFeatureUnavailable on use.
func NewAvatarStore(cfg S3Config) *AvatarStore {
	return &AvatarStore{cfg: cfg}
}

// Enabled reports whether avatar uploads are configured.
func (s *AvatarStore) Enabled() bool {
	return s != nil && s.cfg.Bucket != ""
}

func (s *AvatarStore) presignClient(ctx context.Context) (*s3.PresignClient, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(s.cfg.Region)}
	if s.cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.cfg.AccessKey, s.cfg.SecretKey, ""),
		))
	}

	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3PresignClient(client), nil
}

// PresignUpload returns a presigned PUT for a new avatar object owned by userID.
func (s *AvatarStore) PresignUpload(ctx context.Context, userID, contentType string) (*AvatarUpload, error) {
	if !s.Enabled() {
		return nil, util.ErrFeatureUnavailable
	}
	ext, ok := avatarExtensions[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported content type %q", util.ErrInvalidInput, contentType)
	}

	pc, err := s.presignClient(ctx)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("avatars/%s/%s%s", userID, uuid.NewString(), ext)
	req, err := presignPutObject(pc, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(AvatarUploadTTL))
	if err != nil {
		return nil, fmt.Errorf("failed to presign avatar upload: %w", err)
	}

	return &AvatarUpload{
		Key:       key,
		UploadURL: req.URL,
		Method:    req.Method,
		PublicURL: s.publicURL(key),
		ExpiresAt: time.Now().UTC().Add(AvatarUploadTTL),
	}, nil
}

func (s *AvatarStore) publicURL(key string) string {
	escaped := (&url.URL{Path: key}).EscapedPath()
	switch {
	case s.cfg.PublicBaseURL != "":
		return strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/" + escaped
	case s.cfg.Endpoint != "":
		return strings.TrimRight(s.cfg.Endpoint, "/") + "/" + s.cfg.Bucket + "/" + escaped
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, escaped)
	}
}
