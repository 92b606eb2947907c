package avatar

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/contactkeeper/internal/server/config"
	"github.com/google/uuid"
)

// MaxSize is the largest accepted avatar upload in bytes.
const MaxSize = 5 << 20

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}
)

// Image is an uploaded avatar file.
type Image struct {
	Body        io.Reader
	Size        int64
	ContentType string
	Filename    string
}

// S3Uploader stores avatars in an S3 compatible bucket.
type S3Uploader struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

// NewS3Uploader builds an S3 client with static credentials from cfg.
func NewS3Uploader(ctx context.Context, cfg *sc.Config) (*S3Uploader, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	publicURL := cfg.S3PublicURL
	if !strings.HasSuffix(publicURL, "/") {
		publicURL += "/"
	}

	return &S3Uploader{client: client, bucket: cfg.S3Bucket, publicURL: publicURL}, nil
}

// Upload stores img under avatars/<username>/<uuid><ext> and returns its public URL.
func (u *S3Uploader) Upload(ctx context.Context, username string, img Image) (string, error) {
	key := ObjectKey(username, img.Filename)

	_, err := putObject(u.client, ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          img.Body,
		ContentLength: aws.Int64(img.Size),
		ContentType:   aws.String(img.ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put object: %w", err)
	}

	return u.publicURL + key, nil
}

// ObjectKey returns a fresh storage key for an avatar of username.
func ObjectKey(username, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("avatars/%s/%s%s", username, uuid.NewString(), ext)
}
