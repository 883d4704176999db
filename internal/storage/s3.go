package storage

import (
	"bytes"
	"context"
	"strings"
	"time"

	"weeklygrind/plan-tracker/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	log "github.com/sirupsen/logrus"
)

// s3Storage implements the FileStorage interface using an S3-compatible backend.
type s3Storage struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucketName    string
}

// NewS3Storage creates a new S3 storage service instance.
func NewS3Storage(ctx context.Context, cfg config.S3Config) (FileStorage, error) {
	endpoint := endpointURL(cfg.Endpoint, cfg.UseSSL)

	// Custom resolver for S3-compatible endpoints (MinIO, DigitalOcean Spaces)
	customResolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		if endpoint != "" {
			return aws.Endpoint{
				PartitionID:   "aws",
				URL:           endpoint,
				SigningRegion: cfg.Region,
			}, nil
		}
		// default AWS endpoint resolution
		return aws.Endpoint{}, &aws.EndpointNotFoundError{}
	})

	opts := []func(*awsCfg.LoadOptions) error{
		awsCfg.WithRegion(cfg.Region),
		awsCfg.WithEndpointResolverWithOptions(customResolver),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsCfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsSDKConfig, err := awsCfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	// path-style addressing is required by most S3-compatible services
	s3Client := s3.NewFromConfig(awsSDKConfig, func(o *s3.Options) {
		o.UsePathStyle = endpoint != ""
	})

	log.Infof("s3 storage initialized for endpoint: %q, bucket: %s", endpoint, cfg.BucketName)

	return &s3Storage{
		client:        s3Client,
		presignClient: s3.NewPresignClient(s3Client),
		bucketName:    cfg.BucketName,
	}, nil
}

// endpointURL adds a scheme to bare host:port endpoints.
func endpointURL(endpoint string, useSSL bool) string {
	if endpoint == "" || strings.Contains(endpoint, "://") {
		return endpoint
	}
	if useSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}

func (s *s3Storage) PutObject(ctx context.Context, objectKey string, contentType string, body []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucketName),
		Key:           aws.String(objectKey),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
		Body:          bytes.NewReader(body),
	})
	if err != nil {
		log.Errorf("put object '%s' into bucket '%s': %s", objectKey, s.bucketName, err)
		return err
	}
	return nil
}

// GeneratePresignedDownloadURL creates a temporary URL for downloading (GET).
func (s *s3Storage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	if expires <= 0 {
		expires = DefaultPresignedURLExpiry
	}

	presignParams := &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(objectKey),
	}

	req, err := s.presignClient.PresignGetObject(ctx, presignParams, s3.WithPresignExpires(expires))
	if err != nil {
		log.Errorf("generate presigned GET URL for key '%s': %s", objectKey, err)
		return "", err
	}

	return req.URL, nil
}

// DeleteObject removes an object from the S3 bucket.
func (s *s3Storage) DeleteObject(ctx context.Context, objectKey string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		log.Errorf("delete object '%s' from bucket '%s': %s", objectKey, s.bucketName, err)
		return err
	}

	log.Debugf("deleted object '%s' from bucket '%s'", objectKey, s.bucketName)
	return nil
}
