package writer

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "github.com/ericmaniraguh/crypto-price-tracker/config"
	"github.com/ericmaniraguh/crypto-price-tracker/logger"
)

// s3Uploader mirrors each written dataset file to an S3 bucket under a
// date-partitioned key.
type s3Uploader struct {
	client *s3.Client
	bucket string
	prefix string
	log    *logger.Log
}

func newS3Uploader(ctx context.Context, cfg *appconfig.Config) (*s3Uploader, error) {
	log := logger.GetLogger()

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Storage.S3.Region),
	}
	if cfg.Storage.S3.AccessKeyID != "" && cfg.Storage.S3.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.Storage.S3.AccessKeyID,
				cfg.Storage.S3.SecretAccessKey,
				"",
			),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		log.WithComponent("s3_uploader").WithError(err).Warn("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	creds, err := awsCfg.Credentials.Retrieve(ctx)
	if err != nil || !creds.HasKeys() {
		return nil, fmt.Errorf("aws credentials not found")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.S3.Endpoint)
		}
		o.UsePathStyle = cfg.Storage.S3.PathStyle
	})

	log.WithComponent("s3_uploader").WithFields(logger.Fields{
		"bucket":     cfg.Storage.S3.Bucket,
		"region":     cfg.Storage.S3.Region,
		"endpoint":   cfg.Storage.S3.Endpoint,
		"path_style": cfg.Storage.S3.PathStyle,
	}).Info("s3 uploader initialized")

	return &s3Uploader{
		client: client,
		bucket: cfg.Storage.S3.Bucket,
		prefix: strings.Trim(cfg.Storage.S3.Prefix, "/"),
		log:    log,
	}, nil
}

// Upload puts a single dataset file into the bucket. Keys are partitioned by
// capture date so daily runs never overwrite each other across dates.
func (u *s3Uploader) Upload(ctx context.Context, captureDate, filename string, data []byte, contentType string) error {
	key := u.generateKey(captureDate, filename)
	log := u.log.WithComponent("s3_uploader").WithFields(logger.Fields{
		"operation": "upload",
		"s3_key":    key,
		"data_size": len(data),
	})
	log.Info("uploading to S3")

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3 bucket %s: %w", u.bucket, err)
	}

	log.Info("successfully uploaded to S3")
	return nil
}

func (u *s3Uploader) generateKey(captureDate, filename string) string {
	parts := []string{}
	if u.prefix != "" {
		parts = append(parts, u.prefix)
	}
	parts = append(parts, fmt.Sprintf("date=%s", captureDate), filename)
	return path.Join(parts...)
}
