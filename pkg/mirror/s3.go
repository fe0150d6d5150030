package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/rahulbrandimpetus/wheelspin-backend/internal/models"
)

// ErrNoSnapshot is returned by Fetch when nothing has been published yet
var ErrNoSnapshot = errors.New("mirror: no snapshot published")

// Options configures the S3 (or S3 compatible, e.g. R2) mirror
type Options struct {
	Bucket          string
	Key             string
	Region          string
	Endpoint        string // Custom endpoint for S3 compatible stores
	AccessKeyID     string
	SecretAccessKey string
}

// S3Mirror publishes the statistics snapshot as a JSON object for display clients
type S3Mirror struct {
	client *s3.Client
	bucket string
	key    string
}

// NewS3Mirror loads AWS configuration and creates the mirror
func NewS3Mirror(ctx context.Context, opts Options) (*S3Mirror, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load mirror config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
			// S3 compatible stores reject the default streaming checksums
			o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
			o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
		}
	})
	return &S3Mirror{client: client, bucket: opts.Bucket, key: opts.Key}, nil
}

// Publish overwrites the mirror object with snapshot
func (m *S3Mirror) Publish(ctx context.Context, snapshot models.StatsSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("mirror: encode snapshot: %w", err)
	}
	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(m.bucket),
		Key:          aws.String(m.key),
		Body:         bytes.NewReader(payload),
		ContentType:  aws.String("application/json"),
		CacheControl: aws.String("no-cache"),
	})
	if err != nil {
		return fmt.Errorf("mirror: put s3://%s/%s: %w", m.bucket, m.key, err)
	}
	return nil
}

// Fetch reads back the last published snapshot
func (m *S3Mirror) Fetch(ctx context.Context) (*models.StatsSnapshot, error) {
	out, err := m.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(m.key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("mirror: get s3://%s/%s: %w", m.bucket, m.key, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("mirror: read snapshot: %w", err)
	}
	var snapshot models.StatsSnapshot
	if err := json.Unmarshal(body, &snapshot); err != nil {
		return nil, fmt.Errorf("mirror: decode snapshot: %w", err)
	}
	return &snapshot, nil
}
