package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Provider is the S3-compatible storage vendor.
type Provider string

const (
	ProviderAWS    Provider = "aws"
	ProviderWasabi Provider = "wasabi"
	// ProviderCustom is any S3 API behind Endpoint (MinIO, R2, ...).
	ProviderCustom Provider = "custom"
)

type Config struct {
	Provider        Provider
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
	// Endpoint overrides the provider endpoint, e.g. "https://s3.ap-southeast-1.wasabisys.com".
	Endpoint string
	// PublicBaseURL is prefixed to object keys to build public links. When
	// empty the URL is derived from the endpoint and bucket.
	PublicBaseURL string
}

var wasabiEndpoints = map[string]string{
	"us-east-1":      "s3.us-east-1.wasabisys.com",
	"us-east-2":      "s3.us-east-2.wasabisys.com",
	"us-west-1":      "s3.us-west-1.wasabisys.com",
	"eu-central-1":   "s3.eu-central-1.wasabisys.com",
	"eu-west-1":      "s3.eu-west-1.wasabisys.com",
	"ap-northeast-1": "s3.ap-northeast-1.wasabisys.com",
	"ap-southeast-1": "s3.ap-southeast-1.wasabisys.com",
	"ap-southeast-2": "s3.ap-southeast-2.wasabisys.com",
}

// endpoint returns the base endpoint URL, or "" for plain AWS.
func (c Config) endpoint() string {
	if c.Endpoint != "" {
		if !strings.Contains(c.Endpoint, "://") {
			return "https://" + c.Endpoint
		}
		return strings.TrimRight(c.Endpoint, "/")
	}
	if c.Provider == ProviderWasabi {
		if host, ok := wasabiEndpoints[c.Region]; ok {
			return "https://" + host
		}
		return "https://s3.wasabisys.com"
	}
	return ""
}

// NewS3Client builds a client for AWS S3 or an S3-compatible endpoint.
// Non-AWS endpoints use path-style addressing.
func NewS3Client(ctx context.Context, cfg Config) (*s3.Client, error) {
	if cfg.Provider == ProviderCustom && cfg.Endpoint == "" {
		return nil, fmt.Errorf("s3 provider %q requires an endpoint", cfg.Provider)
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := cfg.endpoint()
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// PutObjectAPI is the slice of the S3 client the store needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store implements domain.ObjectStore on a bucket.
type S3Store struct {
	client     PutObjectAPI
	bucket     string
	publicBase string
}

func NewS3Store(client PutObjectAPI, cfg Config) *S3Store {
	return &S3Store{client: client, bucket: cfg.Bucket, publicBase: publicBase(cfg)}
}

// Put uploads data under key and returns its public URL.
func (s *S3Store) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return s.URL(key), nil
}

func (s *S3Store) URL(key string) string {
	return s.publicBase + "/" + escapeKey(key)
}

func publicBase(cfg Config) string {
	if cfg.PublicBaseURL != "" {
		return strings.TrimRight(cfg.PublicBaseURL, "/")
	}
	if ep := cfg.endpoint(); ep != "" {
		return ep + "/" + cfg.Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
