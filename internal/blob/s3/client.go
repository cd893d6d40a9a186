// Package s3blob archives audit history to S3-compatible object storage
// (AWS S3, MinIO, iDrive e2, Cloudflare R2).
package s3blob

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ClientConfig selects the object-store endpoint and bucket. Endpoint may be
// empty for standard AWS S3; compatible providers set it, usually together
// with ForcePathStyle.
type ClientConfig struct {
	Endpoint       string
	Region         string
	Bucket         string
	AccessKey      string
	SecretKey      string
	UseSSL         bool
	ForcePathStyle bool
}

// Client is a bucket-scoped object store handle. All operations target the
// bucket fixed at construction.
type Client struct {
	api    *s3.Client
	bucket string
}

// New builds a Client from cfg. Static credentials are used; the endpoint,
// when set, overrides the SDK's AWS resolution so compatible providers work.
func New(ctx context.Context, cfg ClientConfig) (*Client, error) {
	switch {
	case cfg.Bucket == "":
		return nil, fmt.Errorf("s3blob: bucket name is required")
	case cfg.Region == "":
		return nil, fmt.Errorf("s3blob: region is required")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("s3blob: load aws config: %w", err)
	}

	api := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(withScheme(cfg.Endpoint, cfg.UseSSL))
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	return &Client{api: api, bucket: cfg.Bucket}, nil
}

// Health verifies bucket access with a HeadBucket call.
func (c *Client) Health(ctx context.Context) error {
	if _, err := c.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.bucket)}); err != nil {
		return fmt.Errorf("s3blob: bucket %s not accessible: %w", c.bucket, err)
	}
	return nil
}

// Put uploads data under key as a single PutObject request. History
// snapshots are small, so the multipart path is not needed.
func (c *Client) Put(ctx context.Context, key string, data io.Reader, contentType string) error {
	_, err := c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        data,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3blob: put object %s: %w", key, err)
	}
	return nil
}

// Close exists for symmetry with the other wired clients; the SDK's HTTP
// client needs no teardown.
func (c *Client) Close() error { return nil }

// withScheme prepends https:// or http:// when the endpoint lacks a scheme.
func withScheme(endpoint string, useSSL bool) string {
	if strings.Contains(endpoint, "://") {
		return endpoint
	}
	if useSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}
