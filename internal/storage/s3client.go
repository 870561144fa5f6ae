package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Client wraps the S3-compatible object store holding client documents.
// Supabase Storage exposes an S3 endpoint, so the standard SDK works with a
// custom endpoint and path-style addressing.
type Client struct {
	s3      *s3.Client
	presign *s3.PresignClient
	bucket  string
}

// New builds a storage client from STORAGE_* environment configuration.
// Returns (nil, nil) when no bucket is configured so the process can still
// serve routes that don't touch storage.
func New(ctx context.Context) (*Client, error) {
	bucket := os.Getenv("STORAGE_BUCKET")
	if bucket == "" {
		return nil, nil
	}

	region := os.Getenv("STORAGE_REGION")
	if region == "" {
		region = "us-east-1"
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}

	if key, secret := os.Getenv("STORAGE_ACCESS_KEY"), os.Getenv("STORAGE_SECRET_KEY"); key != "" && secret != "" {
		cfg.Credentials = credentials.NewStaticCredentialsProvider(key, secret, "")
	}

	endpoint := os.Getenv("STORAGE_ENDPOINT")
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &Client{
		s3:      client,
		presign: s3.NewPresignClient(client),
		bucket:  bucket,
	}, nil
}

// Enabled reports whether a bucket is configured.
func (c *Client) Enabled() bool { return c != nil && c.s3 != nil && c.bucket != "" }

// Upload writes one object.
func (c *Client) Upload(ctx context.Context, key, contentType string, body io.Reader) error {
	if !c.Enabled() {
		return fmt.Errorf("object storage not configured")
	}
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}
	return nil
}

// Delete removes one object.
func (c *Client) Delete(ctx context.Context, key string) error {
	if !c.Enabled() {
		return fmt.Errorf("object storage not configured")
	}
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// SignedURL returns a time-limited capability link for direct download, so
// file bytes never stream through this service.
func (c *Client) SignedURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("object storage not configured")
	}
	req, err := c.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expires
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign download: %w", err)
	}
	return req.URL, nil
}

// SanitizeFileName strips anything that could escape the caller's key prefix:
// path separators, parent references, and null bytes.
func SanitizeFileName(name string) string {
	name = strings.ReplaceAll(name, "\x00", "")
	name = strings.ReplaceAll(name, "\\", "/")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.ReplaceAll(name, "..", "")
	name = strings.TrimSpace(name)
	if name == "" {
		name = "file"
	}
	return name
}
