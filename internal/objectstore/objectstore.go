// Package objectstore wraps the S3 bucket holding uploaded images.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/mirror-ball/mirrorball/internal/awsclient"
)

// ErrObjectNotFound is returned when the object does not exist.
var ErrObjectNotFound = errors.New("object not found")

// Config describes the bucket and how its objects are served.
type Config struct {
	Bucket    string
	Region    string
	CDNDomain string
}

// Store signs uploads and inspects or deletes uploaded objects.
type Store struct {
	cfg       Config
	client    awsclient.S3Client
	presigner awsclient.S3Presigner
}

// New returns an object store for cfg.Bucket.
func New(cfg Config, client awsclient.S3Client, presigner awsclient.S3Presigner) *Store {
	return &Store{cfg: cfg, client: client, presigner: presigner}
}

// Configured reports whether a bucket is set.
func (s *Store) Configured() bool {
	return s != nil && s.cfg.Bucket != ""
}

// PresignPut returns a URL the browser can PUT the object to until expiry.
// The signature covers the content type.
func (s *Store) PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, error) {
	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("presign put %s: %w", key, err)
	}

	return req.URL, nil
}

// PublicURL is the CDN URL when a CDN domain is set, otherwise the virtual-hosted S3 URL.
func (s *Store) PublicURL(key string) string {
	host := s.cfg.Bucket + ".s3." + s.cfg.Region + ".amazonaws.com"
	if s.cfg.CDNDomain != "" {
		host = strings.TrimSuffix(strings.TrimPrefix(s.cfg.CDNDomain, "https://"), "/")
	}

	u := url.URL{Scheme: "https", Host: host, Path: "/" + key}

	return u.String()
}

// Head returns the object size.
func (s *Store) Head(ctx context.Context, key string) (int64, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, mapNotFound(err, "head "+key)
	}

	return aws.ToInt64(out.ContentLength), nil
}

// ReadPrefix returns at most n leading bytes of the object.
func (s *Store) ReadPrefix(ctx context.Context, key string, n int64) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
		Range:  aws.String(fmt.Sprintf("bytes=0-%d", n-1)),
	})
	if err != nil {
		return nil, mapNotFound(err, "get "+key)
	}
	defer out.Body.Close()

	b, err := io.ReadAll(io.LimitReader(out.Body, n))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}

	return b, nil
}

// Delete removes the object. S3 treats deleting a missing key as success.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}

	return nil
}

func mapNotFound(err error, op string) error {
	var (
		notFound *s3types.NotFound
		noKey    *s3types.NoSuchKey
	)

	if errors.As(err, &notFound) || errors.As(err, &noKey) {
		return ErrObjectNotFound
	}

	return fmt.Errorf("%s: %w", op, err)
}
