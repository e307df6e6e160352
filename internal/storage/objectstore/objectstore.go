// Package objectstore stores media bytes in an S3-compatible bucket.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Togather-Foundation/gallery/internal/config"
	"github.com/Togather-Foundation/gallery/internal/metrics"
)

const tracerName = "github.com/Togather-Foundation/gallery/internal/storage/objectstore"

// Store implements media.ObjectStore on top of minio-go.
type Store struct {
	client    *minio.Client
	bucket    string
	publicURL string
	tracer    trace.Tracer
}

// New builds a client for cfg. TLS follows the endpoint scheme unless
// UseSSL is set explicitly.
func New(cfg config.StorageConfig) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("objectstore: bucket is required")
	}
	host, secure := splitEndpoint(cfg.Endpoint)
	if host == "" {
		return nil, errors.New("objectstore: endpoint is required")
	}
	if cfg.UseSSL != nil {
		secure = *cfg.UseSSL
	}

	client, err := minio.New(host, &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       secure,
		Region:       cfg.Region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("objectstore: create client: %w", err)
	}

	return &Store{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		tracer:    otel.Tracer(tracerName),
	}, nil
}

// Put uploads body under key and returns its public URL.
func (s *Store) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "objectstore.Put", trace.WithAttributes(
		attribute.String("objectstore.bucket", s.bucket),
		attribute.String("objectstore.key", key),
		attribute.Int64("objectstore.size", size),
	))
	defer span.End()

	start := time.Now()
	_, err := s.client.PutObject(ctx, s.bucket, key, body, size, minio.PutObjectOptions{ContentType: contentType})
	observe("put", start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "put object")
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return s.URL(key), nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	ctx, span := s.tracer.Start(ctx, "objectstore.Delete", trace.WithAttributes(
		attribute.String("objectstore.bucket", s.bucket),
		attribute.String("objectstore.key", key),
	))
	defer span.End()

	start := time.Now()
	err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	observe("delete", start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "remove object")
		return fmt.Errorf("remove object %s: %w", key, err)
	}
	return nil
}

// URL is the public address of key.
func (s *Store) URL(key string) string {
	return s.publicURL + "/" + key
}

func splitEndpoint(endpoint string) (string, bool) {
	endpoint = strings.TrimSpace(endpoint)
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		return strings.TrimRight(strings.TrimPrefix(endpoint, "https://"), "/"), true
	case strings.HasPrefix(endpoint, "http://"):
		return strings.TrimRight(strings.TrimPrefix(endpoint, "http://"), "/"), false
	default:
		return strings.TrimRight(endpoint, "/"), true
	}
}

func observe(operation string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	metrics.ObjectStoreOperations.WithLabelValues(operation, outcome).Inc()
	metrics.ObjectStoreDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
