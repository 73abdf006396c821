// Package storage uploads log attachments to an S3-compatible object store so
// their URLs outlive the Discord CDN links they were submitted with.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MaxObjectSize caps a single upload; Discord attachments of bots top out below it
const MaxObjectSize = 25 << 20

// ErrDisabled is returned when no object store is configured
var ErrDisabled = errors.New("object storage is not configured")

// ErrTooLarge is returned when a source exceeds MaxObjectSize
var ErrTooLarge = fmt.Errorf("object exceeds %d bytes", MaxObjectSize)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// Config holds the object store settings
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	PublicURL string
	Secure    bool
}

// Uploader writes objects to one bucket
type Uploader struct {
	client     *minio.Client
	cfg        Config
	httpClient *http.Client
}

// New creates an Uploader. It does not contact the server.
func New(cfg Config) (*Uploader, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, ErrDisabled
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}

	return &Uploader{
		client:     client,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Check verifies that the bucket exists
func (u *Uploader) Check(ctx context.Context) error {
	ok, err := u.client.BucketExists(ctx, u.cfg.Bucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %s does not exist", u.cfg.Bucket)
	}
	return nil
}

// ObjectKey builds the key of the n-th image of an action
func ObjectKey(actionID int64, n int, filename string) string {
	name := unsafeChars.ReplaceAllString(path.Base(filename), "_")
	name = strings.Trim(name, "._")
	if name == "" {
		name = "file"
	}
	return fmt.Sprintf("actions/%d/%d-%s", actionID, n, name)
}

// PublicURL returns the URL an object is served from
func (u *Uploader) PublicURL(key string) string {
	if u.cfg.PublicURL != "" {
		return strings.TrimSuffix(u.cfg.PublicURL, "/") + "/" + key
	}
	scheme := "http"
	if u.cfg.Secure {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, u.cfg.Endpoint, u.cfg.Bucket, key)
}

// Upload stores r under key and returns its public URL
func (u *Uploader) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if size > MaxObjectSize {
		return "", ErrTooLarge
	}

	_, err := u.client.PutObject(ctx, u.cfg.Bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	logger.Debug("Objeto subido: "+key, "Storage")
	return u.PublicURL(key), nil
}

// Mirror downloads srcURL and uploads it under key
func (u *Uploader) Mirror(ctx context.Context, key, srcURL, contentType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srcURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", srcURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download %s: status %d", srcURL, resp.StatusCode)
	}
	if contentType == "" {
		contentType = resp.Header.Get("Content-Type")
	}

	// ContentLength is -1 when unknown; the client then streams a multipart upload
	return u.Upload(ctx, key, io.LimitReader(resp.Body, MaxObjectSize+1), resp.ContentLength, contentType)
}
