// Package gcs archives audit trails and exported statements to Google Cloud
// Storage, and fetches raw statement text referenced by gs:// URIs.
package gcs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// Archiver provides an interface for cloud storage operations.
// This interface enables mocking and testing of storage functionality.
type Archiver interface {
	// UploadObject uploads bytes under the given object name and returns the
	// resulting gs:// URI.
	UploadObject(ctx context.Context, objectName, contentType string, data []byte) (string, error)

	// Fetch downloads object bytes from the given gs:// URI.
	Fetch(ctx context.Context, gcsURI string) ([]byte, error)
}

// Client archives objects into a single bucket. It assumes Application
// Default Credentials are configured unless client options override them
// (e.g. option.WithEndpoint for an emulator).
type Client struct {
	bucket string
	opts   []option.ClientOption
}

// NewClient creates an archiver for the given bucket.
func NewClient(bucket string, opts ...option.ClientOption) *Client {
	return &Client{bucket: bucket, opts: opts}
}

// UploadObject implements the Archiver interface.
func (c *Client) UploadObject(ctx context.Context, objectName, contentType string, data []byte) (string, error) {
	client, err := storage.NewClient(ctx, c.opts...)
	if err != nil {
		return "", fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := client.Bucket(c.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("copy to GCS writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize upload: %w", err)
	}

	return fmt.Sprintf("gs://%s/%s", c.bucket, objectName), nil
}

// Fetch implements the Archiver interface.
func (c *Client) Fetch(ctx context.Context, gcsURI string) ([]byte, error) {
	bucketName, objectPath, err := parseURI(gcsURI)
	if err != nil {
		return nil, err
	}

	client, err := storage.NewClient(ctx, c.opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	rc, err := client.Bucket(bucketName).Object(objectPath).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading object %s/%s: %w", bucketName, objectPath, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading bytes: %w", err)
	}

	return data, nil
}

// AuditObjectName builds the object name under which a statement's audit
// trail is archived.
func AuditObjectName(statementID string, now time.Time) string {
	return fmt.Sprintf("audit/%s/%s.jsonl", now.Format("2006/01/02"), statementID)
}

// ExportObjectName builds the object name under which a statement export is
// archived.
func ExportObjectName(statementID, format string, now time.Time) string {
	return fmt.Sprintf("exports/%s/%s.%s", now.Format("2006/01/02"), statementID, format)
}

// ExtractFilename extracts the filename from a gs:// URI.
// e.g., "gs://bucket/folder/file.txt" → "file.txt"
func ExtractFilename(uri string) string {
	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return trimmed
	}
	return path.Base(parts[1])
}

func parseURI(gcsURI string) (bucket, object string, err error) {
	if !strings.HasPrefix(gcsURI, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", gcsURI)
	}
	trimmed := strings.TrimPrefix(gcsURI, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", gcsURI)
	}
	return parts[0], parts[1], nil
}

// Ensure Client implements Archiver interface.
var _ Archiver = (*Client)(nil)
