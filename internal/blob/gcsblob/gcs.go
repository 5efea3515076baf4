// Package gcsblob reads and writes Google Cloud Storage objects as byte
// streams.
package gcsblob

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
)

// Client wraps a GCS client.
type Client struct {
	client *storage.Client
}

// New creates a client from the ambient Google credentials.
func New(ctx context.Context) (*Client, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating GCS client: %w", err)
	}
	return &Client{client: client}, nil
}

// Open returns a reader streaming the object's content.
func (c *Client) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	r, err := c.client.Bucket(bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading gs://%s/%s: %w", bucket, key, err)
	}
	return r, nil
}

// Create returns a writer streaming into the object; the upload completes
// on Close.
func (c *Client) Create(ctx context.Context, bucket, key string) io.WriteCloser {
	return c.client.Bucket(bucket).Object(key).NewWriter(ctx)
}
