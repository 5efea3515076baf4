// Package s3blob reads and writes AWS S3 objects as byte streams.
package s3blob

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Client wraps an S3 client.
type Client struct {
	s3 *s3.Client
}

// New creates a client from the default AWS configuration chain.
func New(ctx context.Context) (*Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return &Client{s3: s3.NewFromConfig(cfg)}, nil
}

// Open returns a reader streaming the object's content.
func (c *Client) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	out, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("getting s3://%s/%s: %w", bucket, key, err)
	}
	return out.Body, nil
}

// Create returns a writer that uploads the object on Close. PutObject
// needs the full body up front, so writes accumulate in memory until then.
func (c *Client) Create(ctx context.Context, bucket, key string) io.WriteCloser {
	return &writer{ctx: ctx, client: c, bucket: bucket, key: key}
}

type writer struct {
	ctx    context.Context
	client *Client
	bucket string
	key    string
	buf    bytes.Buffer
}

func (w *writer) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *writer) Close() error {
	_, err := w.client.s3.PutObject(w.ctx, &s3.PutObjectInput{
		Bucket: aws.String(w.bucket),
		Key:    aws.String(w.key),
		Body:   bytes.NewReader(w.buf.Bytes()),
	})
	if err != nil {
		return fmt.Errorf("putting s3://%s/%s: %w", w.bucket, w.key, err)
	}
	return nil
}
