// Package blob opens byte sources and sinks by target string: plain paths
// map to local files, s3:// targets to AWS S3 objects and gs:// targets to
// Google Cloud Storage objects.
package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/84codes/lz4stream/internal/blob/gcsblob"
	"github.com/84codes/lz4stream/internal/blob/s3blob"
)

// URL schemes for remote targets.
const (
	schemeS3  = "s3://"
	schemeGCS = "gs://"
)

// Open returns a reader for the given target.
func Open(ctx context.Context, target string) (io.ReadCloser, error) {
	switch {
	case strings.HasPrefix(target, schemeS3):
		bucket, key, err := SplitURL(target)
		if err != nil {
			return nil, err
		}
		c, err := s3blob.New(ctx)
		if err != nil {
			return nil, err
		}
		return c.Open(ctx, bucket, key)
	case strings.HasPrefix(target, schemeGCS):
		bucket, key, err := SplitURL(target)
		if err != nil {
			return nil, err
		}
		c, err := gcsblob.New(ctx)
		if err != nil {
			return nil, err
		}
		return c.Open(ctx, bucket, key)
	default:
		return os.Open(target)
	}
}

// Create returns a writer for the given target, truncating local files and
// overwriting remote objects.
func Create(ctx context.Context, target string) (io.WriteCloser, error) {
	switch {
	case strings.HasPrefix(target, schemeS3):
		bucket, key, err := SplitURL(target)
		if err != nil {
			return nil, err
		}
		c, err := s3blob.New(ctx)
		if err != nil {
			return nil, err
		}
		return c.Create(ctx, bucket, key), nil
	case strings.HasPrefix(target, schemeGCS):
		bucket, key, err := SplitURL(target)
		if err != nil {
			return nil, err
		}
		c, err := gcsblob.New(ctx)
		if err != nil {
			return nil, err
		}
		return c.Create(ctx, bucket, key), nil
	default:
		return os.Create(target)
	}
}

// SplitURL splits an s3:// or gs:// target into bucket and object key.
func SplitURL(target string) (bucket, key string, err error) {
	rest := target
	switch {
	case strings.HasPrefix(target, schemeS3):
		rest = strings.TrimPrefix(target, schemeS3)
	case strings.HasPrefix(target, schemeGCS):
		rest = strings.TrimPrefix(target, schemeGCS)
	default:
		return "", "", fmt.Errorf("blob: not a remote target: %s", target)
	}

	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("blob: target must be scheme://bucket/key: %s", target)
	}
	return bucket, key, nil
}
