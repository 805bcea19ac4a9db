package main

import (
	"context"
	"fmt"

	"github.com/hupe1980/memofib/blobstore"
	"github.com/hupe1980/memofib/blobstore/minio"
	"github.com/hupe1980/memofib/blobstore/s3"
)

type snapshotConfig struct {
	dir         string
	backend     string
	bucket      string
	prefix      string
	name        string
	compression string

	minioEndpoint  string
	minioAccessKey string
	minioSecretKey string
	minioSecure    bool

	s3Region   string
	s3Endpoint string

	list   bool
	remove string
}

func (c snapshotConfig) enabled() bool {
	return c.dir != "" || c.backend != ""
}

// open returns the configured store. A local directory wins over a remote backend.
func (c snapshotConfig) open(ctx context.Context) (blobstore.Store, error) {
	if c.dir != "" {
		return blobstore.NewLocalStore(c.dir), nil
	}

	if c.bucket == "" {
		return nil, fmt.Errorf("--snapshot-bucket is required for backend %q", c.backend)
	}

	switch c.backend {
	case "s3":
		opts := []s3.Option{s3.WithPrefix(c.prefix)}
		if c.s3Region != "" {
			opts = append(opts, s3.WithRegion(c.s3Region))
		}
		if c.s3Endpoint != "" {
			opts = append(opts, s3.WithEndpoint(c.s3Endpoint))
		}
		return s3.New(ctx, c.bucket, opts...)
	case "minio":
		return minio.Dial(ctx, c.minioEndpoint, c.minioAccessKey, c.minioSecretKey, c.bucket, c.prefix, c.minioSecure)
	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", c.backend)
	}
}
