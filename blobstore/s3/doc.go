// Package s3 provides an Amazon S3 implementation of blobstore.Store.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("snapshots/"),
//	    s3.WithRegion("eu-central-1"),
//	)
//
//	err = calc.SaveSnapshot(ctx, store, "fib-40.snap", table)
//
// Streaming writes go through the S3 upload manager, which switches to
// multipart uploads for large bodies.
package s3
