// Package s3 implements blobstore.BlobStore on Amazon S3.
//
// Snapshots are streamed to S3 through the SDK's multipart upload manager, so
// a model never has to be buffered in memory as a whole. An aborted or failed
// upload leaves no object behind.
//
//	cfg, _ := config.LoadDefaultConfig(ctx, config.WithRegion("eu-central-1"))
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "models", "ctr/")
package s3
