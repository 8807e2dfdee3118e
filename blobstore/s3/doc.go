// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	client := s3.NewFromConfig(cfg)
//	store := s3store.NewStore(client, "my-bucket", "runs/")
//
//	err = snapshot.SaveResult(ctx, store, "latest.snap", result)
//
// # Features
//
//   - Range reads for partial fetches
//   - Managed (multipart) uploads for Put
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
//   - DDBCommitStore: versioned CURRENT pointer with DynamoDB conditional writes
package s3
