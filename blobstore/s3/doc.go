// Package s3 provides a blobstore.Store over Amazon S3.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("classes/"),
//	    s3.WithRegion("eu-central-1"),
//	)
//
// Whole class files and archives are fetched through Get, which splits
// large objects into concurrently downloaded parts. Open serves ranged
// reads.
package s3
