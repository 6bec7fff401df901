// Package minio provides a blobstore.Store backed by the MinIO client, for
// class files kept in MinIO or another S3-compatible object store.
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "artifacts", "classes/")
//	cp := artifact.NewClasspath(artifact.StoreRoot("s3://artifacts/classes", store))
package minio
