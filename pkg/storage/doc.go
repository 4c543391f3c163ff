// Package storage reads and writes translation sources by location.
//
// A location is a plain file path or a URL-like string whose scheme selects
// the backend:
//
//	/srv/i18n/language.yaml         local file ([File])
//	s3://bucket/i18n/language.yaml  S3-compatible object storage ([S3])
//	pg://website                    row in a PostgreSQL table ([Postgres])
//
// # Usage
//
// Register the backends you need on a [Mux] and open sources through it:
//
//	mux := storage.NewMux()
//	mux.Handle(storage.SchemeFile, storage.NewFile(""))
//
//	s3store, err := storage.NewS3(storage.Config{
//		Region:    "us-east-1",
//		AccessKey: os.Getenv("S3_ACCESS_KEY"),
//		SecretKey: os.Getenv("S3_SECRET_KEY"),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	mux.Handle(storage.SchemeS3, s3store)
//	mux.Handle(storage.SchemePostgres, storage.NewPostgres(pool, ""))
//
//	rc, err := mux.Open(ctx, "s3://bucket/i18n/language.yaml")
//	if err != nil {
//		// errors.Is(err, storage.ErrNotFound)
//	}
//	defer rc.Close()
//
// Every bundled backend also implements [Writer], so sources can be
// published through the same locations with [Mux.Put].
//
// # Errors
//
// Backend errors are normalized to sentinels ([ErrNotFound],
// [ErrAccessDenied], [ErrReadFailed], [ErrWriteFailed]). Callers should use
// errors.Is rather than matching AWS or pgx error types.
package storage
