package storage

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// Sentinel errors for storage operations.
var (
	// Configuration errors.
	ErrInvalidConfig = errors.New("storage: invalid configuration")

	// Location errors.
	ErrInvalidLocation   = errors.New("storage: invalid location")
	ErrUnsupportedScheme = errors.New("storage: unsupported location scheme")
	ErrReadOnly          = errors.New("storage: backend is read-only")

	// Operation errors.
	ErrNotFound     = errors.New("storage: source not found")
	ErrAccessDenied = errors.New("storage: access denied")
	ErrReadFailed   = errors.New("storage: read failed")
	ErrWriteFailed  = errors.New("storage: write failed")
)

// wrapS3Error wraps S3 errors with the matching sentinel error.
// The original error is formatted with %v so callers match on sentinels
// rather than AWS types.
func wrapS3Error(err error, fallback error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NoSuchBucket", "NotFound":
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		case "AccessDenied", "Forbidden":
			return fmt.Errorf("%w: %v", ErrAccessDenied, err)
		}
	}

	var notFound *types.NoSuchKey
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	return fmt.Errorf("%w: %v", fallback, err)
}
