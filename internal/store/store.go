// Package store is the session/upload persistence gateway: light rows in
// MySQL via GORM, heavy payloads (session blobs, file contents) in object
// storage. Persistence failures are blocking for the caller; losing a
// session silently is unacceptable.
package store

import (
	"errors"

	"github.com/minio/minio-go/v7"
	"gorm.io/gorm"

	"dealscope/pkg/logger"
)

// ErrNotFound is returned when a session, upload, or stored object is absent.
var ErrNotFound = errors.New("not found")

// Store bundles the relational and object backends behind one gateway.
type Store struct {
	db      *gorm.DB
	objects *minio.Client
	bucket  string
	log     *logger.Logger
}

// NewStore creates the gateway.
func NewStore(db *gorm.DB, objects *minio.Client, bucket string) *Store {
	return &Store{
		db:      db,
		objects: objects,
		bucket:  bucket,
		log:     logger.New("store"),
	}
}

// notFound maps gorm's record-missing error to the gateway's sentinel.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// objectMissing reports whether an object storage error means "no such key".
func objectMissing(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
