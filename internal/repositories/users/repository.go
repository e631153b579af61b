// Package users persists the full, ordered collection of user records.
//
// Every backend implements Repository: Load returns the whole collection in
// insertion order and Save replaces it entirely. No backend patches single
// records, so the service layer never depends on how storage is organised.
//
// Backends are chosen by the storage location passed to Open:
//
//	users.json, file://users.json   JSON document on the local filesystem
//	sqlite://users.db               SQLite database (modernc.org/sqlite)
//	postgres://..., postgresql://...
//	                                PostgreSQL (pgx stdlib driver)
//	s3://bucket/key                 JSON document stored as one S3 object
package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/userbook/internal/common"
	"github.com/dmitrijs2005/userbook/internal/models"
)

// Repository loads and stores the complete user collection.
//
// Load returns common.ErrStorageNotExist when nothing has been stored yet and
// an error wrapping common.ErrCorruptStorage when stored content cannot be
// decoded. Save overwrites everything previously stored.
type Repository interface {
	Load(ctx context.Context) ([]models.User, error)
	Save(ctx context.Context, users []models.User) error
	// Location describes the storage for log lines; secrets are redacted.
	Location() string
	Close() error
}

// Options carries backend settings that are not part of the location string.
type Options struct {
	S3 S3Options
}

const (
	schemeFile       = "file://"
	schemeSQLite     = "sqlite://"
	schemePostgres   = "postgres://"
	schemePostgresQL = "postgresql://"
	schemeS3         = "s3://"
)

// Open returns the Repository for location. SQL backends are migrated before
// Open returns.
func Open(ctx context.Context, location string, opts Options) (Repository, error) {
	switch {
	case strings.HasPrefix(location, schemeSQLite):
		return OpenSQLite(ctx, strings.TrimPrefix(location, schemeSQLite))
	case strings.HasPrefix(location, schemePostgres), strings.HasPrefix(location, schemePostgresQL):
		return OpenPostgres(ctx, location)
	case strings.HasPrefix(location, schemeS3):
		bucket, key, err := parseS3Location(location)
		if err != nil {
			return nil, err
		}
		return OpenS3(ctx, bucket, key, opts.S3)
	case strings.HasPrefix(location, schemeFile):
		return NewJSONFileRepository(strings.TrimPrefix(location, schemeFile)), nil
	case strings.Contains(location, "://"):
		return nil, fmt.Errorf("%w: %s", common.ErrUnsupportedStorage, location)
	case location == "":
		return nil, fmt.Errorf("%w: empty location", common.ErrUnsupportedStorage)
	default:
		return NewJSONFileRepository(location), nil
	}
}
