package service

import (
	"errors"
	"fmt"
)

// ErrNothingToCommit is returned before any write when a commit has no rows to persist.
var ErrNothingToCommit = errors.New("no rows to commit")

// ErrInvalidMode is returned for an unknown import mode.
var ErrInvalidMode = errors.New("invalid import mode")

// ErrArchiveDisabled is returned for archive operations when no object storage is configured.
var ErrArchiveDisabled = errors.New("cost-list archive is not configured")

// ErrInvalidArchiveKey is returned for keys outside the cost-list archive.
var ErrInvalidArchiveKey = errors.New("invalid archive key")

// CatalogFetchError aborts a preview when the catalog cannot be loaded.
type CatalogFetchError struct {
	Err error
}

func (e *CatalogFetchError) Error() string {
	return fmt.Sprintf("fetch catalog: %v", e.Err)
}

func (e *CatalogFetchError) Unwrap() error {
	return e.Err
}
