// Package storage builds blob and item store adapters from settings.
package storage

import (
	"context"
	"fmt"

	"github.com/custodia-labs/briefly/internal/adapters/driven/storage/dynamodb"
	"github.com/custodia-labs/briefly/internal/adapters/driven/storage/gcs"
	"github.com/custodia-labs/briefly/internal/adapters/driven/storage/local"
	"github.com/custodia-labs/briefly/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/briefly/internal/adapters/driven/storage/s3"
	"github.com/custodia-labs/briefly/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/briefly/internal/core/domain"
	"github.com/custodia-labs/briefly/internal/core/ports/driven"
	"github.com/custodia-labs/briefly/internal/logger"
)

// NewBlobStore creates the blob store selected by settings.Backend.
func NewBlobStore(ctx context.Context, settings domain.StorageSettings) (driven.BlobStore, error) {
	logger.Debug("blob store backend: %s", settings.Backend)

	var (
		store driven.BlobStore
		err   error
	)
	switch settings.Backend {
	case domain.StorageBackendLocal, "":
		var s *local.BlobStore
		if s, err = local.NewBlobStore(settings.Dir); err == nil {
			store = s
		}
	case domain.StorageBackendGCS:
		var s *gcs.BlobStore
		if s, err = gcs.NewBlobStore(ctx, gcs.Config{
			Bucket:          settings.Bucket,
			CredentialsFile: settings.CredentialsFile,
		}); err == nil {
			store = s
		}
	case domain.StorageBackendS3:
		var s *s3.BlobStore
		if s, err = s3.NewBlobStore(ctx, s3.Config{
			Bucket: settings.Bucket,
			Region: settings.Region,
		}); err == nil {
			store = s
		}
	case domain.StorageBackendMemory:
		store = memory.NewBlobStore()
	default:
		err = fmt.Errorf("%w: storage backend %q", domain.ErrUnsupportedType, settings.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s blob store: %w", settings.Backend, err)
	}
	return store, nil
}

// NewItemStore creates the item store selected by settings.Backend.
func NewItemStore(ctx context.Context, settings domain.ItemStoreSettings) (driven.ItemStore, error) {
	logger.Debug("item store backend: %s", settings.Backend)

	var (
		store driven.ItemStore
		err   error
	)
	switch settings.Backend {
	case domain.ItemBackendSQLite, "":
		var s *sqlite.ItemStore
		if s, err = sqlite.NewItemStore(settings.Dir, settings.Table); err == nil {
			store = s
		}
	case domain.ItemBackendDynamoDB:
		var s *dynamodb.ItemStore
		if s, err = dynamodb.NewItemStore(ctx, dynamodb.Config{
			Table:  settings.Table,
			Region: settings.Region,
		}); err == nil {
			store = s
		}
	case domain.ItemBackendMemory:
		store = memory.NewItemStore()
	default:
		err = fmt.Errorf("%w: kv backend %q", domain.ErrUnsupportedType, settings.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s item store: %w", settings.Backend, err)
	}
	return store, nil
}
