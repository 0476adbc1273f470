package repositories

import (
	"context"

	"folio/app/config"

	"github.com/pkg/errors"
)

var (
	_ PostStore = (*FileStore)(nil)
	_ PostStore = (*BadgerStore)(nil)
	_ PostStore = (*MongoStore)(nil)
)

// Open returns the PostStore selected by cfg.Store.
func Open(ctx context.Context, cfg *config.Config) (PostStore, error) {
	switch cfg.Store {
	case config.StoreFile:
		return NewFileStore(cfg.DataFile, cfg.BackupFile)
	case config.StoreBadger:
		return OpenBadgerStore(cfg.BadgerPath)
	case config.StoreMongo:
		if cfg.MongoURI == "" {
			return nil, errors.New("MONGODB_URI is required when STORE=mongodb")
		}
		return OpenMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	default:
		return nil, errors.Errorf("unknown store %q", cfg.Store)
	}
}
