package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"folio/app/backup"
	"folio/app/config"
	"folio/app/logger"
	"folio/app/repositories"

	"github.com/pkg/errors"
)

// loadConfig is a variable so tests can supply their own configuration.
var loadConfig = config.Load

// openStore opens the configured store. MongoDB indexes are created on the
// way; failing to create them only costs query speed, so it is logged.
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (repositories.PostStore, error) {
	store, err := repositories.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if m, ok := store.(*repositories.MongoStore); ok {
		if err := m.EnsureIndexes(ctx); err != nil {
			log.Warn("Failed to create indexes on %s.%s: %v", m.Database(), m.Collection(), err)
		}
	}
	return store, nil
}

// openSnapshot opens a local snapshot file or an s3://bucket/key object.
func openSnapshot(ctx context.Context, cfg *config.Config, source string) (io.ReadCloser, error) {
	if bucket, key, ok := backup.ParseS3URL(source); ok {
		client, err := backup.NewS3Client(cfg)
		if err != nil {
			return nil, err
		}
		return backup.NewS3Sink(client, bucket, "").Fetch(ctx, key)
	}
	if strings.HasPrefix(source, "s3://") {
		return nil, errors.Errorf("invalid s3 url %q, expected s3://bucket/key", source)
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", source)
	}
	return f, nil
}

// confirm asks a yes/no question on stdin. Anything but y or Y is a no.
func confirm(question string) bool {
	fmt.Printf("%s [y/N] ", question)
	var response string
	fmt.Scanln(&response)
	return response == "y" || response == "Y"
}
