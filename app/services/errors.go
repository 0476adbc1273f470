package services

import (
	"folio/app/models"
	"folio/app/repositories"

	"github.com/pkg/errors"
)

// ErrInvalidInput is returned for requests the service cannot act on.
var ErrInvalidInput = errors.New("invalid input")

// parseID resolves a raw path id. An id that cannot name any post is
// reported as not found.
func parseID(raw string) (models.PostID, error) {
	id, err := models.ParseID(raw)
	if err != nil {
		return models.PostID{}, repositories.ErrNotFound
	}
	return id, nil
}
