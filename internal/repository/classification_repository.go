package repository

import (
	"context"

	"corruption-watch/internal/pipeline/model"
)

// ClassificationRepository exposes the operations the persistence
// service needs against the classifications table.
type ClassificationRepository interface {
	// Insert persists classification and returns it with its assigned ID.
	Insert(ctx context.Context, conn Conn, classification model.Classification) (model.Classification, error)
}
