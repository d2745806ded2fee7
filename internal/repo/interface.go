package repo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/BuzzLyutic/mongotask-api/internal/model"
)

var ErrorNotFound = errors.New("not found")

// TaskRepository is the set of document-store primitives the API needs.
type TaskRepository interface {
	List(ctx context.Context) ([]model.Task, error)
	// Create inserts a task with the given title and returns it as stored.
	Create(ctx context.Context, title string) (model.Task, error)
	// UpdateTitle replaces the title and returns the task after the update,
	// or ErrorNotFound when no task has that id.
	UpdateTitle(ctx context.Context, id primitive.ObjectID, title string) (model.Task, error)
	// Delete removes at most one task and reports how many were removed.
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
	Ping(ctx context.Context) error
}
