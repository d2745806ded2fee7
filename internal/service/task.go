package service

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/BuzzLyutic/mongotask-api/internal/model"
	"github.com/BuzzLyutic/mongotask-api/internal/repo"
)

const (
	MessageDeleted  = "record deleted"
	MessageNotFound = "no record found"
)

var (
	ErrTitleRequired = errors.New("title is required")
	ErrInvalidID     = errors.New("invalid task id")
)

// DeleteResult reports the outcome of a delete. A missing task is not an error.
type DeleteResult struct {
	Message string `json:"message"`
}

type TaskService struct {
	repo repo.TaskRepository
}

func NewTaskService(repo repo.TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

func (s *TaskService) List(ctx context.Context) ([]model.Task, error) {
	return s.repo.List(ctx)
}

func (s *TaskService) Create(ctx context.Context, in model.TaskInput) (model.Task, error) {
	if err := s.validate(in); err != nil {
		return model.Task{}, err
	}
	return s.repo.Create(ctx, *in.Title)
}

// Update validates the body before the id, so a bad body on a bad id is
// reported as a missing title.
func (s *TaskService) Update(ctx context.Context, rawID string, in model.TaskInput) (model.Task, error) {
	if err := s.validate(in); err != nil {
		return model.Task{}, err
	}

	id, err := ParseID(rawID)
	if err != nil {
		return model.Task{}, err
	}
	return s.repo.UpdateTitle(ctx, id, *in.Title)
}

func (s *TaskService) Delete(ctx context.Context, rawID string) (DeleteResult, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return DeleteResult{}, err
	}

	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return DeleteResult{}, err
	}
	if n == 1 {
		return DeleteResult{Message: MessageDeleted}, nil
	}
	return DeleteResult{Message: MessageNotFound}, nil
}

func (s *TaskService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// ParseID converts the external string form of a task id into an ObjectID.
func ParseID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return id, fmt.Errorf("%w %q: %v", ErrInvalidID, raw, err)
	}
	return id, nil
}

func (s *TaskService) validate(in model.TaskInput) error {
	if in.Title == nil {
		return ErrTitleRequired
	}
	return nil
}
