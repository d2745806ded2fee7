// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/BuzzLyutic/mongotask-api/internal/model"
	"github.com/BuzzLyutic/mongotask-api/internal/repo"
)

// FakeTaskRepo is an in-memory implementation of repo.TaskRepository.
type FakeTaskRepo struct {
	mu    sync.RWMutex
	order []primitive.ObjectID
	tasks map[primitive.ObjectID]model.Task

	// Error injection for testing
	ListErr   error
	CreateErr error
	UpdateErr error
	DeleteErr error
	PingErr   error
}

var _ repo.TaskRepository = (*FakeTaskRepo)(nil)

func NewFakeTaskRepo() *FakeTaskRepo {
	return &FakeTaskRepo{
		tasks: make(map[primitive.ObjectID]model.Task),
	}
}

// Get returns a stored task directly, bypassing the repository interface.
func (f *FakeTaskRepo) Get(id primitive.ObjectID) (model.Task, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	t, ok := f.tasks[id]
	return t, ok
}

func (f *FakeTaskRepo) List(ctx context.Context) ([]model.Task, error) {
	if f.ListErr != nil {
		return nil, f.ListErr
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	tasks := make([]model.Task, 0, len(f.order))
	for _, id := range f.order {
		tasks = append(tasks, f.tasks[id])
	}
	return tasks, nil
}

func (f *FakeTaskRepo) Create(ctx context.Context, title string) (model.Task, error) {
	if f.CreateErr != nil {
		return model.Task{}, f.CreateErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	t := model.Task{ID: primitive.NewObjectID(), Title: title}
	f.tasks[t.ID] = t
	f.order = append(f.order, t.ID)
	return t, nil
}

func (f *FakeTaskRepo) UpdateTitle(ctx context.Context, id primitive.ObjectID, title string) (model.Task, error) {
	if f.UpdateErr != nil {
		return model.Task{}, f.UpdateErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.tasks[id]
	if !ok {
		return model.Task{}, repo.ErrorNotFound
	}
	t.Title = title
	f.tasks[id] = t
	return t, nil
}

func (f *FakeTaskRepo) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	if f.DeleteErr != nil {
		return 0, f.DeleteErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.tasks[id]; !ok {
		return 0, nil
	}
	delete(f.tasks, id)
	for i, oid := range f.order {
		if oid == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return 1, nil
}

func (f *FakeTaskRepo) Ping(ctx context.Context) error {
	return f.PingErr
}
