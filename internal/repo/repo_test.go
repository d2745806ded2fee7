package repo_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/BuzzLyutic/mongotask-api/internal/repo"
	"github.com/BuzzLyutic/mongotask-api/internal/testutil"
)

func TestMongoTaskRepo(t *testing.T) {
	db := testutil.SetupMongo(t)
	r := repo.NewMongoTaskRepo(db)

	runRepositoryContract(t, r)
	runConcurrencyContract(t, r)

	t.Run("document without title lists as empty", func(t *testing.T) {
		ctx := context.Background()
		res, err := db.Collection(repo.TasksCollection).InsertOne(ctx, bson.D{{Key: "note", Value: "untitled"}})
		require.NoError(t, err)

		tasks, err := r.List(ctx)
		require.NoError(t, err)

		var found bool
		for _, task := range tasks {
			if task.ID == res.InsertedID.(primitive.ObjectID) {
				found = true
				assert.Equal(t, "", task.Title)
			}
		}
		assert.True(t, found)
	})
}

func TestPostgresTaskRepo(t *testing.T) {
	pool := testutil.SetupPostgres(t)
	r := repo.NewPostgresTaskRepo(pool)
	require.NoError(t, r.EnsureSchema(context.Background()))
	// Safe to run twice.
	require.NoError(t, r.EnsureSchema(context.Background()))

	runRepositoryContract(t, r)
	runConcurrencyContract(t, r)
}

func TestFakeTaskRepo(t *testing.T) {
	fake := testutil.NewFakeTaskRepo()
	runRepositoryContract(t, fake)
	runConcurrencyContract(t, fake)
}

// runRepositoryContract exercises behaviour every backend must share.
// It expects an empty store.
func runRepositoryContract(t *testing.T, r repo.TaskRepository) {
	ctx := context.Background()

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, r.Ping(ctx))
	})

	t.Run("empty list", func(t *testing.T) {
		tasks, err := r.List(ctx)
		require.NoError(t, err)
		assert.NotNil(t, tasks)
		assert.Empty(t, tasks)
	})

	var created []primitive.ObjectID

	t.Run("create assigns distinct ids", func(t *testing.T) {
		first, err := r.Create(ctx, "same title")
		require.NoError(t, err)
		second, err := r.Create(ctx, "same title")
		require.NoError(t, err)

		assert.False(t, first.ID.IsZero())
		assert.NotEqual(t, first.ID, second.ID)
		assert.Equal(t, "same title", first.Title)

		created = append(created, first.ID, second.ID)

		tasks, err := r.List(ctx)
		require.NoError(t, err)
		assert.Len(t, tasks, 2)
	})

	t.Run("create allows empty title", func(t *testing.T) {
		task, err := r.Create(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, "", task.Title)
		created = append(created, task.ID)
	})

	t.Run("update title", func(t *testing.T) {
		require.NotEmpty(t, created)
		updated, err := r.UpdateTitle(ctx, created[0], "renamed")
		require.NoError(t, err)
		assert.Equal(t, created[0], updated.ID)
		assert.Equal(t, "renamed", updated.Title)

		tasks, err := r.List(ctx)
		require.NoError(t, err)
		titles := map[primitive.ObjectID]string{}
		for _, task := range tasks {
			titles[task.ID] = task.Title
		}
		assert.Equal(t, "renamed", titles[created[0]])
		assert.Equal(t, "same title", titles[created[1]])
	})

	t.Run("update missing task", func(t *testing.T) {
		_, err := r.UpdateTitle(ctx, primitive.NewObjectID(), "ghost")
		assert.ErrorIs(t, err, repo.ErrorNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NotEmpty(t, created)
		n, err := r.Delete(ctx, created[0])
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = r.Delete(ctx, created[0])
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)

		tasks, err := r.List(ctx)
		require.NoError(t, err)
		for _, task := range tasks {
			assert.NotEqual(t, created[0], task.ID)
		}
	})
}

// runConcurrencyContract shares one store handle between goroutines. It does
// not assume an empty store.
func runConcurrencyContract(t *testing.T, r repo.TaskRepository) {
	ctx := context.Background()

	t.Run("concurrent create and list", func(t *testing.T) {
		const creators = 5
		const perCreator = 5
		const readers = 5

		var wg sync.WaitGroup
		var mu sync.Mutex
		created := make(map[primitive.ObjectID]bool)
		var errs []error

		for i := 0; i < creators; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				for j := 0; j < perCreator; j++ {
					task, err := r.Create(ctx, fmt.Sprintf("Task %d-%d", idx, j))
					mu.Lock()
					if err != nil {
						errs = append(errs, err)
					} else {
						created[task.ID] = true
					}
					mu.Unlock()
				}
			}(i)
		}

		for i := 0; i < readers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 10; j++ {
					if _, err := r.List(ctx); err != nil {
						mu.Lock()
						errs = append(errs, err)
						mu.Unlock()
					}
				}
			}()
		}

		wg.Wait()

		require.Empty(t, errs)
		assert.Len(t, created, creators*perCreator, "ids should be distinct")

		tasks, err := r.List(ctx)
		require.NoError(t, err)
		listed := 0
		for _, task := range tasks {
			if created[task.ID] {
				listed++
			}
		}
		assert.Equal(t, creators*perCreator, listed)
	})

	t.Run("concurrent delete of one task", func(t *testing.T) {
		task, err := r.Create(ctx, "delete race")
		require.NoError(t, err)

		const goroutines = 10
		var wg sync.WaitGroup
		counts := make([]int64, goroutines)
		errs := make([]error, goroutines)

		for i := 0; i < goroutines; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				counts[idx], errs[idx] = r.Delete(ctx, task.ID)
			}(i)
		}
		wg.Wait()

		var total int64
		for i, err := range errs {
			require.NoError(t, err, "delete %d", i)
			total += counts[i]
		}
		assert.Equal(t, int64(1), total, "exactly one delete should remove the task")
	})

	t.Run("concurrent updates of one task", func(t *testing.T) {
		task, err := r.Create(ctx, "update race")
		require.NoError(t, err)

		const goroutines = 10
		var wg sync.WaitGroup
		errs := make([]error, goroutines)

		for i := 0; i < goroutines; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				_, errs[idx] = r.UpdateTitle(ctx, task.ID, fmt.Sprintf("Updated %d", idx))
			}(i)
		}
		wg.Wait()

		for i, err := range errs {
			require.NoError(t, err, "update %d", i)
		}

		// Last writer wins; the title must be one of the written values.
		written := make(map[string]bool, goroutines)
		for i := 0; i < goroutines; i++ {
			written[fmt.Sprintf("Updated %d", i)] = true
		}

		tasks, err := r.List(ctx)
		require.NoError(t, err)
		var found bool
		for _, got := range tasks {
			if got.ID == task.ID {
				found = true
				assert.True(t, written[got.Title], "unexpected title %q", got.Title)
			}
		}
		assert.True(t, found)
	})
}
