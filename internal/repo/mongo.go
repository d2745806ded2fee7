package repo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/BuzzLyutic/mongotask-api/internal/model"
)

const TasksCollection = "tasks"

type MongoTaskRepo struct {
	coll *mongo.Collection
}

func NewMongoTaskRepo(db *mongo.Database) *MongoTaskRepo {
	return &MongoTaskRepo{
		coll: db.Collection(TasksCollection),
	}
}

func (r *MongoTaskRepo) List(ctx context.Context) ([]model.Task, error) {
	cur, err := r.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("find tasks: %w", err)
	}
	defer cur.Close(ctx)

	tasks := make([]model.Task, 0)
	for cur.Next(ctx) {
		var t model.Task
		if err := cur.Decode(&t); err != nil {
			return nil, fmt.Errorf("decode task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, cur.Err()
}

func (r *MongoTaskRepo) Create(ctx context.Context, title string) (model.Task, error) {
	res, err := r.coll.InsertOne(ctx, bson.D{{Key: "title", Value: title}})
	if err != nil {
		return model.Task{}, fmt.Errorf("insert task: %w", err)
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return model.Task{}, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}

	// Read back what the store actually persisted.
	var t model.Task
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&t); err != nil {
		return model.Task{}, r.mapError(err)
	}
	return t, nil
}

func (r *MongoTaskRepo) UpdateTitle(ctx context.Context, id primitive.ObjectID, title string) (model.Task, error) {
	var t model.Task
	err := r.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "title", Value: title}}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&t)
	if err != nil {
		return t, r.mapError(err)
	}
	return t, nil
}

func (r *MongoTaskRepo) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return 0, fmt.Errorf("delete task: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *MongoTaskRepo) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, readpref.Primary())
}

func (r *MongoTaskRepo) mapError(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrorNotFound
	}
	return err
}
