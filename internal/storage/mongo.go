package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"taskdoc/internal/domain"
)

const tasksCollection = "tasks"

// MongoTaskStore implements domain.TaskStore on a MongoDB collection.
type MongoTaskStore struct {
	client *mongo.Client
	tasks  *mongo.Collection
}

// OpenMongo connects to uri and uses the tasks collection of database.
func OpenMongo(ctx context.Context, uri, database string) (*MongoTaskStore, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	tasks := client.Database(database).Collection(tasksCollection)
	_, err = tasks.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "updated_at", Value: -1}},
	})
	if err != nil {
		slog.Warn("create mongo index", "component", "storage", "error", err)
	}

	return &MongoTaskStore{client: client, tasks: tasks}, nil
}

func (s *MongoTaskStore) CreateTask(ctx context.Context, t *domain.Task) error {
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	if _, err := s.tasks.InsertOne(ctx, t); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (s *MongoTaskStore) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	var t domain.Task
	err := s.tasks.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("get task %s: %w", id, domain.ErrTaskNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	return &t, nil
}

func (s *MongoTaskStore) ListTasks(ctx context.Context) ([]domain.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := s.tasks.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	var tasks []domain.Task
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	return tasks, nil
}

func (s *MongoTaskStore) UpdateDescription(ctx context.Context, id, description string) error {
	res, err := s.tasks.UpdateByID(ctx, id, bson.D{{Key: "$set", Value: bson.D{
		{Key: "description", Value: description},
		{Key: "updated_at", Value: time.Now().UTC()},
	}}})
	if err != nil {
		return fmt.Errorf("update description %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("task %s: %w", id, domain.ErrTaskNotFound)
	}
	return nil
}

func (s *MongoTaskStore) DeleteTask(ctx context.Context, id string) error {
	res, err := s.tasks.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("task %s: %w", id, domain.ErrTaskNotFound)
	}
	return nil
}

func (s *MongoTaskStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
