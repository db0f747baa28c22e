package records

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const collectionName = "students"

// MongoStore implements Store on a MongoDB collection
type MongoStore struct {
	coll *mongo.Collection
}

// Connect opens a client for uri and checks it with a ping
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// NewMongoStore uses the students collection of database and makes sure
// emails are unique
func NewMongoStore(ctx context.Context, client *mongo.Client, database string) (*MongoStore, error) {
	coll := client.Database(database).Collection(collectionName)

	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("create email index: %w", err)
	}

	return &MongoStore{coll: coll}, nil
}

// List returns every student, newest first
func (s *MongoStore) List(ctx context.Context) ([]*Student, error) {
	cursor, err := s.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}

	students := []*Student{}
	if err := cursor.All(ctx, &students); err != nil {
		return nil, err
	}
	return students, nil
}

// Get returns the student with id
func (s *MongoStore) Get(ctx context.Context, id bson.ObjectID) (*Student, error) {
	student := &Student{}
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(student)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return student, nil
}

// Create inserts a student and assigns its id
func (s *MongoStore) Create(ctx context.Context, student *Student) error {
	now := time.Now().UTC()
	student.ID = bson.NewObjectID()
	student.CreatedAt = now
	student.UpdatedAt = now

	if _, err := s.coll.InsertOne(ctx, student); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// Replace overwrites a stored student
func (s *MongoStore) Replace(ctx context.Context, student *Student) error {
	student.UpdatedAt = time.Now().UTC()

	result, err := s.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: student.ID}}, student)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the student with id
func (s *MongoStore) Delete(ctx context.Context, id bson.ObjectID) error {
	result, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
