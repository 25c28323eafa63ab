package database

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/everly/elearning/core"
)

// Collection names
const (
	UserCollection         = "user"
	CourseCollection       = "course"
	RegistrationCollection = "registration"
	FactorRecordCollection = "factor-record"
)

func Open(ctx context.Context, conf *core.Config) (*mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(conf.Database.URI))
	if err != nil {
		return nil, errors.Wrap(err, "connecting to database")
	}
	if err = ping(ctx, client); err != nil {
		return nil, err
	}
	return client.Database(conf.Database.Name), nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(ctx context.Context, client *mongo.Client) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = client.Ping(ctx, readpref.Primary())
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

// EnsureIndexes creates the indexes the app relies on; it is safe to call
// on every startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(UserCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return errors.Wrap(err, "creating user email index")
	}

	_, err = db.Collection(RegistrationCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}},
	})
	if err != nil {
		return errors.Wrap(err, "creating registration userId index")
	}

	_, err = db.Collection(FactorRecordCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}},
	})
	return errors.Wrap(err, "creating factor-record user index")
}
