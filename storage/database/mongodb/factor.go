package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/everly/elearning/core/factor"
	"github.com/everly/elearning/storage/database"
)

type factorRepository struct {
	coll *mongo.Collection
}

var _ factor.Repository = (*factorRepository)(nil)

func NewFactorRepository(db *mongo.Database) factor.Repository {
	return &factorRepository{coll: db.Collection(database.FactorRecordCollection)}
}

func (repo *factorRepository) CreateRecord(ctx context.Context, rec factor.Record) (factor.Record, error) {
	res, err := repo.coll.InsertOne(ctx, rec)
	if err != nil {
		return factor.Record{}, err
	}
	rec.ID = res.InsertedID.(primitive.ObjectID)
	return rec, nil
}

func (repo *factorRepository) QueryUserRecords(ctx context.Context, userID primitive.ObjectID) ([]factor.Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start_at", Value: -1}})
	cur, err := repo.coll.Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	recs := make([]factor.Record, 0)
	if err = cur.All(ctx, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (repo *factorRepository) UpdateRecord(ctx context.Context, id, userID primitive.ObjectID, ur factor.UpdateRecord) (factor.Record, error) {
	set := bson.M{}
	if ur.IconSource != "" {
		set["icon_source"] = ur.IconSource
	}
	if ur.Value != "" {
		set["value"] = ur.Value
	}
	if ur.Unit != "" {
		set["unit"] = ur.Unit
	}
	if ur.StartAt != nil {
		set["start_at"] = *ur.StartAt
	}
	if ur.EndAt != nil {
		set["end_at"] = *ur.EndAt
	}

	// scoping by owner makes someone else's record indistinguishable
	// from a missing one
	filter := bson.M{"_id": id, "user": userID}
	if len(set) == 0 {
		var rec factor.Record
		err := repo.coll.FindOne(ctx, filter).Decode(&rec)
		if err == mongo.ErrNoDocuments {
			return factor.Record{}, factor.ErrNotFound
		}
		return rec, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var rec factor.Record
	err := repo.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return factor.Record{}, factor.ErrNotFound
	}
	return rec, err
}
