package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/everly/elearning/core/user"
	"github.com/everly/elearning/storage/database"
)

type userRepository struct {
	coll *mongo.Collection
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *mongo.Database) user.Repository {
	return &userRepository{coll: db.Collection(database.UserCollection)}
}

func (repo *userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	filter := bson.M{"email": email}
	if len(excludedUsers) > 0 {
		ids := make([]primitive.ObjectID, 0, len(excludedUsers))
		for _, usr := range excludedUsers {
			ids = append(ids, usr.ID)
		}
		filter["_id"] = bson.M{"$nin": ids}
	}

	n, err := repo.coll.CountDocuments(ctx, filter)
	if err != nil {
		return err
	}
	if n > 0 {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	res, err := repo.coll.InsertOne(ctx, usr)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, err
	}
	usr.ID = res.InsertedID.(primitive.ObjectID)
	return usr, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (user.User, error) {
	var usr user.User
	err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&usr)
	if err == mongo.ErrNoDocuments {
		return user.User{}, user.ErrNotFound
	}
	return usr, err
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var usr user.User
	err := repo.coll.FindOne(ctx, bson.M{"email": email}).Decode(&usr)
	if err == mongo.ErrNoDocuments {
		return user.User{}, user.ErrNotFound
	}
	return usr, err
}

func (repo *userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter) ([]user.User, int64, error) {
	query := bson.M{}
	if filter.Role != "" {
		query["role"] = filter.Role
	}

	total, err := repo.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSkip(int64(filter.Page-1) * int64(filter.Limit)).
		SetLimit(int64(filter.Limit)).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cur, err := repo.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	users := make([]user.User, 0, filter.Limit)
	if err = cur.All(ctx, &users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, id primitive.ObjectID, uu user.UpdateUser) (user.User, error) {
	set := bson.M{}
	if uu.FirstName != "" {
		set["firstname"] = uu.FirstName
	}
	if uu.LastName != "" {
		set["lastname"] = uu.LastName
	}
	if uu.Phone != "" {
		set["phone"] = uu.Phone
	}
	if uu.Role != "" {
		set["role"] = uu.Role
	}
	if len(set) == 0 {
		return repo.GetUserByID(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var usr user.User
	err := repo.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&usr)
	if err == mongo.ErrNoDocuments {
		return user.User{}, user.ErrNotFound
	}
	return usr, err
}

func (repo *userRepository) SetUserAvatar(ctx context.Context, id primitive.ObjectID, path string) (user.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var usr user.User
	err := repo.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"avatar": path}}, opts).Decode(&usr)
	if err == mongo.ErrNoDocuments {
		return user.User{}, user.ErrNotFound
	}
	return usr, err
}

func (repo *userRepository) SetUserPassword(ctx context.Context, id primitive.ObjectID, hash []byte) error {
	res, err := repo.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"password": hash}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...primitive.ObjectID) (int64, error) {
	res, err := repo.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
