package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/everly/elearning/core/course"
	"github.com/everly/elearning/storage/database"
)

type courseRepository struct {
	courses       *mongo.Collection
	registrations *mongo.Collection
	users         *mongo.Collection
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *mongo.Database) course.Repository {
	return &courseRepository{
		courses:       db.Collection(database.CourseCollection),
		registrations: db.Collection(database.RegistrationCollection),
		users:         db.Collection(database.UserCollection),
	}
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	res, err := repo.courses.InsertOne(ctx, crs)
	if err != nil {
		return course.Course{}, err
	}
	crs.ID = res.InsertedID.(primitive.ObjectID)
	return crs, nil
}

func (repo *courseRepository) QueryAllCourses(ctx context.Context) ([]course.Course, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := repo.courses.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	courses := make([]course.Course, 0)
	if err = cur.All(ctx, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id primitive.ObjectID) (course.Course, error) {
	var crs course.Course
	err := repo.courses.FindOne(ctx, bson.M{"_id": id}).Decode(&crs)
	if err == mongo.ErrNoDocuments {
		return course.Course{}, course.ErrNotFound
	}
	return crs, err
}

func (repo *courseRepository) GetCoursesByID(ctx context.Context, ids []primitive.ObjectID) ([]course.Course, error) {
	cur, err := repo.courses.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	courses := make([]course.Course, 0, len(ids))
	if err = cur.All(ctx, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, id primitive.ObjectID, uc course.UpdateCourse) (course.Course, error) {
	set := bson.M{}
	if uc.Title != "" {
		set["title"] = uc.Title
	}
	if uc.Desc != "" {
		set["desc"] = uc.Desc
	}
	if uc.Author != nil {
		set["author"] = uc.Author
	}
	if uc.Source != nil {
		set["source"] = uc.Source
	}
	if uc.Image != "" {
		set["image"] = uc.Image
	}
	if uc.Category != "" {
		set["category"] = uc.Category
	}
	if uc.Rating != nil {
		set["rating"] = *uc.Rating
	}
	if len(set) == 0 {
		return repo.GetCourseByID(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var crs course.Course
	err := repo.courses.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&crs)
	if err == mongo.ErrNoDocuments {
		return course.Course{}, course.ErrNotFound
	}
	return crs, err
}

func (repo *courseRepository) DeleteCoursesByID(ctx context.Context, ids ...primitive.ObjectID) (int64, error) {
	res, err := repo.courses.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (repo *courseRepository) CreateRegistration(ctx context.Context, reg course.Registration) (course.Registration, error) {
	res, err := repo.registrations.InsertOne(ctx, reg)
	if err != nil {
		return course.Registration{}, err
	}
	reg.ID = res.InsertedID.(primitive.ObjectID)
	return reg, nil
}

func (repo *courseRepository) QueryRegistrations(ctx context.Context) ([]course.Registration, error) {
	return repo.queryRegistrations(ctx, bson.M{})
}

func (repo *courseRepository) QueryUserRegistrations(ctx context.Context, userID string) ([]course.Registration, error) {
	return repo.queryRegistrations(ctx, bson.M{"userId": userID})
}

func (repo *courseRepository) queryRegistrations(ctx context.Context, filter bson.M) ([]course.Registration, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := repo.registrations.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	regs := make([]course.Registration, 0)
	if err = cur.All(ctx, &regs); err != nil {
		return nil, err
	}
	return regs, nil
}

func (repo *courseRepository) GetRegistrationByID(ctx context.Context, id primitive.ObjectID) (course.Registration, error) {
	var reg course.Registration
	err := repo.registrations.FindOne(ctx, bson.M{"_id": id}).Decode(&reg)
	if err == mongo.ErrNoDocuments {
		return course.Registration{}, course.ErrRegistrationNotFound
	}
	return reg, err
}

func (repo *courseRepository) DeleteRegistration(ctx context.Context, id primitive.ObjectID) error {
	res, err := repo.registrations.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return course.ErrRegistrationNotFound
	}
	return nil
}

func (repo *courseRepository) Enroll(ctx context.Context, userID, courseID primitive.ObjectID) error {
	res, err := repo.courses.UpdateOne(ctx,
		bson.M{"_id": courseID},
		bson.M{"$addToSet": bson.M{"students": userID}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return course.ErrNotFound
	}

	_, err = repo.users.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$addToSet": bson.M{"courses": courseID}},
	)
	return err
}
