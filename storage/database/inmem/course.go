package inmemdb

import (
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/everly/elearning/core/course"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) CreateCourse(_ context.Context, crs course.Course) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	crs.ID = primitive.NewObjectID()
	repo.db.courses[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) QueryAllCourses(_ context.Context) ([]course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	courses := make([]course.Course, 0, len(repo.db.courses))
	for _, crs := range repo.db.courses {
		courses = append(courses, *crs)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].CreatedAt.After(courses[j].CreatedAt) })
	return courses, nil
}

func (repo *courseRepository) GetCourseByID(_ context.Context, id primitive.ObjectID) (course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if crs, ok := repo.db.courses[id]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) GetCoursesByID(_ context.Context, ids []primitive.ObjectID) ([]course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	courses := make([]course.Course, 0, len(ids))
	for _, id := range ids {
		if crs, ok := repo.db.courses[id]; ok {
			courses = append(courses, *crs)
		}
	}
	return courses, nil
}

func (repo *courseRepository) UpdateCourse(_ context.Context, id primitive.ObjectID, uc course.UpdateCourse) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	// only save set fields
	crs, ok := repo.db.courses[id]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	if uc.Title != "" {
		crs.Title = uc.Title
	}
	if uc.Desc != "" {
		crs.Desc = uc.Desc
	}
	if uc.Author != nil {
		crs.Author = uc.Author
	}
	if uc.Source != nil {
		crs.Source = uc.Source
	}
	if uc.Image != "" {
		crs.Image = uc.Image
	}
	if uc.Category != "" {
		crs.Category = uc.Category
	}
	if uc.Rating != nil {
		crs.Rating = *uc.Rating
	}
	return *crs, nil
}

func (repo *courseRepository) DeleteCoursesByID(_ context.Context, ids ...primitive.ObjectID) (int64, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var count int64
	for _, id := range ids {
		if _, ok := repo.db.courses[id]; ok {
			delete(repo.db.courses, id)
			count++
		}
	}
	return count, nil
}

func (repo *courseRepository) CreateRegistration(_ context.Context, reg course.Registration) (course.Registration, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	reg.ID = primitive.NewObjectID()
	repo.db.registrations[reg.ID] = &reg
	return reg, nil
}

func (repo *courseRepository) QueryRegistrations(_ context.Context) ([]course.Registration, error) {
	return repo.queryRegistrations(""), nil
}

func (repo *courseRepository) QueryUserRegistrations(_ context.Context, userID string) ([]course.Registration, error) {
	return repo.queryRegistrations(userID), nil
}

func (repo *courseRepository) queryRegistrations(userID string) []course.Registration {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	regs := make([]course.Registration, 0)
	for _, reg := range repo.db.registrations {
		if userID == "" || reg.UserID == userID {
			regs = append(regs, *reg)
		}
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i].CreatedAt.After(regs[j].CreatedAt) })
	return regs
}

func (repo *courseRepository) GetRegistrationByID(_ context.Context, id primitive.ObjectID) (course.Registration, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if reg, ok := repo.db.registrations[id]; ok {
		return *reg, nil
	}
	return course.Registration{}, course.ErrRegistrationNotFound
}

func (repo *courseRepository) DeleteRegistration(_ context.Context, id primitive.ObjectID) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.registrations[id]; !ok {
		return course.ErrRegistrationNotFound
	}
	delete(repo.db.registrations, id)
	return nil
}

func (repo *courseRepository) Enroll(_ context.Context, userID, courseID primitive.ObjectID) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	crs, ok := repo.db.courses[courseID]
	if !ok {
		return course.ErrNotFound
	}
	if !containsID(crs.Students, userID) {
		crs.Students = append(crs.Students, userID)
	}
	if usr, ok := repo.db.users[userID]; ok {
		if !containsID(usr.Courses, courseID) {
			usr.Courses = append(usr.Courses, courseID)
		}
	}
	return nil
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, i := range ids {
		if i == id {
			return true
		}
	}
	return false
}
