package inmemdb

import (
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/everly/elearning/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) query() []user.User {
	users := make([]user.User, 0, len(repo.db.users))
	for _, u := range repo.db.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users
}

func (repo *userRepository) CheckEmailUniqueness(_ context.Context, email string, excludedUsers ...user.User) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, usr := range repo.db.users {
		if usr.Email == email && !isExcluded(*usr, excludedUsers) {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, u := range repo.db.users {
		if u.Email == usr.Email {
			return user.User{}, user.ErrEmailExists
		}
	}
	usr.ID = primitive.NewObjectID()
	repo.db.users[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) GetUserByID(_ context.Context, id primitive.ObjectID) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if usr, ok := repo.db.users[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, usr := range repo.db.users {
		if usr.Email == email {
			return *usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) FilterUsers(_ context.Context, filter user.QueryFilter) ([]user.User, int64, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	matched := make([]user.User, 0)
	for _, usr := range repo.query() {
		if filter.Role == "" || usr.Role == filter.Role {
			matched = append(matched, usr)
		}
	}
	total := int64(len(matched))

	start := (filter.Page - 1) * filter.Limit
	if start >= len(matched) {
		return []user.User{}, total, nil
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (repo *userRepository) UpdateUser(_ context.Context, id primitive.ObjectID, uu user.UpdateUser) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	// only save set fields
	usr, ok := repo.db.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	if uu.FirstName != "" {
		usr.FirstName = uu.FirstName
	}
	if uu.LastName != "" {
		usr.LastName = uu.LastName
	}
	if uu.Phone != "" {
		usr.Phone = uu.Phone
	}
	if uu.Role != "" {
		usr.Role = uu.Role
	}
	return *usr, nil
}

func (repo *userRepository) SetUserAvatar(_ context.Context, id primitive.ObjectID, path string) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	usr, ok := repo.db.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	usr.Avatar = path
	return *usr, nil
}

func (repo *userRepository) SetUserPassword(_ context.Context, id primitive.ObjectID, hash []byte) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	usr, ok := repo.db.users[id]
	if !ok {
		return user.ErrNotFound
	}
	usr.PasswordHash = hash
	return nil
}

func (repo *userRepository) DeleteUsersByID(_ context.Context, ids ...primitive.ObjectID) (int64, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var count int64
	for _, id := range ids {
		if _, ok := repo.db.users[id]; ok {
			delete(repo.db.users, id)
			count++
		}
	}
	return count, nil
}

func isExcluded(usr user.User, excludedUsers []user.User) bool {
	for _, excl := range excludedUsers {
		if excl.ID == usr.ID {
			return true
		}
	}
	return false
}
