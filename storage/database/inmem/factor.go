package inmemdb

import (
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/everly/elearning/core/factor"
)

type factorRepository struct {
	db *DB
}

var _ factor.Repository = (*factorRepository)(nil)

func NewFactorRepository(db *DB) factor.Repository {
	return &factorRepository{db: db}
}

func (repo *factorRepository) CreateRecord(_ context.Context, rec factor.Record) (factor.Record, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	rec.ID = primitive.NewObjectID()
	repo.db.records[rec.ID] = &rec
	return rec, nil
}

func (repo *factorRepository) QueryUserRecords(_ context.Context, userID primitive.ObjectID) ([]factor.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	recs := make([]factor.Record, 0)
	for _, rec := range repo.db.records {
		if rec.UserID == userID {
			recs = append(recs, *rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].StartAt.After(recs[j].StartAt) })
	return recs, nil
}

func (repo *factorRepository) UpdateRecord(_ context.Context, id, userID primitive.ObjectID, ur factor.UpdateRecord) (factor.Record, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	rec, ok := repo.db.records[id]
	if !ok || rec.UserID != userID {
		return factor.Record{}, factor.ErrNotFound
	}
	if ur.IconSource != "" {
		rec.IconSource = ur.IconSource
	}
	if ur.Value != "" {
		rec.Value = ur.Value
	}
	if ur.Unit != "" {
		rec.Unit = ur.Unit
	}
	if ur.StartAt != nil {
		rec.StartAt = *ur.StartAt
	}
	if ur.EndAt != nil {
		rec.EndAt = *ur.EndAt
	}
	return *rec, nil
}
