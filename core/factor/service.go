package factor

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrNotFound = errors.New("record not found")

type (
	Repository interface {
		CreateRecord(ctx context.Context, rec Record) (Record, error)
		QueryUserRecords(ctx context.Context, userID primitive.ObjectID) ([]Record, error)
		// UpdateRecord applies the set fields of `ur` to the record owned by
		// `userID`. A record owned by someone else is reported as not found.
		UpdateRecord(ctx context.Context, id, userID primitive.ObjectID, ur UpdateRecord) (Record, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Submit(ctx context.Context, userID primitive.ObjectID, nr NewRecord) (Record, error) {
	rec := Record{
		UserID:     userID,
		IconSource: nr.IconSource,
		Value:      nr.Value,
		Unit:       nr.Unit,
		StartAt:    nr.StartAt,
		EndAt:      nr.EndAt,
		CreatedAt:  time.Now().UTC(),
	}
	return svc.repo.CreateRecord(ctx, rec)
}

func (svc *Service) QueryByUser(ctx context.Context, userID primitive.ObjectID) ([]Record, error) {
	return svc.repo.QueryUserRecords(ctx, userID)
}

func (svc *Service) Update(ctx context.Context, id, userID primitive.ObjectID, ur UpdateRecord) (Record, error) {
	return svc.repo.UpdateRecord(ctx, id, userID, ur)
}
