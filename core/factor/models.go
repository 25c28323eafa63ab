package factor

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/everly/elearning/core"
)

// Record is a timestamped value/unit measurement owned by a user.
type Record struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID     primitive.ObjectID `json:"user" bson:"user"`
	IconSource string             `json:"icon_source,omitempty" bson:"icon_source,omitempty"`
	Value      string             `json:"value" bson:"value"`
	Unit       string             `json:"unit" bson:"unit"`
	StartAt    time.Time          `json:"start_at" bson:"start_at"`
	EndAt      time.Time          `json:"end_at" bson:"end_at"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"` // UTC
}

// NewRecord contains information needed to submit a new Record.
type NewRecord struct {
	IconSource string    `json:"icon_source"`
	Value      string    `json:"value" validate:"required"`
	Unit       string    `json:"unit" validate:"omitempty,max=20"`
	StartAt    time.Time `json:"start_at"`
	EndAt      time.Time `json:"end_at"`
}

func (nr *NewRecord) Validate() error {
	nr.Value = core.CleanString(nr.Value)
	nr.Unit = core.CleanString(nr.Unit)
	return core.Validate.Struct(nr)
}

// UpdateRecord defines what information may be provided to modify an
// existing Record. Zero fields are left untouched.
type UpdateRecord struct {
	IconSource string     `json:"icon_source"`
	Value      string     `json:"value"`
	Unit       string     `json:"unit" validate:"omitempty,max=20"`
	StartAt    *time.Time `json:"start_at"`
	EndAt      *time.Time `json:"end_at"`
}

func (ur *UpdateRecord) Validate() error {
	ur.Value = core.CleanString(ur.Value)
	ur.Unit = core.CleanString(ur.Unit)
	return core.Validate.Struct(ur)
}
