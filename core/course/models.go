package course

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/everly/elearning/core"
)

type Course struct {
	ID        primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Title     string               `json:"title" bson:"title"`
	Desc      string               `json:"desc" bson:"desc"`
	Author    []string             `json:"author" bson:"author"`
	Source    []string             `json:"source" bson:"source"`
	Image     string               `json:"image" bson:"image"`
	Category  string               `json:"category,omitempty" bson:"category,omitempty"`
	Students  []primitive.ObjectID `json:"students" bson:"students,omitempty"`
	Rating    float64              `json:"rating" bson:"rating"`
	CreatedAt time.Time            `json:"createdAt" bson:"createdAt"` // UTC
}

// Registration links a user's request to enroll in a course, pending
// admin approval. User and course ids are kept as hex strings, the way
// the legacy records store them.
type Registration struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    string             `json:"userId" bson:"userId"`
	CourseID  string             `json:"courseId" bson:"courseId"`
	Email     string             `json:"email" bson:"email"`
	Title     string             `json:"title" bson:"title"`
	Path      string             `json:"path" bson:"path"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"` // UTC
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Title    string   `json:"title" validate:"required"`
	Desc     string   `json:"desc" validate:"required"`
	Author   []string `json:"author" validate:"required,min=1"`
	Source   []string `json:"source" validate:"required,min=1"`
	Image    string   `json:"image" validate:"required"`
	Category string   `json:"category" validate:"required"`
}

func (nc *NewCourse) Validate() error {
	nc.Title = core.CleanString(nc.Title)
	nc.Desc = core.CleanString(nc.Desc)
	nc.Image = core.CleanString(nc.Image)
	nc.Category = core.CleanString(nc.Category)
	return core.Validate.Struct(nc)
}

// UpdateCourse defines what information may be provided to modify an
// existing Course. Empty fields are left untouched.
type UpdateCourse struct {
	Title    string   `json:"title"`
	Desc     string   `json:"desc"`
	Author   []string `json:"author"`
	Source   []string `json:"source"`
	Image    string   `json:"image"`
	Category string   `json:"category"`
	Rating   *float64 `json:"rating" validate:"omitempty,gte=0,lte=5"`
}

func (uc *UpdateCourse) Validate() error {
	uc.Title = core.CleanString(uc.Title)
	uc.Desc = core.CleanString(uc.Desc)
	uc.Image = core.CleanString(uc.Image)
	uc.Category = core.CleanString(uc.Category)
	return core.Validate.Struct(uc)
}

// NewRegistration contains information needed to register interest in a course.
type NewRegistration struct {
	UserID   string `json:"userId" validate:"required"`
	CourseID string `json:"courseId" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Title    string `json:"title" validate:"required"`
	Path     string `json:"path" validate:"required"`
}

func (nr *NewRegistration) Validate() error {
	nr.Email = core.CleanString(nr.Email, true /* lower */)
	nr.Title = core.CleanString(nr.Title)
	return core.Validate.Struct(nr)
}
