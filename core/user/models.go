package user

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/everly/elearning/core"
)

// Roles
const (
	RoleStudent = "HV"
	RoleTeacher = "GV"
	RoleAdmin   = "AD"
)

var (
	AllRoles = []string{RoleStudent, RoleTeacher, RoleAdmin}

	Roles = []Role{
		{Name: "Student", Value: RoleStudent},
		{Name: "Teacher", Value: RoleTeacher},
		{Name: "Admin", Value: RoleAdmin},
	}

	// passwordHashCost matches the cost the legacy records were hashed with.
	passwordHashCost = 12
)

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type User struct {
	ID           primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Email        string               `json:"email" bson:"email"`
	PasswordHash []byte               `json:"-" bson:"password"`
	FirstName    string               `json:"firstname" bson:"firstname"`
	LastName     string               `json:"lastname" bson:"lastname"`
	Role         string               `json:"role" bson:"role"`
	Phone        string               `json:"phone,omitempty" bson:"phone,omitempty"`
	Avatar       string               `json:"avatar,omitempty" bson:"avatar,omitempty"`
	CreatedAt    time.Time            `json:"createdAt" bson:"createdAt"` // UTC
	Courses      []primitive.ObjectID `json:"courses" bson:"courses,omitempty"`
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), passwordHashCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsTeacher() bool {
	return u.Role == RoleTeacher
}

func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	FirstName string `json:"firstname" validate:"required"`
	LastName  string `json:"lastname" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	Phone     string `json:"phone"`
	Role      string `json:"role" validate:"omitempty,allroles"`
}

func (nu *NewUser) Validate(svc *Service) error {
	nu.FirstName = core.CleanString(nu.FirstName)
	nu.LastName = core.CleanString(nu.LastName, true /* lower */)
	nu.Email = core.CleanString(nu.Email, true /* lower */)

	if err := core.Validate.Struct(nu); err != nil {
		return err
	}
	return svc.checkEmailUniqueness(nu.Email)
}

// UpdateUser defines what information may be provided to modify an existing User.
// Empty fields are left untouched.
type UpdateUser struct {
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Phone     string `json:"phone"`
	Role      string `json:"role" validate:"omitempty,allroles"`
}

func (uu *UpdateUser) Validate() error {
	uu.FirstName = core.CleanString(uu.FirstName)
	uu.LastName = core.CleanString(uu.LastName, true /* lower */)
	uu.Phone = core.CleanString(uu.Phone)
	return core.Validate.Struct(uu)
}

func (uu *UpdateUser) IsEmpty() bool {
	return uu.FirstName == "" && uu.LastName == "" && uu.Phone == "" && uu.Role == ""
}

// QueryFilter pages through users, optionally restricted to a role.
type QueryFilter struct {
	Page  int    `query:"page"`
	Limit int    `query:"limit"`
	Role  string `query:"role"`
}

func (qf *QueryFilter) Validate() error {
	if qf.Page < 0 || qf.Limit < 0 {
		return core.NewValidationError(
			errors.New("page and limit must not be negative"),
			core.FieldError{Field: "page", Error: "must not be negative"},
		)
	}
	if qf.Page == 0 {
		qf.Page = 1
	}
	if qf.Limit == 0 {
		qf.Limit = defaultPageLimit
	}
	qf.Role = core.CleanString(qf.Role)
	return nil
}

// TotalPages computes the page count for a result set of `total` users.
func (qf *QueryFilter) TotalPages(total int64) int64 {
	if qf.Limit <= 0 {
		return 0
	}
	return (total + int64(qf.Limit) - 1) / int64(qf.Limit)
}

const defaultPageLimit = 10
