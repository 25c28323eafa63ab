package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/everly/elearning/core"
)

var (
	// errors
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("User exists already, please login instead.")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id primitive.ObjectID) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		// FilterUsers returns the requested page along with the total number
		// of users matching QueryFilter.Role (all users when Role is empty).
		FilterUsers(ctx context.Context, filter QueryFilter) ([]User, int64, error)
		// UpdateUser applies the set fields of `uu` and leaves the rest untouched.
		UpdateUser(ctx context.Context, id primitive.ObjectID, uu UpdateUser) (User, error)
		SetUserAvatar(ctx context.Context, id primitive.ObjectID, path string) (User, error)
		SetUserPassword(ctx context.Context, id primitive.ObjectID, hash []byte) error
		DeleteUsersByID(ctx context.Context, ids ...primitive.ObjectID) (int64, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, conf: conf}
}

func (svc *Service) checkEmailUniqueness(email string, exclUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(context.Background(), email, exclUsers...); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	role := nu.Role
	if role == "" {
		role = RoleStudent
	}
	usr := User{
		Email:     nu.Email,
		FirstName: nu.FirstName,
		LastName:  nu.LastName,
		Role:      role,
		Phone:     nu.Phone,
		CreatedAt: time.Now().UTC(),
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, err
	}
	svc.sendWelcomeEmail(usr)
	return usr, nil
}

func (svc *Service) GetByID(ctx context.Context, id primitive.ObjectID) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]User, int64, error) {
	return svc.repo.FilterUsers(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, id primitive.ObjectID, uu UpdateUser) (User, error) {
	return svc.repo.UpdateUser(ctx, id, uu)
}

// SetAvatar stores the new avatar path and returns the updated user along
// with the previous path so the caller can clean the old file up.
func (svc *Service) SetAvatar(ctx context.Context, id primitive.ObjectID, path string) (User, string, error) {
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, "", err
	}
	oldPath := usr.Avatar
	usr, err = svc.repo.SetUserAvatar(ctx, id, path)
	if err != nil {
		return User{}, "", err
	}
	return usr, oldPath, nil
}

func (svc *Service) Delete(ctx context.Context, ids ...primitive.ObjectID) (int64, error) {
	return svc.repo.DeleteUsersByID(ctx, ids...)
}

func (svc *Service) sendWelcomeEmail(usr User) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.FirstName, Address: usr.Email}},
		Subject: "Welcome to " + svc.conf.AppName,
		TextContent: fmt.Sprintf(
			"Hi %s,\r\n\r\nYour account has been created. Browse the catalog and register for your first course at %s.",
			usr.FirstName, svc.conf.FrontendBaseURL,
		),
	})
}
