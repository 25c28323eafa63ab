package course

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
	ErrNotFound             = errors.New("course not found")
	ErrRegistrationNotFound = errors.New("registration not found")
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		QueryAllCourses(ctx context.Context) ([]Course, error)
		GetCourseByID(ctx context.Context, id primitive.ObjectID) (Course, error)
		GetCoursesByID(ctx context.Context, ids []primitive.ObjectID) ([]Course, error)
		// UpdateCourse applies the set fields of `uc` and leaves the rest untouched.
		UpdateCourse(ctx context.Context, id primitive.ObjectID, uc UpdateCourse) (Course, error)
		DeleteCoursesByID(ctx context.Context, ids ...primitive.ObjectID) (int64, error)

		CreateRegistration(ctx context.Context, reg Registration) (Registration, error)
		QueryRegistrations(ctx context.Context) ([]Registration, error)
		QueryUserRegistrations(ctx context.Context, userID string) ([]Registration, error)
		GetRegistrationByID(ctx context.Context, id primitive.ObjectID) (Registration, error)
		DeleteRegistration(ctx context.Context, id primitive.ObjectID) error

		// Enroll links both sides of an approved registration: the user is
		// added to the course's student set and the course to the user's
		// course set. Both updates are idempotent.
		Enroll(ctx context.Context, userID, courseID primitive.ObjectID) error
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

func (svc *Service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	crs := Course{
		Title:     nc.Title,
		Desc:      nc.Desc,
		Author:    nc.Author,
		Source:    nc.Source,
		Image:     nc.Image,
		Category:  nc.Category,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateCourse(ctx, crs)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Course, error) {
	return svc.repo.QueryAllCourses(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id primitive.ObjectID) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *Service) GetManyByID(ctx context.Context, ids []primitive.ObjectID) ([]Course, error) {
	if len(ids) == 0 {
		return []Course{}, nil
	}
	return svc.repo.GetCoursesByID(ctx, ids)
}

func (svc *Service) Update(ctx context.Context, id primitive.ObjectID, uc UpdateCourse) (Course, error) {
	return svc.repo.UpdateCourse(ctx, id, uc)
}

func (svc *Service) Delete(ctx context.Context, ids ...primitive.ObjectID) (int64, error) {
	return svc.repo.DeleteCoursesByID(ctx, ids...)
}

func (svc *Service) Register(ctx context.Context, nr NewRegistration) (Registration, error) {
	reg := Registration{
		UserID:    nr.UserID,
		CourseID:  nr.CourseID,
		Email:     nr.Email,
		Title:     nr.Title,
		Path:      nr.Path,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateRegistration(ctx, reg)
}

func (svc *Service) QueryRegistrations(ctx context.Context) ([]Registration, error) {
	return svc.repo.QueryRegistrations(ctx)
}

func (svc *Service) QueryUserRegistrations(ctx context.Context, userID string) ([]Registration, error) {
	return svc.repo.QueryUserRegistrations(ctx, userID)
}

// Approve promotes a Registration into an enrollment link between its
// user and course, removes the registration and notifies the registrant.
func (svc *Service) Approve(ctx context.Context, regID primitive.ObjectID) (Registration, error) {
	reg, err := svc.repo.GetRegistrationByID(ctx, regID)
	if err != nil {
		return Registration{}, err
	}

	userID, err := primitive.ObjectIDFromHex(reg.UserID)
	if err != nil {
		return Registration{}, ErrRegistrationNotFound
	}
	courseID, err := primitive.ObjectIDFromHex(reg.CourseID)
	if err != nil {
		return Registration{}, ErrRegistrationNotFound
	}

	if err = svc.repo.Enroll(ctx, userID, courseID); err != nil {
		return Registration{}, err
	}
	if err = svc.repo.DeleteRegistration(ctx, regID); err != nil {
		return Registration{}, err
	}

	svc.sendApprovalEmail(reg)
	return reg, nil
}

func (svc *Service) sendApprovalEmail(reg Registration) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Address: reg.Email}},
		Subject: "Course registration approved",
		TextContent: fmt.Sprintf(
			"Your registration for %q has been approved. Start learning at %s.",
			reg.Title, svc.conf.FrontendBaseURL,
		),
	})
}
