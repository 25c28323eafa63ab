package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/everly/elearning/core"
	"github.com/everly/elearning/core/course"
	"github.com/everly/elearning/core/user"
	"github.com/everly/elearning/storage/files"
)

type userApi struct {
	svc       *user.Service
	courseSvc *course.Service
	files     *files.LocalStore
	logger    core.Logger
	conf      *core.Config
}

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := userApi{
		svc:       deps.UserSvc,
		courseSvc: deps.CourseSvc,
		files:     deps.Files,
		logger:    deps.Logger,
		conf:      deps.Conf,
	}

	ug := g.Group("/users")

	// public
	ug.POST("/signup", api.signup)
	ug.POST("/login", api.login)

	// authed
	ag := ug.Group("", jwt)
	ag.GET("/registrations", api.registrations)

	// admin
	ag.GET("", api.query, adminMiddleware())
	ag.DELETE("/delete", api.destroyMultiple, adminMiddleware())

	// detail: self or admin
	ag.GET("/:uid", api.retrieve, selfOrAdminMiddleware(api.svc))
	ag.PUT("/:uid", api.update, selfOrAdminMiddleware(api.svc))
	ag.POST("/change-avatar/:uid", api.updateAvatar, selfOrAdminMiddleware(api.svc))
}

type (
	signupResponse struct {
		UserID string `json:"userId"`
		Email  string `json:"email"`
	}

	loginRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	loginResponse struct {
		UserID string `json:"userId"`
		Email  string `json:"email"`
		Token  string `json:"token"`
	}

	// enrolledCourse is a Course as embedded in a user detail; the
	// lesson sources stay hidden until the catalog page requests them.
	enrolledCourse struct {
		ID       primitive.ObjectID `json:"id"`
		Title    string             `json:"title"`
		Desc     string             `json:"desc"`
		Author   []string           `json:"author"`
		Image    string             `json:"image"`
		Category string             `json:"category,omitempty"`
		Rating   float64            `json:"rating"`
	}

	userDetailResponse struct {
		user.User
		Courses []enrolledCourse `json:"courses"`
	}

	avatarResponse struct {
		Avatar string `json:"avatar"`
	}

	userPageResponse struct {
		Users     []user.User `json:"users"`
		TotalUser int64       `json:"total_user"`
		TotalPage int64       `json:"total_page"`
		Page      int         `json:"page"`
		Role      string      `json:"role,omitempty"`
	}

	destroyMultipleRequest struct {
		IDs []string `json:"ids" validate:"required,min=1"`
	}

	destroyMultipleResponse struct {
		DeletedCount int64 `json:"deleted_count"`
	}
)

func (api *userApi) signup(ctx echo.Context) error {
	data := new(user.NewUser)
	if err := ctx.Bind(data); err != nil {
		return errors.Wrap(err, "binding body")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	usr, err := api.svc.Create(ctx.Request().Context(), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, signupResponse{UserID: usr.ID.Hex(), Email: usr.Email})
}

func (api *userApi) login(ctx echo.Context) error {
	data := new(loginRequest)
	if err := ctx.Bind(data); err != nil {
		return errors.Wrap(err, "binding body")
	}
	data.Email = core.CleanString(data.Email, true /* lower */)
	if err := core.Validate.Struct(data); err != nil {
		return err
	}

	claims, err := authenticate(ctx.Request().Context(), data.Email, data.Password, api.svc, api.conf)
	if err != nil {
		return err
	}
	token, err := GenerateToken(claims, api.conf)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, loginResponse{UserID: claims.Subject, Email: claims.Email, Token: token})
}

func (api *userApi) retrieve(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	crss, err := api.courseSvc.GetManyByID(ctx.Request().Context(), usr.Courses)
	if err != nil {
		return err
	}
	enrolled := make([]enrolledCourse, 0, len(crss))
	for _, crs := range crss {
		enrolled = append(enrolled, enrolledCourse{
			ID:       crs.ID,
			Title:    crs.Title,
			Desc:     crs.Desc,
			Author:   crs.Author,
			Image:    crs.Image,
			Category: crs.Category,
			Rating:   crs.Rating,
		})
	}
	return ctx.JSON(http.StatusOK, userDetailResponse{User: usr, Courses: enrolled})
}

func (api *userApi) update(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	data := new(user.UpdateUser)
	if err = ctx.Bind(data); err != nil {
		return errors.Wrap(err, "binding body")
	}
	// only admins may change roles
	if data.Role != "" && claims.Role != user.RoleAdmin {
		return errHttpForbidden
	}
	if err = data.Validate(); err != nil {
		return err
	}
	if data.IsEmpty() {
		return ctx.JSON(http.StatusOK, usr)
	}

	usr, err = api.svc.Update(ctx.Request().Context(), usr.ID, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) updateAvatar(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	fh, err := ctx.FormFile("avatar")
	if err != nil {
		return core.NewValidationError(
			errors.New("an image upload is required"),
			core.FieldError{Field: "avatar", Error: "an image upload is required"},
		)
	}

	path, err := api.files.Save(fh)
	if err != nil {
		return err
	}
	usr, oldPath, err := api.svc.SetAvatar(ctx.Request().Context(), usr.ID, path)
	if err != nil {
		return err
	}
	// removing the replaced file is best effort
	if err = api.files.Remove(oldPath); err != nil {
		api.logger.Warn(fmt.Sprintf("removing old avatar %s: %v", oldPath, err))
	}
	return ctx.JSON(http.StatusOK, avatarResponse{Avatar: usr.Avatar})
}

func (api *userApi) query(ctx echo.Context) error {
	filter := new(user.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding query params")
	}
	if err := filter.Validate(); err != nil {
		return err
	}

	users, total, err := api.svc.Filter(ctx.Request().Context(), *filter)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, userPageResponse{
		Users:     users,
		TotalUser: total,
		TotalPage: filter.TotalPages(total),
		Page:      filter.Page,
		Role:      filter.Role,
	})
}

func (api *userApi) destroyMultiple(ctx echo.Context) error {
	data := new(destroyMultipleRequest)
	if err := ctx.Bind(data); err != nil {
		return errors.Wrap(err, "binding body")
	}
	if err := core.Validate.Struct(data); err != nil {
		return err
	}
	ids, err := parseObjectIDs(data.IDs)
	if err != nil {
		return err
	}

	// Say No to Suicide !!
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id.Hex() == claims.Subject {
			return errHttpForbidden
		}
	}

	count, err := api.svc.Delete(ctx.Request().Context(), ids...)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, destroyMultipleResponse{DeletedCount: count})
}

func (api *userApi) registrations(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	regs, err := api.courseSvc.QueryUserRegistrations(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, regs)
}

func parseObjectIDs(raw []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, s := range raw {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			return nil, core.NewValidationError(
				errors.Errorf("invalid id %q", s),
				core.FieldError{Field: "ids", Error: "must be valid object ids"},
			)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
