package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/everly/elearning/core"
	"github.com/everly/elearning/core/course"
)

type courseApi struct {
	svc  *course.Service
	conf *core.Config
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := courseApi{svc: deps.CourseSvc, conf: deps.Conf}

	cg := g.Group("/courses")

	// public
	cg.GET("/all", api.query)
	cg.POST("/register", api.register)
	cg.GET("/:id", api.retrieve, decodeTokenMiddleware(api.conf))

	// admin
	ag := cg.Group("", jwt, adminMiddleware())
	ag.POST("/create-course", api.create)
	ag.PUT("/:id", api.update)
	ag.DELETE("/delete", api.destroyMultiple)
	ag.POST("/registrations", api.queryRegistrations)
	ag.POST("/approve", api.approve)
}

type approveRequest struct {
	ID string `json:"id" validate:"required"`
}

func (api *courseApi) create(ctx echo.Context) error {
	data := new(course.NewCourse)
	if err := ctx.Bind(data); err != nil {
		return errors.Wrap(err, "binding body")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	crs, err := api.svc.Create(ctx.Request().Context(), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) query(ctx echo.Context) error {
	crss, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, crss)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	id, err := primitive.ObjectIDFromHex(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	crs, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) update(ctx echo.Context) error {
	id, err := primitive.ObjectIDFromHex(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	data := new(course.UpdateCourse)
	if err = ctx.Bind(data); err != nil {
		return errors.Wrap(err, "binding body")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	crs, err := api.svc.Update(ctx.Request().Context(), id, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) destroyMultiple(ctx echo.Context) error {
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

	count, err := api.svc.Delete(ctx.Request().Context(), ids...)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, destroyMultipleResponse{DeletedCount: count})
}

func (api *courseApi) register(ctx echo.Context) error {
	data := new(course.NewRegistration)
	if err := ctx.Bind(data); err != nil {
		return errors.Wrap(err, "binding body")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	reg, err := api.svc.Register(ctx.Request().Context(), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, reg)
}

func (api *courseApi) queryRegistrations(ctx echo.Context) error {
	regs, err := api.svc.QueryRegistrations(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, regs)
}

func (api *courseApi) approve(ctx echo.Context) error {
	data := new(approveRequest)
	if err := ctx.Bind(data); err != nil {
		return errors.Wrap(err, "binding body")
	}
	if err := core.Validate.Struct(data); err != nil {
		return err
	}
	id, err := primitive.ObjectIDFromHex(data.ID)
	if err != nil {
		return errHttpNotFound
	}

	reg, err := api.svc.Approve(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, reg)
}
