package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/everly/elearning/core/factor"
)

type factorApi struct {
	svc *factor.Service
}

func registerFactorAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := factorApi{svc: deps.FactorSvc}

	fg := g.Group("/factor", jwt)
	fg.POST("/record/submit", api.submit)
	fg.PUT("/record/update/:id", api.update)
	fg.GET("/record", api.query)
}

func (api *factorApi) submit(ctx echo.Context) error {
	userID, err := getContextUserID(ctx)
	if err != nil {
		return err
	}

	data := new(factor.NewRecord)
	if err = ctx.Bind(data); err != nil {
		return errors.Wrap(err, "binding body")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	rec, err := api.svc.Submit(ctx.Request().Context(), userID, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, rec)
}

func (api *factorApi) update(ctx echo.Context) error {
	userID, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	id, err := primitive.ObjectIDFromHex(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	data := new(factor.UpdateRecord)
	if err = ctx.Bind(data); err != nil {
		return errors.Wrap(err, "binding body")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	rec, err := api.svc.Update(ctx.Request().Context(), id, userID, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *factorApi) query(ctx echo.Context) error {
	userID, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	recs, err := api.svc.QueryByUser(ctx.Request().Context(), userID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, recs)
}
