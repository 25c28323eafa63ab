package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/everly/elearning/core"
	"github.com/everly/elearning/core/course"
	"github.com/everly/elearning/core/factor"
	"github.com/everly/elearning/core/user"
)

var (
	errHttpForbidden = echo.NewHTTPError(
		http.StatusForbidden, "You are not allowed to perform this action.",
	)
	errHttpNotFound = echo.NewHTTPError(
		http.StatusNotFound, "Could not find the requested resource.",
	)
	errHttpUnknown = echo.NewHTTPError(
		http.StatusInternalServerError, "An unknown error occurred, please try again later.",
	)
)

type errorResponse struct {
	Message interface{} `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data,omitempty"`
}

func isNotFound(err error) bool {
	switch err {
	case user.ErrNotFound, course.ErrNotFound, course.ErrRegistrationNotFound, factor.ErrNotFound:
		return true
	}
	return false
}

// newAppHTTPErrorHandler renders every error as a {message, code, data}
// envelope and reports unexpected ones.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		resp := errorResponse{Code: http.StatusInternalServerError, Message: errHttpUnknown.Message}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
				origErr = herr
			}
			resp.Code = origErr.Code
			resp.Message = origErr.Message
			// a missing token is an authentication failure, not a bad request
			if origErr == middleware.ErrJWTMissing {
				resp.Code = http.StatusUnauthorized
			}

		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, fldErr := range origErr {
				fldErrs[fldErr.Field()] = fldErr.Translate(core.Translator)
			}
			resp.Code = http.StatusUnprocessableEntity
			resp.Message = "Invalid inputs passed, please check your data."
			resp.Data = fldErrs

		case *core.ValidationError:
			fldErrs := make(map[string]string, len(origErr.Fields))
			for _, fldErr := range origErr.Fields {
				fldErrs[fldErr.Field] = fldErr.Error
			}
			resp.Code = http.StatusBadRequest
			resp.Message = origErr.Error()
			if len(fldErrs) > 0 {
				resp.Data = fldErrs
			}

		default:
			if isNotFound(errors.Cause(err)) {
				resp.Code = errHttpNotFound.Code
				resp.Message = errHttpNotFound.Message
				break
			}
			if core.IsShutdown(err) {
				logger.Error("shutting down: "+err.Error(), err)
				signalShutdown()
				break
			}
			logger.Error(err.Error(), err)
		}

		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead {
				err = ctx.NoContent(resp.Code)
			} else {
				err = ctx.JSON(resp.Code, resp)
			}
			if err != nil {
				logger.Error(err.Error(), err)
			}
		}
	}
}
