package echoapi

import (
	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/everly/elearning/core"
	"github.com/everly/elearning/core/user"
)

const objectContextKey = "object"

// adminMiddleware restricts a route to admins.
func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			if claims.Role != user.RoleAdmin {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}

// selfOrAdminMiddleware restricts a `:uid` route to the user themselves
// or an admin, loading the target user into the context as "object".
func selfOrAdminMiddleware(svc *user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}

			uid := ctx.Param("uid")
			if claims.Subject != uid && claims.Role != user.RoleAdmin {
				return errHttpForbidden
			}

			id, err := primitive.ObjectIDFromHex(uid)
			if err != nil {
				return errHttpNotFound
			}
			usr, err := svc.GetByID(ctx.Request().Context(), id)
			if err != nil {
				if err == user.ErrNotFound {
					return errHttpNotFound
				}
				return err
			}

			ctx.Set(objectContextKey, usr)
			return next(ctx)
		}
	}
}

func getContextUser(ctx echo.Context) (user.User, error) {
	usr, ok := ctx.Get(objectContextKey).(user.User)
	if !ok {
		return user.User{}, errHttpNotFound
	}
	return usr, nil
}

// decodeTokenMiddleware parses the Authorization token when one is
// present but never rejects the request. Anonymous access stays allowed.
func decodeTokenMiddleware(conf *core.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			auth := ctx.Request().Header.Get(echo.HeaderAuthorization)
			if len(auth) > len("Bearer ") {
				raw := auth[len("Bearer "):]
				token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
					return conf.SecretKey, nil
				})
				if err == nil && token.Valid {
					ctx.Set(jwtContextKey, token)
				}
			}
			return next(ctx)
		}
	}
}
