package echoapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/everly/elearning/core"
	"github.com/everly/elearning/core/user"
)

const jwtContextKey = "userToken"

var errInvalidCredentials = echo.NewHTTPError(
	http.StatusUnauthorized, "Invalid credentials, could not log you in.",
)

// Claims are the session token claims. Subject carries the user's id.
type Claims struct {
	jwt.StandardClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		Claims:     &Claims{},
		ContextKey: jwtContextKey,
		SigningKey: conf.SecretKey,
	}
}

// GetUserClaims builds the session claims for usr.
func GetUserClaims(usr user.User, conf *core.Config) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:   usr.ID.Hex(),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
		},
		Email: usr.Email,
		Role:  usr.Role,
	}
}

// GenerateToken signs claims into a token string.
func GenerateToken(claims *Claims, conf *core.Config) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(conf.SecretKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return signed, nil
}

// authenticate checks the credentials against the user store. An unknown
// email and a wrong password fail identically so the response does not
// reveal which accounts exist.
func authenticate(ctx context.Context, email, pwd string, svc *user.Service, conf *core.Config) (*Claims, error) {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		if err == user.ErrNotFound {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return nil, errInvalidCredentials
	}
	return GetUserClaims(usr, conf), nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	token, ok := ctx.Get(jwtContextKey).(*jwt.Token)
	if !ok {
		return Claims{}, errors.New("no token found in context")
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return Claims{}, errors.New("unexpected token claims")
	}
	return *claims, nil
}

func getContextUserID(ctx echo.Context) (primitive.ObjectID, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return primitive.NilObjectID, errors.Wrap(err, "parsing token subject")
	}
	return id, nil
}
