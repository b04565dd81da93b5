package middleware

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"microblog/internal/apperr"
	"microblog/internal/models"
	"microblog/internal/service"
)

const userContextKey = "user"

// BasicAuth resolves the request's basic-auth credentials to a principal
// through the query service and stores it on the context. Every credential
// failure, including an unknown username, surfaces as the same 401.
func BasicAuth(svc *service.UserService) echo.MiddlewareFunc {
	return echomw.BasicAuth(func(username, password string, c echo.Context) (bool, error) {
		user, err := svc.Authenticate(c.Request().Context(), username, password)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindUnauthorized {
				return false, nil
			}
			return false, err
		}
		c.Set(userContextKey, user)
		return true, nil
	})
}

// CurrentUser returns the authenticated principal set by BasicAuth, or nil
// on unauthenticated routes.
func CurrentUser(c echo.Context) *models.User {
	user, _ := c.Get(userContextKey).(*models.User)
	return user
}
