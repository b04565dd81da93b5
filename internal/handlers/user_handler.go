package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"microblog/internal/apperr"
	"microblog/internal/middleware"
	"microblog/internal/models"
	"microblog/internal/service"
)

const (
	defaultPage     = 0
	defaultPageSize = 10
)

// UserHandler handles user, tweet and feed HTTP requests.
type UserHandler struct {
	service *service.UserService
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{service: svc}
}

// RegisterUserRoutes registers the authenticated /users routes.
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("", h.GetUsers)
	g.GET("/me", h.GetMe)
	g.GET("/me/feed", h.GetFeed)
	g.GET("/me/tweets", h.GetTweets)
	g.GET("/me/followers", h.GetFollowers)
	g.GET("/me/followings", h.GetFollowings)
	g.GET("/:username", h.GetUserByUsername)
}

// RegisterPublicRoutes registers routes that need no principal.
func (h *UserHandler) RegisterPublicRoutes(e *echo.Echo) {
	e.POST("/login", h.Login)
}

// bindPage parses page/pageSize query parameters, applying the defaults
// 0/10. Range checks are left to the service so the rules live in one
// place.
func bindPage(c echo.Context) (int, int, error) {
	page, pageSize := defaultPage, defaultPageSize
	if raw := c.QueryParam("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, apperr.Validation("page must be an integer, got %q", raw)
		}
		page = n
	}
	if raw := c.QueryParam("pageSize"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, apperr.Validation("pageSize must be an integer, got %q", raw)
		}
		pageSize = n
	}
	return page, pageSize, nil
}

// httpError maps a classified failure onto a transport status. Anything
// unclassified is a 500 with no internal detail.
func httpError(err error) *echo.HTTPError {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case apperr.KindUnauthorized:
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case apperr.KindValidation:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

// GetUsers returns all users, paginated.
func (h *UserHandler) GetUsers(c echo.Context) error {
	page, pageSize, err := bindPage(c)
	if err != nil {
		return httpError(err)
	}
	users, err := h.service.GetUsers(c.Request().Context(), page, pageSize)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, users)
}

// GetMe returns the authenticated principal's profile.
func (h *UserHandler) GetMe(c echo.Context) error {
	return c.JSON(http.StatusOK, middleware.CurrentUser(c))
}

// GetUserByUsername returns a profile by username.
func (h *UserHandler) GetUserByUsername(c echo.Context) error {
	user, err := h.service.GetUserByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// GetFeed returns the principal's feed, newest first.
func (h *UserHandler) GetFeed(c echo.Context) error {
	page, pageSize, err := bindPage(c)
	if err != nil {
		return httpError(err)
	}
	feed, err := h.service.GetFeed(c.Request().Context(), middleware.CurrentUser(c).Username, page, pageSize)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, feed)
}

// GetTweets returns the principal's own tweets.
func (h *UserHandler) GetTweets(c echo.Context) error {
	page, pageSize, err := bindPage(c)
	if err != nil {
		return httpError(err)
	}
	tweets, err := h.service.GetTweets(c.Request().Context(), middleware.CurrentUser(c).Username, page, pageSize)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, tweets)
}

// GetFollowers returns the principal's followers.
func (h *UserHandler) GetFollowers(c echo.Context) error {
	page, pageSize, err := bindPage(c)
	if err != nil {
		return httpError(err)
	}
	followers, err := h.service.GetFollowers(c.Request().Context(), middleware.CurrentUser(c).Username, page, pageSize)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, followers)
}

// GetFollowings returns the accounts the principal follows.
func (h *UserHandler) GetFollowings(c echo.Context) error {
	page, pageSize, err := bindPage(c)
	if err != nil {
		return httpError(err)
	}
	followings, err := h.service.GetFollowings(c.Request().Context(), middleware.CurrentUser(c).Username, page, pageSize)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, followings)
}

// Login authenticates and returns the user's feed page. Unknown usernames
// and wrong passwords produce the identical 401.
func (h *UserHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	page, pageSize, err := bindPage(c)
	if err != nil {
		return httpError(err)
	}
	feed, err := h.service.Login(c.Request().Context(), req.Username, req.Password, page, pageSize)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, feed)
}
