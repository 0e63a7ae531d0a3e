// Package handler provides HTTP handlers for API endpoints.
package handler

import (
	"errors"
	"net/http"

	"moodchat/internal/services"
	"moodchat/internal/transport/httpdto"
	moodchat_errors "moodchat/pkg/errors"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication HTTP endpoints.
type AuthHandler struct {
	service *services.AuthService
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(service *services.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Register handles user registration.
func (h *AuthHandler) Register(c *gin.Context) {
	var req httpdto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	res, err := h.service.Register(c.Request.Context(), services.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.AuthResponse{
		Token:     res.Token,
		ExpiresIn: res.ExpiresIn,
		User:      httpdto.NewUserView(res.User),
	}))
}

// Login handles user authentication.
func (h *AuthHandler) Login(c *gin.Context) {
	var req httpdto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	res, err := h.service.Login(c.Request.Context(), services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.AuthResponse{
		Token:     res.Token,
		ExpiresIn: res.ExpiresIn,
		User:      httpdto.NewUserView(res.User),
	}))
}

// Logout handles user logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	if err := h.service.Logout(c.Request.Context(), userID); err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

func writeServiceError(c *gin.Context, err error) {
	status := httpStatus(err)
	c.JSON(status, httpdto.NewErrorResponse(err.Error(), statusCode(status)))
}

func httpStatus(err error) int {
	switch {
	case errors.Is(err, moodchat_errors.ErrInvalidInput),
		errors.Is(err, moodchat_errors.ErrEmptyMessage):
		return http.StatusBadRequest
	case errors.Is(err, moodchat_errors.ErrUnauthorized),
		errors.Is(err, moodchat_errors.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, moodchat_errors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, moodchat_errors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, moodchat_errors.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, moodchat_errors.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func statusCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "INVALID_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusConflict:
		return "CONFLICT"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	default:
		return "INTERNAL_ERROR"
	}
}
