package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ajudi46/expense-tracker-server/internal/apperrors"
	portssvc "github.com/ajudi46/expense-tracker-server/internal/core/ports/services"
	"github.com/ajudi46/expense-tracker-server/internal/dto"
	"github.com/ajudi46/expense-tracker-server/internal/middleware"
	"github.com/gin-gonic/gin"
)

type userHandler struct {
	userService portssvc.UserSvcFacade
}

// registerUserRoutes registers routes related to the signed-in user.
func registerUserRoutes(rg *gin.RouterGroup, userService portssvc.UserSvcFacade) {
	h := &userHandler{userService: userService}

	users := rg.Group("/users")
	{
		users.GET("/me", h.currentUser)
		users.POST("/signout", h.signOut)
	}
}

func (h *userHandler) currentUser(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	user, err := h.userService.CurrentUser(c.Request.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotSignedIn) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No user is signed in"})
			return
		}
		logger.Error("Failed to get current user", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		return
	}

	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

func (h *userHandler) signOut(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	if err := h.userService.SignOut(c.Request.Context()); err != nil {
		logger.Error("Failed to sign out", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign out"})
		return
	}

	c.Status(http.StatusNoContent)
}
