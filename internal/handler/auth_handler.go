package handler

import (
	"net/http"

	"salepoint/internal/lifecycle"
	"salepoint/internal/middleware"
	"salepoint/internal/model"
	"salepoint/pkg/database"
	"salepoint/pkg/jwtutil"
	"salepoint/pkg/logger"
	"salepoint/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	// Parse request
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	ok, message, user := lifecycle.AuthenticateUser(
		database.GetDB(), req.Username, req.Password, c.RealIP(), c.Request().UserAgent())
	if !ok {
		log.Warn("Login rejected", zap.String("username", req.Username), zap.String("reason", message))
		prometheus.RecordAuthError("login_rejected")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": message})
	}

	token, err := jwtutil.GenerateToken(user)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("User logged in",
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)))

	return c.JSON(http.StatusOK, echo.Map{
		"message": message,
		"token":   token,
		"user":    user,
	})
}

// Logout records the logout in the activity trail. Token invalidation is the
// client's responsibility; the server is stateless.
func Logout(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
	}

	username, _ := c.Get("username").(string)
	activity := model.SystemActivity{
		ActivityType: model.ActivityLogout,
		Description:  "User " + username + " logged out",
		UserID:       &userID,
		IPAddress:    c.RealIP(),
		UserAgent:    c.Request().UserAgent(),
	}
	if err := database.GetDB().Create(&activity).Error; err != nil {
		log.Error("Failed to record logout", zap.Error(err))
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out successfully"})
}

// Me returns the authenticated user's profile
func Me(c echo.Context) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
	}

	var user model.User
	if err := database.GetDB().Preload("Business").Preload("Business.License").First(&user, userID).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	return c.JSON(http.StatusOK, user)
}
