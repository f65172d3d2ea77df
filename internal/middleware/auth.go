package middleware

import (
	"net/http"
	"strings"

	"salepoint/internal/model"
	"salepoint/pkg/database"
	"salepoint/pkg/jwtutil"
	"salepoint/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthMiddleware validates the JWT token and stores the authenticated user
// identity in the request context
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		// Get the Authorization header
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Warn("Missing Authorization header")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
		}

		// Check if it's a Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Invalid Authorization header format")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
		}

		// Validate the token
		claims, err := jwtutil.ValidateToken(parts[1])
		if err != nil {
			log.Error("Invalid JWT token", zap.Error(err))
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		// Store user info in context for later use
		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("user_role", claims.Role)
		if claims.BusinessID != nil {
			c.Set("business_id", *claims.BusinessID)
		}

		return next(c)
	}
}

// RequireRole restricts a route to the given roles. It must run after
// AuthMiddleware.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get("user_role").(model.Role)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
			}
			for _, r := range roles {
				if role == r {
					return next(c)
				}
			}
			logger.FromContext(c).Warn("Insufficient role for route",
				zap.String("role", string(role)),
				zap.String("path", c.Path()))
			return c.JSON(http.StatusForbidden, echo.Map{"error": "insufficient permissions"})
		}
	}
}

// RequireActiveBusiness rejects requests from users whose business is no
// longer ACTIVE, even when their token predates the status change. PENDING
// and INACTIVE are treated alike; only SUSPENDED gets its own message.
// Super admins and unassigned users pass through.
func RequireActiveBusiness(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		businessID, ok := c.Get("business_id").(uint)
		if !ok {
			return next(c)
		}

		var business model.Business
		if err := database.GetDB().First(&business, businessID).Error; err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "business not found"})
		}
		if business.Status == model.BusinessSuspended {
			logger.FromContext(c).Warn("Request from suspended business",
				zap.Uint("business_id", businessID))
			return c.JSON(http.StatusForbidden, echo.Map{"error": "Your business account has been suspended. Please contact support."})
		}
		if !business.IsActive() {
			logger.FromContext(c).Warn("Request from inactive business",
				zap.Uint("business_id", businessID),
				zap.String("status", string(business.Status)))
			return c.JSON(http.StatusForbidden, echo.Map{"error": "Your business account is not active. Please contact support."})
		}

		return next(c)
	}
}

// GetUserIDFromContext retrieves the authenticated user ID from the context
func GetUserIDFromContext(c echo.Context) (uint, bool) {
	userID, ok := c.Get("user_id").(uint)
	return userID, ok
}

// GetBusinessIDFromContext retrieves the business ID from the context.
// Returns 0, false for super admins and unassigned users.
func GetBusinessIDFromContext(c echo.Context) (uint, bool) {
	businessID, ok := c.Get("business_id").(uint)
	return businessID, ok
}

// GetRoleFromContext retrieves the authenticated user's role from the context
func GetRoleFromContext(c echo.Context) (model.Role, bool) {
	role, ok := c.Get("user_role").(model.Role)
	return role, ok
}
