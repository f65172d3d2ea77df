package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"salepoint/internal/lifecycle"
	"salepoint/internal/middleware"
	"salepoint/internal/model"
	"salepoint/pkg/config"
	"salepoint/pkg/database"
	"salepoint/pkg/jwtutil"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestServer(t *testing.T) *echo.Echo {
	t.Helper()

	db, err := database.InitTestDB()
	require.NoError(t, err)
	database.DB = db

	jwtutil.Initialize(&config.JWTConfig{
		SigningKey:      "test-signing-key",
		ExpirationHours: 1,
	})

	e := echo.New()
	e.POST("/auth/login", Login)

	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware)
	api.Use(middleware.RequireActiveBusiness)
	api.GET("/me", Me)
	api.GET("/businesses", ListBusinesses, middleware.RequireRole(model.RoleSuperAdmin))
	api.GET("/products", ListProducts,
		middleware.RequireRole(model.RoleBusinessAdmin, model.RoleCashier, model.RoleStaff))
	return e
}

func createAccount(t *testing.T, username string, role model.Role, businessID *uint) {
	t.Helper()
	ok, message, _, _ := lifecycle.CreateUser(database.GetDB(), lifecycle.CreateUserInput{
		Username:   username,
		Email:      username + "@example.com",
		Password:   "secret123",
		Role:       role,
		BusinessID: businessID,
	}, nil)
	require.True(t, ok, message)
}

func doLogin(t *testing.T, e *echo.Echo, username, password string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func loginToken(t *testing.T, e *echo.Echo, username, password string) string {
	t.Helper()
	rec := doLogin(t, e, username, password)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func authedRequest(e *echo.Echo, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestLogin(t *testing.T) {
	e := setupTestServer(t)
	createAccount(t, "root", model.RoleSuperAdmin, nil)

	rec := doLogin(t, e, "root", "wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid username or password")

	rec = doLogin(t, e, "ghost", "secret123")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid username or password")

	token := loginToken(t, e, "root", "secret123")
	rec = authedRequest(e, http.MethodGet, "/api/me", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"root"`)
}

func TestAuthMiddlewareRejectsBadTokens(t *testing.T) {
	e := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = authedRequest(e, http.MethodGet, "/api/me", "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoleGate(t *testing.T) {
	e := setupTestServer(t)
	createAccount(t, "root", model.RoleSuperAdmin, nil)

	ok, message, business, _ := lifecycle.RegisterBusiness(database.GetDB(), lifecycle.RegisterBusinessInput{
		BusinessName:  "Shop",
		Email:         "shop@example.com",
		AdminUsername: "shopadmin",
		AdminEmail:    "sa@example.com",
		LicenseTier:   model.TierBasic,
		DurationDays:  30,
	}, nil)
	require.True(t, ok, message)
	createAccount(t, "cashier", model.RoleCashier, &business.ID)

	rootToken := loginToken(t, e, "root", "secret123")
	cashierToken := loginToken(t, e, "cashier", "secret123")

	// Super admin route rejects the cashier
	rec := authedRequest(e, http.MethodGet, "/api/businesses", cashierToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = authedRequest(e, http.MethodGet, "/api/businesses", rootToken)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Tenant route rejects the super admin
	rec = authedRequest(e, http.MethodGet, "/api/products", rootToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = authedRequest(e, http.MethodGet, "/api/products", cashierToken)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSuspensionRevokesIssuedTokens(t *testing.T) {
	e := setupTestServer(t)

	ok, message, business, password := lifecycle.RegisterBusiness(database.GetDB(), lifecycle.RegisterBusinessInput{
		BusinessName:  "Shop",
		Email:         "shop@example.com",
		AdminUsername: "shopadmin",
		AdminEmail:    "sa@example.com",
		LicenseTier:   model.TierBasic,
		DurationDays:  30,
	}, nil)
	require.True(t, ok, message)

	token := loginToken(t, e, "shopadmin", password)
	rec := authedRequest(e, http.MethodGet, "/api/me", token)
	require.Equal(t, http.StatusOK, rec.Code)

	// The token stays cryptographically valid; suspension blocks per request
	ok, _ = lifecycle.SuspendBusiness(database.GetDB(), business.ID, "unpaid", nil)
	require.True(t, ok)

	rec = authedRequest(e, http.MethodGet, "/api/me", token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "suspended")

	// New logins are rejected outright
	rec = doLogin(t, e, "shopadmin", password)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestInactiveBusinessBlocksRequests(t *testing.T) {
	e := setupTestServer(t)

	ok, message, business, password := lifecycle.RegisterBusiness(database.GetDB(), lifecycle.RegisterBusinessInput{
		BusinessName:  "Shop",
		Email:         "shop@example.com",
		AdminUsername: "shopadmin",
		AdminEmail:    "sa@example.com",
		LicenseTier:   model.TierBasic,
		DurationDays:  30,
	}, nil)
	require.True(t, ok, message)

	token := loginToken(t, e, "shopadmin", password)
	rec := authedRequest(e, http.MethodGet, "/api/me", token)
	require.Equal(t, http.StatusOK, rec.Code)

	// Any non-ACTIVE status revokes access, not just SUSPENDED
	for _, status := range []model.BusinessStatus{model.BusinessInactive, model.BusinessPending} {
		require.NoError(t, database.GetDB().Model(&model.Business{}).
			Where("id = ?", business.ID).Update("status", status).Error)

		rec = authedRequest(e, http.MethodGet, "/api/me", token)
		assert.Equal(t, http.StatusForbidden, rec.Code, "status %s", status)
		assert.Contains(t, rec.Body.String(), "not active")
	}

	require.NoError(t, database.GetDB().Model(&model.Business{}).
		Where("id = ?", business.ID).Update("status", model.BusinessActive).Error)
	rec = authedRequest(e, http.MethodGet, "/api/me", token)
	assert.Equal(t, http.StatusOK, rec.Code)
}
