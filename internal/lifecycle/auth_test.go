package lifecycle

import (
	"testing"

	"salepoint/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticateUserUnknownAndWrongPasswordLookAlike(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "known", "known@example.com", model.RoleStaff)

	ok, message, user := AuthenticateUser(db, "nobody", "whatever", "", "")
	assert.False(t, ok)
	assert.Nil(t, user)
	assert.Equal(t, "Invalid username or password", message)

	ok, wrongPw, _ := AuthenticateUser(db, "known", "wrong", "", "")
	assert.False(t, ok)
	assert.Equal(t, message, wrongPw)
}

func TestAuthenticateUserSuccess(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "known", "known@example.com", model.RoleStaff)

	ok, message, user := AuthenticateUser(db, "known", "secret123", "10.0.0.9", "test-agent")
	require.True(t, ok, message)
	require.NotNil(t, user)

	// Login stamps metadata and leaves an audit record
	var got model.User
	require.NoError(t, db.First(&got, user.ID).Error)
	require.NotNil(t, got.LastLoginAt)
	assert.Equal(t, "10.0.0.9", got.LastLoginIP)

	var activity model.SystemActivity
	require.NoError(t, db.Where("activity_type = ?", model.ActivityLogin).First(&activity).Error)
	assert.Equal(t, "10.0.0.9", activity.IPAddress)
	assert.Equal(t, "test-agent", activity.UserAgent)
}

func TestAuthenticateUserDisabledAccount(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "dormant", "dormant@example.com", model.RoleStaff)
	require.NoError(t, db.Model(user).Update("is_active", false).Error)

	ok, message, _ := AuthenticateUser(db, "dormant", "secret123", "", "")
	assert.False(t, ok)
	assert.Equal(t, "Your account is disabled. Please contact your administrator.", message)
}

func TestAuthenticateUserSuspendedBusinessWins(t *testing.T) {
	db := newTestDB(t)
	business, password := registerTestBusiness(t, db, "Shop", "shop@example.com", "shopadmin", "sa@example.com")

	ok, _, _ := AuthenticateUser(db, "shopadmin", password, "", "")
	require.True(t, ok)

	ok, _ = SuspendBusiness(db, business.ID, "unpaid", nil)
	require.True(t, ok)

	// Suspension blocks the login even though the account itself is active
	ok, message, _ := AuthenticateUser(db, "shopadmin", password, "", "")
	assert.False(t, ok)
	assert.Equal(t, "Your business account has been suspended. Please contact support.", message)

	// Suspension takes precedence over the disabled-account message too
	require.NoError(t, db.Model(&model.User{}).
		Where("username = ?", "shopadmin").Update("is_active", false).Error)
	ok, stillSuspended, _ := AuthenticateUser(db, "shopadmin", password, "", "")
	assert.False(t, ok)
	assert.Equal(t, message, stillSuspended)

	// Lifting the suspension restores access for re-enabled accounts
	require.NoError(t, db.Model(&model.User{}).
		Where("username = ?", "shopadmin").Update("is_active", true).Error)
	ok, _ = ActivateBusiness(db, business.ID, nil)
	require.True(t, ok)
	ok, _, _ = AuthenticateUser(db, "shopadmin", password, "", "")
	assert.True(t, ok)
}

func TestAuthenticateUserExpiredDemo(t *testing.T) {
	db := newTestDB(t)

	ok, message, business, password := RegisterBusiness(db, RegisterBusinessInput{
		BusinessName:  "Trial Shop",
		Email:         "trial@example.com",
		AdminUsername: "trialadmin",
		AdminEmail:    "ta@example.com",
		LicenseTier:   model.TierDemo,
		DurationDays:  14,
	}, nil)
	require.True(t, ok, message)

	// Demo registration stamps the trial window from the license
	require.NotNil(t, business.DemoExpiryDate)
	assert.Equal(t, model.Today().AddDate(0, 0, 14).Format("2006-01-02"),
		business.DemoExpiryDate.Format("2006-01-02"))

	// Within the window the trial behaves like any account
	ok, _, _ = AuthenticateUser(db, "trialadmin", password, "", "")
	require.True(t, ok)

	lapsed := model.Today().AddDate(0, 0, -1)
	require.NoError(t, db.Model(&model.Business{}).
		Where("id = ?", business.ID).Update("demo_expiry_date", lapsed).Error)

	ok, rejection, _ := AuthenticateUser(db, "trialadmin", password, "", "")
	assert.False(t, ok)
	assert.Equal(t, "Your demo period has expired. Please contact support to upgrade.", rejection)
}

func TestGeneratePassword(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		p, err := GeneratePassword(12)
		require.NoError(t, err)
		assert.Len(t, p, 12)
		assert.False(t, seen[p], "generated passwords should not repeat")
		seen[p] = true
	}
}
