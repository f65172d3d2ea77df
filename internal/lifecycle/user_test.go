package lifecycle

import (
	"testing"

	"salepoint/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func createTestUser(t *testing.T, db *gorm.DB, username, email string, role model.Role) *model.User {
	t.Helper()
	ok, message, user, _ := CreateUser(db, CreateUserInput{
		Username: username,
		Email:    email,
		Password: "secret123",
		Role:     role,
	}, nil)
	require.True(t, ok, message)
	return user
}

func TestCreateUserGeneratesPassword(t *testing.T) {
	db := newTestDB(t)

	ok, message, user, generated := CreateUser(db, CreateUserInput{
		Username: "cashier1",
		Email:    "cashier1@example.com",
		Role:     model.RoleCashier,
	}, nil)
	require.True(t, ok, message)
	assert.Len(t, generated, 12)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(generated)))

	// Supplied passwords are not echoed back
	_, _, _, generated = CreateUser(db, CreateUserInput{
		Username: "cashier2",
		Email:    "cashier2@example.com",
		Password: "mysecret",
		Role:     model.RoleCashier,
	}, nil)
	assert.Empty(t, generated)

	assert.EqualValues(t, 2, activityCount(t, db, model.ActivityUserCreated))
}

func TestCreateUserDuplicates(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "taken", "taken@example.com", model.RoleStaff)

	ok, message, _, _ := CreateUser(db, CreateUserInput{
		Username: "taken",
		Email:    "other@example.com",
		Role:     model.RoleStaff,
	}, nil)
	assert.False(t, ok)
	assert.Equal(t, "Username already exists", message)

	ok, message, _, _ = CreateUser(db, CreateUserInput{
		Username: "other",
		Email:    "taken@example.com",
		Role:     model.RoleStaff,
	}, nil)
	assert.False(t, ok)
	assert.Equal(t, "Email already exists", message)

	// Failed attempts leave no audit entries behind
	assert.EqualValues(t, 1, activityCount(t, db, model.ActivityUserCreated))
}

func TestCreateUserSkipsMissingBusiness(t *testing.T) {
	db := newTestDB(t)

	missing := uint(999)
	ok, message, user, _ := CreateUser(db, CreateUserInput{
		Username:   "floating",
		Email:      "floating@example.com",
		Role:       model.RoleStaff,
		BusinessID: &missing,
	}, nil)
	require.True(t, ok, message)
	assert.Nil(t, user.BusinessID)
}

func TestCreateUserSuperAdminForcedToEnterprise(t *testing.T) {
	db := newTestDB(t)

	_, _, user, _ := CreateUser(db, CreateUserInput{
		Username:    "root2",
		Email:       "root2@example.com",
		Role:        model.RoleSuperAdmin,
		LicenseTier: model.TierDemo,
	}, nil)
	require.NotNil(t, user)
	assert.Equal(t, model.TierEnterprise, user.LicenseTier)
}

func TestUpdateUserMissingBusinessFailsWholeUpdate(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "worker", "worker@example.com", model.RoleStaff)

	newName := "Renamed"
	missing := uint(999)
	ok, message := UpdateUser(db, user.ID, UpdateUserInput{
		FirstName:   &newName,
		BusinessSet: true,
		BusinessID:  &missing,
	}, nil)
	require.False(t, ok)
	assert.Equal(t, "Business not found", message)

	// No partial application: the name change rolled back too
	var got model.User
	require.NoError(t, db.First(&got, user.ID).Error)
	assert.Empty(t, got.FirstName)
}

func TestUpdateUserPartial(t *testing.T) {
	db := newTestDB(t)
	business, _ := registerTestBusiness(t, db, "Shop", "shop@example.com", "admin", "a@example.com")
	user := createTestUser(t, db, "worker", "worker@example.com", model.RoleStaff)

	first := "Jo"
	ok, message := UpdateUser(db, user.ID, UpdateUserInput{
		FirstName:   &first,
		BusinessSet: true,
		BusinessID:  &business.ID,
	}, nil)
	require.True(t, ok, message)

	var got model.User
	require.NoError(t, db.First(&got, user.ID).Error)
	assert.Equal(t, "Jo", got.FirstName)
	require.NotNil(t, got.BusinessID)
	assert.Equal(t, business.ID, *got.BusinessID)
	assert.Equal(t, "worker", got.Username)

	// Clearing the association with an explicit null
	ok, _ = UpdateUser(db, user.ID, UpdateUserInput{BusinessSet: true}, nil)
	require.True(t, ok)
	require.NoError(t, db.First(&got, user.ID).Error)
	assert.Nil(t, got.BusinessID)
}

func TestUpdateUserDuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "first", "first@example.com", model.RoleStaff)
	second := createTestUser(t, db, "second", "second@example.com", model.RoleStaff)

	taken := "first"
	ok, message := UpdateUser(db, second.ID, UpdateUserInput{Username: &taken}, nil)
	assert.False(t, ok)
	assert.Equal(t, "Username already exists", message)

	// Saving your own unchanged username is fine
	same := "second"
	ok, _ = UpdateUser(db, second.ID, UpdateUserInput{Username: &same}, nil)
	assert.True(t, ok)
}

func TestDeactivateUserSelfGuard(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "worker", "worker@example.com", model.RoleStaff)

	ok, message := DeactivateUser(db, user.ID, user.ID)
	assert.False(t, ok)
	assert.Equal(t, "Cannot deactivate your own account", message)

	admin := createTestUser(t, db, "boss", "boss@example.com", model.RoleSuperAdmin)
	ok, _ = DeactivateUser(db, user.ID, admin.ID)
	require.True(t, ok)

	var got model.User
	require.NoError(t, db.First(&got, user.ID).Error)
	assert.False(t, got.IsActive)

	ok, _ = ActivateUser(db, user.ID, admin.ID)
	require.True(t, ok)
	require.NoError(t, db.First(&got, user.ID).Error)
	assert.True(t, got.IsActive)
}

func TestDeleteUserGuards(t *testing.T) {
	db := newTestDB(t)
	root := createTestUser(t, db, "root", "root@example.com", model.RoleSuperAdmin)
	worker := createTestUser(t, db, "worker", "worker@example.com", model.RoleStaff)

	// Self deletion
	ok, message := DeleteUser(db, root.ID, root.ID)
	assert.False(t, ok)
	assert.Equal(t, "Cannot delete your own account", message)

	// The only super admin is protected even against another caller
	ok, message = DeleteUser(db, root.ID, worker.ID)
	assert.False(t, ok)
	assert.Equal(t, "Cannot delete the only super admin", message)

	// With a second super admin the first may go
	second := createTestUser(t, db, "root2", "root2@example.com", model.RoleSuperAdmin)
	ok, message = DeleteUser(db, root.ID, second.ID)
	require.True(t, ok, message)

	var count int64
	require.NoError(t, db.Model(&model.User{}).Where("username = ?", "root").Count(&count).Error)
	assert.Zero(t, count)

	// The audit record keeps the username of the deleted account
	var activity model.SystemActivity
	require.NoError(t, db.Where("activity_type = ?", model.ActivityUserDeleted).First(&activity).Error)
	assert.Equal(t, "root", activity.Data["username"])
}

func TestResetPassword(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "boss", "boss@example.com", model.RoleSuperAdmin)
	user := createTestUser(t, db, "worker", "worker@example.com", model.RoleStaff)

	ok, message, newPassword := ResetPassword(db, user.ID, admin.ID)
	require.True(t, ok, message)
	assert.Len(t, newPassword, 12)

	var got model.User
	require.NoError(t, db.First(&got, user.ID).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(got.Password), []byte(newPassword)))

	// The old password no longer works
	ok, _, _ = AuthenticateUser(db, "worker", "secret123", "", "")
	assert.False(t, ok)
	ok, _, _ = AuthenticateUser(db, "worker", newPassword, "", "")
	assert.True(t, ok)
}
