package staff_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"rental-backend/internal/accounts"
	"rental-backend/internal/audit"
	"rental-backend/internal/httpx"
	"rental-backend/internal/models"
	"rental-backend/internal/staff"
	"rental-backend/internal/store"
	"rental-backend/internal/testutil"
	"rental-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*testutil.Fixtures, *staff.Service) {
	f := testutil.Seed(t)
	return f, staff.NewService(store.New(f.DB), accounts.NewProvisioner(bcrypt.MinCost))
}

func input(f *testutil.Fixtures, email, password string) staff.EmployeeInput {
	return staff.EmployeeInput{
		FullName: "Петров Пётр",
		Passport: "4510123456",
		RoleID:   f.AdminRole.ID,
		BranchID: f.Branch.ID,
		Phone:    "+79990000000",
		Email:    email,
		Password: password,
	}
}

func credential(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	var u models.User
	err := db.Where("username = ?", username).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	require.NoError(t, err)
	return &u
}

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestCreate_RequiresPassword(t *testing.T) {
	f, svc := setup(t)

	_, err := svc.Create(context.Background(), audit.Actor{}, input(f, "petrov@example.com", " "))
	ve, ok := validation.As(err)
	require.True(t, ok, "%v", err)
	assert.Equal(t, accounts.MsgPasswordRequired, ve["password"])
	assert.Zero(t, count(t, f.DB, &models.Employee{}))
	assert.Zero(t, count(t, f.DB, &models.User{}))
}

func TestCreate_ProvisionsCredential(t *testing.T) {
	f, svc := setup(t)

	e, err := svc.Create(context.Background(), audit.Actor{}, input(f, " Petrov@Example.com", "s3cret"))
	require.NoError(t, err)
	require.NotNil(t, e.Role)
	assert.Equal(t, "Администратор", e.Role.Name)

	u := credential(t, f.DB, "petrov@example.com")
	require.NotNil(t, u)
	assert.True(t, u.IsStaff)
	assert.True(t, u.IsActive)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret")))
}

func TestCreate_EmailUniqueIgnoringCase(t *testing.T) {
	f, svc := setup(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, audit.Actor{}, input(f, "petrov@example.com", "s3cret"))
	require.NoError(t, err)

	in := input(f, "PETROV@example.com", "s3cret")
	in.Passport = "4510999999"
	_, err = svc.Create(ctx, audit.Actor{}, in)
	ve, ok := validation.As(err)
	require.True(t, ok)
	assert.Equal(t, staff.MsgEmailTaken, ve["email"])
	assert.Equal(t, int64(1), count(t, f.DB, &models.User{}))
}

func TestUpdate_MovesCredential(t *testing.T) {
	f, svc := setup(t)
	ctx := context.Background()
	e, err := svc.Create(ctx, audit.Actor{}, input(f, "petrov@example.com", "s3cret"))
	require.NoError(t, err)
	oldHash := credential(t, f.DB, "petrov@example.com").PasswordHash

	in := input(f, "p.petrov@example.com", "")
	in.RoleID = f.ManagerRole.ID
	_, err = svc.Update(ctx, audit.Actor{}, e.ID, in)
	require.NoError(t, err)

	assert.Nil(t, credential(t, f.DB, "petrov@example.com"))
	u := credential(t, f.DB, "p.petrov@example.com")
	require.NotNil(t, u)
	assert.False(t, u.IsStaff)
	assert.Equal(t, oldHash, u.PasswordHash)
	assert.Equal(t, int64(1), count(t, f.DB, &models.User{}))

	// same email, new password
	in.Password = "n3w-pass"
	_, err = svc.Update(ctx, audit.Actor{}, e.ID, in)
	require.NoError(t, err)
	u = credential(t, f.DB, "p.petrov@example.com")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("n3w-pass")))
}

func TestUpdate_AdoptsStandaloneCredential(t *testing.T) {
	f, svc := setup(t)
	ctx := context.Background()
	e, err := svc.Create(ctx, audit.Actor{}, input(f, "petrov@example.com", "s3cret"))
	require.NoError(t, err)

	// a standalone login, e.g. created from the command line
	root := models.User{Username: "root@example.com", Email: "root@example.com", PasswordHash: "x", IsActive: true, IsStaff: true}
	require.NoError(t, f.DB.Create(&root).Error)

	in := input(f, "root@example.com", "n3w-pass")
	in.RoleID = f.ManagerRole.ID
	_, err = svc.Update(ctx, audit.Actor{}, e.ID, in)
	require.NoError(t, err)

	assert.Nil(t, credential(t, f.DB, "petrov@example.com"))
	u := credential(t, f.DB, "root@example.com")
	require.NotNil(t, u)
	assert.Equal(t, root.ID, u.ID)
	assert.False(t, u.IsStaff)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("n3w-pass")))
	assert.Equal(t, int64(1), count(t, f.DB, &models.User{}))
}

func TestDelete_RemovesCredential(t *testing.T) {
	f, svc := setup(t)
	ctx := context.Background()
	e, err := svc.Create(ctx, audit.Actor{}, input(f, "petrov@example.com", "s3cret"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, audit.Actor{}, e.ID))
	assert.Zero(t, count(t, f.DB, &models.Employee{}))
	assert.Nil(t, credential(t, f.DB, "petrov@example.com"))
}

func TestDelete_AfterEmailChangeRemovesCurrentCredential(t *testing.T) {
	f, svc := setup(t)
	ctx := context.Background()
	e, err := svc.Create(ctx, audit.Actor{}, input(f, "petrov@example.com", "s3cret"))
	require.NoError(t, err)

	_, err = svc.Update(ctx, audit.Actor{}, e.ID, input(f, "Petrov.New@example.com", ""))
	require.NoError(t, err)
	require.NotNil(t, credential(t, f.DB, "petrov.new@example.com"))

	require.NoError(t, svc.Delete(ctx, audit.Actor{}, e.ID))
	assert.Nil(t, credential(t, f.DB, "petrov@example.com"))
	assert.Nil(t, credential(t, f.DB, "petrov.new@example.com"))
	assert.Zero(t, count(t, f.DB, &models.User{}))
	assert.Zero(t, count(t, f.DB, &models.Employee{}))
}

func TestCreate_AdoptsStandaloneCredential(t *testing.T) {
	f, svc := setup(t)
	ctx := context.Background()

	root := models.User{Username: "root@example.com", Email: "root@example.com", PasswordHash: "x", IsActive: true, IsStaff: true}
	require.NoError(t, f.DB.Create(&root).Error)

	in := input(f, "Root@example.com", "s3cret")
	in.RoleID = f.ManagerRole.ID
	_, err := svc.Create(ctx, audit.Actor{}, in)
	require.NoError(t, err)

	u := credential(t, f.DB, "root@example.com")
	require.NotNil(t, u)
	assert.Equal(t, root.ID, u.ID)
	assert.False(t, u.IsStaff)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret")))
	assert.Equal(t, int64(1), count(t, f.DB, &models.User{}))
}

func TestCreate_CredentialConstraintIsConflict(t *testing.T) {
	f, svc := setup(t)
	ctx := context.Background()

	// another credential already stores this address in a unique column
	require.NoError(t, f.DB.Exec("CREATE UNIQUE INDEX idx_auth_users_email ON auth_users(email)").Error)
	require.NoError(t, f.DB.Create(&models.User{
		Username: "legacy", Email: "petrov@example.com", PasswordHash: "x", IsActive: true,
	}).Error)

	_, err := svc.Create(ctx, audit.Actor{}, input(f, "petrov@example.com", "s3cret"))
	assert.ErrorIs(t, err, store.ErrDuplicate)
	_, isValidation := validation.As(err)
	assert.False(t, isValidation)
	assert.Zero(t, count(t, f.DB, &models.Employee{}))
}

func TestDelete_RollsBackWhenCredentialCannotBeRemoved(t *testing.T) {
	f, svc := setup(t)
	ctx := context.Background()
	e, err := svc.Create(ctx, audit.Actor{}, input(f, "petrov@example.com", "s3cret"))
	require.NoError(t, err)

	require.NoError(t, f.DB.Exec(`CREATE TRIGGER keep_credentials BEFORE DELETE ON auth_users
		BEGIN SELECT RAISE(ABORT, 'credential is locked'); END`).Error)

	err = svc.Delete(ctx, audit.Actor{}, e.ID)
	require.Error(t, err)
	assert.Equal(t, int64(1), count(t, f.DB, &models.Employee{}))
	assert.NotNil(t, credential(t, f.DB, "petrov@example.com"))

	var deletes int64
	require.NoError(t, f.DB.Model(&models.AuditLog{}).Where("action = ?", models.AuditActionDelete).Count(&deletes).Error)
	assert.Zero(t, deletes)
}

func TestHandlers(t *testing.T) {
	f, svc := setup(t)
	app := fiber.New(fiber.Config{ErrorHandler: httpx.ErrorHandler(zap.NewNop())})
	app.Post("/employees", staff.CreateEmployeeHandler(svc))
	app.Get("/employees", staff.ListEmployeesHandler(store.New(f.DB)))

	req := httptest.NewRequest("POST", "/employees", strings.NewReader(`{"full_name":"Петров Пётр",
		"passport":"4510123456","role_id":1,"branch_id":1,"phone":"+79990000000","email":"petrov@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 422, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/employees", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}
