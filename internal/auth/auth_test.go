package auth_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rental-backend/internal/accounts"
	"rental-backend/internal/auth"
	"rental-backend/internal/models"
	"rental-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const secret = "0123456789abcdef0123456789abcdef"

func newUser(t *testing.T, db *gorm.DB, email, password string, staff, active bool) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := models.User{
		Username:     models.NormalizeEmail(email),
		Email:        models.NormalizeEmail(email),
		PasswordHash: string(hash),
		IsActive:     true,
		IsStaff:      staff,
	}
	require.NoError(t, db.Create(&u).Error)
	if !active {
		// gorm skips zero values on create, so deactivate explicitly
		require.NoError(t, db.Model(&u).Update("is_active", false).Error)
	}
	return u
}

func newApp(t *testing.T) (*fiber.App, *auth.Service) {
	db := testutil.NewDB(t)
	s := &auth.Service{
		DB:       db,
		Sessions: auth.NewDBStore(db),
		Secret:   secret,
		TTL:      time.Hour,
	}

	app := fiber.New()
	app.Post("/api/auth/login", auth.LoginHandler(s))
	api := app.Group("/api", auth.Middleware(s))
	api.Post("/auth/logout", auth.LogoutHandler(s))
	api.Get("/auth/me", auth.MeHandler(s))
	api.Delete("/branches/:id", auth.RequireStaff(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app, s
}

func login(t *testing.T, app *fiber.App, email, password string) (*http.Response, string) {
	t.Helper()
	body := `{"email":"` + email + `","password":"` + password + `"}`
	req := httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	return resp, string(b)
}

func withToken(method, path, token string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestLogin_Success(t *testing.T) {
	app, s := newApp(t)
	newUser(t, s.DB, "admin@example.com", "secret-pass", true, true)

	resp, body := login(t, app, "  Admin@Example.com ", "secret-pass")
	require.Equal(t, 200, resp.StatusCode, body)

	var out struct {
		Token string            `json:"token"`
		User  auth.UserResponse `json:"user"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	assert.NotEmpty(t, out.Token)
	assert.True(t, out.User.IsStaff)
	assert.NotNil(t, out.User.LastLogin)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == auth.CookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, out.Token, cookie.Value)
	assert.True(t, cookie.HttpOnly)

	var stored models.User
	require.NoError(t, s.DB.First(&stored, out.User.ID).Error)
	assert.NotNil(t, stored.LastLogin)
}

func TestLogin_GenericFailure(t *testing.T) {
	app, s := newApp(t)
	newUser(t, s.DB, "admin@example.com", "secret-pass", true, true)
	newUser(t, s.DB, "old@example.com", "secret-pass", false, false)

	cases := map[string][2]string{
		"wrong password": {"admin@example.com", "nope"},
		"unknown user":   {"ghost@example.com", "secret-pass"},
		"inactive user":  {"old@example.com", "secret-pass"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			resp, body := login(t, app, tc[0], tc[1])
			assert.Equal(t, 401, resp.StatusCode)
			assert.Equal(t, "Неверный email или пароль", body)
		})
	}
}

func TestLogin_PasswordTrimmedLikeProvisioning(t *testing.T) {
	app, s := newApp(t)
	p := accounts.NewProvisioner(bcrypt.MinCost)
	_, err := p.EnsureStaff(context.Background(), s.DB, "root@example.com", " s3cret ")
	require.NoError(t, err)

	for _, password := range []string{" s3cret ", "s3cret"} {
		resp, body := login(t, app, "root@example.com", password)
		assert.Equal(t, 200, resp.StatusCode, "%q: %s", password, body)
	}
	resp, _ := login(t, app, "root@example.com", "s3cret!")
	assert.Equal(t, 401, resp.StatusCode)
}

func TestMiddleware_CookieAndBearer(t *testing.T) {
	app, s := newApp(t)
	var role models.Role
	require.NoError(t, s.DB.Where("name = ?", "Менеджер").First(&role).Error)
	branch := models.Branch{Name: "Северный", Address: "Москва", Contacts: "+74950000001"}
	require.NoError(t, s.DB.Create(&branch).Error)
	require.NoError(t, s.DB.Create(&models.Employee{
		FullName: "Петров Пётр", Passport: "4510123456", RoleID: role.ID,
		BranchID: branch.ID, Phone: "+79990000000", Email: "Manager@example.com",
	}).Error)
	newUser(t, s.DB, "manager@example.com", "secret-pass", false, true)

	resp, body := login(t, app, "manager@example.com", "secret-pass")
	require.Equal(t, 200, resp.StatusCode, body)
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &out))

	// bearer
	r, err := app.Test(withToken("GET", "/api/auth/me", out.Token))
	require.NoError(t, err)
	require.Equal(t, 200, r.StatusCode)
	var me auth.UserResponse
	require.NoError(t, json.NewDecoder(r.Body).Decode(&me))
	assert.Equal(t, "manager@example.com", me.Email)
	assert.Equal(t, "Петров Пётр", me.FullName)
	assert.Equal(t, "Менеджер", me.Role)
	assert.Equal(t, "Северный", me.Branch)

	// cookie
	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: out.Token})
	r, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, r.StatusCode)

	// not staff
	r, err = app.Test(withToken("DELETE", "/api/branches/1", out.Token))
	require.NoError(t, err)
	assert.Equal(t, 403, r.StatusCode)
}

func TestMiddleware_Rejects(t *testing.T) {
	app, s := newApp(t)
	u := newUser(t, s.DB, "admin@example.com", "secret-pass", true, true)

	r, err := app.Test(httptest.NewRequest("GET", "/api/auth/me", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, r.StatusCode)

	r, err = app.Test(withToken("GET", "/api/auth/me", "garbage"))
	require.NoError(t, err)
	assert.Equal(t, 401, r.StatusCode)

	// signed correctly but no server-side session
	token, err := auth.GenerateToken(secret, &u, "11111111-1111-1111-1111-111111111111", time.Now(), time.Hour)
	require.NoError(t, err)
	r, err = app.Test(withToken("GET", "/api/auth/me", token))
	require.NoError(t, err)
	assert.Equal(t, 401, r.StatusCode)

	// deactivated after login
	resp, body := login(t, app, "admin@example.com", "secret-pass")
	require.Equal(t, 200, resp.StatusCode)
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	require.NoError(t, s.DB.Model(&u).Update("is_active", false).Error)
	r, err = app.Test(withToken("GET", "/api/auth/me", out.Token))
	require.NoError(t, err)
	assert.Equal(t, 401, r.StatusCode)
}

func TestLogout_RevokesSession(t *testing.T) {
	app, s := newApp(t)
	newUser(t, s.DB, "admin@example.com", "secret-pass", true, true)

	_, body := login(t, app, "admin@example.com", "secret-pass")
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &out))

	r, err := app.Test(withToken("DELETE", "/api/branches/1", out.Token))
	require.NoError(t, err)
	assert.Equal(t, 204, r.StatusCode)

	r, err = app.Test(withToken("POST", "/api/auth/logout", out.Token))
	require.NoError(t, err)
	assert.Equal(t, 204, r.StatusCode)

	r, err = app.Test(withToken("GET", "/api/auth/me", out.Token))
	require.NoError(t, err)
	assert.Equal(t, 401, r.StatusCode)
}

func TestParseToken(t *testing.T) {
	u := &models.User{ID: 7, Email: "a@example.com", IsStaff: true}
	now := time.Now()

	token, err := auth.GenerateToken(secret, u, "sid", now, time.Hour)
	require.NoError(t, err)
	claims, err := auth.ParseToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "sid", claims.ID)
	assert.True(t, claims.IsStaff)

	_, err = auth.ParseToken("another-secret-another-secret-xx", token)
	assert.Error(t, err)

	expired, err := auth.GenerateToken(secret, u, "sid", now.Add(-2*time.Hour), time.Hour)
	require.NoError(t, err)
	_, err = auth.ParseToken(secret, expired)
	assert.Error(t, err)
}

func TestDBStore_Purge(t *testing.T) {
	db := testutil.NewDB(t)
	u := newUser(t, db, "admin@example.com", "secret-pass", true, true)
	st := auth.NewDBStore(db)
	ctx := context.Background()

	live, err := st.Create(ctx, u.ID, time.Hour)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.Session{
		ID: "expired", UserID: u.ID, ExpiresAt: time.Now().UTC().Add(-time.Minute),
	}).Error)

	_, err = st.Lookup(ctx, "expired")
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)

	n, err := st.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	owner, err := st.Lookup(ctx, live)
	require.NoError(t, err)
	assert.Equal(t, u.ID, owner)

	require.NoError(t, st.Revoke(ctx, live))
	_, err = st.Lookup(ctx, live)
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
}
