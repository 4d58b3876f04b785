package controllers

import (
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"coinwatch/config"
	"coinwatch/middleware"
	"coinwatch/models"
	"coinwatch/services/store"
	"coinwatch/templates"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *store.UserStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.MigrateUserModels(db))

	users := store.NewUserStore(db)
	cfg := &config.Config{
		Environment:   "development",
		SessionSecret: "test-secret",
		SessionTTL:    time.Hour,
	}

	router := gin.New()
	tmpl, err := template.ParseFS(templates.TemplateFS, "*.html")
	require.NoError(t, err)
	router.SetHTMLTemplate(tmpl)

	ac := NewAuthController(cfg, users)
	router.GET("/signup", ac.SignupPage)
	router.POST("/signup", ac.Signup)
	router.GET("/login", ac.LoginPage)
	router.POST("/login", ac.Login)
	router.GET("/logout", ac.Logout)

	return router, users
}

func postForm(router *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSignup_CreatesUser(t *testing.T) {
	router, users := newAuthRouter(t)

	w := postForm(router, "/signup", url.Values{
		"username": {"alice"},
		"email":    {"alice@example.com"},
		"password": {"s3cret"},
	})

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?created=1", w.Header().Get("Location"))

	user, err := users.FindByUsername("alice")
	require.NoError(t, err)
	assert.True(t, user.CheckPassword("s3cret"))
}

func TestSignup_MissingFields(t *testing.T) {
	router, _ := newAuthRouter(t)

	w := postForm(router, "/signup", url.Values{
		"username": {"alice"},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Username, email, and password are required.")
}

func TestSignup_DuplicateUsername(t *testing.T) {
	router, _ := newAuthRouter(t)

	first := postForm(router, "/signup", url.Values{
		"username": {"alice"},
		"email":    {"alice@example.com"},
		"password": {"s3cret"},
	})
	require.Equal(t, http.StatusFound, first.Code)

	second := postForm(router, "/signup", url.Values{
		"username": {"alice"},
		"email":    {"other@example.com"},
		"password": {"s3cret"},
	})
	assert.Equal(t, http.StatusConflict, second.Code)
	assert.Contains(t, second.Body.String(), "Username already exists. Choose another.")
}

func TestSignup_DuplicateEmail(t *testing.T) {
	router, _ := newAuthRouter(t)

	postForm(router, "/signup", url.Values{
		"username": {"alice"},
		"email":    {"shared@example.com"},
		"password": {"s3cret"},
	})

	w := postForm(router, "/signup", url.Values{
		"username": {"bob"},
		"email":    {"shared@example.com"},
		"password": {"s3cret"},
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Email already registered. Use another.")
}

func TestLogin_SetsSessionCookie(t *testing.T) {
	router, users := newAuthRouter(t)

	user := models.User{}
	require.NoError(t, user.SetPassword("s3cret"))
	_, err := users.CreateUser("alice", nil, user.PasswordHash)
	require.NoError(t, err)

	w := postForm(router, "/login", url.Values{
		"username": {"alice"},
		"password": {"s3cret"},
	})

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	var sessionCookie *http.Cookie
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == middleware.SessionCookieName {
			sessionCookie = cookie
		}
	}
	require.NotNil(t, sessionCookie, "session cookie not set")

	username, err := middleware.ParseSessionToken(sessionCookie.Value, []byte("test-secret"))
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	router, users := newAuthRouter(t)

	user := models.User{}
	require.NoError(t, user.SetPassword("s3cret"))
	_, err := users.CreateUser("alice", nil, user.PasswordHash)
	require.NoError(t, err)

	w := postForm(router, "/login", url.Values{
		"username": {"alice"},
		"password": {"wrong"},
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid username or password")

	w = postForm(router, "/login", url.Values{
		"username": {"ghost"},
		"password": {"s3cret"},
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout_ClearsCookie(t *testing.T) {
	router, _ := newAuthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, middleware.SessionCookieName, cookies[0].Name)
	assert.True(t, cookies[0].MaxAge < 0)
}
