package controllers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"coinwatch/config"
	"coinwatch/middleware"
	"coinwatch/models"
	"coinwatch/services/store"

	"github.com/gin-gonic/gin"
)

// AuthController handles signup, login and logout
type AuthController struct {
	cfg   *config.Config
	users *store.UserStore
}

// NewAuthController creates a new auth controller
func NewAuthController(cfg *config.Config, users *store.UserStore) *AuthController {
	return &AuthController{cfg: cfg, users: users}
}

// isSecureMode returns true if running in production mode (HTTPS)
func (ac *AuthController) isSecureMode() bool {
	return ac.cfg.Environment == "production"
}

// loggedIn reports whether the request carries a valid session cookie.
func (ac *AuthController) loggedIn(c *gin.Context) bool {
	tokenString, err := c.Cookie(middleware.SessionCookieName)
	if err != nil || tokenString == "" {
		return false
	}
	_, err = middleware.ParseSessionToken(tokenString, []byte(ac.cfg.SessionSecret))
	return err == nil
}

// SignupPage shows the signup form
// GET /signup
func (ac *AuthController) SignupPage(c *gin.Context) {
	if ac.loggedIn(c) {
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.HTML(http.StatusOK, "signup.html", gin.H{})
}

// Signup handles the signup form submission
// POST /signup
func (ac *AuthController) Signup(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	email := strings.TrimSpace(c.PostForm("email"))
	password := strings.TrimSpace(c.PostForm("password"))

	if username == "" || email == "" || password == "" {
		c.HTML(http.StatusBadRequest, "signup.html", gin.H{
			"error": "Username, email, and password are required.",
		})
		return
	}

	user := models.User{}
	if err := user.SetPassword(password); err != nil {
		c.HTML(http.StatusInternalServerError, "signup.html", gin.H{
			"error": "An error occurred. Please try again.",
		})
		return
	}

	if _, err := ac.users.CreateUser(username, &email, user.PasswordHash); err != nil {
		var message string
		switch {
		case errors.Is(err, store.ErrDuplicateUsername):
			message = "Username already exists. Choose another."
		case errors.Is(err, store.ErrDuplicateEmail):
			message = "Email already registered. Use another."
		default:
			log.Printf("Signup failed for %s: %v", username, err)
			message = "An error occurred. Please try again."
		}
		c.HTML(http.StatusConflict, "signup.html", gin.H{"error": message})
		return
	}

	c.Redirect(http.StatusFound, "/login?created=1")
}

// LoginPage shows the login form
// GET /login
func (ac *AuthController) LoginPage(c *gin.Context) {
	if ac.loggedIn(c) {
		c.Redirect(http.StatusFound, "/")
		return
	}

	data := gin.H{"error": c.Query("error")}
	if c.Query("created") == "1" {
		data["success"] = "Account created successfully. Please login."
	}
	c.HTML(http.StatusOK, "login.html", data)
}

// Login handles the login form submission
// POST /login
func (ac *AuthController) Login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := strings.TrimSpace(c.PostForm("password"))

	if username == "" || password == "" {
		c.HTML(http.StatusBadRequest, "login.html", gin.H{
			"error": "Username and password are required.",
		})
		return
	}

	user, err := ac.users.FindByUsername(username)
	if err != nil || !user.CheckPassword(password) {
		log.Printf("Login failed for user %s", username)
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{
			"error": "Invalid username or password",
		})
		return
	}

	token, err := middleware.NewSessionToken(username, []byte(ac.cfg.SessionSecret), ac.cfg.SessionTTL)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "login.html", gin.H{
			"error": "Failed to create session",
		})
		return
	}

	maxAge := int(ac.cfg.SessionTTL.Seconds())
	c.SetCookie(middleware.SessionCookieName, token, maxAge, "/", "", ac.isSecureMode(), true)

	log.Printf("User %s logged in successfully", username)
	c.Redirect(http.StatusFound, "/")
}

// Logout clears the session cookie
// GET /logout
func (ac *AuthController) Logout(c *gin.Context) {
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", ac.isSecureMode(), true)
	c.Redirect(http.StatusFound, "/login")
}
