package handlers

import (
	"time"

	"blogapi/internal/middleware"
	"blogapi/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService  *services.AuthService
	validate     *validator.Validate
	cookieSecure bool
}

// NewAuthHandler creates a new AuthHandler. cookieSecure marks the session
// cookie Secure, which browsers require for SameSite=None.
func NewAuthHandler(authService *services.AuthService, validate *validator.Validate, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		validate:     validate,
		cookieSecure: cookieSecure,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	userRoutes := router.Group("/user")
	userRoutes.Post("/signup", h.HandleSignup)
	userRoutes.Post("/login", h.HandleLogin)
	userRoutes.Get("/logout", h.HandleLogout)
	userRoutes.Post("/currentUser", authRequired, h.HandleCurrentUser)
}

// SignupRequest represents the request body for signup.
type SignupRequest struct {
	Email     string `json:"email" validate:"required"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleSignup handles new user registration.
func (h *AuthHandler) HandleSignup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return err
	}

	session, err := h.authService.Register(c.UserContext(), services.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return err
	}
	return h.sendToken(c, fiber.StatusCreated, session)
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return err
	}

	session, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return h.sendToken(c, fiber.StatusOK, session)
}

// HandleLogout clears the session cookie. The token itself stays valid
// until it expires.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteNoneMode,
	})
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logged out",
	})
}

// HandleCurrentUser returns the user the request's token was issued for.
func (h *AuthHandler) HandleCurrentUser(c *fiber.Ctx) error {
	user, err := h.authService.CurrentUser(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"user":    user,
	})
}

func (h *AuthHandler) sendToken(c *fiber.Ctx, status int, session *services.Session) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    session.Token,
		Expires:  session.ExpiresAt,
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteNoneMode,
	})
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"user":    session.User,
		"token":   session.Token,
	})
}
