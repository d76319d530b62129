package handlers

import (
	"log"

	"storeapi/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for registration and authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    newValidator(),
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/register", h.HandleRegister)
	router.Post("/auth", h.HandleLogin)
}

// RegisterRequest represents the request body for registration.
// Passwords are capped at 72 characters because bcrypt rejects longer input.
type RegisterRequest struct {
	Username string `json:"username" form:"username" validate:"required,max=80"`
	Password string `json:"password" form:"password" validate:"required,max=72"`
}

var registerMessages = map[string]string{
	"username.required": "This field cannot be blank.",
	"password.required": "This field cannot be blank.",
	"username.max":      "Username must be at most 80 characters.",
	"password.max":      "Password must be at most 72 characters.",
}

// HandleRegister handles new user registration. It does not return a token.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if body, ok := parseBody(c, h.validate, &req, registerMessages); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(body)
	}

	if _, err := h.authService.Register(c.UserContext(), req.Username, req.Password); err != nil {
		log.Printf("Error registering user %s: %v", req.Username, err)
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// HandleLogin verifies credentials and issues an access token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if _, ok := parseBody(c, h.validate, &req, nil); !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Invalid credentials",
		})
	}

	token, err := h.authService.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		log.Printf("Error during login for user %s: %v", req.Username, err)
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"access_token": token,
	})
}
