package handlers

import (
	"rewear/internal/models"
	"rewear/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication and the caller's account.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, g Guards) {
	router.Post("/register", g.strict(), h.register(models.RoleBuyer))
	router.Post("/seller_register", g.strict(), h.register(models.RoleSeller))
	admin := append(g.Only(models.RoleAdmin), h.register(models.RoleAdmin))
	router.Post("/admin/register", admin...)
	router.Post("/login", g.strict(), h.HandleLogin)
	router.Post("/login/verify", g.strict(), h.HandleVerify)

	user := router.Group("/user", g.Auth)
	user.Get("/me", h.HandleMe)
	user.Get("/details", h.HandleGetDetails)
	user.Put("/details", h.HandleUpdateDetails)
	user.Put("/mfa", h.HandleSetMFA)
}

// register handles new account registration for the given role.
func (h *AuthHandler) register(role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var user models.User
		if ok, err := bindJSON(c, h.validate, &user); !ok {
			return err
		}
		user.ID = ""
		user.MFAEnabled = false

		if err := h.authService.Register(c.UserContext(), &user, role); err != nil {
			return fail(c, "Registration failed", err)
		}

		// For security, do not return the password hash
		user.Password = ""
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "User registered successfully",
			"user":    user,
		})
	}
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin handles user login and issues a JWT token, or starts MFA.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if ok, err := bindJSON(c, h.validate, &req); !ok {
		return err
	}

	res, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return fail(c, "Authentication failed", err)
	}
	if res.MFARequired {
		return c.JSON(fiber.Map{
			"message":      "Verification code sent",
			"mfa_required": true,
		})
	}
	return c.JSON(fiber.Map{
		"message":      "Login successful",
		"token":        res.Token,
		"user":         res.User,
		"mfa_required": false,
	})
}

// VerifyRequest exchanges an emailed code for a token.
type VerifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

func (h *AuthHandler) HandleVerify(c *fiber.Ctx) error {
	var req VerifyRequest
	if ok, err := bindJSON(c, h.validate, &req); !ok {
		return err
	}
	res, err := h.authService.VerifyMFA(c.UserContext(), req.Email, req.Code)
	if err != nil {
		return fail(c, "Verification failed", err)
	}
	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   res.Token,
		"user":    res.User,
	})
}

func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	user, err := h.authService.Profile(c.UserContext(), identity(c).UserID)
	if err != nil {
		return fail(c, "Could not load profile", err)
	}
	return c.JSON(user)
}

func (h *AuthHandler) HandleGetDetails(c *fiber.Ctx) error {
	details, err := h.authService.ShippingDetails(c.UserContext(), identity(c).UserID)
	if err != nil {
		return fail(c, "Could not load details", err)
	}
	return c.JSON(details)
}

func (h *AuthHandler) HandleUpdateDetails(c *fiber.Ctx) error {
	var req services.UserDetails
	if ok, err := bindJSON(c, h.validate, &req); !ok {
		return err
	}
	user, err := h.authService.UpdateDetails(c.UserContext(), identity(c).UserID, req)
	if err != nil {
		return fail(c, "Could not update details", err)
	}
	return c.JSON(fiber.Map{
		"message": "Details updated successfully",
		"user":    user,
	})
}

// MFARequest toggles one-time codes at login.
type MFARequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

func (h *AuthHandler) HandleSetMFA(c *fiber.Ctx) error {
	var req MFARequest
	if ok, err := bindJSON(c, h.validate, &req); !ok {
		return err
	}
	user, err := h.authService.SetMFA(c.UserContext(), identity(c).UserID, *req.Enabled)
	if err != nil {
		return fail(c, "Could not update MFA setting", err)
	}
	return c.JSON(fiber.Map{
		"message":     "MFA setting updated",
		"mfa_enabled": user.MFAEnabled,
	})
}
