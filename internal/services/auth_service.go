package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rewear/internal/logger"
	"rewear/internal/models"
	"rewear/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Identity is the caller as established by a validated token.
type Identity struct {
	UserID string
	Email  string
	Role   models.Role
}

func (i Identity) IsAdmin() bool { return i.Role == models.RoleAdmin }

// LoginResult is returned by Login and VerifyMFA. When MFARequired is set the
// token is empty and a code has been sent to the user.
type LoginResult struct {
	Token       string       `json:"token,omitempty"`
	User        *models.User `json:"user,omitempty"`
	MFARequired bool         `json:"mfa_required"`
}

// UserDetails are the editable profile fields.
type UserDetails struct {
	Phone      string `json:"phone" validate:"omitempty,min=6,max=32"`
	Address    string `json:"address" validate:"omitempty,max=500"`
	PostalCode string `json:"postal_code" validate:"omitempty,max=20"`
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo  repositories.UserRepository
	mfa       *MFAService
	notifier  *Notifier
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, mfa *MFAService, notifier *Notifier, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		userRepo:  userRepo,
		mfa:       mfa,
		notifier:  notifier,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

// Register hashes the password and stores the user with the given role.
func (s *AuthService) Register(ctx context.Context, user *models.User, role models.Role) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if existing, err := s.userRepo.GetByEmail(ctx, user.Email); err == nil && existing != nil {
		return fmt.Errorf("email '%s' already registered: %w", user.Email, ErrAlreadyExists)
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if role == models.RoleSeller && user.BusinessName == "" {
		return fmt.Errorf("business name is required for sellers: %w", ErrInvalidInput)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword)
	user.Role = role

	if err := s.userRepo.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}
	logger.FromCtx(ctx).Info("user registered", zap.String("user_id", user.ID), zap.String("role", string(role)))
	s.notifier.Welcome(ctx, user)
	return nil
}

// Login authenticates a user and returns a JWT token, or starts the MFA
// challenge when the user enabled it.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if user.MFAEnabled && s.mfa != nil {
		if err := s.mfa.Issue(ctx, user.Email); err != nil {
			return nil, err
		}
		return &LoginResult{MFARequired: true}, nil
	}
	return s.loginResult(user)
}

// VerifyMFA completes a login that required a one-time code.
func (s *AuthService) VerifyMFA(ctx context.Context, email, code string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if s.mfa == nil {
		return nil, ErrMFACodeExpired
	}
	if err := s.mfa.Verify(ctx, email, code); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.loginResult(user)
}

func (s *AuthService) loginResult(user *models.User) (*LoginResult, error) {
	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return &LoginResult{Token: token, User: user}, nil
}

func (s *AuthService) issueToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    string(user.Role),
		"exp":     now.Add(s.tokenTTL).Unix(),
		"iat":     now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token.
func (s *AuthService) ValidateToken(tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %v: %w", err, ErrUnauthenticated)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", ErrUnauthenticated)
	}
	id, _ := claims["user_id"].(string)
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	if id == "" || email == "" {
		return nil, fmt.Errorf("invalid token claims: %w", ErrUnauthenticated)
	}
	return &Identity{UserID: id, Email: email, Role: models.Role(role)}, nil
}

// Profile returns the user without the password hash.
func (s *AuthService) Profile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return user, nil
}

// ShippingDetails returns the stored shipping fields used to prefill checkout.
func (s *AuthService) ShippingDetails(ctx context.Context, userID string) (models.ShippingAddress, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return models.ShippingAddress{}, err
	}
	return models.ShippingAddress{
		Name:       user.FullName(),
		Phone:      user.Phone,
		Address:    user.Address,
		PostalCode: user.PostalCode,
	}, nil
}

// UpdateDetails overwrites the non-empty fields of details.
func (s *AuthService) UpdateDetails(ctx context.Context, userID string, details UserDetails) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if details.Phone != "" {
		user.Phone = details.Phone
	}
	if details.Address != "" {
		user.Address = details.Address
	}
	if details.PostalCode != "" {
		user.PostalCode = details.PostalCode
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	user.Password = ""
	return user, nil
}

// SetMFA turns two-step login on or off.
func (s *AuthService) SetMFA(ctx context.Context, userID string, enabled bool) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.MFAEnabled = enabled
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	user.Password = ""
	return user, nil
}
