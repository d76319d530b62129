package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"storeapi/internal/models"
	"storeapi/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// IdentityClaim is the JWT claim that carries the user id.
const IdentityClaim = "identity"

// dummyHash is compared against when the username does not exist, so a
// failed login costs the same whether or not the user exists.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)

// AuthService handles registration, credential verification and tokens.
type AuthService struct {
	tx         repositories.TxManager
	events     events
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
}

// NewAuthService creates a new AuthService.
func NewAuthService(tx repositories.TxManager, jwtSecret string, tokenDuration time.Duration, publisher EventPublisher, exchange string) *AuthService {
	return &AuthService{
		tx:         tx,
		events:     events{publisher: publisher, exchange: exchange},
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: tokenDuration,
	}
}

// Register creates a user with a bcrypt-hashed password. It does not log the user in.
func (s *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, newError(ErrValidation, err, "Password cannot be used.")
	}
	user := &models.User{Username: username, Password: string(hashedPassword)}

	err = s.tx.WithinTx(ctx, func(r repositories.Repositories) error {
		_, err := r.Users.FindByUsername(ctx, username)
		switch {
		case err == nil:
			return newError(ErrConflict, nil, "A user with that username already exists")
		case !errors.Is(err, repositories.ErrNotFound):
			return newError(ErrPersistence, err, "An error occurred while registering the user.")
		}
		if err := r.Users.Save(ctx, user); err != nil {
			if isDuplicate(err) {
				return newError(ErrConflict, err, "A user with that username already exists")
			}
			return newError(ErrPersistence, err, "An error occurred while registering the user.")
		}
		return nil
	})
	if err != nil {
		return nil, txError(err, "An error occurred while registering the user.")
	}

	s.events.publish(EventUserRegistered, map[string]any{"id": user.ID, "username": user.Username})
	return user, nil
}

// Authenticate verifies a username/password pair. It returns (nil, nil) when
// the user does not exist or the password does not match.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user *models.User
	err := s.tx.WithinTx(ctx, func(r repositories.Repositories) error {
		u, err := r.Users.FindByUsername(ctx, username)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil
			}
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, newError(ErrPersistence, err, "An error occurred while authenticating.")
	}

	if user == nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, nil
	}
	return user, nil
}

// IssueToken signs a JWT whose identity claim is the user's id.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		IdentityClaim: user.ID,
		"iat":         now.Unix(),
		"nbf":         now.Unix(),
		"exp":         now.Add(s.tokenDurat).Unix(),
		"jti":         uuid.NewString(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// Login authenticates the credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", newError(ErrUnauthorized, nil, "Invalid credentials")
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", newError(ErrPersistence, err, "An error occurred while issuing the token.")
	}
	return token, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

// Identity resolves verified claims to a user. It returns (nil, nil) when the
// user no longer exists.
func (s *AuthService) Identity(ctx context.Context, claims jwt.MapClaims) (*models.User, error) {
	// JSON numbers decode as float64.
	raw, ok := claims[IdentityClaim].(float64)
	if !ok || raw < 1 || raw != float64(uint(raw)) {
		return nil, fmt.Errorf("invalid token: malformed %s claim", IdentityClaim)
	}

	var user *models.User
	err := s.tx.WithinTx(ctx, func(r repositories.Repositories) error {
		u, err := r.Users.FindByID(ctx, uint(raw))
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil
			}
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve identity: %w", err)
	}
	return user, nil
}
