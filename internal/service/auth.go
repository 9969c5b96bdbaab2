package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/recipewizard/backend/internal/apperr"
	"github.com/pageza/recipewizard/backend/internal/logger"
	"github.com/pageza/recipewizard/backend/internal/models"
	"github.com/pageza/recipewizard/backend/internal/types"
)

const MinPasswordLength = 8

var (
	ErrInvalidCredentials = apperr.Unauthorized("Incorrect email or password")
	ErrAccountDisabled    = apperr.Validation("Account is disabled")
	ErrTokenRevoked       = apperr.Unauthorized("Token has been revoked")
)

// AuthService handles registration, login and JWT issuing/validation.
type AuthService struct {
	db        *gorm.DB
	jwtSecret string
	expiry    time.Duration
	revoked   RevocationStore
	log       *logger.Logger
}

// NewAuthService creates a new AuthService. A nil store keeps revocations in process memory.
func NewAuthService(db *gorm.DB, jwtSecret string, expiry time.Duration, revoked RevocationStore, log *logger.Logger) *AuthService {
	if revoked == nil {
		revoked = NewMemoryRevocationStore()
	}
	if log == nil {
		log = logger.NewNop()
	}
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &AuthService{
		db:        db,
		jwtSecret: jwtSecret,
		expiry:    expiry,
		revoked:   revoked,
		log:       log,
	}
}

// Register creates an active user. Email and username must be unique.
func (s *AuthService) Register(ctx context.Context, req *types.RegisterRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if len(req.Password) < MinPasswordLength {
		return nil, apperr.Validation("Password must be at least %d characters long", MinPasswordLength)
	}

	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, apperr.Persistence(err, "failed to check email")
	}
	if count > 0 {
		return nil, apperr.Validation("Email already registered")
	}

	username := trimmedOrNil(req.Username)
	if username != nil {
		if err := db.Model(&models.User{}).Where("username = ?", *username).Count(&count).Error; err != nil {
			return nil, apperr.Persistence(err, "failed to check username")
		}
		if count > 0 {
			return nil, apperr.Validation("Username already taken")
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:           email,
		Username:        username,
		HashedPassword:  string(hashed),
		IsActive:        true,
		FirstName:       trimmedOrNil(req.FirstName),
		LastName:        trimmedOrNil(req.LastName),
		Units:           "metric",
		DefaultServings: 4,
		ThemePreference: "system",
	}
	if err := db.Create(user).Error; err != nil {
		return nil, apperr.Persistence(err, "failed to create user")
	}

	s.log.Info("User registered", "user_id", user.ID)
	return user, nil
}

// Login checks credentials. Unknown email and wrong password give the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, apperr.Persistence(err, "failed to load user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}
	return &user, nil
}

// GenerateToken signs a token for the user and returns it with its lifetime in seconds.
func (s *AuthService) GenerateToken(user *models.User) (string, int, error) {
	now := time.Now()
	claims := &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
		UserID: user.ID,
	}
	if user.Username != nil {
		claims.Username = *user.Username
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, int(s.expiry.Seconds()), nil
}

// ValidateToken parses the token and rejects it when revoked.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, apperr.Unauthorized("Could not validate credentials")
	}
	if claims.UserID == 0 {
		return nil, apperr.Unauthorized("Could not validate credentials")
	}

	if claims.ID != "" {
		revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			s.log.Warn("Token revocation check failed", "error", err)
		} else if revoked {
			return nil, ErrTokenRevoked
		}
	}
	return claims, nil
}

// RevokeToken blacklists the token's jti until it would have expired anyway.
func (s *AuthService) RevokeToken(ctx context.Context, claims *types.TokenClaims) error {
	if claims.ID == "" {
		return nil
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return nil
	}
	if err := s.revoked.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// ChangePassword replaces the password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(current)); err != nil {
		return apperr.Validation("Incorrect current password")
	}
	if len(next) < MinPasswordLength {
		return apperr.Validation("New password must be at least %d characters long", MinPasswordLength)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(user).Update("hashed_password", string(hashed)).Error; err != nil {
		return apperr.Persistence(err, "failed to update password")
	}
	return nil
}

// GetUserByID loads an active user.
func (s *AuthService) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Persistence(err, "failed to load user")
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}
	return &user, nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
