package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"panoram/internal/cache"
	"panoram/internal/models"
	"panoram/internal/repository"
	"panoram/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// Token settings.
const (
	TokenIssuer      = "panoram-api"
	TokenAudience    = "panoram-client"
	RegisterTokenTTL = 30 * 24 * time.Hour
	LoginTokenTTL    = 24 * time.Hour
)

const invalidCredentials = "Invalid credentials"

// dummyHash keeps login timing similar whether or not the email exists.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("panoram-timing-pad"), bcrypt.DefaultCost)

// RegisterInput is the payload accepted by Register.
type RegisterInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Gender    string `json:"gender"`
	Birthdate string `json:"birthdate"`
}

// TokenClaims is the identity carried by a verified session token.
type TokenClaims struct {
	UserID    primitive.ObjectID
	Username  string
	JTI       string
	ExpiresAt time.Time
}

// AuthService registers users and issues and verifies session tokens.
type AuthService struct {
	userRepo repository.UserRepository
	secret   []byte
	rdb      *redis.Client
	now      func() time.Time
}

// NewAuthService returns a new AuthService. rdb may be nil, in which case
// logout cannot revoke tokens.
func NewAuthService(userRepo repository.UserRepository, secret string, rdb *redis.Client) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		secret:   []byte(secret),
		rdb:      rdb,
		now:      time.Now,
	}
}

// Register creates an account and returns a 30-day token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.AuthResponse, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" || email == "" || in.Password == "" {
		return nil, models.NewValidationError("Username, email and password are required")
	}
	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	user := &models.User{
		Username: username,
		Email:    email,
	}
	if strings.TrimSpace(in.Gender) != "" {
		gender, err := validation.NormalizeGender(in.Gender)
		if err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Gender = gender
	}
	if strings.TrimSpace(in.Birthdate) != "" {
		birth, err := validation.ParseBirthdate(in.Birthdate, s.now())
		if err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Birthdate = &birth
	}

	exists, err := s.userRepo.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, models.NewConflictError("Username or email already in use")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(fmt.Errorf("hash password: %w", err))
	}
	user.HashedPassword = string(hash)
	user.CreatedAt = s.now().UTC()

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.generateToken(user, RegisterTokenTTL)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, Username: user.Username}, nil
}

// Login verifies credentials and returns a 1-day token. Unknown emails and
// wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, models.NewValidationError("Email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, models.NewUnauthorizedError(invalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError(invalidCredentials)
	}

	token, err := s.generateToken(user, LoginTokenTTL)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, Username: user.Username}, nil
}

func (s *AuthService) generateToken(user *models.User, ttl time.Duration) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":      user.ID.Hex(),
		"username": user.Username,
		"iss":      TokenIssuer,
		"aud":      TokenAudience,
		"exp":      now.Add(ttl).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      generateJTI(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", models.NewInternalError(fmt.Errorf("sign token: %w", err))
	}
	return signed, nil
}

func generateJTI(now time.Time) string {
	return fmt.Sprintf("%d-%s", now.Unix(), uuid.New().String()[:8])
}

// ParseToken verifies signature, issuer, audience and expiry and rejects
// revoked tokens. Every failure is a FORBIDDEN AppError.
func (s *AuthService) ParseToken(ctx context.Context, raw string) (*TokenClaims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, models.NewForbiddenError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, models.NewForbiddenError("Invalid token claims")
	}
	sub, _ := claims["sub"].(string)
	userID, err := primitive.ObjectIDFromHex(sub)
	if err != nil {
		return nil, models.NewForbiddenError("Invalid token subject")
	}
	username, _ := claims["username"].(string)
	jti, _ := claims["jti"].(string)
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, models.NewForbiddenError("Invalid token expiry")
	}

	if jti != "" && s.rdb != nil {
		n, err := s.rdb.Exists(ctx, cache.RevokedTokenKey(jti)).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return nil, models.NewInternalError(fmt.Errorf("check token revocation: %w", err))
		}
		if n > 0 {
			return nil, models.NewForbiddenError("Token has been revoked")
		}
	}

	return &TokenClaims{
		UserID:    userID,
		Username:  username,
		JTI:       jti,
		ExpiresAt: exp.Time,
	}, nil
}

// Revoke blacklists the token until it would have expired anyway.
func (s *AuthService) Revoke(ctx context.Context, claims *TokenClaims) error {
	if s.rdb == nil || claims == nil || claims.JTI == "" {
		return nil
	}
	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.rdb.Set(ctx, cache.RevokedTokenKey(claims.JTI), "1", ttl).Err(); err != nil {
		return models.NewInternalError(fmt.Errorf("revoke token: %w", err))
	}
	return nil
}
