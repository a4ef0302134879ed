package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"panoram/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-key-for-panoram-tokens"

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *models.AppError
	require.Error(t, err)
	if !errors.As(err, &appErr) || appErr.Code != code {
		t.Fatalf("expected %s app error, got %#v", code, err)
	}
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:                 func(context.Context, primitive.ObjectID) (*models.User, error) { return &models.User{}, nil },
		getByEmailFn:              func(context.Context, string) (*models.User, error) { return nil, nil },
		existsByUsernameOrEmailFn: func(context.Context, string, string) (bool, error) { return false, nil },
		createFn: func(_ context.Context, u *models.User) error {
			u.ID = primitive.NewObjectID()
			return nil
		},
		searchFn:       func(context.Context, string, int) ([]models.UserSummary, error) { return nil, nil },
		getProfileFn:   func(context.Context, primitive.ObjectID) (*models.Profile, error) { return &models.Profile{}, nil },
		addFriendFn:    func(context.Context, primitive.ObjectID, primitive.ObjectID) error { return nil },
		removeFriendFn: func(context.Context, primitive.ObjectID, primitive.ObjectID) error { return nil },
		findPeerIDsFn: func(context.Context, string, time.Time, time.Time, primitive.ObjectID) ([]primitive.ObjectID, error) {
			return nil, nil
		},
	}
}

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Username: "ana_lucia",
		Email:    "Ana@Example.com",
		Password: "secret123",
	}
}

func TestAuthServiceRegister(t *testing.T) {
	var created *models.User
	repo := noopUserRepo()
	repo.createFn = func(_ context.Context, u *models.User) error {
		u.ID = primitive.NewObjectID()
		created = u
		return nil
	}

	svc := NewAuthService(repo, testSecret, nil)
	in := validRegisterInput()
	in.Gender = "Female"
	in.Birthdate = "1990-05-17"

	resp, err := svc.Register(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "ana_lucia", resp.Username)
	require.NotNil(t, created)
	assert.Equal(t, "ana@example.com", created.Email)
	assert.Equal(t, models.GenderFemale, created.Gender)
	require.NotNil(t, created.Birthdate)
	assert.Equal(t, time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC), *created.Birthdate)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.HashedPassword), []byte("secret123")))

	claims, err := svc.ParseToken(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.UserID)
	assert.Equal(t, "ana_lucia", claims.Username)
	assert.NotEmpty(t, claims.JTI)
	assert.WithinDuration(t, time.Now().Add(RegisterTokenTTL), claims.ExpiresAt, time.Minute)
}

func TestAuthServiceRegisterValidation(t *testing.T) {
	svc := NewAuthService(noopUserRepo(), testSecret, nil)

	cases := map[string]func(*RegisterInput){
		"missing username": func(in *RegisterInput) { in.Username = "" },
		"missing email":    func(in *RegisterInput) { in.Email = " " },
		"missing password": func(in *RegisterInput) { in.Password = "" },
		"weak password":    func(in *RegisterInput) { in.Password = "abcdefgh" },
		"bad email":        func(in *RegisterInput) { in.Email = "not-an-email" },
		"bad gender":       func(in *RegisterInput) { in.Gender = "robot" },
		"future birthdate": func(in *RegisterInput) { in.Birthdate = time.Now().AddDate(1, 0, 0).Format(time.DateOnly) },
		"garbled birthdate": func(in *RegisterInput) {
			in.Birthdate = "17/05/1990"
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validRegisterInput()
			mutate(&in)
			_, err := svc.Register(context.Background(), in)
			requireCode(t, err, models.CodeValidation)
		})
	}
}

func TestAuthServiceRegisterDuplicate(t *testing.T) {
	repo := noopUserRepo()
	repo.existsByUsernameOrEmailFn = func(_ context.Context, username, email string) (bool, error) {
		assert.Equal(t, "ana_lucia", username)
		assert.Equal(t, "ana@example.com", email)
		return true, nil
	}
	repo.createFn = func(context.Context, *models.User) error {
		t.Fatal("create must not be called for a duplicate")
		return nil
	}

	svc := NewAuthService(repo, testSecret, nil)
	_, err := svc.Register(context.Background(), validRegisterInput())
	requireCode(t, err, models.CodeConflict)
}

func TestAuthServiceLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{ID: primitive.NewObjectID(), Username: "ana_lucia", Email: "ana@example.com", HashedPassword: string(hash)}

	repo := noopUserRepo()
	repo.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
		if email == user.Email {
			return user, nil
		}
		return nil, nil
	}
	svc := NewAuthService(repo, testSecret, nil)

	resp, err := svc.Login(context.Background(), " ANA@example.com ", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "ana_lucia", resp.Username)

	claims, err := svc.ParseToken(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.WithinDuration(t, time.Now().Add(LoginTokenTTL), claims.ExpiresAt, time.Minute)

	_, wrongPassword := svc.Login(context.Background(), "ana@example.com", "secret124")
	_, unknownEmail := svc.Login(context.Background(), "nobody@example.com", "secret123")
	requireCode(t, wrongPassword, models.CodeUnauthorized)
	requireCode(t, unknownEmail, models.CodeUnauthorized)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())

	_, err = svc.Login(context.Background(), "", "secret123")
	requireCode(t, err, models.CodeValidation)
}

func TestAuthServiceParseTokenRejects(t *testing.T) {
	svc := NewAuthService(noopUserRepo(), testSecret, nil)
	user := &models.User{ID: primitive.NewObjectID(), Username: "ana_lucia"}

	sign := func(claims jwt.MapClaims, secret string) string {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return tok
	}
	base := func() jwt.MapClaims {
		now := time.Now()
		return jwt.MapClaims{
			"sub": user.ID.Hex(), "username": user.Username,
			"iss": TokenIssuer, "aud": TokenAudience,
			"exp": now.Add(time.Hour).Unix(), "iat": now.Unix(), "jti": "x-1",
		}
	}

	expired := base()
	expired["exp"] = time.Now().Add(-time.Minute).Unix()
	wrongAudience := base()
	wrongAudience["aud"] = "someone-else"
	wrongIssuer := base()
	wrongIssuer["iss"] = "someone-else"
	noExpiry := base()
	delete(noExpiry, "exp")
	badSubject := base()
	badSubject["sub"] = "42"

	cases := map[string]string{
		"garbage":        "not.a.token",
		"wrong secret":   sign(base(), "another-secret"),
		"expired":        sign(expired, testSecret),
		"wrong audience": sign(wrongAudience, testSecret),
		"wrong issuer":   sign(wrongIssuer, testSecret),
		"no expiry":      sign(noExpiry, testSecret),
		"bad subject":    sign(badSubject, testSecret),
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ParseToken(context.Background(), raw)
			requireCode(t, err, models.CodeForbidden)
		})
	}

	_, err := svc.ParseToken(context.Background(), sign(base(), testSecret))
	assert.NoError(t, err)
}

func TestAuthServiceRevoke(t *testing.T) {
	rdb := newTestRedis(t)
	svc := NewAuthService(noopUserRepo(), testSecret, rdb)

	resp, err := svc.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)
	claims, err := svc.ParseToken(context.Background(), resp.Token)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(context.Background(), claims))

	ttl := rdb.TTL(context.Background(), "revoked:"+claims.JTI).Val()
	assert.Greater(t, ttl, RegisterTokenTTL-time.Hour)

	_, err = svc.ParseToken(context.Background(), resp.Token)
	requireCode(t, err, models.CodeForbidden)
}

func TestAuthServiceRevokeWithoutRedis(t *testing.T) {
	svc := NewAuthService(noopUserRepo(), testSecret, nil)
	assert.NoError(t, svc.Revoke(context.Background(), &TokenClaims{JTI: "abc", ExpiresAt: time.Now().Add(time.Hour)}))
}
