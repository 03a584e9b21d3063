package auth

import (
	"context"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/georgemunganga/pulse-backend/internal/modules/user"
	"github.com/georgemunganga/pulse-backend/pkg/errutil"
	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"
)

type service struct {
	userRepo user.Repository
	secret   []byte
	ttl      time.Duration
}

// NewService creates a new auth service signing HS256 tokens with secret.
func NewService(userRepo user.Repository, secret []byte, ttl time.Duration) Service {
	return &service{userRepo: userRepo, secret: secret, ttl: ttl}
}

func (s *service) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.userRepo.GetUserByEmail(ctx, email)
	if errutil.Code(err) == user.CodeUserNotFound {
		// Unknown email and wrong password look the same to the caller.
		return "", errInvalidCredentials()
	}
	if err != nil {
		return "", oops.In("auth").Code("LOGIN_FAILED").Wrap(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", errInvalidCredentials()
	}

	now := time.Now()
	claims := &jwt.StandardClaims{
		Subject:   u.ID.String(),
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", oops.In("auth").Code("TOKEN_SIGN_FAILED").Wrap(err)
	}

	return tokenString, nil
}

func (s *service) Verify(tokenString string) (string, error) {
	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, oops.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", oops.In("auth").
			Code(CodeInvalidToken).
			Errorf("invalid or expired token")
	}
	return claims.Subject, nil
}

func errInvalidCredentials() error {
	return oops.In("auth").
		Code(CodeInvalidCredentials).
		Errorf("invalid credentials")
}
