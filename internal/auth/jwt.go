package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pawangupta079/skill-hire/pkg/model"
)

var ErrInvalidToken = errors.New("invalid token")

// JWTMaker issues and verifies HS256 access tokens.
type JWTMaker struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTMaker(secret string, ttl time.Duration) *JWTMaker {
	return &JWTMaker{secret: []byte(secret), ttl: ttl}
}

func (m *JWTMaker) CreateToken(u *model.User) (string, *UserClaims, error) {
	claims, err := NewUserClaims(u.UserID, u.Email, u.UserType, m.ttl)
	if err != nil {
		return "", nil, err
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

func (m *JWTMaker) VerifyToken(tokenStr string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*UserClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
