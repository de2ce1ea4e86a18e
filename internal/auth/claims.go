package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pawangupta079/skill-hire/pkg/model"
)

type UserClaims struct {
	UserID   string         `json:"user_id"`
	Email    string         `json:"email"`
	UserType model.UserType `json:"user_type"`
	jwt.RegisteredClaims
}

func NewUserClaims(userID, email string, userType model.UserType, duration time.Duration) (*UserClaims, error) {
	tokenID, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("error generating token id: %w", err)
	}

	now := time.Now()
	return &UserClaims{
		UserID:   userID,
		Email:    email,
		UserType: userType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID.String(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
		},
	}, nil
}
