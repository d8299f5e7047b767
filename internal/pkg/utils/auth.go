package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/ougirez/zstats/internal/domain"
	"github.com/ougirez/zstats/internal/pkg/constants"
	"github.com/spf13/viper"
)

// AuthTokenWrapper is the claim set of an auth token.
type AuthTokenWrapper struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
	jwt.StandardClaims
}

func (w *AuthTokenWrapper) IsAdmin() bool {
	return w.Role == domain.RoleAdmin
}

func secret() ([]byte, error) {
	s := viper.GetString(constants.ViperSecretKey)
	if s == "" {
		return nil, fmt.Errorf("%s is not configured", constants.ViperSecretKey)
	}
	return []byte(s), nil
}

// GenerateAuthToken signs w with HS256. ExpiresAt defaults to now + auth.token_ttl.
func GenerateAuthToken(w *AuthTokenWrapper) (string, error) {
	key, err := secret()
	if err != nil {
		return "", err
	}

	now := time.Now()
	if w.IssuedAt == 0 {
		w.IssuedAt = now.Unix()
	}
	if w.ExpiresAt == 0 {
		if ttl := viper.GetDuration(constants.ViperTokenTTLKey); ttl > 0 {
			w.ExpiresAt = now.Add(ttl).Unix()
		}
	}
	w.Subject = w.UserID

	return jwt.NewWithClaims(jwt.SigningMethodHS256, w).SignedString(key)
}

func ParseAuthToken(raw string) (*AuthTokenWrapper, error) {
	key, err := secret()
	if err != nil {
		return nil, err
	}

	claims := &AuthTokenWrapper{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return key, nil
	})
	if err != nil || !token.Valid {
		return nil, constants.ErrUnauthorized
	}

	if claims.UserID == "" {
		return nil, constants.ErrUnauthorized
	}

	return claims, nil
}
