package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"billnudge/internal/config"
	apperrors "billnudge/internal/errors"
	"billnudge/internal/models"
)

const (
	tokenIssuer      = "billnudge-api"
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// TokenSettings controls how tokens are signed and how long they live.
type TokenSettings struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

var (
	settingsMu sync.RWMutex
	settings   *TokenSettings
)

// ConfigureTokens sets the signing secret and token lifetimes.
func ConfigureTokens(s TokenSettings) {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	settings = &s
}

// TokenSettingsFromConfig maps application config onto TokenSettings.
func TokenSettingsFromConfig(cfg *config.Config) TokenSettings {
	return TokenSettings{
		Secret:     cfg.JWTSecret,
		AccessTTL:  cfg.JWTExpirationDur,
		RefreshTTL: cfg.JWTRefreshDur,
	}
}

func currentSettings() TokenSettings {
	settingsMu.RLock()
	s := settings
	settingsMu.RUnlock()
	if s != nil {
		return *s
	}
	return TokenSettingsFromConfig(config.Get())
}

// JWTClaims represents the claims in the JWT
type JWTClaims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenPair is the access/refresh token pair returned on login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

func generateToken(user *models.User, tokenType string, ttl time.Duration, secret string) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		UserID:    user.ID,
		Email:     user.Email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   user.ID,
		},
	}
	if tokenType == tokenTypeRefresh {
		// jti keeps same-second refresh tokens distinct
		claims.ID = fmt.Sprintf("%d", now.UnixNano())
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// GenerateAccessToken generates a short-lived JWT access token for a user.
func GenerateAccessToken(user *models.User) (string, error) {
	s := currentSettings()
	return generateToken(user, tokenTypeAccess, s.AccessTTL, s.Secret)
}

// GenerateRefreshToken generates a long-lived JWT refresh token for a user.
func GenerateRefreshToken(user *models.User) (string, error) {
	s := currentSettings()
	return generateToken(user, tokenTypeRefresh, s.RefreshTTL, s.Secret)
}

// GenerateTokenPair issues both tokens.
func GenerateTokenPair(user *models.User) (*TokenPair, error) {
	access, err := GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}
	refresh, err := GenerateRefreshToken(user)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(currentSettings().AccessTTL.Seconds()),
	}, nil
}

func parseToken(tokenString string) (*JWTClaims, error) {
	secret := currentSettings().Secret
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// ValidateRefreshToken parses and validates a refresh token JWT.
// Returns the claims if valid, or an error if the token is invalid,
// expired, or not a refresh token.
func ValidateRefreshToken(tokenString string) (*JWTClaims, error) {
	claims, err := parseToken(tokenString)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token")
	}
	if claims.TokenType != tokenTypeRefresh {
		return nil, fmt.Errorf("token is not a refresh token")
	}
	return claims, nil
}

// HashToken returns the SHA-256 hex digest of a token string.
func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// AuthMiddleware verifies the bearer token and sets userID and email in the context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Authorization header is required"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid authorization header format"))
			return
		}

		claims, err := parseToken(parts[1])
		if err != nil || claims.TokenType != tokenTypeAccess || claims.UserID == "" {
			abortWithError(c, apperrors.ErrInvalidToken)
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("email", claims.Email)
		c.Next()
	}
}
