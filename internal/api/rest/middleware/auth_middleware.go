package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Dhoini/personalized-gospels/pkg/logger"
	"github.com/Dhoini/personalized-gospels/pkg/res"
)

const (
	// ContextSubjectKey ключ субъекта токена в контексте gin
	ContextSubjectKey = "subject"
	// ScopeAdmin scope административного API
	ScopeAdmin       = "admin"
	authHeaderPrefix = "Bearer "
)

// TokenValidator проверяет токен и возвращает его claims
type TokenValidator interface {
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims claims административного токена
type TokenClaims struct {
	Email string `json:"email"`
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// JWTMiddleware проверяет bearer-токены
type JWTMiddleware struct {
	log       *logger.Logger
	validator TokenValidator
}

// NewJWTMiddleware создает middleware авторизации
func NewJWTMiddleware(validator TokenValidator, log *logger.Logger) *JWTMiddleware {
	return &JWTMiddleware{
		log:       log,
		validator: validator,
	}
}

// RequireAuth пропускает запрос только с валидным токеном одного из scopes
func (m *JWTMiddleware) RequireAuth(requiredScopes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, authHeaderPrefix) {
			m.handleAuthError(c, http.StatusUnauthorized, "missing authorization token", nil)
			return
		}

		claims, err := m.validator.Validate(strings.TrimPrefix(authHeader, authHeaderPrefix))
		if err != nil {
			m.handleAuthError(c, http.StatusUnauthorized, "invalid authorization token", err)
			return
		}

		if claims.Subject == "" {
			m.handleAuthError(c, http.StatusUnauthorized, "invalid authorization token", errors.New("subject missing in token"))
			return
		}

		if len(requiredScopes) > 0 && !hasScope(claims.Scope, requiredScopes) {
			m.handleAuthError(c, http.StatusForbidden, "insufficient token permissions", nil)
			return
		}

		c.Set(ContextSubjectKey, claims.Subject)
		m.log.Debugw("Request authenticated", "subject", claims.Subject, "path", c.Request.URL.Path)
		c.Next()
	}
}

// hasScope проверяет scope токена; несколько scope разделяются пробелом
func hasScope(tokenScope string, required []string) bool {
	for _, scope := range strings.Fields(tokenScope) {
		if slices.Contains(required, scope) {
			return true
		}
	}
	return false
}

func (m *JWTMiddleware) handleAuthError(c *gin.Context, status int, message string, err error) {
	m.log.Warnw("HTTP authentication failed", "path", c.Request.URL.Path, "reason", message, "error", err)
	res.Error(c, status, res.ErrorResponse{Error: message, Code: "unauthorized"}, m.log)
}

// HMACTokenValidator проверяет токены, подписанные HS256
type HMACTokenValidator struct {
	Secret []byte
}

// Validate разбирает и проверяет токен
func (v *HMACTokenValidator) Validate(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, errors.New("malformed token")
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, errors.New("invalid token signature")
		case errors.Is(err, jwt.ErrTokenExpired), errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, errors.New("token expired")
		default:
			return nil, fmt.Errorf("invalid token: %w", err)
		}
	}

	if claims, ok := token.Claims.(*TokenClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token claims")
}
