package middleware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"mealmart/internal/common"
	"mealmart/internal/repositories"
)

// TokenVerifier validates a raw bearer token and returns the email claim.
// Both the HTTP middleware and the websocket room authorizer go through it.
type TokenVerifier interface {
	Verify(token string) (email string, err error)
}

type hmacVerifier struct {
	secret []byte
}

// NewHMACVerifier verifies tokens signed with a shared HS256 secret.
func NewHMACVerifier(secret string) TokenVerifier {
	return &hmacVerifier{secret: []byte(secret)}
}

func (v *hmacVerifier) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return "", err
	}
	return emailClaim(token)
}

type jwksVerifier struct {
	jwks *keyfunc.JWKS
}

// NewJWKSVerifier verifies tokens against the identity provider's published
// key set, refreshing keys in the background.
func NewJWKSVerifier(jwksURL string) (TokenVerifier, error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch jwks: %w", err)
	}
	return &jwksVerifier{jwks: jwks}, nil
}

func (v *jwksVerifier) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, v.jwks.Keyfunc)
	if err != nil {
		return "", err
	}
	return emailClaim(token)
}

func emailClaim(token *jwt.Token) (string, error) {
	if !token.Valid {
		return "", errors.New("token not valid")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}
	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return "", errors.New("missing email claim")
	}
	return email, nil
}

// JWTMiddleware validates the bearer token and loads the matching user into
// the request context. Unknown emails pass through with only the email set so
// that the ensure-user endpoint can create the row.
func JWTMiddleware(userRepo repositories.UserRepository, verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return common.SendError(c, common.UnauthorizedError("missing token"))
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				return common.SendError(c, common.UnauthorizedError("invalid token format"))
			}

			email, err := verifier.Verify(tokenString)
			if err != nil {
				return common.SendError(c, common.UnauthorizedError("invalid token"))
			}

			ctx := common.WithEmail(c.Request().Context(), email)
			user, err := userRepo.GetByEmail(ctx, email)
			if err == nil {
				ctx = common.WithUser(ctx, user)
			}
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// RequireAdmin rejects requests whose authenticated user is not an admin.
// It must run after JWTMiddleware.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := common.GetUserFromContext(c.Request().Context())
			if !ok {
				return common.SendError(c, common.UnauthorizedError("authentication required"))
			}
			if !user.IsAdmin {
				return common.SendError(c, common.ForbiddenError("admin access required"))
			}
			return next(c)
		}
	}
}
