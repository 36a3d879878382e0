package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	jwt_internal "github.com/itchan-dev/anonboard/shared/jwt"
	"github.com/itchan-dev/anonboard/shared/logger"
	"github.com/itchan-dev/anonboard/shared/utils"
)

// Key to store the operator subject in the request context
type key int

const OperatorKey key = 0

// Auth guards maintenance endpoints with operator tokens.
type Auth struct {
	jwtService jwt_internal.JwtService
}

func NewAuth(jwtService jwt_internal.JwtService) *Auth {
	return &Auth{jwtService: jwtService}
}

// extractOperator reads a Bearer token and returns its subject.
func (a *Auth) extractOperator(r *http.Request) (string, error) {
	tokenString, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !found || tokenString == "" {
		return "", errNoToken
	}

	token, err := a.jwtService.DecodeToken(tokenString)
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errInvalidClaims
	}
	isOperator, ok := claims[jwt_internal.OperatorClaim].(bool)
	if !ok {
		return "", errInvalidClaims
	}
	if !isOperator {
		return "", errNotOperator
	}
	subject, _ := claims["sub"].(string)
	if subject == "" {
		subject = "operator"
	}
	return subject, nil
}

var (
	errNoToken       = errors.New("no token")
	errInvalidClaims = errors.New("invalid claims")
	errNotOperator   = errors.New("not an operator")
)

// OperatorOnly returns middleware that requires a valid operator token.
func (a *Auth) OperatorOnly() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			operator, err := a.extractOperator(r)
			if err != nil {
				switch {
				case errors.Is(err, errNoToken):
					http.Error(w, "Operator token required", http.StatusUnauthorized)
				case errors.Is(err, errInvalidClaims):
					logger.Log.Warn("invalid operator token claims")
					http.Error(w, "Invalid token", http.StatusUnauthorized)
				case errors.Is(err, errNotOperator):
					http.Error(w, "Access denied. Only for operators", http.StatusForbidden)
				default:
					utils.WriteErrorAndStatusCode(w, err)
				}
				return
			}

			ctx := context.WithValue(r.Context(), OperatorKey, operator)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetOperatorFromContext returns the operator subject, or "" for ordinary requests.
func GetOperatorFromContext(r *http.Request) string {
	operator, _ := r.Context().Value(OperatorKey).(string)
	return operator
}
