package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	jwt_internal "github.com/itchan-dev/anonboard/shared/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestOperatorOnly(t *testing.T) {
	jwtService := jwt_internal.New("test_secret", time.Hour)
	operatorToken, err := jwtService.NewOperatorToken("maint")
	require.NoError(t, err)
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name             string
		authorization    string
		expectedStatus   int
		expectedOperator string
	}{
		{name: "Valid operator token", authorization: "Bearer " + operatorToken, expectedStatus: http.StatusOK, expectedOperator: "maint"},
		{name: "No token", authorization: "", expectedStatus: http.StatusUnauthorized},
		{name: "Not a bearer token", authorization: "Basic abc", expectedStatus: http.StatusUnauthorized},
		{name: "Invalid token", authorization: "Bearer invalid_token", expectedStatus: http.StatusUnauthorized},
		{name: "Wrong key", authorization: "Bearer " + signed(t, "other", jwt.MapClaims{"operator": true, "exp": exp}), expectedStatus: http.StatusUnauthorized},
		{name: "Missing operator claim", authorization: "Bearer " + signed(t, "test_secret", jwt.MapClaims{"sub": "x", "exp": exp}), expectedStatus: http.StatusUnauthorized},
		{name: "Operator claim false", authorization: "Bearer " + signed(t, "test_secret", jwt.MapClaims{"operator": false, "exp": exp}), expectedStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("DELETE", "http://example.com/api/admin/threads", nil)
			if tt.authorization != "" {
				req.Header.Set("Authorization", tt.authorization)
			}
			rr := httptest.NewRecorder()

			var seen string
			handler := NewAuth(jwtService).OperatorOnly()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetOperatorFromContext(r)
				w.WriteHeader(http.StatusOK)
			}))
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, tt.expectedOperator, seen)
		})
	}
}

func TestGetOperatorFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	assert.Equal(t, "", GetOperatorFromContext(req))
}

func TestExtractOperatorErrors(t *testing.T) {
	jwtService := jwt_internal.New("test_secret", time.Hour)
	auth := NewAuth(jwtService)
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name          string
		authorization string
		want          error
	}{
		{name: "No token", authorization: "", want: errNoToken},
		{name: "Missing operator claim", authorization: "Bearer " + signed(t, "test_secret", jwt.MapClaims{"sub": "x", "exp": exp}), want: errInvalidClaims},
		{name: "Operator claim false", authorization: "Bearer " + signed(t, "test_secret", jwt.MapClaims{"operator": false, "exp": exp}), want: errNotOperator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("DELETE", "/api/admin/threads", nil)
			if tt.authorization != "" {
				req.Header.Set("Authorization", tt.authorization)
			}
			_, err := auth.extractOperator(req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestOperatorOnlyMessages(t *testing.T) {
	jwtService := jwt_internal.New("test_secret", time.Hour)
	handler := NewAuth(jwtService).OperatorOnly()(okHandler())
	exp := time.Now().Add(time.Hour).Unix()

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("DELETE", "/api/admin/threads", nil))
	assert.Equal(t, "Operator token required\n", rr.Body.String())

	req := httptest.NewRequest("DELETE", "/api/admin/threads", nil)
	req.Header.Set("Authorization", "Bearer "+signed(t, "test_secret", jwt.MapClaims{"operator": false, "exp": exp}))
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, "Access denied. Only for operators\n", rr.Body.String())
}
