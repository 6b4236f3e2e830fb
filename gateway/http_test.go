package gateway

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chat-hub/auth"
	"chat-hub/errors"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestBearerClaims(t *testing.T) {
	req := require.New(t)

	// No credentials at all
	r := httptest.NewRequest(http.MethodPut, "/account", nil)
	_, err := bearerClaims(r)
	req.ErrorIs(err, errors.ErrNotAuthenticated)

	// Wrong scheme
	r = httptest.NewRequest(http.MethodPut, "/account", nil)
	r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	_, err = bearerClaims(r)
	req.ErrorIs(err, errors.ErrInvalidToken)

	// Valid bearer token
	token, err := auth.GenerateToken("user-42", "alice", time.Hour)
	req.NoError(err)
	r = httptest.NewRequest(http.MethodPut, "/account", nil)
	r.Header.Set("Authorization", "Bearer "+string(token))
	claims, err := bearerClaims(r)
	req.NoError(err)
	req.Equal("user-42", claims.UserID)
}

func TestUpdateAccount_WithoutTokenIsUnauthorized(t *testing.T) {
	req := require.New(t)
	api := NewAPI(logs.GetLoggerFromLevel(slog.LevelDebug), nil, nil)

	r := httptest.NewRequest(http.MethodPut, "/account", nil)
	w := httptest.NewRecorder()
	api.handleUpdateAccount(w, r)

	req.Equal(http.StatusUnauthorized, w.Code)
	req.Contains(w.Body.String(), errors.ErrNotAuthenticated.Error())
}
