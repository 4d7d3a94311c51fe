package handler_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/video-share/internal/apperror"
	"github.com/sakif/video-share/internal/auth"
	"github.com/sakif/video-share/internal/handler"
	"github.com/sakif/video-share/internal/model"
	"github.com/sakif/video-share/internal/service"
)

// =========================================================================
// HandleRegister TESTS
// =========================================================================

func TestAuthHandler_HandleRegister(t *testing.T) {
	t.Run("created with token", func(t *testing.T) {
		fa := &fakeAuth{result: &service.AuthResult{User: &model.User{ID: "u1"}, Token: "jwt-token"}}
		h := handler.NewAuthHandler(fa, testLogger())

		req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
			strings.NewReader(`{"email":"user@example.com","password":"Passw0rd!"}`))
		rr := httptest.NewRecorder()

		h.HandleRegister(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.JSONEq(t, `{"token":"jwt-token"}`, rr.Body.String())
		assert.Equal(t, [2]string{"user@example.com", "Passw0rd!"}, fa.gotArgs)
	})

	t.Run("validation error names the field", func(t *testing.T) {
		fa := &fakeAuth{err: apperror.ValidationFailed("password", "password is too weak")}
		h := handler.NewAuthHandler(fa, testLogger())

		req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
			strings.NewReader(`{"email":"user@example.com","password":"weak"}`))
		rr := httptest.NewRecorder()

		h.HandleRegister(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		var body handler.ErrorResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.Equal(t, "validation_error", body.Error)
		assert.Equal(t, "password", body.Field)
	})

	t.Run("email in use is 409", func(t *testing.T) {
		h := handler.NewAuthHandler(&fakeAuth{err: apperror.EmailInUse()}, testLogger())

		req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
			strings.NewReader(`{"email":"user@example.com","password":"Passw0rd!"}`))
		rr := httptest.NewRecorder()

		h.HandleRegister(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.JSONEq(t, `{"error":"conflict","message":"Email already in use","field":"email"}`, rr.Body.String())
	})

	t.Run("malformed JSON", func(t *testing.T) {
		h := handler.NewAuthHandler(&fakeAuth{}, testLogger())

		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(`{"email":`))
		rr := httptest.NewRecorder()

		h.HandleRegister(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("empty body", func(t *testing.T) {
		h := handler.NewAuthHandler(&fakeAuth{}, testLogger())

		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(""))
		rr := httptest.NewRecorder()

		h.HandleRegister(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unexpected error is a generic 500", func(t *testing.T) {
		h := handler.NewAuthHandler(&fakeAuth{err: errors.New("pq: relation users does not exist")}, testLogger())

		req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
			strings.NewReader(`{"email":"user@example.com","password":"Passw0rd!"}`))
		rr := httptest.NewRecorder()

		h.HandleRegister(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "relation")
	})
}

// =========================================================================
// HandleLogin TESTS
// =========================================================================

func TestAuthHandler_HandleLogin(t *testing.T) {
	t.Run("ok with token", func(t *testing.T) {
		fa := &fakeAuth{result: &service.AuthResult{User: &model.User{ID: "u1"}, Token: "jwt-token"}}
		h := handler.NewAuthHandler(fa, testLogger())

		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"email":"user@example.com","password":"Passw0rd!"}`))
		rr := httptest.NewRecorder()

		h.HandleLogin(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"token":"jwt-token"}`, rr.Body.String())
	})

	t.Run("bad credentials are 401", func(t *testing.T) {
		h := handler.NewAuthHandler(&fakeAuth{err: apperror.Unauthorized()}, testLogger())

		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"email":"user@example.com","password":"nope"}`))
		rr := httptest.NewRecorder()

		h.HandleLogin(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.JSONEq(t, `{"error":"unauthorized","message":"Unauthorized"}`, rr.Body.String())
	})
}

// =========================================================================
// HandleMe TESTS
// =========================================================================

func TestAuthHandler_HandleMe(t *testing.T) {
	ts := newTokens(t)
	fa := &fakeAuth{users: map[string]*model.User{
		"u1": {ID: "u1", Email: "user@example.com", PasswordHash: "secret-digest", CreatedAt: time.Now()},
	}}
	h := handler.NewAuthHandler(fa, testLogger())
	protected := auth.RequireAuth(ts)(http.HandlerFunc(h.HandleMe))

	t.Run("returns the profile without the digest", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.Header.Set("Authorization", bearer(t, ts, "u1", "user@example.com"))
		rr := httptest.NewRecorder()

		protected.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var body map[string]any
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.Equal(t, "u1", body["id"])
		assert.Equal(t, "user@example.com", body["email"])
		assert.NotContains(t, rr.Body.String(), "secret-digest")
	})

	t.Run("token for a deleted account is 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.Header.Set("Authorization", bearer(t, ts, "gone", "gone@example.com"))
		rr := httptest.NewRecorder()

		protected.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("no guard in front is 401", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.HandleMe(rr, httptest.NewRequest(http.MethodGet, "/api/me", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
