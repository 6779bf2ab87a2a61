package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/sone/backend/internal/models"
	"github.com/anonto42/sone/backend/validators"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct{}

func (stubVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	if idToken == "bad" {
		return nil, errors.New("invalid token")
	}
	return &auth.Token{UID: idToken}, nil
}

type stubLinker map[string]string

func (s stubLinker) GetSoneIDByFirebaseUID(uid string) (string, error) {
	if id, ok := s[uid]; ok {
		return id, nil
	}
	return "", errors.New("record not found")
}

type stubSones map[string]*models.Sone

func (s stubSones) GetLocalSone(id string) (*models.Sone, bool) {
	sone, ok := s[id]
	return sone, ok
}

func TestAuthHandler_FirebaseLogin(t *testing.T) {
	e := echo.New()
	e.Validator = validators.NewValidator()
	h := NewAuthHandler(stubVerifier{}, stubLinker{"uid-1": "alice", "uid-2": "gone"},
		stubSones{"alice": models.NewSone("alice", "Alice", true)}, "secret")

	login := func(body string) (*httptest.ResponseRecorder, error) {
		req := httptest.NewRequest(http.MethodPost, "/auth/firebase-login", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		return rec, h.FirebaseLogin(e.NewContext(req, rec))
	}

	t.Run("issues a token for the linked sone", func(t *testing.T) {
		rec, err := login(`{"idToken":"uid-1"}`)
		require.NoError(t, err)
		body := decode(t, rec)
		assert.Equal(t, "alice", body["sone"])

		claims := &models.JwtCustomClaims{}
		_, err = jwt.ParseWithClaims(body["token"].(string), claims, func(*jwt.Token) (interface{}, error) {
			return []byte("secret"), nil
		})
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.SoneID)
	})

	tests := []struct {
		name string
		body string
		code int
	}{
		{"missing token", `{}`, http.StatusBadRequest},
		{"invalid token", `{"idToken":"bad"}`, http.StatusUnauthorized},
		{"unlinked account", `{"idToken":"uid-3"}`, http.StatusForbidden},
		{"sone not loaded", `{"idToken":"uid-2"}`, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := login(tt.body)
			var he *echo.HTTPError
			require.ErrorAs(t, err, &he)
			assert.Equal(t, tt.code, he.Code)
		})
	}
}
