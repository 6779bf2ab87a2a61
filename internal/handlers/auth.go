package handlers

import (
	"net/http"
	"time"

	"github.com/anonto42/sone/backend/internal/middleware"
	"github.com/anonto42/sone/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const tokenLifetime = 72 * time.Hour

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// AuthHandler exchanges Firebase ID tokens for local JWTs
type AuthHandler struct {
	verifier  middleware.TokenVerifier
	links     middleware.FirebaseLinker
	sones     middleware.SoneResolver
	jwtSecret string
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(verifier middleware.TokenVerifier, links middleware.FirebaseLinker, sones middleware.SoneResolver, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		verifier:  verifier,
		links:     links,
		sones:     sones,
		jwtSecret: jwtSecret,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/firebase-login", h.FirebaseLogin)
}

// FirebaseLogin verifies a Firebase ID token and issues a JWT naming the
// linked local Sone
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req FirebaseLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	token, err := h.verifier.VerifyIDToken(c.Request().Context(), req.IDToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token")
	}
	soneID, err := h.links.GetSoneIDByFirebaseUID(token.UID)
	if err != nil {
		return echo.NewHTTPError(http.StatusForbidden, "No Sone linked to this account")
	}
	if _, ok := h.sones.GetLocalSone(soneID); !ok {
		return echo.NewHTTPError(http.StatusForbidden, "Linked Sone is not loaded")
	}

	localJWT, err := h.generateJWT(soneID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate local JWT")
	}
	return c.JSON(http.StatusOK, echo.Map{"token": localJWT, "sone": soneID})
}

// generateJWT generates a JWT token for a local Sone
func (h *AuthHandler) generateJWT(soneID string) (string, error) {
	claims := &models.JwtCustomClaims{
		SoneID: soneID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenLifetime)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}
