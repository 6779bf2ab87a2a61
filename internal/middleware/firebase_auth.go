package middleware

import (
	"context"
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
)

// TokenVerifier verifies Firebase ID tokens; *auth.Client implements it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseLinker maps a Firebase user to the id of its local Sone.
type FirebaseLinker interface {
	GetSoneIDByFirebaseUID(firebaseUID string) (string, error)
}

// FirebaseAuthMiddleware verifies a Firebase ID token and resolves the local
// Sone linked to the Firebase user.
func FirebaseAuthMiddleware(verifier TokenVerifier, links FirebaseLinker, sones SoneResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			idToken, err := bearerToken(c)
			if err != nil {
				return err
			}

			token, err := verifier.VerifyIDToken(c.Request().Context(), idToken)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired ID token")
			}

			soneID, err := links.GetSoneIDByFirebaseUID(token.UID)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "No Sone linked to this account")
			}
			sone, ok := sones.GetLocalSone(soneID)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unknown local Sone")
			}

			c.Set("firebaseUID", token.UID)
			c.Set(CurrentSoneKey, sone)
			return next(c)
		}
	}
}
