package middleware

import (
	"github.com/anonto42/sone/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// CurrentSoneKey is the echo context key holding the authenticated *models.Sone
const CurrentSoneKey = "currentSone"

// SoneResolver resolves a local Sone by id.
type SoneResolver interface {
	GetLocalSone(id string) (*models.Sone, bool)
}

// CurrentSone returns the Sone stored by one of the auth middlewares
func CurrentSone(c echo.Context) *models.Sone {
	sone, _ := c.Get(CurrentSoneKey).(*models.Sone)
	return sone
}
