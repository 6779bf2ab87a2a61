package handlers

import (
	"errors"
	"net/url"

	"github.com/anonto42/sone/backend/internal/albums"
	"github.com/anonto42/sone/backend/internal/core"
	"github.com/labstack/echo/v4"
)

type editAlbumRequest struct {
	Album       string `form:"album" validate:"max=36"`
	MoveLeft    string `form:"moveLeft" validate:"max=4"`
	MoveRight   string `form:"moveRight" validate:"max=4"`
	Title       string `form:"title" validate:"max=100"`
	Description string `form:"description" validate:"max=1000"`
}

// AlbumHandler handles album reordering and editing
type AlbumHandler struct {
	core *core.Core
}

// NewAlbumHandler creates a new AlbumHandler
func NewAlbumHandler(c *core.Core) *AlbumHandler {
	return &AlbumHandler{core: c}
}

// RegisterAlbumRoutes registers album routes
func (h *AlbumHandler) RegisterAlbumRoutes(g *echo.Group) {
	g.POST("/editAlbum.html", h.EditAlbum)
}

// EditAlbum moves an album left or right among its siblings, or changes its
// title and description.
func (h *AlbumHandler) EditAlbum(c echo.Context) error {
	actor, err := currentSone(c)
	if err != nil {
		return err
	}
	var req editAlbumRequest
	if err := bindAndValidate(c, &req); err != nil {
		return redirectTo(c, "invalid.html")
	}

	var target string
	switch {
	case req.MoveLeft == "true":
		target, err = h.core.Albums.MoveUp(actor, req.Album)
	case req.MoveRight == "true":
		target, err = h.core.Albums.MoveDown(actor, req.Album)
	default:
		target = req.Album
		err = h.core.Albums.Edit(actor, req.Album, req.Title, req.Description)
	}

	switch {
	case errors.Is(err, albums.ErrInvalidAlbum):
		return redirectTo(c, "invalid.html")
	case errors.Is(err, albums.ErrPermissionDenied):
		return redirectTo(c, "noPermission.html")
	case errors.Is(err, albums.ErrAlbumTitleMustNotBeEmpty):
		return redirectTo(c, "emptyAlbumTitle.html")
	case err != nil:
		return err
	}
	return redirectTo(c, "imageBrowser.html?album="+url.QueryEscape(target))
}
