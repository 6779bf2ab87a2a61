package handlers

import (
	"net/url"
	"regexp"

	"github.com/anonto42/sone/backend/internal/core"
	"github.com/labstack/echo/v4"
)

var soneListSeparator = regexp.MustCompile(`[ ,]+`)

type soneRequest struct {
	Sone string `form:"sone" query:"sone" validate:"required,max=64"`
}

type blockPageRequest struct {
	Sone string `form:"sone" validate:"required,max=64"`
}

type unfollowPageRequest struct {
	Sone       string `form:"sone" validate:"required"`
	ReturnPage string `form:"returnPage" validate:"max=256"`
}

// SoneHandler handles follow, block and lock requests
type SoneHandler struct {
	core *core.Core
}

// NewSoneHandler creates a new SoneHandler
func NewSoneHandler(c *core.Core) *SoneHandler {
	return &SoneHandler{core: c}
}

// RegisterSoneRoutes registers follow and lock routes
func (h *SoneHandler) RegisterSoneRoutes(g *echo.Group) {
	g.POST("/followSone.ajax", h.FollowSone)
	g.POST("/unfollowSone.ajax", h.UnfollowSone)
	g.POST("/unfollowSone.html", h.UnfollowSonePage)
	g.POST("/blockSone.html", h.BlockSonePage)
	g.POST("/unblockSone.html", h.UnblockSonePage)
	g.POST("/lockSone.ajax", h.LockSone)
	g.POST("/unlockSone.ajax", h.UnlockSone)
}

// FollowSone follows a Sone that must exist
func (h *SoneHandler) FollowSone(c echo.Context) error {
	actor, err := currentSone(c)
	if err != nil {
		return err
	}
	var req soneRequest
	if err := bindAndValidate(c, &req); err != nil {
		return jsonError(c, errInvalidSoneID)
	}
	if err := h.core.Graph.Follow(actor, req.Sone); err != nil {
		return jsonError(c, errInvalidSoneID)
	}
	return jsonSuccess(c)
}

// UnfollowSone unfollows a Sone. The id is not checked for existence so a
// vanished Sone can still be unfollowed.
func (h *SoneHandler) UnfollowSone(c echo.Context) error {
	actor, err := currentSone(c)
	if err != nil {
		return err
	}
	var req soneRequest
	if err := bindAndValidate(c, &req); err != nil {
		return jsonError(c, errInvalidSoneID)
	}
	h.core.Graph.Unfollow(actor, req.Sone)
	return jsonSuccess(c)
}

// UnfollowSonePage unfollows every id of a space or comma separated list
func (h *SoneHandler) UnfollowSonePage(c echo.Context) error {
	actor, err := currentSone(c)
	if err != nil {
		return err
	}
	var req unfollowPageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return redirectTo(c, req.ReturnPage)
	}

	var ids []string
	for _, id := range soneListSeparator.Split(req.Sone, -1) {
		if id != "" {
			ids = append(ids, id)
		}
	}
	h.core.Graph.UnfollowAll(actor, ids)
	return redirectTo(c, req.ReturnPage)
}

// BlockSonePage blocks a Sone and returns to its page
func (h *SoneHandler) BlockSonePage(c echo.Context) error {
	return h.setBlocked(c, true)
}

// UnblockSonePage unblocks a Sone and returns to its page. Like unfollowing,
// it works for ids that no longer resolve.
func (h *SoneHandler) UnblockSonePage(c echo.Context) error {
	return h.setBlocked(c, false)
}

func (h *SoneHandler) setBlocked(c echo.Context, blocked bool) error {
	actor, err := currentSone(c)
	if err != nil {
		return err
	}
	var req blockPageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return redirectTo(c, defaultReturnPage)
	}

	if blocked {
		h.core.Graph.Block(actor, req.Sone)
	} else {
		h.core.Graph.Unblock(actor, req.Sone)
	}
	return redirectTo(c, "viewSone.html?"+url.Values{"sone": {req.Sone}}.Encode())
}

// LockSone locks a local Sone
func (h *SoneHandler) LockSone(c echo.Context) error {
	return h.setLocked(c, true)
}

// UnlockSone unlocks a local Sone
func (h *SoneHandler) UnlockSone(c echo.Context) error {
	return h.setLocked(c, false)
}

func (h *SoneHandler) setLocked(c echo.Context, locked bool) error {
	if _, err := currentSone(c); err != nil {
		return err
	}
	var req soneRequest
	if err := bindAndValidate(c, &req); err != nil {
		return jsonError(c, errInvalidSoneID)
	}

	update := h.core.UnlockSone
	if locked {
		update = h.core.LockSone
	}
	if err := update(req.Sone); err != nil {
		return jsonError(c, errInvalidSoneID)
	}
	return jsonSuccess(c)
}
