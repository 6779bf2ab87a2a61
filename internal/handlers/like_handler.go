package handlers

import (
	"github.com/anonto42/sone/backend/internal/core"
	"github.com/anonto42/sone/backend/internal/social"
	"github.com/labstack/echo/v4"
)

type likeRequest struct {
	Type string `form:"type" query:"type" validate:"required"`
	ID   string `form:"id" query:"id" validate:"max=64"`
}

type unlikePageRequest struct {
	Type       string `form:"type"`
	Post       string `form:"post" validate:"max=64"`
	Reply      string `form:"reply" validate:"max=64"`
	ReturnPage string `form:"returnPage" validate:"max=256"`
}

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	core *core.Core
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(c *core.Core) *LikeHandler {
	return &LikeHandler{core: c}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/like.ajax", h.Like)
	g.POST("/unlike.ajax", h.Unlike)
	g.POST("/unlike.html", h.UnlikePage)
}

// Like likes a post or reply that must exist
func (h *LikeHandler) Like(c echo.Context) error {
	actor, err := currentSone(c)
	if err != nil {
		return err
	}
	var req likeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return jsonError(c, errInvalidType)
	}
	kind, ok := social.ParseContentKind(req.Type)
	if !ok {
		return jsonError(c, errInvalidType)
	}

	if err := h.core.Graph.Like(actor, kind, req.ID); err != nil {
		if kind == social.KindReply {
			return jsonError(c, errInvalidReplyID)
		}
		return jsonError(c, errInvalidPostID)
	}
	return jsonSuccess(c)
}

// Unlike removes a like. Unliking something never liked succeeds.
func (h *LikeHandler) Unlike(c echo.Context) error {
	actor, err := currentSone(c)
	if err != nil {
		return err
	}
	var req likeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return jsonError(c, errInvalidType)
	}
	kind, ok := social.ParseContentKind(req.Type)
	if !ok {
		return jsonError(c, errInvalidType)
	}
	h.core.Graph.Unlike(actor, kind, req.ID)
	return jsonSuccess(c)
}

// UnlikePage removes a like and redirects back. Unknown types are ignored.
func (h *LikeHandler) UnlikePage(c echo.Context) error {
	actor, err := currentSone(c)
	if err != nil {
		return err
	}
	var req unlikePageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return redirectTo(c, req.ReturnPage)
	}

	switch kind, _ := social.ParseContentKind(req.Type); kind {
	case social.KindPost:
		h.core.Graph.Unlike(actor, kind, req.Post)
	case social.KindReply:
		h.core.Graph.Unlike(actor, kind, req.Reply)
	}
	return redirectTo(c, req.ReturnPage)
}
