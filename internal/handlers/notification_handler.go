package handlers

import (
	"net/http"
	"strings"

	"github.com/anonto42/sone/backend/internal/core"
	"github.com/anonto42/sone/backend/internal/models"
	"github.com/labstack/echo/v4"
)

type dismissRequest struct {
	Notification string `form:"notification" query:"notification" validate:"max=36"`
	ReturnPage   string `form:"returnPage" query:"returnPage" validate:"max=256"`
}

type markAsKnownRequest struct {
	Type string `form:"type" query:"type"`
	ID   string `form:"id" query:"id"`
}

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	core *core.Core
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(c *core.Core) *NotificationHandler {
	return &NotificationHandler{core: c}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.POST("/dismissNotification.html", h.DismissNotificationPage)
	g.GET("/dismissNotification.ajax", h.DismissNotification)
	g.GET("/getNotifications.ajax", h.GetNotifications)
	g.POST("/markAsKnown.ajax", h.MarkAsKnown)
}

// DismissNotificationPage dismisses a notification and redirects back.
// Unknown and non-dismissable notifications are left alone.
func (h *NotificationHandler) DismissNotificationPage(c echo.Context) error {
	var req dismissRequest
	if err := bindAndValidate(c, &req); err != nil {
		return redirectTo(c, req.ReturnPage)
	}
	h.core.Registry.Dismiss(req.Notification)
	return redirectTo(c, req.ReturnPage)
}

// DismissNotification always reports success so callers cannot find out which
// notification ids exist.
func (h *NotificationHandler) DismissNotification(c echo.Context) error {
	var req dismissRequest
	if err := bindAndValidate(c, &req); err == nil {
		h.core.Registry.Dismiss(req.Notification)
	}
	return jsonSuccess(c)
}

// GetNotifications returns the active notifications, newest first
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	if _, err := currentSone(c); err != nil {
		return err
	}

	active := h.core.Registry.Active()
	views := make([]models.NotificationView, 0, len(active))
	for _, n := range active {
		elements := n.ElementIDs()
		if elements == nil {
			elements = []string{}
		}
		views = append(views, models.NotificationView{
			ID:          n.ID(),
			Dismissable: n.IsDismissable(),
			Elements:    elements,
			LastUpdated: n.LastUpdated(),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "notifications": views})
}

// MarkAsKnown marks a comma separated list of posts or Sones known
func (h *NotificationHandler) MarkAsKnown(c echo.Context) error {
	if _, err := currentSone(c); err != nil {
		return err
	}
	var req markAsKnownRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, errInvalidType)
	}

	var ids []string
	for _, id := range strings.Split(req.ID, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	switch req.Type {
	case "post":
		h.core.MarkPostsKnown(ids)
	case "sone":
		for _, id := range ids {
			// unknown Sones are skipped like unknown posts
			_ = h.core.MarkSoneKnown(id)
		}
	default:
		return jsonError(c, errInvalidType)
	}
	return jsonSuccess(c)
}
