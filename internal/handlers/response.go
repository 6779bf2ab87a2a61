package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/anonto42/sone/backend/internal/middleware"
	"github.com/anonto42/sone/backend/internal/models"
	"github.com/labstack/echo/v4"
)

const (
	defaultReturnPage = "index.html"
	maxReturnPage     = 256
)

// Error codes of the ajax payloads
const (
	errInvalidSoneID  = "invalid-sone-id"
	errInvalidPostID  = "invalid-post-id"
	errInvalidReplyID = "invalid-reply-id"
	errInvalidType    = "invalid-type"
)

func jsonSuccess(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// jsonError answers with 200 and success=false; ajax callers only look at
// the payload.
func jsonError(c echo.Context, code string) error {
	return c.JSON(http.StatusOK, echo.Map{"success": false, "error": code})
}

func currentSone(c echo.Context) (*models.Sone, error) {
	sone := middleware.CurrentSone(c)
	if sone == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	return sone, nil
}

// redirectTo sends the browser to a page of this service. Anything a
// browser could resolve to another host falls back to the index page.
func redirectTo(c echo.Context, page string) error {
	return c.Redirect(http.StatusFound, safeReturnPage(page))
}

// browsers drop these before resolving a location
var urlWhitespace = strings.NewReplacer("\t", "", "\n", "", "\r", "")

func safeReturnPage(page string) string {
	if page == "" || len(page) > maxReturnPage {
		return defaultReturnPage
	}
	cleaned := urlWhitespace.Replace(page)
	if strings.HasPrefix(cleaned, "\\") || strings.HasPrefix(cleaned, "//") || strings.HasPrefix(cleaned, "/\\") {
		return defaultReturnPage
	}
	parsed, err := url.Parse(cleaned)
	if err != nil || parsed.Scheme != "" || parsed.Host != "" {
		return defaultReturnPage
	}
	return cleaned
}

// bindAndValidate binds request parameters into req and runs the validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	return c.Validate(req)
}
