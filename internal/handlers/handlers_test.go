package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/anonto42/sone/backend/internal/core"
	"github.com/anonto42/sone/backend/internal/events"
	"github.com/anonto42/sone/backend/internal/middleware"
	"github.com/anonto42/sone/backend/internal/models"
	"github.com/anonto42/sone/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopToucher struct{}

func (nopToucher) TouchConfiguration() {}

type nopKnownStore struct{}

func (nopKnownStore) MarkKnown(context.Context, string) error { return nil }

type nopDelayer struct{}

func (nopDelayer) After(time.Duration, func()) func() bool { return func() bool { return true } }

type testEnv struct {
	e     *echo.Echo
	core  *core.Core
	alice *models.Sone
	bob   *models.Sone
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	e := echo.New()
	e.Validator = validators.NewValidator()

	c := core.New(core.Deps{Toucher: nopToucher{}, KnownStore: nopKnownStore{}, Delayer: nopDelayer{}}, core.Options{})
	env := &testEnv{
		e:     e,
		core:  c,
		alice: models.NewSone("alice", "Alice", true),
		bob:   models.NewSone("bob", "Bob", false),
	}
	c.SoneDiscovered(env.alice, false)
	c.SoneDiscovered(env.bob, false)
	return env
}

// call runs h for a request carrying form (POST) or query (GET) values,
// with alice as the current Sone unless anonymous is set.
func (env *testEnv) call(t *testing.T, method string, values url.Values, h echo.HandlerFunc, anonymous bool) (*httptest.ResponseRecorder, error) {
	t.Helper()
	var req *http.Request
	if method == http.MethodGet {
		req = httptest.NewRequest(method, "/?"+values.Encode(), nil)
	} else {
		req = httptest.NewRequest(method, "/", strings.NewReader(values.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	rec := httptest.NewRecorder()
	c := env.e.NewContext(req, rec)
	if !anonymous {
		c.Set(middleware.CurrentSoneKey, env.alice)
	}
	return rec, h(c)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func assertSuccess(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["success"])
}

func assertErrorCode(t *testing.T, rec *httptest.ResponseRecorder, code string) {
	t.Helper()
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, code, body["error"])
}

func TestSoneHandler_Follow(t *testing.T) {
	env := setupEnv(t)
	h := NewSoneHandler(env.core)

	rec, err := env.call(t, http.MethodPost, url.Values{"sone": {"bob"}}, h.FollowSone, false)
	require.NoError(t, err)
	assertSuccess(t, rec)
	assert.True(t, env.alice.IsFollowing("bob"))

	for _, id := range []string{"", "carol", "alice"} {
		rec, err = env.call(t, http.MethodPost, url.Values{"sone": {id}}, h.FollowSone, false)
		require.NoError(t, err)
		assertErrorCode(t, rec, errInvalidSoneID)
	}
	assert.Equal(t, []string{"bob"}, env.alice.FollowedIDs())
}

func TestSoneHandler_Unfollow(t *testing.T) {
	env := setupEnv(t)
	h := NewSoneHandler(env.core)
	env.alice.Follow("bob")
	env.alice.Follow("gone")

	t.Run("ajax unfollows without existence check", func(t *testing.T) {
		rec, err := env.call(t, http.MethodPost, url.Values{"sone": {"gone"}}, h.UnfollowSone, false)
		require.NoError(t, err)
		assertSuccess(t, rec)
		assert.False(t, env.alice.IsFollowing("gone"))
	})

	t.Run("ajax without sone", func(t *testing.T) {
		rec, err := env.call(t, http.MethodPost, url.Values{}, h.UnfollowSone, false)
		require.NoError(t, err)
		assertErrorCode(t, rec, errInvalidSoneID)
	})

	t.Run("page unfollows a list", func(t *testing.T) {
		env.alice.Follow("carol")
		values := url.Values{"sone": {"bob, carol  x"}, "returnPage": {"viewSone.html?sone=bob"}}
		rec, err := env.call(t, http.MethodPost, values, h.UnfollowSonePage, false)
		require.NoError(t, err)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "viewSone.html?sone=bob", rec.Header().Get(echo.HeaderLocation))
		assert.Empty(t, env.alice.FollowedIDs())
	})
}

func TestSoneHandler_BlockUnblock(t *testing.T) {
	env := setupEnv(t)
	h := NewSoneHandler(env.core)

	rec, err := env.call(t, http.MethodPost, url.Values{"sone": {"bob"}}, h.BlockSonePage, false)
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "viewSone.html?sone=bob", rec.Header().Get(echo.HeaderLocation))
	assert.True(t, env.alice.IsBlocked("bob"))

	rec, err = env.call(t, http.MethodPost, url.Values{"sone": {"bob"}}, h.UnblockSonePage, false)
	require.NoError(t, err)
	assert.Equal(t, "viewSone.html?sone=bob", rec.Header().Get(echo.HeaderLocation))
	assert.False(t, env.alice.IsBlocked("bob"))

	t.Run("unknown id is unblocked without error", func(t *testing.T) {
		env.alice.Block("gone")
		rec, err := env.call(t, http.MethodPost, url.Values{"sone": {"gone"}}, h.UnblockSonePage, false)
		require.NoError(t, err)
		assert.Equal(t, "viewSone.html?sone=gone", rec.Header().Get(echo.HeaderLocation))
		assert.Empty(t, env.alice.BlockedIDs())
	})

	t.Run("missing id goes to the index", func(t *testing.T) {
		rec, err := env.call(t, http.MethodPost, url.Values{}, h.UnblockSonePage, false)
		require.NoError(t, err)
		assert.Equal(t, "index.html", rec.Header().Get(echo.HeaderLocation))
	})

	t.Run("anonymous request is rejected", func(t *testing.T) {
		_, err := env.call(t, http.MethodPost, url.Values{"sone": {"bob"}}, h.UnblockSonePage, true)
		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})
}

func TestSoneHandler_Lock(t *testing.T) {
	env := setupEnv(t)
	h := NewSoneHandler(env.core)

	rec, err := env.call(t, http.MethodPost, url.Values{"sone": {"alice"}}, h.LockSone, false)
	require.NoError(t, err)
	assertSuccess(t, rec)
	assert.True(t, env.alice.IsLocked())
	assert.Equal(t, []string{"alice"}, env.core.Notifications.LockedSones.ElementIDs())

	rec, err = env.call(t, http.MethodPost, url.Values{"sone": {"alice"}}, h.UnlockSone, false)
	require.NoError(t, err)
	assertSuccess(t, rec)
	assert.False(t, env.alice.IsLocked())

	for _, values := range []url.Values{{}, {"sone": {"bob"}}, {"sone": {"invalid"}}} {
		rec, err = env.call(t, http.MethodPost, values, h.UnlockSone, false)
		require.NoError(t, err)
		assertErrorCode(t, rec, errInvalidSoneID)
	}
}

func TestLikeHandler(t *testing.T) {
	env := setupEnv(t)
	h := NewLikeHandler(env.core)
	env.core.PostDiscovered(&models.Post{ID: "p1", SoneID: "bob"})
	env.core.ReplyDiscovered(&models.Reply{ID: "r1", PostID: "p1", SoneID: "bob"})

	tests := []struct {
		name   string
		values url.Values
		want   string
	}{
		{"like post", url.Values{"type": {"post"}, "id": {"p1"}}, ""},
		{"like reply", url.Values{"type": {"reply"}, "id": {"r1"}}, ""},
		{"unknown post", url.Values{"type": {"post"}, "id": {"p9"}}, errInvalidPostID},
		{"unknown reply", url.Values{"type": {"reply"}, "id": {"r9"}}, errInvalidReplyID},
		{"bad type", url.Values{"type": {"image"}, "id": {"p1"}}, errInvalidType},
		{"missing type", url.Values{"id": {"p1"}}, errInvalidType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := env.call(t, http.MethodPost, tt.values, h.Like, false)
			require.NoError(t, err)
			if tt.want == "" {
				assertSuccess(t, rec)
				return
			}
			assertErrorCode(t, rec, tt.want)
		})
	}
	assert.Equal(t, []string{"p1"}, env.alice.LikedPostIDs())
	assert.Equal(t, []string{"r1"}, env.alice.LikedReplyIDs())

	t.Run("unlike never liked post succeeds", func(t *testing.T) {
		rec, err := env.call(t, http.MethodPost, url.Values{"type": {"post"}, "id": {"p9"}}, h.Unlike, false)
		require.NoError(t, err)
		assertSuccess(t, rec)
	})

	t.Run("unlike with bad type", func(t *testing.T) {
		rec, err := env.call(t, http.MethodPost, url.Values{"type": {"image"}, "id": {"p1"}}, h.Unlike, false)
		require.NoError(t, err)
		assertErrorCode(t, rec, errInvalidType)
		assert.Equal(t, []string{"p1"}, env.alice.LikedPostIDs())
	})

	t.Run("unlike page", func(t *testing.T) {
		values := url.Values{"type": {"reply"}, "reply": {"r1"}, "returnPage": {"https://evil.example"}}
		rec, err := env.call(t, http.MethodPost, values, h.UnlikePage, false)
		require.NoError(t, err)
		assert.Equal(t, defaultReturnPage, rec.Header().Get(echo.HeaderLocation))
		assert.Empty(t, env.alice.LikedReplyIDs())
	})
}

func TestNotificationHandler_Dismiss(t *testing.T) {
	env := setupEnv(t)
	h := NewNotificationHandler(env.core)
	require.NoError(t, env.core.LockSone("alice"))

	t.Run("ajax reports success for unknown ids", func(t *testing.T) {
		rec, err := env.call(t, http.MethodGet, url.Values{"notification": {"does-not-exist"}}, h.DismissNotification, false)
		require.NoError(t, err)
		assertSuccess(t, rec)
	})

	t.Run("non-dismissable notification stays", func(t *testing.T) {
		rec, err := env.call(t, http.MethodGet, url.Values{"notification": {events.NewSoneID}}, h.DismissNotification, false)
		require.NoError(t, err)
		assertSuccess(t, rec)
		assert.Equal(t, []string{"bob"}, env.core.Notifications.NewSones.ElementIDs())
	})

	t.Run("page dismisses and redirects", func(t *testing.T) {
		values := url.Values{"notification": {events.LockedSonesID}, "returnPage": {"index.html"}}
		rec, err := env.call(t, http.MethodPost, values, h.DismissNotificationPage, false)
		require.NoError(t, err)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "index.html", rec.Header().Get(echo.HeaderLocation))
		assert.True(t, env.core.Notifications.LockedSones.IsEmpty())
	})
}

func TestNotificationHandler_GetNotifications(t *testing.T) {
	env := setupEnv(t)
	h := NewNotificationHandler(env.core)

	rec, err := env.call(t, http.MethodGet, url.Values{}, h.GetNotifications, false)
	require.NoError(t, err)

	var body struct {
		Success       bool                      `json:"success"`
		Notifications []models.NotificationView `json:"notifications"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.Len(t, body.Notifications, 1)
	assert.Equal(t, events.NewSoneID, body.Notifications[0].ID)
	assert.Equal(t, []string{"bob"}, body.Notifications[0].Elements)
	assert.False(t, body.Notifications[0].Dismissable)

	_, err = env.call(t, http.MethodGet, url.Values{}, h.GetNotifications, true)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestNotificationHandler_MarkAsKnown(t *testing.T) {
	env := setupEnv(t)
	h := NewNotificationHandler(env.core)
	env.core.PostDiscovered(&models.Post{ID: "p1", SoneID: "bob"})
	env.core.PostDiscovered(&models.Post{ID: "p2", SoneID: "bob"})

	rec, err := env.call(t, http.MethodPost, url.Values{"type": {"post"}, "id": {"p1, p2,missing"}}, h.MarkAsKnown, false)
	require.NoError(t, err)
	assertSuccess(t, rec)
	assert.True(t, env.core.Notifications.NewPosts.IsEmpty())

	rec, err = env.call(t, http.MethodPost, url.Values{"type": {"sone"}, "id": {"bob,nobody"}}, h.MarkAsKnown, false)
	require.NoError(t, err)
	assertSuccess(t, rec)
	assert.True(t, env.core.Notifications.NewSones.IsEmpty())

	rec, err = env.call(t, http.MethodPost, url.Values{"type": {"album"}, "id": {"a"}}, h.MarkAsKnown, false)
	require.NoError(t, err)
	assertErrorCode(t, rec, errInvalidType)
}

func TestAlbumHandler_EditAlbum(t *testing.T) {
	env := setupEnv(t)
	h := NewAlbumHandler(env.core)
	first, err := env.core.Albums.Create(env.alice, "", "First", "")
	require.NoError(t, err)
	second, err := env.core.Albums.Create(env.alice, "", "Second", "")
	require.NoError(t, err)
	rootID := env.core.Albums.Root("alice").ID()

	tests := []struct {
		name   string
		values url.Values
		want   string
	}{
		{"move left", url.Values{"album": {second.ID()}, "moveLeft": {"true"}}, "imageBrowser.html?album=" + rootID},
		{"move right", url.Values{"album": {second.ID()}, "moveRight": {"true"}}, "imageBrowser.html?album=" + rootID},
		{"edit", url.Values{"album": {first.ID()}, "title": {"Renamed"}}, "imageBrowser.html?album=" + first.ID()},
		{"empty title", url.Values{"album": {first.ID()}, "title": {" "}}, "emptyAlbumTitle.html"},
		{"unknown album", url.Values{"album": {"missing"}, "moveLeft": {"true"}}, "invalid.html"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := env.call(t, http.MethodPost, tt.values, h.EditAlbum, false)
			require.NoError(t, err)
			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, tt.want, rec.Header().Get(echo.HeaderLocation))
		})
	}
	assert.Equal(t, "Renamed", first.Title())
	assert.Equal(t, []string{first.ID(), second.ID()}, albumIDs(env.core.Albums.Root("alice").Albums()))

	t.Run("other sone's album", func(t *testing.T) {
		carol := models.NewSone("carol", "Carol", true)
		env.core.SoneDiscovered(carol, false)
		foreign, err := env.core.Albums.Create(carol, "", "Carol's", "")
		require.NoError(t, err)

		rec, err := env.call(t, http.MethodPost, url.Values{"album": {foreign.ID()}, "moveLeft": {"true"}}, h.EditAlbum, false)
		require.NoError(t, err)
		assert.Equal(t, "noPermission.html", rec.Header().Get(echo.HeaderLocation))
	})
}

func albumIDs(albums []*models.Album) []string {
	ids := make([]string, 0, len(albums))
	for _, a := range albums {
		ids = append(ids, a.ID())
	}
	return ids
}

func TestSafeReturnPage(t *testing.T) {
	assert.Equal(t, "index.html", safeReturnPage(""))
	assert.Equal(t, "index.html", safeReturnPage("//evil.example"))
	assert.Equal(t, "index.html", safeReturnPage("http://evil.example"))
	assert.Equal(t, "index.html", safeReturnPage(strings.Repeat("a", 257)))
	assert.Equal(t, "viewPost.html?post=p1", safeReturnPage("viewPost.html?post=p1"))

	for _, page := range []string{
		`\\evil.example`,
		`\evil.example`,
		"https:evil.example",
		"javascript:alert(1)",
		"/\t/evil.example",
		"/\n/evil.example",
		"/\\evil.example",
	} {
		assert.Equal(t, "index.html", safeReturnPage(page), "page %q", page)
	}
	assert.Equal(t, "viewSone.html?sone=s1", safeReturnPage("viewSone.html?sone=\ts1"))
}

func TestHealthCheck(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)

	require.NoError(t, HealthCheck(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}
