package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/gamehaqqs/gamehaqqs/internal/handlers/testutil"
	"github.com/gamehaqqs/gamehaqqs/internal/models"
	"github.com/gamehaqqs/gamehaqqs/internal/notifications"
	"github.com/gamehaqqs/gamehaqqs/internal/services"
)

func TestNotificationHandler_ListAndMarkRead(t *testing.T) {
	env := testutil.NewEnv(t)
	user, token := env.CreateUser(models.RoleUser, 0)

	first, err := env.Services.Notifications.Notify(context.Background(), user.ID, models.NotificationLike, map[string]any{"like_id": "a"})
	require.NoError(t, err)
	_, err = env.Services.Notifications.Notify(context.Background(), user.ID, models.NotificationComment, map[string]any{"comment_id": "b"})
	require.NoError(t, err)

	w := env.Request(http.MethodGet, "/api/notifications?unread=true", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := testutil.DecodeResponse(t, w)
	var items []services.NotificationDTO
	testutil.DecodeInto(t, resp.Data, &items)
	require.Len(t, items, 2)
	require.Equal(t, 2, resp.Meta.Total)

	w = env.Request(http.MethodPost, "/api/notifications/"+first.ID+"/read", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var dto services.NotificationDTO
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &dto)
	require.True(t, dto.Read)
	require.NotNil(t, dto.ReadAt)

	w = env.Request(http.MethodPost, "/api/notifications/read-all", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated struct {
		Updated int64 `json:"updated"`
	}
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &updated)
	require.EqualValues(t, 1, updated.Updated)

	w = env.Request(http.MethodGet, "/api/notifications?unread=true", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &items)
	require.Empty(t, items)
}

func TestNotificationHandler_MarkReadOtherUser(t *testing.T) {
	env := testutil.NewEnv(t)
	owner, _ := env.CreateUser(models.RoleUser, 0)
	_, intruderToken := env.CreateUser(models.RoleUser, 0)

	note, err := env.Services.Notifications.Notify(context.Background(), owner.ID, models.NotificationLike, nil)
	require.NoError(t, err)

	w := env.Request(http.MethodPost, "/api/notifications/"+note.ID+"/read", nil, intruderToken)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestNotificationHandler_Stream(t *testing.T) {
	env := testutil.NewEnv(t)
	user, token := env.CreateUser(models.RoleUser, 0)

	server := httptest.NewServer(env.Router)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/notifications/stream?access_token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
		_ = resp.Body.Close()
	})

	require.Eventually(t, func() bool {
		return env.Hub.Subscribers(user.ID) == 1
	}, 2*time.Second, 10*time.Millisecond)

	_, err = env.Services.Notifications.Notify(context.Background(), user.ID, models.NotificationComment, map[string]any{"comment_id": "c"})
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event notifications.Event
	require.NoError(t, conn.ReadJSON(&event))
	require.Equal(t, services.EventNotificationCreated, event.Event)
}

func TestNotificationHandler_StreamRejectsQueryTokenWithoutUpgrade(t *testing.T) {
	env := testutil.NewEnv(t)
	_, token := env.CreateUser(models.RoleUser, 0)

	w := env.Request(http.MethodGet, "/api/notifications?access_token="+token, nil, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
