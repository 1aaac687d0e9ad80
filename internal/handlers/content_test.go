package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gamehaqqs/gamehaqqs/internal/handlers/testutil"
	"github.com/gamehaqqs/gamehaqqs/internal/models"
	"github.com/gamehaqqs/gamehaqqs/internal/services"
)

type actionPayload[T any] struct {
	Item    T                `json:"item"`
	Outcome services.Outcome `json:"outcome"`
}

func TestContentHandler_CreateReviewAwardsXP(t *testing.T) {
	env := testutil.NewEnv(t)
	author, token := env.CreateUser(models.RoleUser, 0)

	w := env.Request(http.MethodPost, "/api/reviews", map[string]any{
		"game_id": "elden-ring",
		"title":   "Worth every death",
		"body":    "Tough but fair.",
		"rating":  9,
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var payload actionPayload[models.Review]
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &payload)
	require.NotEmpty(t, payload.Item.ID)
	require.Equal(t, author.ID, payload.Item.UserID)
	require.Equal(t, 9, payload.Item.Rating)
	require.EqualValues(t, 50, payload.Outcome.XPAwarded)
	require.NotNil(t, payload.Outcome.User)
	require.GreaterOrEqual(t, payload.Outcome.User.XP, int64(50))
	require.Equal(t, models.LevelForXP(payload.Outcome.User.XP), payload.Outcome.User.Level)

	var stored models.User
	require.NoError(t, env.DB.First(&stored, "id = ?", author.ID).Error)
	require.Equal(t, payload.Outcome.User.XP, stored.XP)
}

func TestContentHandler_XPPerContentType(t *testing.T) {
	env := testutil.NewEnv(t)
	_, token := env.CreateUser(models.RoleUser, 0)

	cases := []struct {
		path string
		xp   int64
	}{
		{"/api/tips", 25},
		{"/api/wikis", 40},
		{"/api/posts", 15},
	}
	for _, tc := range cases {
		w := env.Request(http.MethodPost, tc.path, map[string]any{
			"game_id": "hades",
			"title":   "Dash early",
		}, token)
		require.Equal(t, http.StatusCreated, w.Code, tc.path+": "+w.Body.String())

		var payload actionPayload[map[string]any]
		testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &payload)
		require.Equal(t, tc.xp, payload.Outcome.XPAwarded, tc.path)
	}
}

func TestContentHandler_RequiresAuthentication(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodPost, "/api/reviews", map[string]any{"game_id": "x", "title": "y"}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestContentHandler_RejectsInvalidPayload(t *testing.T) {
	env := testutil.NewEnv(t)
	_, token := env.CreateUser(models.RoleUser, 0)

	w := env.Request(http.MethodPost, "/api/reviews", map[string]any{"title": "No game", "rating": 11}, token)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.Request(http.MethodPost, "/api/comments", map[string]any{
		"entity_type": "guide",
		"entity_id":   "not-a-uuid",
		"body":        "hello",
	}, token)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestContentHandler_CommentNotifiesOwner(t *testing.T) {
	env := testutil.NewEnv(t)
	owner, ownerToken := env.CreateUser(models.RoleUser, 0)
	_, commenterToken := env.CreateUser(models.RoleUser, 0)

	w := env.Request(http.MethodPost, "/api/tips", map[string]any{"game_id": "celeste", "title": "Use the wall"}, ownerToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var tip actionPayload[models.Tip]
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &tip)

	w = env.Request(http.MethodPost, "/api/comments", map[string]any{
		"entity_type": models.EntityTip,
		"entity_id":   tip.Item.ID,
		"body":        "Saved my run",
	}, commenterToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var comment actionPayload[models.Comment]
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &comment)
	require.EqualValues(t, 5, comment.Outcome.XPAwarded)

	var notes []models.Notification
	require.NoError(t, env.DB.Where("user_id = ? AND type = ?", owner.ID, models.NotificationComment).Find(&notes).Error)
	require.Len(t, notes, 1)
	require.Equal(t, comment.Item.ID, notes[0].Payload["comment_id"])
}

func TestContentHandler_DuplicateLikeConflicts(t *testing.T) {
	env := testutil.NewEnv(t)
	_, ownerToken := env.CreateUser(models.RoleUser, 0)
	_, fanToken := env.CreateUser(models.RoleUser, 0)

	w := env.Request(http.MethodPost, "/api/posts", map[string]any{"title": "LFG tonight"}, ownerToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var post actionPayload[models.Post]
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &post)

	like := map[string]any{"entity_type": models.EntityPost, "entity_id": post.Item.ID}
	w = env.Request(http.MethodPost, "/api/likes", like, fanToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.Request(http.MethodPost, "/api/likes", like, fanToken)
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
}

func TestContentHandler_UnknownEntityNotFound(t *testing.T) {
	env := testutil.NewEnv(t)
	_, token := env.CreateUser(models.RoleUser, 0)

	w := env.Request(http.MethodPost, "/api/likes", map[string]any{
		"entity_type": models.EntityReview,
		"entity_id":   "8f3b1c2e-1111-4e5f-9a6b-123456789abc",
	}, token)
	require.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
}
