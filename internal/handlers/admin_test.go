package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gamehaqqs/gamehaqqs/internal/achievements"
	"github.com/gamehaqqs/gamehaqqs/internal/handlers/testutil"
	"github.com/gamehaqqs/gamehaqqs/internal/models"
	"github.com/gamehaqqs/gamehaqqs/internal/services"
)

func TestAdminHandler_RoleGating(t *testing.T) {
	env := testutil.NewEnv(t)
	target, userToken := env.CreateUser(models.RoleUser, 0)
	_, modToken := env.CreateUser(models.RoleModerator, 0)

	w := env.Request(http.MethodGet, "/api/admin/achievements", nil, userToken)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = env.Request(http.MethodGet, "/api/admin/achievements", nil, modToken)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = env.Request(http.MethodPost, "/api/admin/achievements/check/"+target.ID, nil, userToken)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = env.Request(http.MethodPost, "/api/admin/achievements/check/"+target.ID, nil, modToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result struct {
		Unlocked []models.Achievement `json:"unlocked"`
	}
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &result)
	require.NotEmpty(t, result.Unlocked)

	w = env.Request(http.MethodPost, "/api/admin/achievements/check/"+target.ID, nil, modToken)
	require.Equal(t, http.StatusOK, w.Code)
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &result)
	require.Empty(t, result.Unlocked)
}

func TestAdminHandler_CreateAchievement(t *testing.T) {
	env := testutil.NewEnv(t)
	_, adminToken := env.CreateUser(models.RoleAdmin, 0)

	w := env.Request(http.MethodPost, "/api/admin/achievements", map[string]any{
		"key":       "prolific",
		"name":      "Prolific",
		"rarity":    models.RarityRare,
		"xp_reward": 60,
		"criteria":  map[string]any{"type": "posts_created", "count": 20},
	}, adminToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created models.Achievement
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &created)
	require.Equal(t, "prolific", created.Key)
	require.EqualValues(t, 60, created.XPReward)

	w = env.Request(http.MethodPost, "/api/admin/achievements", map[string]any{
		"key":      "prolific",
		"name":     "Again",
		"criteria": map[string]any{"type": "posts_created", "count": 1},
	}, adminToken)
	require.Equal(t, http.StatusConflict, w.Code)

	w = env.Request(http.MethodPost, "/api/admin/achievements", map[string]any{
		"key":      "mystery",
		"name":     "Mystery",
		"rarity":   "Mythic",
		"criteria": map[string]any{"type": "account_created"},
	}, adminToken)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.Request(http.MethodPost, "/api/admin/achievements", map[string]any{
		"key":      "first_steps",
		"name":     "First Steps",
		"criteria": map[string]any{"type": "level_reached"},
	}, adminToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var defaulted models.Achievement
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &defaulted)
	require.Equal(t, achievements.LevelReached{Level: 1}, achievements.FromCriteria(defaulted.Criteria.Data()))

	w = env.Request(http.MethodPost, "/api/admin/achievements", map[string]any{
		"key":      "broken",
		"name":     "Broken",
		"criteria": map[string]any{"type": "level_reached", "level": 0},
	}, adminToken)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminHandler_AwardXP(t *testing.T) {
	env := testutil.NewEnv(t)
	_, adminToken := env.CreateUser(models.RoleAdmin, 0)
	target, _ := env.CreateUser(models.RoleUser, 90)

	w := env.Request(http.MethodPost, "/api/admin/users/"+target.ID+"/xp", map[string]any{"amount": 0}, adminToken)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.Request(http.MethodPost, "/api/admin/users/"+target.ID+"/xp", map[string]any{"amount": 310}, adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var outcome services.Outcome
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &outcome)
	require.EqualValues(t, 310, outcome.XPAwarded)
	require.NotNil(t, outcome.User)

	keys := map[string]bool{}
	var reward int64
	for _, a := range outcome.Unlocked {
		keys[a.Key] = true
		reward += a.XPReward
	}
	require.True(t, keys["rising_star"])
	require.EqualValues(t, 400+reward, outcome.User.XP)
	require.Equal(t, models.LevelForXP(outcome.User.XP), outcome.User.Level)

	w = env.Request(http.MethodPost, "/api/admin/users/8f3b1c2e-1111-4e5f-9a6b-123456789abc/xp", map[string]any{"amount": 5}, adminToken)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminHandler_UpdateUser(t *testing.T) {
	env := testutil.NewEnv(t)
	_, adminToken := env.CreateUser(models.RoleAdmin, 0)
	target, targetToken := env.CreateUser(models.RoleUser, 0)

	w := env.Request(http.MethodPatch, "/api/admin/users/"+target.ID, map[string]any{"role": "overlord"}, adminToken)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.Request(http.MethodPatch, "/api/admin/users/"+target.ID, map[string]any{"role": "moderator", "is_active": false}, adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated models.User
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &updated)
	require.Equal(t, models.RoleModerator, updated.Role)
	require.False(t, updated.IsActive)

	w = env.Request(http.MethodPatch, "/api/admin/users/"+target.ID, map[string]any{"role": "admin"}, targetToken)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminHandler_AccountChangesApplyToIssuedTokens(t *testing.T) {
	env := testutil.NewEnv(t)
	target, _ := env.CreateUser(models.RoleUser, 0)
	demoted, demotedToken := env.CreateUser(models.RoleAdmin, 0)
	disabled, disabledToken := env.CreateUser(models.RoleAdmin, 0)

	award := "/api/admin/users/" + target.ID + "/xp"
	w := env.Request(http.MethodPost, award, map[string]any{"amount": 5}, demotedToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	role := models.RoleUser
	_, err := env.Services.Users.Update(context.Background(), demoted.ID, services.UpdateUserInput{Role: &role})
	require.NoError(t, err)

	w = env.Request(http.MethodPost, award, map[string]any{"amount": 5}, demotedToken)
	require.Equal(t, http.StatusForbidden, w.Code)
	w = env.Request(http.MethodPost, "/api/posts", map[string]any{"title": "still here"}, demotedToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	inactive := false
	_, err = env.Services.Users.Update(context.Background(), disabled.ID, services.UpdateUserInput{IsActive: &inactive})
	require.NoError(t, err)

	w = env.Request(http.MethodPost, award, map[string]any{"amount": 5}, disabledToken)
	require.Equal(t, http.StatusForbidden, w.Code)
	w = env.Request(http.MethodPost, "/api/posts", map[string]any{"title": "locked out"}, disabledToken)
	require.Equal(t, http.StatusForbidden, w.Code)
}
