package services

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/gamehaqqs/gamehaqqs/internal/database/testutil"
	"github.com/gamehaqqs/gamehaqqs/internal/models"
	"github.com/gamehaqqs/gamehaqqs/internal/notifications"
)

type testStack struct {
	db            *gorm.DB
	publisher     *recordingPublisher
	badges        *BadgeService
	leveling      *LevelingService
	notifications *NotificationService
	achievements  *AchievementService
	activity      *ActivityService
	users         *UserService
}

func newTestStack(t *testing.T, opts ...testutil.TestDBOption) *testStack {
	t.Helper()

	if len(opts) == 0 {
		opts = []testutil.TestDBOption{testutil.WithAutoMigrate()}
	}
	db := testutil.MustOpenTestDB(t, opts...)
	publisher := &recordingPublisher{}

	badges, err := NewBadgeService(db)
	require.NoError(t, err)
	leveling, err := NewLevelingService(db, badges)
	require.NoError(t, err)
	notifier, err := NewNotificationService(db, publisher)
	require.NoError(t, err)
	achievementSvc, err := NewAchievementService(db, badges, notifier)
	require.NoError(t, err)
	activity, err := NewActivityService(db, leveling, badges, achievementSvc, notifier)
	require.NoError(t, err)
	users, err := NewUserService(db, achievementSvc, bcrypt.MinCost)
	require.NoError(t, err)

	return &testStack{
		db:            db,
		publisher:     publisher,
		badges:        badges,
		leveling:      leveling,
		notifications: notifier,
		achievements:  achievementSvc,
		activity:      activity,
		users:         users,
	}
}

func createUser(t *testing.T, db *gorm.DB, username string, xp int64) models.User {
	t.Helper()

	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "not-a-hash",
		Role:         models.RoleUser,
		IsActive:     true,
		XP:           xp,
		Level:        models.LevelForXP(xp),
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createAchievement(t *testing.T, db *gorm.DB, key string, order int, xpReward int64, criteria models.Criteria) models.Achievement {
	t.Helper()

	achievement := models.Achievement{
		Key:       key,
		Name:      key,
		Rarity:    models.RarityCommon,
		XPReward:  xpReward,
		Criteria:  datatypes.NewJSONType(criteria),
		SortOrder: order,
	}
	require.NoError(t, db.Create(&achievement).Error)
	return achievement
}

func createComments(t *testing.T, db *gorm.DB, userID string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, db.Create(&models.Comment{
			UserID:     userID,
			EntityType: models.EntityPost,
			EntityID:   fmt.Sprintf("00000000-0000-0000-0000-%012d", i),
			Body:       "nice",
		}).Error)
	}
}

func intPtr(v int) *int { return &v }

func keys(list []models.Achievement) []string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.Key)
	}
	return out
}

type recordingPublisher struct {
	mu        sync.Mutex
	published map[string][]notifications.Event
	broadcast []notifications.Event
}

func (p *recordingPublisher) Publish(userID string, event notifications.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.published == nil {
		p.published = make(map[string][]notifications.Event)
	}
	p.published[userID] = append(p.published[userID], event)
}

func (p *recordingPublisher) Broadcast(event notifications.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.broadcast = append(p.broadcast, event)
}

func (p *recordingPublisher) eventsFor(userID string) []notifications.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]notifications.Event(nil), p.published[userID]...)
}
