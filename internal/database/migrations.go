package database

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/gamehaqqs/gamehaqqs/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Review{},
		&models.Tip{},
		&models.Wiki{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Achievement{},
		&models.UserAchievement{},
		&models.LeaderboardEntry{},
		&models.Notification{},
	)
}

// DefaultAchievements is the catalog installed on first start. Existing rows with the same key are
// left untouched so admin edits survive restarts.
func DefaultAchievements() []models.Achievement {
	return []models.Achievement{
		catalogEntry(10, "first_steps", "First Steps", "Create your GameHaqqs account.", "footprints",
			models.RarityCommon, 10, models.Criteria{Type: "account_created"}),
		catalogEntry(20, "rising_star", "Rising Star", "Reach level 5.", "star",
			models.RarityUncommon, 50, models.Criteria{Type: "level_reached", Level: intPtr(5)}),
		catalogEntry(30, "veteran", "Veteran", "Reach level 20.", "shield",
			models.RarityEpic, 250, models.Criteria{Type: "level_reached", Level: intPtr(20)}),
		catalogEntry(40, "chatterbox", "Chatterbox", "Write 10 comments.", "message-circle",
			models.RarityCommon, 25, models.Criteria{Type: "comments_made", Count: intPtr(10)}),
		catalogEntry(50, "author", "Author", "Publish 5 posts.", "pen",
			models.RarityUncommon, 40, models.Criteria{Type: "posts_created", Count: intPtr(5)}),
		catalogEntry(60, "helping_hand", "Helping Hand", "Write 25 helpful comments.", "hand-heart",
			models.RarityRare, 75, models.Criteria{Type: "helpful_comments", Count: intPtr(25)}),
		catalogEntry(70, "top_ten", "Top Ten", "Rank in the global top 10.", "trophy",
			models.RarityLegendary, 100, models.Criteria{Type: "leaderboard_rank", MaxRank: intPtr(10)}),
	}
}

// SeedData installs the default achievement catalog.
func SeedData(db *gorm.DB) error {
	for _, achievement := range DefaultAchievements() {
		if err := db.Where(models.Achievement{Key: achievement.Key}).Attrs(achievement).FirstOrCreate(&models.Achievement{}).Error; err != nil {
			return err
		}
	}
	return nil
}

func catalogEntry(order int, key, name, description, icon, rarity string, xp int64, criteria models.Criteria) models.Achievement {
	return models.Achievement{
		Key:         key,
		Name:        name,
		Description: description,
		Icon:        icon,
		Rarity:      rarity,
		XPReward:    xp,
		Criteria:    datatypes.NewJSONType(criteria),
		SortOrder:   order,
	}
}

func intPtr(v int) *int { return &v }
