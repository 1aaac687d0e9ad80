package models

// Entity types that can receive comments and likes.
const (
	EntityReview = "review"
	EntityTip    = "tip"
	EntityWiki   = "wiki"
	EntityPost   = "post"
)

// Review is a user review of a catalog game.
type Review struct {
	BaseModel

	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	GameID string `gorm:"type:varchar(64);not null;index" json:"game_id"`
	Title  string `gorm:"type:varchar(255);not null" json:"title"`
	Body   string `gorm:"type:text" json:"body"`
	Rating int    `gorm:"default:0" json:"rating"`
}

// Tip is a short gameplay hint.
type Tip struct {
	BaseModel

	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	GameID string `gorm:"type:varchar(64);not null;index" json:"game_id"`
	Title  string `gorm:"type:varchar(255);not null" json:"title"`
	Body   string `gorm:"type:text" json:"body"`
}

// Wiki is a community written reference page.
type Wiki struct {
	BaseModel

	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	GameID string `gorm:"type:varchar(64);not null;index" json:"game_id"`
	Title  string `gorm:"type:varchar(255);not null" json:"title"`
	Body   string `gorm:"type:text" json:"body"`
}

// Post is a forum post.
type Post struct {
	BaseModel

	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	GameID string `gorm:"type:varchar(64);index" json:"game_id"`
	Title  string `gorm:"type:varchar(255);not null" json:"title"`
	Body   string `gorm:"type:text" json:"body"`
}

// Comment is attached to any commentable entity.
type Comment struct {
	BaseModel

	UserID     string `gorm:"type:uuid;not null;index" json:"user_id"`
	EntityType string `gorm:"type:varchar(16);not null;index:idx_comments_entity" json:"entity_type"`
	EntityID   string `gorm:"type:uuid;not null;index:idx_comments_entity" json:"entity_id"`
	Body       string `gorm:"type:text;not null" json:"body"`
}

// Like records one user's like of one entity.
type Like struct {
	BaseModel

	UserID     string `gorm:"type:uuid;not null;uniqueIndex:idx_likes_user_entity" json:"user_id"`
	EntityType string `gorm:"type:varchar(16);not null;uniqueIndex:idx_likes_user_entity;index:idx_likes_entity" json:"entity_type"`
	EntityID   string `gorm:"type:uuid;not null;uniqueIndex:idx_likes_user_entity;index:idx_likes_entity" json:"entity_id"`
}

// IsValidEntityType reports whether comments and likes may target the entity type.
func IsValidEntityType(entityType string) bool {
	switch entityType {
	case EntityReview, EntityTip, EntityWiki, EntityPost:
		return true
	default:
		return false
	}
}
