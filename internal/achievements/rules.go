// Package achievements turns persisted achievement criteria into evaluable rules.
package achievements

import (
	"fmt"

	"github.com/gamehaqqs/gamehaqqs/internal/models"
)

// Criteria kinds recognised by the engine.
const (
	KindAccountCreated  = "account_created"
	KindLevelReached    = "level_reached"
	KindCommentsMade    = "comments_made"
	KindPostsCreated    = "posts_created"
	KindHelpfulComments = "helpful_comments"
	KindLeaderboardRank = "leaderboard_rank"
)

// Stats is the user state rules are evaluated against.
type Stats struct {
	Level    int
	Comments int64
	Posts    int64
	// Rank is 1 + the number of role=user accounts with strictly more XP.
	Rank int64
}

// Rule is one variant of the criteria union.
type Rule interface {
	Kind() string
	Satisfied(stats Stats) bool
}

// AccountCreated matches every registered account.
type AccountCreated struct{}

func (AccountCreated) Kind() string { return KindAccountCreated }
func (AccountCreated) Satisfied(Stats) bool { return true }

// LevelReached matches once the user is at Level or above.
type LevelReached struct{ Level int }

func (LevelReached) Kind() string { return KindLevelReached }
func (r LevelReached) Satisfied(s Stats) bool { return s.Level >= r.Level }

// CommentsMade matches users with at least Count authored comments.
type CommentsMade struct{ Count int }

func (CommentsMade) Kind() string { return KindCommentsMade }
func (r CommentsMade) Satisfied(s Stats) bool { return s.Comments >= int64(r.Count) }

// PostsCreated matches users with at least Count authored posts.
type PostsCreated struct{ Count int }

func (PostsCreated) Kind() string { return KindPostsCreated }
func (r PostsCreated) Satisfied(s Stats) bool { return s.Posts >= int64(r.Count) }

// HelpfulComments counts every authored comment; there is no helpfulness signal yet.
type HelpfulComments struct{ Count int }

func (HelpfulComments) Kind() string { return KindHelpfulComments }
func (r HelpfulComments) Satisfied(s Stats) bool { return s.Comments >= int64(r.Count) }

// LeaderboardRank matches users whose global XP rank is MaxRank or better.
type LeaderboardRank struct{ MaxRank int }

func (LeaderboardRank) Kind() string { return KindLeaderboardRank }
func (r LeaderboardRank) Satisfied(s Stats) bool {
	return s.Rank > 0 && s.Rank <= int64(r.MaxRank)
}

// Unknown wraps kinds the engine does not recognise. It never matches.
type Unknown struct{ Type string }

func (u Unknown) Kind() string { return u.Type }
func (Unknown) Satisfied(Stats) bool { return false }

// FromCriteria resolves persisted criteria into a rule, applying parameter defaults.
func FromCriteria(c models.Criteria) Rule {
	switch c.Type {
	case KindAccountCreated:
		return AccountCreated{}
	case KindLevelReached:
		return LevelReached{Level: intOr(c.Level, 1)}
	case KindCommentsMade:
		return CommentsMade{Count: intOr(c.Count, 1)}
	case KindPostsCreated:
		return PostsCreated{Count: intOr(c.Count, 1)}
	case KindHelpfulComments:
		return HelpfulComments{Count: intOr(c.Count, 1)}
	case KindLeaderboardRank:
		return LeaderboardRank{MaxRank: intOr(c.MaxRank, 10)}
	default:
		return Unknown{Type: c.Type}
	}
}

// NeedsRank reports whether evaluating rules requires the global rank query.
func NeedsRank(rules []Rule) bool {
	for _, rule := range rules {
		if _, ok := rule.(LeaderboardRank); ok {
			return true
		}
	}
	return false
}

// Validate checks criteria submitted through catalog management. Only known kinds with
// positive parameters are accepted.
func Validate(c models.Criteria) error {
	rule := FromCriteria(c)
	if _, ok := rule.(Unknown); ok {
		return fmt.Errorf("unknown criteria type %q", c.Type)
	}
	params := []struct {
		name  string
		value *int
	}{
		{"level", c.Level},
		{"count", c.Count},
		{"max_rank", c.MaxRank},
	}
	for _, p := range params {
		if p.value != nil && *p.value < 1 {
			return fmt.Errorf("criteria %s must be at least 1", p.name)
		}
	}
	return nil
}

func intOr(value *int, fallback int) int {
	if value == nil {
		return fallback
	}
	return *value
}
